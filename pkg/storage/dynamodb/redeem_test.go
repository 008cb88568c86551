package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"github.com/chris/clothing-swap-settlement/pkg/storage/dynamodb/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func redemptionSettlement() storage.RedemptionSettlement {
	now := time.Now().UTC()
	redeemer := models.User{ID: "redeemer", Points: 100, Version: 3}
	uploader := models.User{ID: "uploader", Points: 20, Version: 7}
	item := models.Item{ID: uuid.NewString(), UploaderID: "uploader", PointsValue: 50, Status: models.ItemRedeemed, RedeemedBy: "redeemer", RedemptionDate: &now, Version: 2}

	return storage.RedemptionSettlement{
		Item:       storage.ItemChange{From: models.ItemAvailable, Item: item},
		Redemption: models.Redemption{ID: uuid.NewString(), ItemID: item.ID, UserID: "redeemer", PointsSpent: 50, Status: models.RedemptionCompleted, CreatedAt: now},
		Debit: storage.BalanceChange{
			User:  redeemer,
			Entry: models.PointTransaction{ID: uuid.NewString(), UserID: "redeemer", Amount: -50, Type: models.TransactionRedeem, BalanceAfter: 50, CreatedAt: now},
		},
		Credit: storage.BalanceChange{
			User:  uploader,
			Entry: models.PointTransaction{ID: uuid.NewString(), UserID: "uploader", Amount: 50, Type: models.TransactionSwap, BalanceAfter: 70, CreatedAt: now},
		},
	}
}

func TestRedeem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		settlement := redemptionSettlement()

		var captured *dynamodb.TransactWriteItemsInput
		mockClient.On("TransactWriteItems", mock.Anything, mock.AnythingOfType("*dynamodb.TransactWriteItemsInput")).
			Run(func(args mock.Arguments) { captured = args.Get(1).(*dynamodb.TransactWriteItemsInput) }).
			Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		err := store.Redeem(context.Background(), settlement)

		require.NoError(t, err)
		require.Len(t, captured.TransactItems, 6)

		itemPut := captured.TransactItems[0].Put
		require.NotNil(t, itemPut)
		assert.Equal(t, "items", aws.ToString(itemPut.TableName))
		assert.Equal(t, "#status = :from AND version = :version", aws.ToString(itemPut.ConditionExpression))
		assert.Equal(t, &types.AttributeValueMemberS{Value: "available"}, itemPut.ExpressionAttributeValues[":from"])
		assert.Equal(t, &types.AttributeValueMemberN{Value: "2"}, itemPut.ExpressionAttributeValues[":version"])
		var written models.Item
		require.NoError(t, attributevalue.UnmarshalMap(itemPut.Item, &written))
		assert.Equal(t, int64(3), written.Version)
		assert.Equal(t, models.ItemRedeemed, written.Status)

		debit := captured.TransactItems[1].Update
		require.NotNil(t, debit)
		assert.Equal(t, "users", aws.ToString(debit.TableName))
		assert.Equal(t, "version = :version AND points >= :debit", aws.ToString(debit.ConditionExpression))
		assert.Equal(t, &types.AttributeValueMemberN{Value: "50"}, debit.ExpressionAttributeValues[":debit"])

		debitEntry := captured.TransactItems[2].Put
		require.NotNil(t, debitEntry)
		assert.Equal(t, "ledger", aws.ToString(debitEntry.TableName))
		assert.Equal(t, "attribute_not_exists(id)", aws.ToString(debitEntry.ConditionExpression))

		credit := captured.TransactItems[3].Update
		require.NotNil(t, credit)
		assert.Equal(t, "version = :version", aws.ToString(credit.ConditionExpression))

		redemptionPut := captured.TransactItems[5].Put
		require.NotNil(t, redemptionPut)
		assert.Equal(t, "redemptions", aws.ToString(redemptionPut.TableName))
		mockClient.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		cancelled := &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{
				{Code: aws.String("ConditionalCheckFailed")},
				{Code: aws.String("None")},
			},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelled).Once()

		err := store.Redeem(context.Background(), redemptionSettlement())

		assert.ErrorIs(t, err, storage.ErrConflict)
		mockClient.AssertExpectations(t)
	})

	t.Run("Inconsistent Balance", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		settlement := redemptionSettlement()
		settlement.Debit.Entry.BalanceAfter = 60

		err := store.Redeem(context.Background(), settlement)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not follow from")
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
	})

	t.Run("Transaction Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("transaction failed")).Once()

		err := store.Redeem(context.Background(), redemptionSettlement())

		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrConflict)
		assert.Contains(t, err.Error(), "failed to execute settlement transaction")
		mockClient.AssertExpectations(t)
	})
}

func TestListRedemptionsByUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		redemption := models.Redemption{ID: uuid.NewString(), UserID: "redeemer", PointsSpent: 50}
		av, _ := attributevalue.MarshalMap(redemption)

		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return aws.ToString(in.IndexName) == redemptionsUserIndex && !aws.ToBool(in.ScanIndexForward)
		})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{av}}, nil)

		result, err := store.ListRedemptionsByUser(context.Background(), "redeemer")

		assert.NoError(t, err)
		assert.Equal(t, []models.Redemption{redemption}, result)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))

		_, err := store.ListRedemptionsByUser(context.Background(), "redeemer")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query redemptions by user ID")
		mockClient.AssertExpectations(t)
	})
}
