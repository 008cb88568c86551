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

func TestPostEntry(t *testing.T) {
	user := models.User{ID: "user1", Points: 10, Version: 1}

	t.Run("Credit", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		entry := models.PointTransaction{ID: uuid.NewString(), UserID: "user1", Amount: 25, Type: models.TransactionBonus, BalanceAfter: 35}

		var captured *dynamodb.TransactWriteItemsInput
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { captured = args.Get(1).(*dynamodb.TransactWriteItemsInput) }).
			Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		err := store.PostEntry(context.Background(), storage.PostSettlement{Change: storage.BalanceChange{User: user, Entry: entry}})

		require.NoError(t, err)
		require.Len(t, captured.TransactItems, 2)
		update := captured.TransactItems[0].Update
		assert.Equal(t, "SET points = points + :amount, version = version + :inc", aws.ToString(update.UpdateExpression))
		assert.Equal(t, "version = :version", aws.ToString(update.ConditionExpression))

		var written models.PointTransaction
		require.NoError(t, attributevalue.UnmarshalMap(captured.TransactItems[1].Put.Item, &written))
		assert.Equal(t, ledgerPartitionKey, written.GSI1PK)
		assert.Equal(t, int64(35), written.BalanceAfter)
		mockClient.AssertExpectations(t)
	})

	t.Run("Debit Guarded Against Negative Balance", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		entry := models.PointTransaction{ID: uuid.NewString(), UserID: "user1", Amount: -10, Type: models.TransactionAdmin, BalanceAfter: 0}

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			return aws.ToString(in.TransactItems[0].Update.ConditionExpression) == "version = :version AND points >= :debit"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		err := store.PostEntry(context.Background(), storage.PostSettlement{Change: storage.BalanceChange{User: user, Entry: entry}})

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Version Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		entry := models.PointTransaction{ID: uuid.NewString(), UserID: "user1", Amount: 5, BalanceAfter: 15}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{{Code: aws.String("ConditionalCheckFailed")}, {Code: aws.String("None")}},
		}).Once()

		err := store.PostEntry(context.Background(), storage.PostSettlement{Change: storage.BalanceChange{User: user, Entry: entry}})

		assert.ErrorIs(t, err, storage.ErrConflict)
		assert.Contains(t, err.Error(), "failed to post ledger entry for user user1")
		mockClient.AssertExpectations(t)
	})
}

func TestListUserTransactions(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	// String order of these timestamps differs from chronological order.
	first := models.PointTransaction{ID: "first", UserID: "user1", Amount: 5, BalanceAfter: 5, CreatedAt: base.Add(500 * time.Millisecond)}
	second := models.PointTransaction{ID: "second", UserID: "user1", Amount: 10, BalanceAfter: 15, CreatedAt: base.Add(510 * time.Millisecond)}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		secondAV, _ := attributevalue.MarshalMap(second)
		firstAV, _ := attributevalue.MarshalMap(first)

		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return aws.ToString(in.IndexName) == ledgerUserIndex && aws.ToBool(in.ScanIndexForward)
		})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{secondAV, firstAV}}, nil)

		entries, err := store.ListUserTransactions(context.Background(), "user1")

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "first", entries[0].ID)
		assert.Equal(t, "second", entries[1].ID)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))

		_, err := store.ListUserTransactions(context.Background(), "user1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query ledger entries by user ID")
		mockClient.AssertExpectations(t)
	})
}

func TestListLedgerEntries(t *testing.T) {
	now := time.Now().UTC()
	older, _ := attributevalue.MarshalMap(models.PointTransaction{ID: "older", UserID: "user1", Amount: 5, BalanceAfter: 5, CreatedAt: now.Add(-time.Minute)})
	newer, _ := attributevalue.MarshalMap(models.PointTransaction{ID: "newer", UserID: "user2", Amount: 10, BalanceAfter: 10, CreatedAt: now})

	t.Run("Limited", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return aws.ToString(in.IndexName) == ledgerGSI && aws.ToInt32(in.Limit) == 1 && !aws.ToBool(in.ScanIndexForward)
		})).Return(&dynamodb.QueryOutput{
			Items:            []map[string]types.AttributeValue{newer, older},
			LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "older"}},
		}, nil).Once()

		entries, err := store.ListLedgerEntries(context.Background(), 1)

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "newer", entries[0].ID)
		mockClient.AssertExpectations(t)
	})

	t.Run("Zero Limit Reads Everything", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return in.Limit == nil && in.ExclusiveStartKey == nil
		})).Return(&dynamodb.QueryOutput{
			Items:            []map[string]types.AttributeValue{older},
			LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "older"}},
		}, nil).Once()
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return in.Limit == nil && in.ExclusiveStartKey != nil
		})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{newer}}, nil).Once()

		entries, err := store.ListLedgerEntries(context.Background(), 0)

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "newer", entries[0].ID)
		assert.Equal(t, "older", entries[1].ID)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))

		_, err := store.ListLedgerEntries(context.Background(), 10)

		assert.ErrorContains(t, err, "failed to query recent ledger entries")
		mockClient.AssertExpectations(t)
	})
}
