package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"github.com/chris/clothing-swap-settlement/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testTables = Tables{
	Users:       "users",
	Items:       "items",
	Ledger:      "ledger",
	Redemptions: "redemptions",
	Swaps:       "swaps",
	Reports:     "reports",
}

func TestCreateUser(t *testing.T) {
	user := &models.User{ID: "test-user", Role: models.RoleUser}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(&dynamodb.PutItemOutput{}, nil)

		store := New(mockClient, testTables)
		createdUser, err := store.CreateUser(context.Background(), user)

		assert.NoError(t, err)
		assert.Equal(t, user, createdUser)
		mockClient.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		store := New(mockClient, testTables)
		_, err := store.CreateUser(context.Background(), user)

		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
		assert.Contains(t, err.Error(), "user with ID test-user")
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("some other storage error"))

		store := New(mockClient, testTables)
		_, err := store.CreateUser(context.Background(), user)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create user in DynamoDB")
		mockClient.AssertExpectations(t)
	})
}

func TestGetUser(t *testing.T) {
	userID := "test-user"
	user := &models.User{ID: userID, Points: 100, Role: models.RoleUser, Version: 4}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		userAV, _ := attributevalue.MarshalMap(user)
		mockClient.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return *in.TableName == "users"
		})).Return(&dynamodb.GetItemOutput{Item: userAV}, nil)

		store := New(mockClient, testTables)
		retrievedUser, err := store.GetUser(context.Background(), userID)

		assert.NoError(t, err)
		assert.Equal(t, user.Points, retrievedUser.Points)
		assert.Equal(t, user.Version, retrievedUser.Version)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		store := New(mockClient, testTables)
		_, err := store.GetUser(context.Background(), userID)

		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Contains(t, err.Error(), "user with ID test-user not found")
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("some other storage error"))

		store := New(mockClient, testTables)
		_, err := store.GetUser(context.Background(), userID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get user from DynamoDB")
		mockClient.AssertExpectations(t)
	})
}

func TestListUsers(t *testing.T) {
	users := []models.User{{ID: "test-user-1", Role: models.RoleUser}, {ID: "test-user-2", Role: models.RoleAdmin}}

	t.Run("Success With Pagination", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		first, _ := attributevalue.MarshalMap(users[0])
		second, _ := attributevalue.MarshalMap(users[1])
		lastKey := map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "test-user-1"}}

		mockClient.On("Scan", mock.Anything, mock.Anything).Once().Return(&dynamodb.ScanOutput{
			Items:            []map[string]types.AttributeValue{first},
			LastEvaluatedKey: lastKey,
		}, nil)
		mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
			return in.ExclusiveStartKey != nil
		})).Once().Return(&dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{second}}, nil)

		store := New(mockClient, testTables)
		retrieved, err := store.ListUsers(context.Background())

		assert.NoError(t, err)
		assert.Len(t, retrieved, 2)
		assert.Equal(t, "test-user-2", retrieved[1].ID)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Scan", mock.Anything, mock.Anything).Return(nil, errors.New("some other storage error"))

		store := New(mockClient, testTables)
		_, err := store.ListUsers(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to scan users table")
		mockClient.AssertExpectations(t)
	})
}
