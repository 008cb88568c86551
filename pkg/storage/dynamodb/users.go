package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
)

// CreateUser creates a new user record in DynamoDB.
func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	userAV, err := attributevalue.MarshalMap(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Users),
		Item:                userAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"), // Prevent overwriting existing users.
	}

	_, err = s.Client.PutItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, fmt.Errorf("user with ID %s: %w", user.ID, storage.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create user in DynamoDB: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user from DynamoDB by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.getDocument(ctx, s.Tables.Users, "user", userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers retrieves all users from DynamoDB.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	items, err := s.scanAll(ctx, &dynamodb.ScanInput{TableName: aws.String(s.Tables.Users)})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users table: %w", err)
	}

	var users []models.User
	if err := attributevalue.UnmarshalListOfMaps(items, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal users: %w", err)
	}

	return users, nil
}
