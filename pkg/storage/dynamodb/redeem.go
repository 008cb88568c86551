package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
)

// Redeem performs the points-for-item settlement as one transaction:
//  1. item available -> redeemed, guarded by status and version
//  2. redeemer debit, guarded by version and balance
//  3. debit ledger entry
//  4. uploader credit, guarded by version
//  5. credit ledger entry
//  6. redemption record
func (s *Store) Redeem(ctx context.Context, r storage.RedemptionSettlement) error {
	itemPut, err := s.itemPut(r.Item)
	if err != nil {
		return err
	}
	debitWrites, err := s.balanceWrites(r.Debit)
	if err != nil {
		return err
	}
	creditWrites, err := s.balanceWrites(r.Credit)
	if err != nil {
		return err
	}
	redemptionPut, err := putNew(s.Tables.Redemptions, r.Redemption)
	if err != nil {
		return err
	}

	writes := make([]types.TransactWriteItem, 0, 6)
	writes = append(writes, types.TransactWriteItem{Put: itemPut})
	writes = append(writes, debitWrites...)
	writes = append(writes, creditWrites...)
	writes = append(writes, redemptionPut)

	if err := s.transact(ctx, writes); err != nil {
		return fmt.Errorf("failed to redeem item %s: %w", r.Item.Item.ID, err)
	}
	return nil
}

// GetRedemption retrieves a redemption record by ID.
func (s *Store) GetRedemption(ctx context.Context, redemptionID string) (*models.Redemption, error) {
	var redemption models.Redemption
	if err := s.getDocument(ctx, s.Tables.Redemptions, "redemption", redemptionID, &redemption); err != nil {
		return nil, err
	}
	return &redemption, nil
}

// ListRedemptionsByUser returns a user's redemptions, newest first.
func (s *Store) ListRedemptionsByUser(ctx context.Context, userID string) ([]models.Redemption, error) {
	raw, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Redemptions),
		IndexName:              aws.String(redemptionsUserIndex),
		KeyConditionExpression: aws.String("user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query redemptions by user ID: %w", err)
	}

	var redemptions []models.Redemption
	if err := attributevalue.UnmarshalListOfMaps(raw, &redemptions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal redemptions: %w", err)
	}

	return redemptions, nil
}
