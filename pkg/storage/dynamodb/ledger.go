package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
)

// PostEntry applies a single ledger entry and its balance update atomically.
func (s *Store) PostEntry(ctx context.Context, p storage.PostSettlement) error {
	writes, err := s.balanceWrites(p.Change)
	if err != nil {
		return err
	}
	if err := s.transact(ctx, writes); err != nil {
		return fmt.Errorf("failed to post ledger entry for user %s: %w", p.Change.User.ID, err)
	}
	return nil
}

// ListUserTransactions returns every ledger entry of a user, oldest first.
func (s *Store) ListUserTransactions(ctx context.Context, userID string) ([]models.PointTransaction, error) {
	raw, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Ledger),
		IndexName:              aws.String(ledgerUserIndex),
		KeyConditionExpression: aws.String("user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(true),
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries by user ID: %w", err)
	}

	var entries []models.PointTransaction
	if err := attributevalue.UnmarshalListOfMaps(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entries: %w", err)
	}
	// The index sorts on the string form of created_at, which is not strictly chronological.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })

	return entries, nil
}

// ListLedgerEntries returns the newest entries across all users. A limit of
// zero returns the whole ledger.
func (s *Store) ListLedgerEntries(ctx context.Context, limit int32) ([]models.PointTransaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Ledger),
		IndexName:              aws.String(ledgerGSI),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: ledgerPartitionKey},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	raw, err := s.queryAll(ctx, input, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent ledger entries: %w", err)
	}

	var entries []models.PointTransaction
	if err := attributevalue.UnmarshalListOfMaps(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entries: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })

	return entries, nil
}
