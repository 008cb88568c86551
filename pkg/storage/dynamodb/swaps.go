package dynamodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
)

type swapGuard struct {
	ID     string `dynamodbav:"id"`
	SwapID string `dynamodbav:"swap_id"`
}

func swapGuardID(requestedItemID, requesterID string) string {
	return swapGuardPrefix + requestedItemID + "#" + requesterID
}

// CreateSwap stores a new swap request together with a guard record keyed by
// requested item and requester. The guard exists while the swap is pending.
func (s *Store) CreateSwap(ctx context.Context, swap *models.Swap) error {
	swapPut, err := putNew(s.Tables.Swaps, swap)
	if err != nil {
		return err
	}
	guardPut, err := putNew(s.Tables.Swaps, swapGuard{
		ID:     swapGuardID(swap.RequestedItemID, swap.RequesterID),
		SwapID: swap.ID,
	})
	if err != nil {
		return err
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{swapPut, guardPut},
	})
	if err != nil {
		if cancelledAt(err, 1) {
			return fmt.Errorf("pending swap for item %s by %s: %w", swap.RequestedItemID, swap.RequesterID, storage.ErrAlreadyExists)
		}
		if isConditionFailure(err) {
			return fmt.Errorf("%w: %w", storage.ErrConflict, err)
		}
		return fmt.Errorf("failed to create swap in DynamoDB: %w", err)
	}
	return nil
}

// GetSwap retrieves a swap by ID.
func (s *Store) GetSwap(ctx context.Context, swapID string) (*models.Swap, error) {
	if strings.HasPrefix(swapID, swapGuardPrefix) {
		return nil, fmt.Errorf("swap with ID %s not found: %w", swapID, storage.ErrNotFound)
	}
	var swap models.Swap
	if err := s.getDocument(ctx, s.Tables.Swaps, "swap", swapID, &swap); err != nil {
		return nil, err
	}
	return &swap, nil
}

func (s *Store) querySwapsBy(ctx context.Context, index, attribute, value string, status models.SwapStatus) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Swaps),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(attribute + " = :value"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": &types.AttributeValueMemberS{Value: value},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if status != "" {
		input.FilterExpression = aws.String("#status = :status")
		input.ExpressionAttributeNames = map[string]string{"#status": "status"}
		input.ExpressionAttributeValues[":status"] = &types.AttributeValueMemberS{Value: string(status)}
	}
	return s.queryAll(ctx, input, 0)
}

// ListSwaps returns swaps matching the filter, newest first.
func (s *Store) ListSwaps(ctx context.Context, filter storage.SwapFilter) ([]models.Swap, error) {
	var raw []map[string]types.AttributeValue

	if filter.RequesterID != "" {
		items, err := s.querySwapsBy(ctx, swapsRequesterIndex, "requester_id", filter.RequesterID, filter.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to query swaps by requester: %w", err)
		}
		raw = append(raw, items...)
	}
	if filter.OwnerID != "" {
		items, err := s.querySwapsBy(ctx, swapsOwnerIndex, "owner_id", filter.OwnerID, filter.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to query swaps by owner: %w", err)
		}
		raw = append(raw, items...)
	}
	if filter.RequesterID == "" && filter.OwnerID == "" {
		// Guard records carry no status.
		input := &dynamodb.ScanInput{
			TableName:                aws.String(s.Tables.Swaps),
			FilterExpression:         aws.String("attribute_exists(#status)"),
			ExpressionAttributeNames: map[string]string{"#status": "status"},
		}
		if filter.Status != "" {
			input.FilterExpression = aws.String("#status = :status")
			input.ExpressionAttributeValues = map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: string(filter.Status)},
			}
		}
		items, err := s.scanAll(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan swaps table: %w", err)
		}
		raw = items
	}

	var swaps []models.Swap
	if err := attributevalue.UnmarshalListOfMaps(raw, &swaps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal swaps: %w", err)
	}

	// The requester and owner queries may overlap.
	seen := make(map[string]bool, len(swaps))
	unique := swaps[:0]
	for _, sw := range swaps {
		if seen[sw.ID] {
			continue
		}
		seen[sw.ID] = true
		unique = append(unique, sw)
	}
	sortSwapsNewestFirst(unique)

	return unique, nil
}

// TransitionSwap applies an accept, reject or cancel. Accepting also locks the
// involved items in the same transaction. Leaving pending releases the guard.
func (s *Store) TransitionSwap(ctx context.Context, t storage.SwapTransition) error {
	swapPut, err := putStatusGuarded(s.Tables.Swaps, t.Swap, string(t.From))
	if err != nil {
		return err
	}
	writes := []types.TransactWriteItem{swapPut}
	for _, change := range t.Items {
		put, err := s.itemPut(change)
		if err != nil {
			return err
		}
		writes = append(writes, types.TransactWriteItem{Put: put})
	}
	if t.From == models.SwapPending {
		writes = append(writes, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(s.Tables.Swaps),
				Key:       idKey(swapGuardID(t.Swap.RequestedItemID, t.Swap.RequesterID)),
			},
		})
	}

	if err := s.transact(ctx, writes); err != nil {
		return fmt.Errorf("failed to move swap %s to %s: %w", t.Swap.ID, t.Swap.Status, err)
	}
	return nil
}

// CompleteSwap transfers ownership of every swapped item and increments both
// parties' successful swap counters. No points move.
func (s *Store) CompleteSwap(ctx context.Context, c storage.SwapCompletion) error {
	swapPut, err := putStatusGuarded(s.Tables.Swaps, c.Swap, string(c.From))
	if err != nil {
		return err
	}
	writes := []types.TransactWriteItem{swapPut}
	for _, change := range c.Items {
		put, err := s.itemPut(change)
		if err != nil {
			return err
		}
		writes = append(writes, types.TransactWriteItem{Put: put})
	}
	for _, userID := range c.PartyIDs {
		writes = append(writes, types.TransactWriteItem{
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Users),
				Key:                 idKey(userID),
				UpdateExpression:    aws.String("ADD successful_swaps :one"),
				ConditionExpression: aws.String("attribute_exists(id)"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":one": numberAV(1),
				},
			},
		})
	}

	if err := s.transact(ctx, writes); err != nil {
		return fmt.Errorf("failed to complete swap %s: %w", c.Swap.ID, err)
	}
	return nil
}
