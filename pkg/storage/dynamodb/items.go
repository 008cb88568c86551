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

// CreateItem stores a new listing.
func (s *Store) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	itemAV, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Items),
		Item:                itemAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionFailure(err) {
			return nil, fmt.Errorf("item with ID %s: %w", item.ID, storage.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create item in DynamoDB: %w", err)
	}

	return item, nil
}

// GetItem retrieves an item from DynamoDB by ID.
func (s *Store) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	var item models.Item
	if err := s.getDocument(ctx, s.Tables.Items, "item", itemID, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems queries the status or uploader index, falling back to a scan when
// no key attribute is given.
func (s *Store) ListItems(ctx context.Context, filter storage.ItemFilter) ([]models.Item, error) {
	var (
		raw []map[string]types.AttributeValue
		err error
	)

	switch {
	case filter.UploaderID != "":
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.Tables.Items),
			IndexName:              aws.String(itemsUploaderIndex),
			KeyConditionExpression: aws.String("uploader_id = :uploader"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uploader": &types.AttributeValueMemberS{Value: filter.UploaderID},
			},
			ScanIndexForward: aws.Bool(false),
		}
		if filter.Status != "" {
			input.FilterExpression = aws.String("#status = :status")
			input.ExpressionAttributeNames = map[string]string{"#status": "status"}
			input.ExpressionAttributeValues[":status"] = &types.AttributeValueMemberS{Value: string(filter.Status)}
		}
		raw, err = s.queryAll(ctx, input, filter.Limit)
	case filter.Status != "":
		raw, err = s.queryAll(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.Tables.Items),
			IndexName:              aws.String(itemsStatusIndex),
			KeyConditionExpression: aws.String("#status = :status"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: string(filter.Status)},
			},
			ScanIndexForward: aws.Bool(false), // Newest first
		}, filter.Limit)
	default:
		raw, err = s.scanAll(ctx, &dynamodb.ScanInput{TableName: aws.String(s.Tables.Items)})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	var items []models.Item
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}
	sortItemsNewestFirst(items)
	if filter.Limit > 0 && int32(len(items)) > filter.Limit {
		items = items[:filter.Limit]
	}

	return items, nil
}

// UpdateItem replaces an item while its status and version are unchanged.
func (s *Store) UpdateItem(ctx context.Context, change storage.ItemChange) error {
	put, err := s.itemPut(change)
	if err != nil {
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 put.TableName,
		Item:                      put.Item,
		ConditionExpression:       put.ConditionExpression,
		ExpressionAttributeNames:  put.ExpressionAttributeNames,
		ExpressionAttributeValues: put.ExpressionAttributeValues,
	})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("item %s changed concurrently: %w", change.Item.ID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to update item in DynamoDB: %w", err)
	}

	return nil
}
