package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
)

func numberAV(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

// putNew creates a document that must not exist yet.
func putNew(table string, doc any) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to marshal document for %s: %w", table, err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(table),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		},
	}, nil
}

// putStatusGuarded replaces a document only while its stored status is still from.
func putStatusGuarded(table string, doc any, from string) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to marshal document for %s: %w", table, err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(table),
			Item:                av,
			ConditionExpression: aws.String("#status = :from"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":from": &types.AttributeValueMemberS{Value: from},
			},
		},
	}, nil
}

// itemPut replaces an item guarded by its expected status and version.
func (s *Store) itemPut(change storage.ItemChange) (*types.Put, error) {
	item := change.Item
	expected := item.Version
	item.Version = expected + 1

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item %s: %w", item.ID, err)
	}
	return &types.Put{
		TableName:           aws.String(s.Tables.Items),
		Item:                av,
		ConditionExpression: aws.String("#status = :from AND version = :version"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":from":    &types.AttributeValueMemberS{Value: string(change.From)},
			":version": numberAV(expected),
		},
	}, nil
}

// balanceWrites builds the user update and the ledger put for one entry.
// The update is guarded by the snapshot version; a debit is also guarded
// against driving the balance below zero.
func (s *Store) balanceWrites(change storage.BalanceChange) ([]types.TransactWriteItem, error) {
	entry := change.Entry
	if entry.BalanceAfter != change.User.Points+entry.Amount {
		return nil, fmt.Errorf("ledger entry %s balance %d does not follow from %d%+d", entry.ID, entry.BalanceAfter, change.User.Points, entry.Amount)
	}
	entry.GSI1PK = ledgerPartitionKey

	condition := "version = :version"
	values := map[string]types.AttributeValue{
		":amount":  numberAV(entry.Amount),
		":version": numberAV(change.User.Version),
		":inc":     numberAV(1),
	}
	if entry.Amount < 0 {
		condition += " AND points >= :debit"
		values[":debit"] = numberAV(-entry.Amount)
	}

	entryAV, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger entry: %w", err)
	}

	return []types.TransactWriteItem{
		{
			Update: &types.Update{
				TableName:                 aws.String(s.Tables.Users),
				Key:                       idKey(change.User.ID),
				UpdateExpression:          aws.String("SET points = points + :amount, version = version + :inc"),
				ConditionExpression:       aws.String(condition),
				ExpressionAttributeValues: values,
			},
		},
		{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Ledger),
				Item:                entryAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		},
	}, nil
}

// transact executes a settlement. Any failed condition cancels the whole
// transaction and is reported as storage.ErrConflict.
func (s *Store) transact(ctx context.Context, items []types.TransactWriteItem) error {
	_, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("%w: %w", storage.ErrConflict, err)
		}
		return fmt.Errorf("failed to execute settlement transaction: %w", err)
	}
	return nil
}

func isConditionFailure(err error) bool {
	var condCheckFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condCheckFailed) {
		return true
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			code := aws.ToString(reason.Code)
			if code == conditionalCheckFailed || code == transactionConflictCode {
				return true
			}
		}
	}
	var tc *types.TransactionConflictException
	return errors.As(err, &tc)
}

// cancelledAt reports whether the transaction was cancelled by a failed
// condition on the item at index i.
func cancelledAt(err error, i int) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) || i >= len(tce.CancellationReasons) {
		return false
	}
	return aws.ToString(tce.CancellationReasons[i].Code) == conditionalCheckFailed
}

// getDocument loads a document by id into out. It returns storage.ErrNotFound
// when the id does not exist.
func (s *Store) getDocument(ctx context.Context, table, kind, id string, out any) error {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to get %s from DynamoDB: %w", kind, err)
	}
	if result.Item == nil {
		return fmt.Errorf("%s with ID %s not found: %w", kind, id, storage.ErrNotFound)
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", kind, err)
	}
	return nil
}

// queryAll runs a query and follows pagination until the result set is
// exhausted or limit items were collected. A zero limit collects everything.
func (s *Store) queryAll(ctx context.Context, input *dynamodb.QueryInput, limit int32) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if limit > 0 && int32(len(items)) >= limit {
			return items[:limit], nil
		}
		if len(result.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// scanAll runs a scan and follows pagination.
func (s *Store) scanAll(ctx context.Context, input *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		result, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

func sortItemsNewestFirst(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
}

func sortReportsNewestFirst(reports []models.Report) {
	sort.SliceStable(reports, func(i, j int) bool { return reports[i].CreatedAt.After(reports[j].CreatedAt) })
}

func sortSwapsNewestFirst(swaps []models.Swap) {
	sort.SliceStable(swaps, func(i, j int) bool { return swaps[i].CreatedAt.After(swaps[j].CreatedAt) })
}
