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

// ApproveItem makes a pending item available and credits the uploader's reward
// in one transaction.
func (s *Store) ApproveItem(ctx context.Context, a storage.ApprovalSettlement) error {
	itemPut, err := s.itemPut(a.Item)
	if err != nil {
		return err
	}
	rewardWrites, err := s.balanceWrites(a.Reward)
	if err != nil {
		return err
	}

	writes := append([]types.TransactWriteItem{{Put: itemPut}}, rewardWrites...)
	if err := s.transact(ctx, writes); err != nil {
		return fmt.Errorf("failed to approve item %s: %w", a.Item.Item.ID, err)
	}
	return nil
}

// RejectItem moves a pending item to rejected.
func (s *Store) RejectItem(ctx context.Context, r storage.RejectionSettlement) error {
	if err := s.UpdateItem(ctx, r.Item); err != nil {
		return fmt.Errorf("failed to reject item %s: %w", r.Item.Item.ID, err)
	}
	return nil
}

type reportGuard struct {
	ID       string `dynamodbav:"id"`
	ReportID string `dynamodbav:"report_id"`
}

func reportGuardID(itemID, reporterID string) string {
	return reportGuardPrefix + itemID + "#" + reporterID
}

// CreateReport writes the report together with a guard record keyed by
// item and reporter, so a reporter can report an item only once.
func (s *Store) CreateReport(ctx context.Context, report *models.Report) error {
	reportPut, err := putNew(s.Tables.Reports, report)
	if err != nil {
		return err
	}
	guardPut, err := putNew(s.Tables.Reports, reportGuard{
		ID:       reportGuardID(report.ItemID, report.ReporterID),
		ReportID: report.ID,
	})
	if err != nil {
		return err
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{reportPut, guardPut},
	})
	if err != nil {
		if cancelledAt(err, 1) {
			return fmt.Errorf("report for item %s by %s: %w", report.ItemID, report.ReporterID, storage.ErrAlreadyExists)
		}
		if isConditionFailure(err) {
			return fmt.Errorf("%w: %w", storage.ErrConflict, err)
		}
		return fmt.Errorf("failed to create report in DynamoDB: %w", err)
	}
	return nil
}

// GetReport retrieves a report by ID.
func (s *Store) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	if strings.HasPrefix(reportID, reportGuardPrefix) {
		return nil, fmt.Errorf("report with ID %s not found: %w", reportID, storage.ErrNotFound)
	}
	var report models.Report
	if err := s.getDocument(ctx, s.Tables.Reports, "report", reportID, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports returns reports newest first. Guard records carry no status and
// are never indexed or returned.
func (s *Store) ListReports(ctx context.Context, status models.ReportStatus) ([]models.Report, error) {
	var (
		raw []map[string]types.AttributeValue
		err error
	)
	if status != "" {
		raw, err = s.queryAll(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.Tables.Reports),
			IndexName:              aws.String(reportsStatusIndex),
			KeyConditionExpression: aws.String("#status = :status"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: string(status)},
			},
			ScanIndexForward: aws.Bool(false),
		}, 0)
	} else {
		raw, err = s.scanAll(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(s.Tables.Reports),
			FilterExpression: aws.String("attribute_exists(#status)"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}

	var reports []models.Report
	if err := attributevalue.UnmarshalListOfMaps(raw, &reports); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reports: %w", err)
	}
	sortReportsNewestFirst(reports)

	return reports, nil
}

// ResolveReport closes a pending report and, for removals, the reported item.
func (s *Store) ResolveReport(ctx context.Context, r storage.ReportResolution) error {
	reportPut, err := putStatusGuarded(s.Tables.Reports, r.Report, string(models.ReportPending))
	if err != nil {
		return err
	}
	writes := []types.TransactWriteItem{reportPut}
	if r.Item != nil {
		itemPut, err := s.itemPut(*r.Item)
		if err != nil {
			return err
		}
		writes = append(writes, types.TransactWriteItem{Put: itemPut})
	}

	if err := s.transact(ctx, writes); err != nil {
		return fmt.Errorf("failed to resolve report %s: %w", r.Report.ID, err)
	}
	return nil
}
