package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
)

//go:generate mockery --name DynamoDBAPI --output ./mocks --outpkg mocks

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Tables holds the DynamoDB table names, one per document collection.
type Tables struct {
	Users       string
	Items       string
	Ledger      string
	Redemptions string
	Swaps       string
	Reports     string
}

// Global secondary indexes the store queries.
const (
	itemsStatusIndex        = "status-created_at-index"
	itemsUploaderIndex      = "uploader_id-created_at-index"
	ledgerUserIndex         = "user_id-created_at-index"
	ledgerGSI               = "gsi1pk-created_at-index"
	redemptionsUserIndex    = "user_id-created_at-index"
	swapsRequesterIndex     = "requester_id-created_at-index"
	swapsOwnerIndex         = "owner_id-created_at-index"
	reportsStatusIndex      = "status-created_at-index"
	ledgerPartitionKey      = "LEDGER_ENTRIES"
	reportGuardPrefix       = "REPORT#"
	swapGuardPrefix         = "SWAP#"
	conditionalCheckFailed  = "ConditionalCheckFailed"
	transactionConflictCode = "TransactionConflict"
)

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client DynamoDBAPI
	Tables Tables
}

// New creates a new Store.
func New(client DynamoDBAPI, tables Tables) *Store {
	return &Store{
		Client: client,
		Tables: tables,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)
