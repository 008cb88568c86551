// Package bootstrap builds the shared dependencies of the server and the
// lambdas from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/clothing-swap-settlement/pkg/config"
	"github.com/chris/clothing-swap-settlement/pkg/events"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	dydbstore "github.com/chris/clothing-swap-settlement/pkg/storage/dynamodb"
	"github.com/chris/clothing-swap-settlement/pkg/storage/sqlstore"
)

// Deps are the configured storage and event publisher. Close releases them.
type Deps struct {
	Store     storage.Storage
	Publisher events.Publisher
	Close     func() error
}

// New opens the store selected by cfg.Storage.Driver and the event publisher.
// The AWS configuration is only loaded when DynamoDB or SQS is in use.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Deps, error) {
	deps := &Deps{Publisher: events.NoOpPublisher{}, Close: func() error { return nil }}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	switch cfg.Storage.Driver {
	case config.DriverDynamoDB:
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		client := dynamodb.NewFromConfig(c, func(o *dynamodb.Options) {
			if cfg.Storage.AWSEndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.Storage.AWSEndpointURL)
			}
		})
		deps.Store = dydbstore.New(client, dydbstore.Tables{
			Users:       cfg.Storage.UsersTable,
			Items:       cfg.Storage.ItemsTable,
			Ledger:      cfg.Storage.LedgerTable,
			Redemptions: cfg.Storage.RedemptionsTable,
			Swaps:       cfg.Storage.SwapsTable,
			Reports:     cfg.Storage.ReportsTable,
		})
	case config.DriverSQLite:
		store, err := sqlstore.Open(cfg.Storage.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		deps.Store = store
		deps.Close = store.Close
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	logger.Info("storage ready", "driver", cfg.Storage.Driver)

	if cfg.Events.QueueURL != "" {
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		client := sqs.NewFromConfig(c, func(o *sqs.Options) {
			if cfg.Storage.AWSEndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.Storage.AWSEndpointURL)
			}
		})
		deps.Publisher = events.NewSQSPublisher(client, cfg.Events.QueueURL)
		logger.Info("publishing settlement events", "queue_url", cfg.Events.QueueURL)
	}

	return deps, nil
}
