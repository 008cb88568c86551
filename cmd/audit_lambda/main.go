// Command audit_lambda consumes settlement events from SQS and replays the
// ledger of every user each event touched.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/clothing-swap-settlement/pkg/bootstrap"
	"github.com/chris/clothing-swap-settlement/pkg/config"
	"github.com/chris/clothing-swap-settlement/pkg/events"
	"github.com/chris/clothing-swap-settlement/pkg/ledger"
)

// Auditor replays user ledgers.
type Auditor interface {
	Audit(ctx context.Context, userIDs ...string) ([]ledger.AuditResult, error)
}

type handler struct {
	auditor Auditor
	logger  *slog.Logger
}

// Handle audits the users of each record. Records that cannot be decoded or
// audited are reported back so SQS redelivers only those.
func (h *handler) Handle(ctx context.Context, sqsEvent lambdaevents.SQSEvent) (lambdaevents.SQSEventResponse, error) {
	var resp lambdaevents.SQSEventResponse
	for _, message := range sqsEvent.Records {
		if err := h.process(ctx, message); err != nil {
			h.logger.ErrorContext(ctx, "failed to process message", "message_id", message.MessageId, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, lambdaevents.SQSBatchItemFailure{
				ItemIdentifier: message.MessageId,
			})
		}
	}
	return resp, nil
}

func (h *handler) process(ctx context.Context, message lambdaevents.SQSMessage) error {
	var event events.Event
	if err := json.Unmarshal([]byte(message.Body), &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if len(event.UserIDs) == 0 {
		h.logger.DebugContext(ctx, "event touches no users", "event_id", event.ID, "type", event.Type)
		return nil
	}

	results, err := h.auditor.Audit(ctx, event.UserIDs...)
	if err != nil {
		return fmt.Errorf("audit event %s: %w", event.ID, err)
	}
	for _, r := range results {
		if r.Consistent() {
			continue
		}
		h.logger.ErrorContext(ctx, "ledger inconsistency",
			"event_id", event.ID,
			"type", event.Type,
			"user_id", r.UserID,
			"points", r.Points,
			"replayed", r.Replayed,
			"drift", r.Drift,
			"broken_chain_at", r.BrokenChainAt,
		)
	}
	h.logger.InfoContext(ctx, "audited settlement", "event_id", event.ID, "type", event.Type, "users", len(results))
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Log)

	deps, err := bootstrap.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}

	h := &handler{auditor: ledger.NewService(deps.Store, nil, logger), logger: logger}
	lambda.Start(h.Handle)
}
