// Command reconciliation_lambda is triggered on a schedule and replays the
// ledger of every user, reporting any drift between balances and entries.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/clothing-swap-settlement/pkg/bootstrap"
	"github.com/chris/clothing-swap-settlement/pkg/config"
	"github.com/chris/clothing-swap-settlement/pkg/ledger"
)

// Auditor replays every user's ledger.
type Auditor interface {
	AuditAll(ctx context.Context) ([]ledger.AuditResult, error)
}

// Summary is the lambda's result.
type Summary struct {
	Users        int      `json:"users"`
	Inconsistent int      `json:"inconsistent"`
	UserIDs      []string `json:"inconsistent_user_ids,omitempty"`
}

type handler struct {
	auditor Auditor
	logger  *slog.Logger
}

// Handle runs a full ledger audit.
func (h *handler) Handle(ctx context.Context) (Summary, error) {
	start := time.Now()
	h.logger.InfoContext(ctx, "starting ledger reconciliation")

	results, err := h.auditor.AuditAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "ledger reconciliation failed", "error", err)
		return Summary{}, err
	}

	summary := Summary{Users: len(results)}
	for _, r := range results {
		if r.Consistent() {
			continue
		}
		summary.Inconsistent++
		summary.UserIDs = append(summary.UserIDs, r.UserID)
		h.logger.ErrorContext(ctx, "ledger inconsistency",
			"user_id", r.UserID,
			"points", r.Points,
			"replayed", r.Replayed,
			"drift", r.Drift,
			"broken_chain_at", r.BrokenChainAt,
		)
	}

	h.logger.InfoContext(ctx, "ledger reconciliation finished",
		"users", summary.Users,
		"inconsistent", summary.Inconsistent,
		"elapsed", time.Since(start),
	)
	return summary, nil
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
