package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/events"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/settlement"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
)

// Store is the storage the ledger needs.
type Store interface {
	storage.UserStore
	storage.LedgerReader
	PostEntry(ctx context.Context, s storage.PostSettlement) error
}

// Service exposes balances, history and standalone ledger posts.
type Service struct {
	store  Store
	runner *settlement.Runner
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a ledger Service.
func NewService(store Store, runner *settlement.Runner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		runner: runner,
		logger: logger.With("service", "ledger"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// PostInput is a manual ledger adjustment.
type PostInput struct {
	UserID        string
	Amount        int64
	Type          models.TransactionType
	Description   string
	RelatedItemID string
	RelatedSwapID string
}

// Post applies an admin adjustment or bonus to a user's balance. A debit that
// would take the balance below zero fails with InsufficientFunds.
func (s *Service) Post(ctx context.Context, caller identity.Identity, in PostInput) (*models.PointTransaction, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if in.UserID == "" {
		return nil, models.NewValidationError("userId", "is required")
	}
	if in.Type != models.TransactionAdmin && in.Type != models.TransactionBonus {
		return nil, models.NewValidationError("type", "must be admin or bonus")
	}
	if in.Description == "" {
		in.Description = fmt.Sprintf("Manual %s adjustment", in.Type)
	}

	var entry models.PointTransaction
	err := s.runner.Run(ctx, "ledger.post", func() error {
		user, err := s.store.GetUser(ctx, in.UserID)
		if err != nil {
			return err
		}
		entry, err = NewEntry(*user, in.Amount, in.Type, in.Description, Refs{
			ItemID:  in.RelatedItemID,
			SwapID:  in.RelatedSwapID,
			AdminID: caller.UserID,
		}, s.now())
		if err != nil {
			return err
		}
		return s.store.PostEntry(ctx, storage.PostSettlement{Change: Change(*user, entry)})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ledger entry posted",
		"entry_id", entry.ID,
		"user_id", entry.UserID,
		"amount", entry.Amount,
		"admin_id", caller.UserID,
	)
	ev := events.New(events.LedgerPosted)
	ev.UserIDs = []string{entry.UserID}
	s.runner.Announce(ctx, ev)

	return &entry, nil
}

// History returns a user's entries newest first. A limit of zero returns all.
func (s *Service) History(ctx context.Context, caller identity.Identity, userID string, limit int) ([]models.PointTransaction, error) {
	if err := caller.RequireSelfOrAdmin(userID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListUserTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	newestFirst(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Recent returns the newest entries across every user. A limit of zero
// returns the whole ledger.
func (s *Service) Recent(ctx context.Context, caller identity.Identity, limit int32) ([]models.PointTransaction, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, models.NewValidationError("limit", "must not be negative")
	}
	return s.store.ListLedgerEntries(ctx, limit)
}

// Summary aggregates a user's points activity.
type Summary struct {
	UserID      string                    `json:"user_id"`
	Balance     int64                     `json:"balance"`
	TotalEarned int64                     `json:"total_earned"`
	TotalSpent  int64                     `json:"total_spent"`
	Entries     int                       `json:"entries"`
	Recent      []models.PointTransaction `json:"recent"`
}

const recentEntries = 10

// Summary returns the balance, lifetime totals and the most recent entries.
func (s *Service) Summary(ctx context.Context, caller identity.Identity, userID string) (*Summary, error) {
	if err := caller.RequireSelfOrAdmin(userID); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListUserTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{UserID: userID, Balance: user.Points, Entries: len(entries)}
	for _, e := range entries {
		if e.Amount > 0 {
			summary.TotalEarned += e.Amount
		} else {
			summary.TotalSpent -= e.Amount
		}
	}
	newestFirst(entries)
	if len(entries) > recentEntries {
		entries = entries[:recentEntries]
	}
	summary.Recent = entries

	return summary, nil
}

// Audit replays the ledger of each given user. Unknown users are skipped.
func (s *Service) Audit(ctx context.Context, userIDs ...string) ([]AuditResult, error) {
	results := make([]AuditResult, 0, len(userIDs))
	for _, id := range userIDs {
		user, err := s.store.GetUser(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.WarnContext(ctx, "skipping audit of unknown user", "user_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		result, err := s.audit(ctx, *user)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// AuditAll replays the ledger of every user.
func (s *Service) AuditAll(ctx context.Context) ([]AuditResult, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]AuditResult, 0, len(users))
	for _, user := range users {
		result, err := s.audit(ctx, user)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Service) audit(ctx context.Context, user models.User) (AuditResult, error) {
	entries, err := s.store.ListUserTransactions(ctx, user.ID)
	if err != nil {
		return AuditResult{}, err
	}
	result := Replay(user, entries)
	if !result.Consistent() {
		s.logger.ErrorContext(ctx, "ledger does not reconcile",
			"user_id", user.ID,
			"points", result.Points,
			"replayed", result.Replayed,
			"broken_chain_at", result.BrokenChainAt,
		)
	}
	return result, nil
}

func newestFirst(entries []models.PointTransaction) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
}
