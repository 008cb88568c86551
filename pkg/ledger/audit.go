package ledger

import "github.com/chris/clothing-swap-settlement/pkg/models"

// AuditResult is the outcome of replaying one user's ledger.
type AuditResult struct {
	UserID string `json:"user_id"`
	// Points is the stored balance.
	Points int64 `json:"points"`
	// Replayed is the balance obtained by summing every entry from zero.
	Replayed int64 `json:"replayed"`
	Entries  int   `json:"entries"`
	// Drift is Points minus Replayed.
	Drift int64 `json:"drift"`
	// BrokenChainAt is the index of the first entry whose balance_after does not
	// follow from its predecessor.
	BrokenChainAt *int `json:"broken_chain_at,omitempty"`
}

// Consistent reports whether the stored balance and the entry chain agree.
func (r AuditResult) Consistent() bool {
	return r.Drift == 0 && r.BrokenChainAt == nil
}

// Replay checks entries, given in creation order, against the user's balance.
func Replay(user models.User, entries []models.PointTransaction) AuditResult {
	result := AuditResult{UserID: user.ID, Points: user.Points, Entries: len(entries)}

	var balance int64
	for i, e := range entries {
		balance += e.Amount
		if e.BalanceAfter != balance && result.BrokenChainAt == nil {
			at := i
			result.BrokenChainAt = &at
		}
	}
	result.Replayed = balance
	result.Drift = user.Points - balance

	return result
}
