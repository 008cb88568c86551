package moderation

import (
	"errors"
	"fmt"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/google/uuid"
)

// MaxBatch bounds the ids accepted by one bulk call.
const MaxBatch = 100

// Outcome is one id that was processed.
type Outcome struct {
	ID            string `json:"id"`
	UploaderID    string `json:"uploader_id,omitempty"`
	Points        int64  `json:"points,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// Skipped is an id whose target was no longer pending.
type Skipped struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Failure is an id whose settlement failed for any other reason.
type Failure struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Summary counts every bucket of a bulk result.
type Summary struct {
	Requested        int `json:"requested"`
	Succeeded        int `json:"succeeded"`
	NotFound         int `json:"not_found"`
	AlreadyProcessed int `json:"already_processed"`
	InvalidIDs       int `json:"invalid_ids"`
	Failed           int `json:"failed"`
}

// BulkResult reports the independent outcome of every id in a bulk call.
// Succeeded holds the approved, rejected or resolved ids.
type BulkResult struct {
	Succeeded        []Outcome `json:"succeeded"`
	NotFound         []string  `json:"not_found"`
	AlreadyProcessed []Skipped `json:"already_processed"`
	InvalidIDs       []string  `json:"invalid_ids"`
	Failed           []Failure `json:"failed"`
	Summary          Summary   `json:"summary"`
}

func newBulkResult(requested int) *BulkResult {
	return &BulkResult{
		Succeeded:        []Outcome{},
		NotFound:         []string{},
		AlreadyProcessed: []Skipped{},
		InvalidIDs:       []string{},
		Failed:           []Failure{},
		Summary:          Summary{Requested: requested},
	}
}

func (r *BulkResult) succeed(o Outcome) {
	r.Succeeded = append(r.Succeeded, o)
	r.Summary.Succeeded++
}

func (r *BulkResult) invalid(id string) {
	r.InvalidIDs = append(r.InvalidIDs, id)
	r.Summary.InvalidIDs++
}

// record files a failed id into its bucket.
func (r *BulkResult) record(id string, err error) {
	var stateErr *models.StateError
	switch {
	case errors.Is(err, models.ErrNotFound):
		r.NotFound = append(r.NotFound, id)
		r.Summary.NotFound++
	case errors.As(err, &stateErr):
		r.AlreadyProcessed = append(r.AlreadyProcessed, Skipped{ID: id, Status: stateErr.Current})
		r.Summary.AlreadyProcessed++
	default:
		r.Failed = append(r.Failed, Failure{ID: id, Kind: models.ErrorKind(err), Message: err.Error()})
		r.Summary.Failed++
	}
}

func checkBatch(field string, ids []string) error {
	switch {
	case len(ids) == 0:
		return models.NewValidationError(field, "at least one id is required")
	case len(ids) > MaxBatch:
		return models.NewValidationError(field, fmt.Sprintf("must contain at most %d ids", MaxBatch))
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
