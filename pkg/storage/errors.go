package storage

import (
	"errors"
	"fmt"

	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// ErrNotFound is returned when a document does not exist. It matches
// models.ErrNotFound so callers can surface it unchanged.
var ErrNotFound = fmt.Errorf("document %w", models.ErrNotFound)

// ErrAlreadyExists is returned when a guarded create finds an existing document.
var ErrAlreadyExists = errors.New("document already exists")

// ErrConflict is returned when a conditional write loses against a concurrent change.
// The whole settlement is rolled back; re-reading and retrying is safe.
var ErrConflict = errors.New("conditional write conflict")
