// Package sqlstore implements the storage interfaces on a relational database
// through gorm. It backs local development and the settlement engine tests.
package sqlstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store implements storage.Storage on gorm.
type Store struct {
	db *gorm.DB
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// Open connects to a SQLite database and migrates the schema.
// SQLite allows a single writer, so the pool is limited to one connection and
// settlements are serialised by the pool.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return New(db)
}

// New wraps an existing gorm handle and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.PointTransaction{},
		&models.Redemption{},
		&models.Swap{},
		&models.Report{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// first loads a row by primary key. It returns storage.ErrNotFound when the
// row does not exist.
func first(db *gorm.DB, kind, id string, out any) error {
	err := db.Where("id = ?", id).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s with ID %s not found: %w", kind, id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return nil
}
