// Package store is the typed repository over the GORM collections.
package store

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when the requested document does not exist.
var ErrNotFound = errors.New("store: not found")

// Store wraps the database handle shared by all collections.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
