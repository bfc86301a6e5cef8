// Package store persists the catalog, its associations, users and the audit
// trail in PostgreSQL through gorm.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"autoparts/internal/models"
	"autoparts/internal/services/catalog"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithinTx runs fn against a Store bound to a single database transaction.
// Returning an error from fn rolls everything back.
func (s *Store) WithinTx(ctx context.Context, fn func(tx catalog.Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func paginate(page models.Page) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if page.Size <= 0 {
			return q
		}
		return q.Offset(page.Offset()).Limit(page.Size)
	}
}

// notFound maps gorm's missing-row error onto the domain error for resource.
func notFound(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NotFound(resource, id)
	}
	return err
}
