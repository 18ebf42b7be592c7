// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/cardledger/backend/internal/application/adapter"
)

// txContextKey is the context key under which an open gorm transaction travels.
type txContextKey struct{}

// txManager implements adapter.TxManager on top of gorm transactions.
type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a new transaction manager instance.
func NewTxManager(db *gorm.DB) adapter.TxManager {
	return &txManager{
		db: db,
	}
}

// Do runs fn inside a single database transaction. The transaction
// handle is carried in the context so every repository call made inside
// fn joins the same transaction. Nested calls reuse the outer handle.
func (m *txManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// dbFromContext returns the transaction bound to the context, or the
// fallback connection when the call is not transactional.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}
