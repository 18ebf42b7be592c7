// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"
)

// CacheInvalidator publishes post-commit invalidation events so the
// host system's caching layer drops stale entries. Invalidation is a
// side-effect contract: every mutating billing operation invalidates the
// user's card data, and payments that wrote a ledger entry additionally
// invalidate transaction data.
type CacheInvalidator interface {
	// InvalidateCardData signals that card, invoice or purchase data
	// changed for the user.
	InvalidateCardData(ctx context.Context, userID uuid.UUID) error

	// InvalidateTransactionData signals that ledger data changed for the user.
	InvalidateTransactionData(ctx context.Context, userID uuid.UUID) error
}
