// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/cardledger/backend/internal/domain/entity"
)

// CreditCardRepository defines the interface for credit card persistence operations.
type CreditCardRepository interface {
	// Create creates a new credit card in the database.
	Create(ctx context.Context, card *entity.CreditCard) error

	// FindByID retrieves a card by ID regardless of owner. Callers that
	// act on behalf of a user must check ownership themselves.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CreditCard, error)

	// FindByIDAndUser retrieves a card by ID, scoped to its owner.
	// Returns domain ErrCardNotFound when absent or owned by someone else.
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*entity.CreditCard, error)

	// FindByUser retrieves all cards for a given user.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.CreditCard, error)

	// Update updates an existing card in the database.
	Update(ctx context.Context, card *entity.CreditCard) error

	// Delete soft-deletes a card from the database.
	Delete(ctx context.Context, id uuid.UUID) error
}
