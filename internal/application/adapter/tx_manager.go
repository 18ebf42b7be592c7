// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "context"

// TxManager runs a function inside a single store transaction. The
// transaction handle travels in the context; repositories participate
// automatically when called with it. The function returning an error
// rolls the whole unit back.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
