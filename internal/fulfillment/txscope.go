package fulfillment

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// TransactionScope bounds the inventory-reservation and order-persistence
// steps of a placement. The gorm-backed scope wraps them in one database
// transaction; the no-op scope runs them bare and relies entirely on the
// coordinator's compensation calls. Both must yield the same observable
// behavior on failure, which is why compensation runs in either mode.
type TransactionScope interface {
	Run(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormScope struct {
	runner txRunner
}

// NewGormScope returns a scope that runs fn inside a real transaction.
func NewGormScope(runner txRunner) (TransactionScope, error) {
	if runner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &gormScope{runner: runner}, nil
}

func (s *gormScope) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.runner.WithTx(ctx, fn)
}

// NoopScope runs fn without a surrounding transaction. Services treat the nil
// handle as "use your base connection", so every write commits immediately.
type NoopScope struct{}

func (NoopScope) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
