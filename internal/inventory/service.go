package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/swiftbasket/swiftbasket-backend/pkg/errors"
)

// Service is the inventory ledger: reserve decrements sellable stock directly,
// restore compensates when a later placement step fails.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Reserve(ctx context.Context, productID uuid.UUID, qty int) error
	Restore(ctx context.Context, productID uuid.UUID, qty int) error
	StockOf(ctx context.Context, productID uuid.UUID) (int, error)
}

type service struct {
	repo Repository
}

// NewService wires the inventory ledger with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reserve qty must be at least 1")
	}

	updated, err := s.repo.DecrementStock(ctx, productID, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	if updated {
		return nil
	}

	// The guard failed: distinguish a missing record from short stock.
	item, err := s.repo.Find(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory record")
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
		WithDetails(map[string]any{
			"reason":     "insufficient_stock",
			"product_id": productID,
			"available":  item.CurrentStock,
			"requested":  qty,
		})
}

func (s *service) Restore(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restore qty must be at least 1")
	}

	updated, err := s.repo.IncrementStock(ctx, productID, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment stock")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found").
			WithDetails(map[string]any{"product_id": productID})
	}
	return nil
}

func (s *service) StockOf(ctx context.Context, productID uuid.UUID) (int, error) {
	item, err := s.repo.Find(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory record")
	}
	return item.CurrentStock, nil
}
