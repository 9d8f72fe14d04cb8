package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swiftbasket/swiftbasket-backend/pkg/db"
	"github.com/swiftbasket/swiftbasket-backend/pkg/db/models"
	"github.com/swiftbasket/swiftbasket-backend/pkg/enums"
	pkgerrors "github.com/swiftbasket/swiftbasket-backend/pkg/errors"
	"github.com/swiftbasket/swiftbasket-backend/pkg/types"
)

const orderNumberAttempts = 5

// DraftInput carries everything a new draft order snapshots at creation.
type DraftInput struct {
	CustomerID    uuid.UUID
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Address       types.DeliveryAddress
	PaymentMethod enums.PaymentMethod
	PlatformFee   decimal.Decimal
	DeliveryFee   decimal.Decimal
}

// Service is the order store: the durable source of truth for order state.
type Service interface {
	WithTx(tx *gorm.DB) Service
	CreateDraft(ctx context.Context, input DraftInput) (*models.Order, error)
	DiscardDraft(ctx context.Context, orderID uuid.UUID) error
	AttachItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error
	FinalizeTotals(ctx context.Context, orderID uuid.UUID, subtotal, grandTotal decimal.Decimal) error
	MarkPaymentProcessing(ctx context.Context, orderID uuid.UUID) error
	MarkPaymentCompleted(ctx context.Context, orderID uuid.UUID, reference string, paidAt time.Time) error
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error
	Cancel(ctx context.Context, orderID uuid.UUID, reason string) error
	AssignCourier(ctx context.Context, orderID, courierID uuid.UUID, at time.Time) error
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo Repository
}

// NewService wires the order store with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) CreateDraft(ctx context.Context, input DraftInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}

	var lastErr error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number := newOrderNumber()

		taken, err := s.repo.ExistsOrderNumber(ctx, number)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order number")
		}
		if taken {
			continue
		}

		order := &models.Order{
			ID:            uuid.New(),
			OrderNumber:   number,
			CustomerID:    input.CustomerID,
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			CustomerEmail: input.CustomerEmail,
			Address:       input.Address,
			Subtotal:      decimal.Zero,
			ShippingFee:   input.DeliveryFee,
			PlatformFee:   input.PlatformFee,
			Discount:      decimal.Zero,
			GrandTotal:    decimal.Zero,
			PaymentMethod: input.PaymentMethod,
			PaymentStatus: enums.PaymentStatusPending,
			Status:        enums.OrderStatusReceived,
		}
		if err := s.repo.Create(ctx, order); err != nil {
			// Lost a race on the unique index between check and insert.
			if db.IsUniqueViolation(err, "") {
				lastErr = err
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create draft order")
		}
		return order, nil
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "exhausted order number attempts")
}

func (s *service) DiscardDraft(ctx context.Context, orderID uuid.UUID) error {
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discard draft order")
	}
	return nil
}

func (s *service) AttachItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order items required")
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].OrderID = orderID
	}
	if err := s.repo.CreateItems(ctx, items); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach order items")
	}
	return nil
}

func (s *service) FinalizeTotals(ctx context.Context, orderID uuid.UUID, subtotal, grandTotal decimal.Decimal) error {
	if grandTotal.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "grand total must not be negative")
	}
	if err := s.repo.UpdateTotals(ctx, orderID, subtotal, grandTotal); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize order totals")
	}
	return nil
}

func (s *service) MarkPaymentProcessing(ctx context.Context, orderID uuid.UUID) error {
	if err := s.repo.UpdatePaymentStatus(ctx, orderID, enums.PaymentStatusProcessing, nil, nil); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment processing")
	}
	return nil
}

func (s *service) MarkPaymentCompleted(ctx context.Context, orderID uuid.UUID, reference string, paidAt time.Time) error {
	if err := s.repo.UpdatePaymentStatus(ctx, orderID, enums.PaymentStatusCompleted, &reference, &paidAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment completed")
	}
	return nil
}

func (s *service) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	if err := s.repo.UpdatePaymentStatus(ctx, orderID, enums.PaymentStatusFailed, nil, nil); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
	}
	return nil
}

func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, reason string) error {
	if err := s.repo.UpdateOrderStatus(ctx, orderID, enums.OrderStatusCancelled, &reason); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	return nil
}

func (s *service) AssignCourier(ctx context.Context, orderID, courierID uuid.UUID, at time.Time) error {
	if err := s.repo.AssignCourier(ctx, orderID, courierID, at); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign courier")
	}
	return nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
				WithDetails(map[string]any{"order_id": orderID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// newOrderNumber builds the human-readable number: ORD + epoch millis + a
// 3-digit random suffix. Uniqueness is still checked against the store.
func newOrderNumber() string {
	return fmt.Sprintf("ORD%d%03d", time.Now().UnixMilli(), rand.Intn(1000))
}
