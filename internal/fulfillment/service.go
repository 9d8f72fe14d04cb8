package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/swiftbasket/swiftbasket-backend/internal/catalog"
	"github.com/swiftbasket/swiftbasket-backend/internal/dispatch"
	"github.com/swiftbasket/swiftbasket-backend/internal/inventory"
	"github.com/swiftbasket/swiftbasket-backend/internal/orders"
	"github.com/swiftbasket/swiftbasket-backend/internal/wallet"
	"github.com/swiftbasket/swiftbasket-backend/pkg/config"
	"github.com/swiftbasket/swiftbasket-backend/pkg/db/models"
	"github.com/swiftbasket/swiftbasket-backend/pkg/enums"
	pkgerrors "github.com/swiftbasket/swiftbasket-backend/pkg/errors"
	"github.com/swiftbasket/swiftbasket-backend/pkg/logger"
	"github.com/swiftbasket/swiftbasket-backend/pkg/metrics"
	"github.com/swiftbasket/swiftbasket-backend/pkg/types"
)

// LineItem is one requested product/quantity pair in a placement.
type LineItem struct {
	ProductID uuid.UUID
	Qty       int
}

// PlaceOrderInput is everything the coordinator needs to place an order.
type PlaceOrderInput struct {
	CustomerID    uuid.UUID
	Items         []LineItem
	Address       types.DeliveryAddress
	PaymentMethod enums.PaymentMethod
}

// PlacementResult is the committed order plus the wallet receipt when the
// order was paid from the wallet.
type PlacementResult struct {
	Order   *models.Order
	Payment *wallet.Receipt
}

type customerLoader interface {
	GetCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
}

type courierLister interface {
	ListEligible(ctx context.Context) ([]uuid.UUID, error)
}

type offerPublisher interface {
	Publish(ctx context.Context, offer dispatch.Offer, eligible []uuid.UUID) error
}

// Service coordinates order placement end to end: inventory reservation,
// order persistence, wallet payment, and the dispatch fan-out.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacementResult, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	scope     TransactionScope
	customers customerLoader
	catalog   catalog.Repository
	inventory inventory.Service
	wallet    wallet.Service
	orders    orders.Service
	couriers  courierLister
	publisher offerPublisher
	fees      config.FeesConfig
	logg      *logger.Logger
	metrics   *metrics.FulfillmentMetrics
}

// NewService wires the fulfillment coordinator.
func NewService(
	scope TransactionScope,
	customers customerLoader,
	cat catalog.Repository,
	inv inventory.Service,
	wal wallet.Service,
	ord orders.Service,
	cour courierLister,
	pub offerPublisher,
	fees config.FeesConfig,
	logg *logger.Logger,
	m *metrics.FulfillmentMetrics,
) (Service, error) {
	if scope == nil {
		return nil, fmt.Errorf("transaction scope required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer loader required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if wal == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if ord == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if cour == nil {
		return nil, fmt.Errorf("courier lister required")
	}
	if pub == nil {
		return nil, fmt.Errorf("offer publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		scope:     scope,
		customers: customers,
		catalog:   cat,
		inventory: inv,
		wallet:    wal,
		orders:    ord,
		couriers:  cour,
		publisher: pub,
		fees:      fees,
		logg:      logg,
		metrics:   m,
	}, nil
}

// reservation remembers a successful stock decrement so later failures can
// restore it.
type reservation struct {
	ProductID uuid.UUID
	Name      string
	Qty       int
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacementResult, error) {
	start := time.Now()
	result, err := s.placeOrder(ctx, input)
	s.metrics.ObservePlacement(placementLabel(err), time.Since(start))
	return result, err
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.orders.Get(ctx, orderID)
}

func (s *service) placeOrder(ctx context.Context, input PlaceOrderInput) (*PlacementResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithCustomerID(ctx, customer.ID.String())

	platformFee := s.fees.Platform()
	deliveryFee := s.fees.Delivery()

	var (
		order        *models.Order
		reservations []reservation
		grandTotal   decimal.Decimal
	)

	err = s.scope.Run(ctx, func(tx *gorm.DB) error {
		ordersTx := s.orders.WithTx(tx)
		invTx := s.inventory.WithTx(tx)
		catTx := s.catalog.WithTx(tx)

		draft, err := ordersTx.CreateDraft(ctx, orders.DraftInput{
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			CustomerPhone: customer.Phone,
			CustomerEmail: customer.Email,
			Address:       input.Address,
			PaymentMethod: input.PaymentMethod,
			PlatformFee:   platformFee,
			DeliveryFee:   deliveryFee,
		})
		if err != nil {
			return err
		}
		order = draft

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		reservations = reservations[:0]

		for _, line := range input.Items {
			product, err := catTx.GetProduct(ctx, line.ProductID)
			if err != nil {
				return s.abortDraft(ctx, invTx, ordersTx, draft.ID, reservations, err)
			}
			if err := invTx.Reserve(ctx, line.ProductID, line.Qty); err != nil {
				return s.abortDraft(ctx, invTx, ordersTx, draft.ID, reservations, nameProduct(err, product.Name))
			}
			reservations = append(reservations, reservation{
				ProductID: product.ID,
				Name:      product.Name,
				Qty:       line.Qty,
			})

			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Qty)))
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				SellerID:  product.SellerID,
				Name:      product.Name,
				ImageURL:  product.ImageURL,
				UnitPrice: product.Price,
				Qty:       line.Qty,
				LineTotal: lineTotal,
				Status:    enums.OrderStatusReceived,
			})
			subtotal = subtotal.Add(lineTotal)
		}

		if err := ordersTx.AttachItems(ctx, draft.ID, items); err != nil {
			return s.abortDraft(ctx, invTx, ordersTx, draft.ID, reservations, err)
		}

		grandTotal = subtotal.Add(platformFee).Add(deliveryFee)
		if err := ordersTx.FinalizeTotals(ctx, draft.ID, subtotal, grandTotal); err != nil {
			return s.abortDraft(ctx, invTx, ordersTx, draft.ID, reservations, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	var receipt *wallet.Receipt
	if input.PaymentMethod == enums.PaymentMethodWallet {
		receipt, err = s.chargeWallet(ctx, customer.ID, order, grandTotal, reservations)
		if err != nil {
			return nil, err
		}
	}

	s.publishDispatch(ctx, order, customer.Name, input.Address, len(input.Items), grandTotal)

	final, err := s.orders.Get(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	s.logg.Info(ctx, fmt.Sprintf("order %s placed", final.OrderNumber))
	return &PlacementResult{Order: final, Payment: receipt}, nil
}

// chargeWallet runs the wallet leg after the order transaction committed. Any
// failure here restores every reservation and cancels the order: the customer
// is never charged for an order that did not complete, and stock is never
// held by a cancelled one.
func (s *service) chargeWallet(ctx context.Context, customerID uuid.UUID, order *models.Order, amount decimal.Decimal, reservations []reservation) (*wallet.Receipt, error) {
	check, err := s.wallet.CheckBalance(ctx, customerID, amount)
	if err != nil {
		s.failPayment(ctx, order.ID, "wallet unavailable", reservations)
		return nil, err
	}
	if !check.Sufficient {
		s.failPayment(ctx, order.ID, "insufficient wallet balance", reservations)
		return nil, pkgerrors.New(pkgerrors.CodePayment, "insufficient wallet balance").
			WithDetails(map[string]any{
				"reason":    "insufficient_balance",
				"available": check.Balance,
				"required":  amount,
			})
	}

	if err := s.orders.MarkPaymentProcessing(ctx, order.ID); err != nil {
		s.failPayment(ctx, order.ID, "payment bookkeeping failed", reservations)
		return nil, err
	}

	receipt, err := s.wallet.Debit(ctx, customerID, amount, order.ID, order.OrderNumber)
	if err != nil {
		s.failPayment(ctx, order.ID, fmt.Sprintf("wallet debit failed: %v", err), reservations)
		// A debit that lost a race to another spender surfaces as a payment
		// failure, same as the balance pre-check.
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			return nil, pkgerrors.New(pkgerrors.CodePayment, "insufficient wallet balance").
				WithDetails(typed.Details())
		}
		return nil, err
	}

	if err := s.orders.MarkPaymentCompleted(ctx, order.ID, receipt.Reference, time.Now()); err != nil {
		// The debit went through; refund it rather than strand the money.
		if _, refundErr := s.wallet.Credit(ctx, customerID, amount, order.ID, order.OrderNumber, "refund: order finalization failed"); refundErr != nil {
			s.logg.Error(ctx, "refund after finalization failure also failed", refundErr)
		}
		s.failPayment(ctx, order.ID, "payment finalization failed", reservations)
		return nil, err
	}
	return receipt, nil
}

// failPayment is the post-commit compensation path: restore every reserved
// item, then mark the order failed and cancelled. Compensation errors are
// aggregated and logged, never returned, so the caller still sees the
// original failure.
func (s *service) failPayment(ctx context.Context, orderID uuid.UUID, reason string, reservations []reservation) {
	if err := s.restoreAll(ctx, s.inventory, reservations); err != nil {
		s.logg.Error(ctx, "inventory compensation incomplete", err)
	}
	if err := s.orders.MarkPaymentFailed(ctx, orderID); err != nil {
		s.logg.Error(ctx, "marking payment failed errored", err)
	}
	if err := s.orders.Cancel(ctx, orderID, reason); err != nil {
		s.logg.Error(ctx, "cancelling order errored", err)
	}
}

// abortDraft unwinds a mid-placement failure: restore reservations made so
// far, discard the draft order, and hand back the original error. Inside a
// real transaction the rollback repeats this work harmlessly; without one
// these calls are the only thing keeping stock consistent.
func (s *service) abortDraft(ctx context.Context, inv inventory.Service, ord orders.Service, orderID uuid.UUID, reservations []reservation, cause error) error {
	if err := s.restoreAll(ctx, inv, reservations); err != nil {
		s.logg.Error(ctx, "inventory compensation incomplete", err)
	}
	if err := ord.DiscardDraft(ctx, orderID); err != nil {
		s.logg.Error(ctx, "discarding draft order errored", err)
	}
	return cause
}

func (s *service) restoreAll(ctx context.Context, inv inventory.Service, reservations []reservation) error {
	var restoreErr error
	for _, res := range reservations {
		if err := inv.Restore(ctx, res.ProductID, res.Qty); err != nil {
			restoreErr = multierr.Append(restoreErr, fmt.Errorf("restore %s x%d: %w", res.ProductID, res.Qty, err))
		}
	}
	return restoreErr
}

// publishDispatch fans the committed order out to eligible couriers. This is
// fire-and-continue: the order is already committed and billed, so failures
// here are logged and the placement still succeeds.
func (s *service) publishDispatch(ctx context.Context, order *models.Order, customerName string, address types.DeliveryAddress, itemCount int, grandTotal decimal.Decimal) {
	eligible, err := s.couriers.ListEligible(ctx)
	if err != nil {
		s.logg.Error(ctx, "listing eligible couriers failed, order left unassigned", err)
		s.metrics.IncDispatchPublish("error")
		return
	}

	offer := dispatch.Offer{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerName: customerName,
		Address:      address,
		ItemCount:    itemCount,
		GrandTotal:   grandTotal,
		PlacedAt:     time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, offer, eligible); err != nil {
		s.logg.Error(ctx, "dispatch publish failed, order left unassigned", err)
		s.metrics.IncDispatchPublish("error")
	}
}

func validateInput(input PlaceOrderInput) error {
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for i, line := range input.Items {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: product id required", i))
		}
		if line.Qty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: qty must be at least 1", i))
		}
	}
	if err := input.Address.Validate(); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	return nil
}

// nameProduct enriches an insufficient-stock error with the product name so
// callers can render a precise message.
func nameProduct(err error, name string) error {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		return err
	}
	if details, ok := typed.Details().(map[string]any); ok {
		details["product_name"] = name
	}
	return err
}

func placementLabel(err error) string {
	if err == nil {
		return "success"
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return "error"
	}
	switch typed.Code() {
	case pkgerrors.CodeValidation:
		return "validation_error"
	case pkgerrors.CodeNotFound:
		return "not_found"
	case pkgerrors.CodeConflict:
		return "insufficient_stock"
	case pkgerrors.CodePayment:
		return "payment_failed"
	default:
		return "error"
	}
}
