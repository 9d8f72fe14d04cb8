package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swiftbasket/swiftbasket-backend/pkg/config"
	pkgerrors "github.com/swiftbasket/swiftbasket-backend/pkg/errors"
	"github.com/swiftbasket/swiftbasket-backend/pkg/logger"
	"github.com/swiftbasket/swiftbasket-backend/pkg/metrics"
)

// AcceptResult classifies the outcome of a courier accept attempt.
type AcceptResult string

const (
	AcceptAccepted        AcceptResult = "accepted"
	AcceptAlreadyAccepted AcceptResult = "already_accepted"
	AcceptNotEligible     AcceptResult = "not_eligible"
	AcceptAlreadyRejected AcceptResult = "already_rejected"
	AcceptUnknown         AcceptResult = "unknown"
)

// RejectResult classifies the outcome of a courier reject attempt.
type RejectResult string

const (
	RejectRecorded        RejectResult = "rejected"
	RejectAllRejected     RejectResult = "all_rejected"
	RejectAlreadyAccepted RejectResult = "already_accepted"
	RejectNotEligible     RejectResult = "not_eligible"
	RejectAlreadyRejected RejectResult = "already_rejected"
	RejectUnknown         RejectResult = "unknown"
)

type orderAssigner interface {
	AssignCourier(ctx context.Context, orderID, courierID uuid.UUID, at time.Time) error
}

// orderState tracks one published order until a courier wins or all reject.
// It is deliberately ephemeral: process restart loses in-flight offers.
type orderState struct {
	mu         sync.Mutex
	offer      Offer
	notified   map[uuid.UUID]struct{}
	rejected   map[uuid.UUID]struct{}
	acceptedBy *uuid.UUID
	resolved   bool
}

// Notifier fans new orders out to eligible couriers and resolves the race to
// become the assigned courier. All mutation of a given order's state happens
// inside that order's mutex, so concurrent accepts serialize and exactly one
// wins.
type Notifier struct {
	mu     sync.Mutex
	states map[uuid.UUID]*orderState

	pub      Publisher
	assigner orderAssigner
	cfg      config.DispatchConfig
	logg     *logger.Logger
	metrics  *metrics.FulfillmentMetrics
	now      func() time.Time
}

// NewNotifier wires the dispatch notifier.
func NewNotifier(pub Publisher, assigner orderAssigner, cfg config.DispatchConfig, logg *logger.Logger, m *metrics.FulfillmentMetrics) (*Notifier, error) {
	if pub == nil {
		return nil, fmt.Errorf("publisher required")
	}
	if assigner == nil {
		return nil, fmt.Errorf("order assigner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Notifier{
		states:   make(map[uuid.UUID]*orderState),
		pub:      pub,
		assigner: assigner,
		cfg:      cfg,
		logg:     logg,
		metrics:  m,
		now:      time.Now,
	}, nil
}

// Publish records the eligible set and fans the offer out to the shared
// broadcast channel plus each courier's private channel. An empty eligible set
// is a logged no-op: the order stays unassigned until someone intervenes.
func (n *Notifier) Publish(ctx context.Context, offer Offer, eligible []uuid.UUID) error {
	ctx = n.logg.WithOrderID(ctx, offer.OrderID.String())

	if len(eligible) == 0 {
		n.logg.Warn(ctx, "no eligible couriers for dispatch, order left unassigned")
		n.metrics.IncDispatchPublish("no_couriers")
		return nil
	}

	state := &orderState{
		offer:    offer,
		notified: make(map[uuid.UUID]struct{}, len(eligible)),
		rejected: make(map[uuid.UUID]struct{}),
	}
	for _, courierID := range eligible {
		state.notified[courierID] = struct{}{}
	}

	n.mu.Lock()
	if _, exists := n.states[offer.OrderID]; exists {
		n.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeConflict, "order already published for dispatch").
			WithDetails(map[string]any{"order_id": offer.OrderID})
	}
	n.states[offer.OrderID] = state
	n.mu.Unlock()

	n.fanOut(ctx, state, EventNewOrder, offer)
	n.metrics.IncDispatchPublish("published")
	n.logg.Info(ctx, fmt.Sprintf("dispatched order to %d couriers", len(eligible)))
	return nil
}

// Accept resolves a courier's claim on an order. Exactly one accept per order
// returns AcceptAccepted; the courier assignment is persisted before the
// in-memory state flips, so a failed write leaves the race open.
func (n *Notifier) Accept(ctx context.Context, orderID, courierID uuid.UUID) (AcceptResult, error) {
	ctx = n.logg.WithFields(ctx, map[string]any{
		"order_id":   orderID.String(),
		"courier_id": courierID.String(),
	})

	state := n.lookup(orderID)
	if state == nil {
		n.metrics.IncDispatchAccept(string(AcceptUnknown))
		return AcceptUnknown, nil
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.resolved {
		if state.acceptedBy != nil {
			n.metrics.IncDispatchAccept(string(AcceptAlreadyAccepted))
			return AcceptAlreadyAccepted, nil
		}
		n.metrics.IncDispatchAccept(string(AcceptUnknown))
		return AcceptUnknown, nil
	}
	if _, eligible := state.notified[courierID]; !eligible {
		n.metrics.IncDispatchAccept(string(AcceptNotEligible))
		return AcceptNotEligible, nil
	}
	if _, rejected := state.rejected[courierID]; rejected {
		n.metrics.IncDispatchAccept(string(AcceptAlreadyRejected))
		return AcceptAlreadyRejected, nil
	}

	acceptedAt := n.now()
	if err := n.assigner.AssignCourier(ctx, orderID, courierID, acceptedAt); err != nil {
		n.metrics.IncDispatchAccept("error")
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist courier assignment")
	}

	state.acceptedBy = &courierID
	state.resolved = true
	n.purge(orderID)

	payload := AcceptedPayload{
		OrderID:     orderID,
		OrderNumber: state.offer.OrderNumber,
		CourierID:   courierID,
		AcceptedAt:  acceptedAt,
	}
	n.fanOut(ctx, state, EventOrderAccepted, payload)

	n.metrics.IncDispatchAccept(string(AcceptAccepted))
	n.logg.Info(ctx, "order accepted by courier")
	return AcceptAccepted, nil
}

// Reject records a courier's refusal. When the last notified courier rejects,
// the order is terminal: one order-rejected-by-all event goes out and the
// state is purged.
func (n *Notifier) Reject(ctx context.Context, orderID, courierID uuid.UUID) (RejectResult, error) {
	ctx = n.logg.WithFields(ctx, map[string]any{
		"order_id":   orderID.String(),
		"courier_id": courierID.String(),
	})

	state := n.lookup(orderID)
	if state == nil {
		n.metrics.IncDispatchReject(string(RejectUnknown))
		return RejectUnknown, nil
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.resolved {
		if state.acceptedBy != nil {
			n.metrics.IncDispatchReject(string(RejectAlreadyAccepted))
			return RejectAlreadyAccepted, nil
		}
		n.metrics.IncDispatchReject(string(RejectUnknown))
		return RejectUnknown, nil
	}
	if _, eligible := state.notified[courierID]; !eligible {
		n.metrics.IncDispatchReject(string(RejectNotEligible))
		return RejectNotEligible, nil
	}
	if _, rejected := state.rejected[courierID]; rejected {
		n.metrics.IncDispatchReject(string(RejectAlreadyRejected))
		return RejectAlreadyRejected, nil
	}

	state.rejected[courierID] = struct{}{}

	if len(state.rejected) == len(state.notified) {
		state.resolved = true
		n.purge(orderID)

		payload := RejectedByAllPayload{OrderID: orderID, OrderNumber: state.offer.OrderNumber}
		n.publishTo(ctx, n.cfg.BroadcastChannel, EventOrderRejectedByAll, payload)

		n.metrics.IncDispatchReject(string(RejectAllRejected))
		n.logg.Warn(ctx, "order rejected by all notified couriers")
		return RejectAllRejected, nil
	}

	ack := RejectionAckPayload{OrderID: orderID, CourierID: courierID}
	n.publishTo(ctx, n.cfg.CourierChannel(courierID.String()), EventRejectionAck, ack)

	n.metrics.IncDispatchReject(string(RejectRecorded))
	return RejectRecorded, nil
}

// Pending reports how many published orders are still awaiting resolution.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.states)
}

func (n *Notifier) lookup(orderID uuid.UUID) *orderState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.states[orderID]
}

func (n *Notifier) purge(orderID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.states, orderID)
}

// fanOut emits one event on the broadcast channel and on every notified
// courier's private channel. Publish failures are logged and skipped so one
// dead channel cannot block the rest.
func (n *Notifier) fanOut(ctx context.Context, state *orderState, event string, payload any) {
	n.publishTo(ctx, n.cfg.BroadcastChannel, event, payload)
	for courierID := range state.notified {
		n.publishTo(ctx, n.cfg.CourierChannel(courierID.String()), event, payload)
	}
}

func (n *Notifier) publishTo(ctx context.Context, channel, event string, payload any) {
	if err := n.pub.PublishToChannel(ctx, channel, event, payload); err != nil {
		n.logg.Error(ctx, fmt.Sprintf("dispatch publish failed on %s", channel), err)
	}
}
