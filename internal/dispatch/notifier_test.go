package dispatch

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/swiftbasket/swiftbasket-backend/pkg/config"
	"github.com/swiftbasket/swiftbasket-backend/pkg/logger"
	"github.com/rs/zerolog"
)

type publishedEvent struct {
	Channel string
	Event   string
	Payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	fail   bool
}

func (p *fakePublisher) PublishToChannel(_ context.Context, channel, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("publish failed")
	}
	p.events = append(p.events, publishedEvent{Channel: channel, Event: event, Payload: payload})
	return nil
}

func (p *fakePublisher) byEvent(event string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeAssigner struct {
	mu       sync.Mutex
	assigned map[uuid.UUID]uuid.UUID
	fail     bool
}

func (a *fakeAssigner) AssignCourier(_ context.Context, orderID, courierID uuid.UUID, _ time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return errors.New("store unavailable")
	}
	if a.assigned == nil {
		a.assigned = map[uuid.UUID]uuid.UUID{}
	}
	if _, exists := a.assigned[orderID]; exists {
		return errors.New("order already assigned")
	}
	a.assigned[orderID] = courierID
	return nil
}

func testDispatchConfig() config.DispatchConfig {
	return config.DispatchConfig{
		BroadcastChannel:  "dispatch:broadcast",
		CourierChannelFmt: "dispatch:courier:%s",
	}
}

func newTestNotifier(t *testing.T, pub Publisher, assigner orderAssigner) *Notifier {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	n, err := NewNotifier(pub, assigner, testDispatchConfig(), logg, nil)
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	return n
}

func testOffer(orderID uuid.UUID) Offer {
	return Offer{OrderID: orderID, OrderNumber: "ORD2001", CustomerName: "Asha Rao", ItemCount: 2}
}

func TestPublishFansOutToAllChannels(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := newTestNotifier(t, pub, &fakeAssigner{})
	ctx := context.Background()
	orderID := uuid.New()
	couriers := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	if err := n.Publish(ctx, testOffer(orderID), couriers); err != nil {
		t.Fatalf("publish: %v", err)
	}

	offers := pub.byEvent(EventNewOrder)
	// One broadcast plus one private copy per eligible courier.
	if len(offers) != 4 {
		t.Fatalf("expected 4 new-order events, got %d", len(offers))
	}
	channels := map[string]bool{}
	for _, e := range offers {
		channels[e.Channel] = true
	}
	if !channels["dispatch:broadcast"] {
		t.Fatal("missing broadcast channel delivery")
	}
	for _, c := range couriers {
		if !channels["dispatch:courier:"+c.String()] {
			t.Fatalf("missing private delivery for courier %s", c)
		}
	}
	if n.Pending() != 1 {
		t.Fatalf("expected 1 pending order, got %d", n.Pending())
	}
}

func TestPublishEmptyEligibleIsNoOp(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := newTestNotifier(t, pub, &fakeAssigner{})

	if err := n.Publish(context.Background(), testOffer(uuid.New()), nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(pub.byEvent(EventNewOrder)) != 0 {
		t.Fatal("expected no events for empty eligible set")
	}
	if n.Pending() != 0 {
		t.Fatalf("expected no pending state, got %d", n.Pending())
	}
}

func TestAcceptFirstWins(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	assigner := &fakeAssigner{}
	n := newTestNotifier(t, pub, assigner)
	ctx := context.Background()
	orderID := uuid.New()
	courierA := uuid.New()
	courierB := uuid.New()

	if err := n.Publish(ctx, testOffer(orderID), []uuid.UUID{courierA, courierB}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	result, err := n.Accept(ctx, orderID, courierA)
	if err != nil || result != AcceptAccepted {
		t.Fatalf("first accept: result=%s err=%v", result, err)
	}
	if assigner.assigned[orderID] != courierA {
		t.Fatalf("assignment not persisted: %+v", assigner.assigned)
	}

	// State is purged on resolution, so the loser sees Unknown.
	result, err = n.Accept(ctx, orderID, courierB)
	if err != nil || result != AcceptUnknown {
		t.Fatalf("second accept: result=%s err=%v", result, err)
	}

	taken := pub.byEvent(EventOrderAccepted)
	if len(taken) != 3 {
		t.Fatalf("expected 3 order-accepted events (broadcast + 2 private), got %d", len(taken))
	}
	if n.Pending() != 0 {
		t.Fatalf("expected state purged, got %d pending", n.Pending())
	}
}

func TestConcurrentAcceptsExactlyOneWins(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	assigner := &fakeAssigner{}
	n := newTestNotifier(t, pub, assigner)
	ctx := context.Background()
	orderID := uuid.New()

	couriers := make([]uuid.UUID, 8)
	for i := range couriers {
		couriers[i] = uuid.New()
	}
	if err := n.Publish(ctx, testOffer(orderID), couriers); err != nil {
		t.Fatalf("publish: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]AcceptResult, len(couriers))
	for i, courier := range couriers {
		wg.Add(1)
		go func(slot int, courierID uuid.UUID) {
			defer wg.Done()
			result, err := n.Accept(ctx, orderID, courierID)
			if err != nil {
				t.Errorf("accept: %v", err)
				return
			}
			results[slot] = result
		}(i, courier)
	}
	wg.Wait()

	wins := 0
	for _, result := range results {
		if result == AcceptAccepted {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d (%v)", wins, results)
	}
	if len(assigner.assigned) != 1 {
		t.Fatalf("expected exactly one persisted assignment, got %d", len(assigner.assigned))
	}
}

func TestAcceptAfterRejectIsRefused(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := newTestNotifier(t, pub, &fakeAssigner{})
	ctx := context.Background()
	orderID := uuid.New()
	courierA := uuid.New()
	courierB := uuid.New()

	if err := n.Publish(ctx, testOffer(orderID), []uuid.UUID{courierA, courierB}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if result, err := n.Reject(ctx, orderID, courierA); err != nil || result != RejectRecorded {
		t.Fatalf("reject: result=%s err=%v", result, err)
	}
	if result, err := n.Accept(ctx, orderID, courierA); err != nil || result != AcceptAlreadyRejected {
		t.Fatalf("accept after reject: result=%s err=%v", result, err)
	}

	// The other courier can still take it.
	if result, err := n.Accept(ctx, orderID, courierB); err != nil || result != AcceptAccepted {
		t.Fatalf("accept by other courier: result=%s err=%v", result, err)
	}
}

func TestAcceptNotEligible(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := newTestNotifier(t, pub, &fakeAssigner{})
	ctx := context.Background()
	orderID := uuid.New()

	if err := n.Publish(ctx, testOffer(orderID), []uuid.UUID{uuid.New()}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	result, err := n.Accept(ctx, orderID, uuid.New())
	if err != nil || result != AcceptNotEligible {
		t.Fatalf("expected not eligible, got result=%s err=%v", result, err)
	}
}

func TestAcceptUnknownOrder(t *testing.T) {
	t.Parallel()

	n := newTestNotifier(t, &fakePublisher{}, &fakeAssigner{})

	result, err := n.Accept(context.Background(), uuid.New(), uuid.New())
	if err != nil || result != AcceptUnknown {
		t.Fatalf("expected unknown, got result=%s err=%v", result, err)
	}
}

func TestAcceptAssignmentFailureLeavesRaceOpen(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	assigner := &fakeAssigner{fail: true}
	n := newTestNotifier(t, pub, assigner)
	ctx := context.Background()
	orderID := uuid.New()
	courierA := uuid.New()
	courierB := uuid.New()

	if err := n.Publish(ctx, testOffer(orderID), []uuid.UUID{courierA, courierB}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if _, err := n.Accept(ctx, orderID, courierA); err == nil {
		t.Fatal("expected accept to fail when assignment cannot persist")
	}

	// A later accept must still be able to win.
	assigner.mu.Lock()
	assigner.fail = false
	assigner.mu.Unlock()
	if result, err := n.Accept(ctx, orderID, courierB); err != nil || result != AcceptAccepted {
		t.Fatalf("retry accept: result=%s err=%v", result, err)
	}
}

func TestAllRejectedTerminal(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := newTestNotifier(t, pub, &fakeAssigner{})
	ctx := context.Background()
	orderID := uuid.New()
	couriers := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	if err := n.Publish(ctx, testOffer(orderID), couriers); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for i, courier := range couriers {
		result, err := n.Reject(ctx, orderID, courier)
		if err != nil {
			t.Fatalf("reject %d: %v", i, err)
		}
		if i < len(couriers)-1 && result != RejectRecorded {
			t.Fatalf("reject %d: expected recorded, got %s", i, result)
		}
		if i == len(couriers)-1 && result != RejectAllRejected {
			t.Fatalf("final reject: expected all_rejected, got %s", result)
		}
	}

	if events := pub.byEvent(EventOrderRejectedByAll); len(events) != 1 {
		t.Fatalf("expected exactly one all-rejected event, got %d", len(events))
	}
	if acks := pub.byEvent(EventRejectionAck); len(acks) != 2 {
		t.Fatalf("expected 2 private acks, got %d", len(acks))
	}

	// Terminal: no further accept can succeed.
	if result, err := n.Accept(ctx, orderID, couriers[0]); err != nil || result != AcceptUnknown {
		t.Fatalf("accept after all-rejected: result=%s err=%v", result, err)
	}
	if n.Pending() != 0 {
		t.Fatalf("expected state purged, got %d pending", n.Pending())
	}
}

func TestRejectTwiceBySameCourier(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := newTestNotifier(t, pub, &fakeAssigner{})
	ctx := context.Background()
	orderID := uuid.New()
	courierA := uuid.New()
	courierB := uuid.New()

	if err := n.Publish(ctx, testOffer(orderID), []uuid.UUID{courierA, courierB}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if result, _ := n.Reject(ctx, orderID, courierA); result != RejectRecorded {
		t.Fatalf("first reject: %s", result)
	}
	if result, _ := n.Reject(ctx, orderID, courierA); result != RejectAlreadyRejected {
		t.Fatalf("second reject: %s", result)
	}
}

func TestPublishFailureDoesNotBlockResolution(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{fail: true}
	n := newTestNotifier(t, pub, &fakeAssigner{})
	ctx := context.Background()
	orderID := uuid.New()
	courier := uuid.New()

	if err := n.Publish(ctx, testOffer(orderID), []uuid.UUID{courier}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if result, err := n.Accept(ctx, orderID, courier); err != nil || result != AcceptAccepted {
		t.Fatalf("accept with failing transport: result=%s err=%v", result, err)
	}
}
