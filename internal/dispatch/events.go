package dispatch

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftbasket/swiftbasket-backend/pkg/types"
)

// Event names carried on the dispatch channels.
const (
	EventNewOrder           = "new-order"
	EventOrderAccepted      = "order-accepted"
	EventOrderRejectedByAll = "order-rejected-by-all"
	EventRejectionAck       = "order-rejection-acknowledged"
)

// Envelope is the wire shape every dispatch message uses.
type Envelope struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Offer is the order summary fanned out to couriers on publish.
type Offer struct {
	OrderID      uuid.UUID             `json:"order_id"`
	OrderNumber  string                `json:"order_number"`
	CustomerName string                `json:"customer_name"`
	Address      types.DeliveryAddress `json:"address"`
	ItemCount    int                   `json:"item_count"`
	GrandTotal   decimal.Decimal       `json:"grand_total"`
	PlacedAt     time.Time             `json:"placed_at"`
}

// AcceptedPayload tells losing couriers the order is taken.
type AcceptedPayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CourierID   uuid.UUID `json:"courier_id"`
	AcceptedAt  time.Time `json:"accepted_at"`
}

// RejectedByAllPayload marks an order every notified courier declined.
type RejectedByAllPayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// RejectionAckPayload is the private confirmation sent to a rejecting courier.
type RejectionAckPayload struct {
	OrderID   uuid.UUID `json:"order_id"`
	CourierID uuid.UUID `json:"courier_id"`
}
