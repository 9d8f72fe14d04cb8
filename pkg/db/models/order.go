package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftbasket/swiftbasket-backend/pkg/enums"
	"github.com/swiftbasket/swiftbasket-backend/pkg/types"
)

// Order is the durable record of a placed order. Orders are never deleted,
// only transitioned to terminal states.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber string    `gorm:"column:order_number;not null;uniqueIndex"`

	CustomerID    uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`
	CustomerName  string    `gorm:"column:customer_name;not null"`
	CustomerPhone string    `gorm:"column:customer_phone;not null"`
	CustomerEmail string    `gorm:"column:customer_email;not null"`

	Address types.DeliveryAddress `gorm:"column:address;type:jsonb;serializer:json"`

	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax         decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	ShippingFee decimal.Decimal `gorm:"column:shipping_fee;type:numeric(12,2);not null;default:0"`
	PlatformFee decimal.Decimal `gorm:"column:platform_fee;type:numeric(12,2);not null;default:0"`
	Discount    decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	GrandTotal  decimal.Decimal `gorm:"column:grand_total;type:numeric(12,2);not null"`

	PaymentMethod      enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus      enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentReference   *string             `gorm:"column:payment_reference"`
	PaidAt             *time.Time          `gorm:"column:paid_at"`
	Status             enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'received'"`
	CancellationReason *string             `gorm:"column:cancellation_reason"`

	CourierID        *uuid.UUID              `gorm:"column:courier_id;type:uuid"`
	AssignmentStatus *enums.AssignmentStatus `gorm:"column:assignment_status;type:text"`
	AssignedAt       *time.Time              `gorm:"column:assigned_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
