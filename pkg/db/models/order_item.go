package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftbasket/swiftbasket-backend/pkg/enums"
)

// OrderItem captures the product snapshot for one line of an order. Items are
// owned exclusively by their order and created atomically with it.
type OrderItem struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	SellerID  uuid.UUID         `gorm:"column:seller_id;type:uuid;not null"`
	Name      string            `gorm:"column:name;not null"`
	ImageURL  string            `gorm:"column:image_url"`
	UnitPrice decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Qty       int               `gorm:"column:qty;not null"`
	LineTotal decimal.Decimal   `gorm:"column:line_total;type:numeric(12,2);not null"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null;default:'received'"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
