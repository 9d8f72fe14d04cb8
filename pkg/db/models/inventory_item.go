package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem tracks sellable stock per product. Reservation decrements
// current_stock directly; a failed downstream step must restore explicitly.
type InventoryItem struct {
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	CurrentStock  int       `gorm:"column:current_stock;not null;default:0"`
	ReservedStock int       `gorm:"column:reserved_stock;not null;default:0"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Available is the stock a new order may claim, clamped at zero.
func (i InventoryItem) Available() int {
	available := i.CurrentStock - i.ReservedStock
	if available < 0 {
		return 0
	}
	return available
}
