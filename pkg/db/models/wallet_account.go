package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletAccount holds the spendable balance for one customer.
type WalletAccount struct {
	CustomerID uuid.UUID       `gorm:"column:customer_id;type:uuid;primaryKey"`
	Balance    decimal.Decimal `gorm:"column:balance;type:numeric(12,2);not null;default:0"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
