package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftbasket/swiftbasket-backend/pkg/enums"
)

// WalletEntry is an immutable append-only record of one financial event.
// Status is fixed at creation; entries never transition afterwards.
type WalletEntry struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID  uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;index"`
	Amount      decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Type        enums.WalletEntryType   `gorm:"column:type;type:text;not null"`
	Description string                  `gorm:"column:description;not null"`
	Status      enums.WalletEntryStatus `gorm:"column:status;type:text;not null"`
	Reference   string                  `gorm:"column:reference;not null;uniqueIndex"`
	OrderID     *uuid.UUID              `gorm:"column:order_id;type:uuid"`
	OrderNumber *string                 `gorm:"column:order_number"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}
