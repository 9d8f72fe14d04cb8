package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftbasket/swiftbasket-backend/pkg/enums"
)

// Courier is a delivery partner eligible for dispatch while on duty and active.
type Courier struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name      string              `gorm:"column:name;not null"`
	Phone     string              `gorm:"column:phone;not null"`
	OnDuty    bool                `gorm:"column:on_duty;not null;default:false"`
	Status    enums.CourierStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
