package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base replaces gorm.Model: rows are keyed by uuid strings shared with the
// identity provider, and nothing is soft-deleted.
type Base struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// All lists every table owned by the pool, in dependency order.
func All() []any {
	return []any{
		&Profile{},
		&Vehicle{},
		&Subscription{},
		&DeviceToken{},
		&PaymentRequest{},
		&Booking{},
		&AuditLog{},
	}
}
