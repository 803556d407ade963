package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

// Subscription holds a driver's booking credits. Expired never reverts.
type Subscription struct {
	Base
	DriverID         string             `json:"driver_id" gorm:"type:uuid;index;not null"`
	TotalCredits     int                `json:"total_credits"`
	RemainingCredits int                `json:"remaining_credits" gorm:"check:remaining_credits >= 0"`
	StartDate        time.Time          `json:"start_date"`
	EndDate          time.Time          `json:"end_date" gorm:"index"`
	Status           SubscriptionStatus `json:"status" gorm:"type:text;index;not null"`
}
