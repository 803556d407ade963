package models

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

// PaymentRequest leaves pending at most once; every transition is
// conditioned on the current status.
type PaymentRequest struct {
	Base
	DriverID    string        `json:"driver_id" gorm:"type:uuid;index;not null"`
	AmountPaid  float64       `json:"amount_paid"`
	Reference   string        `json:"reference"`
	Status      PaymentStatus `json:"status" gorm:"type:text;not null"`
	ProcessedBy *string       `json:"processed_by"`
	ProcessedAt *time.Time    `json:"processed_at"`
}
