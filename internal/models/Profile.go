package models

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
)

type VerificationStatus string

const (
	VerificationNew      VerificationStatus = "new"
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// ParseDecision accepts only the statuses an admin may assign.
func ParseDecision(s string) (VerificationStatus, bool) {
	switch v := VerificationStatus(s); v {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return v, true
	}
	return "", false
}

// Profile is the driver or admin record keyed by the identity provider's user id.
type Profile struct {
	Base
	Role                Role               `json:"role" gorm:"type:text;not null"`
	FullName            *string            `json:"full_name"`
	Phone               *string            `json:"phone"`
	Rating              float64            `json:"rating"`
	IsVerified          bool               `json:"is_verified"`
	VerificationStatus  VerificationStatus `json:"verification_status" gorm:"type:text;not null"`
	RejectionReason     *string            `json:"rejection_reason"`
	OnboardingCompleted bool               `json:"onboarding_completed"`
}

// Eligible reports whether the profile may take bookings from the pool.
func (p *Profile) Eligible() bool {
	return p.Role == RoleDriver && p.IsVerified && p.VerificationStatus == VerificationVerified
}
