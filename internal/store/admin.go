package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"zing_pool/internal/apperr"
	"zing_pool/internal/models"
)

const subscriptionDays = 30

// RoleOf reads the caller's role. A missing profile is NotFound.
func (s *UserStore) RoleOf(ctx context.Context, userID string) (models.Role, error) {
	var role models.Role
	err := s.exec.Do(ctx, "role_of", func(db *gorm.DB) error {
		var profile models.Profile
		if err := db.Select("role").First(&profile, "id = ?", userID).Error; err != nil {
			return notFound(err, "profile not found")
		}
		role = profile.Role
		return nil
	})
	return role, err
}

type KYCDecision struct {
	AdminID         string
	DriverID        string
	Status          models.VerificationStatus
	RejectionReason *string
}

// VerifyDriverKYC records an admin decision on a driver profile.
func (s *UserStore) VerifyDriverKYC(ctx context.Context, d KYCDecision) error {
	reason := d.RejectionReason
	if d.Status != models.VerificationRejected {
		reason = nil
	}

	return s.exec.Run(ctx, "verify_driver_kyc", func(tx *gorm.DB) error {
		res := tx.Model(&models.Profile{}).
			Where("id = ?", d.DriverID).
			Updates(map[string]any{
				"verification_status": d.Status,
				"is_verified":         d.Status == models.VerificationVerified,
				"rejection_reason":    reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.NotFound, "driver not found")
		}

		meta := map[string]any{"status": string(d.Status)}
		if reason != nil {
			meta["rejection_reason"] = *reason
		}
		return writeAuditTx(tx, models.NewAudit(&d.AdminID, "verify_driver_kyc", "profiles", d.DriverID, meta))
	})
}

type VehicleDecision struct {
	AdminID   string
	VehicleID string
	Status    models.VerificationStatus
}

func (s *UserStore) VerifyVehicle(ctx context.Context, d VehicleDecision) error {
	return s.exec.Run(ctx, "verify_vehicle", func(tx *gorm.DB) error {
		res := tx.Model(&models.Vehicle{}).
			Where("id = ?", d.VehicleID).
			Update("status", d.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.NotFound, "vehicle not found")
		}
		return writeAuditTx(tx, models.NewAudit(&d.AdminID, "verify_vehicle", "vehicles", d.VehicleID, map[string]any{
			"status": string(d.Status),
		}))
	})
}

type PaymentApproval struct {
	AdminID          string
	PaymentRequestID string
	Credits          int
}

// ApprovePayment moves a pending request to approved and grants the credits,
// topping up the driver's active, unexpired subscription or opening a new one.
// A subscription past its end date is left for the sweeper.
func (s *UserStore) ApprovePayment(ctx context.Context, a PaymentApproval) error {
	now := s.now()

	return s.exec.Run(ctx, "approve_payment", func(tx *gorm.DB) error {
		if err := transitionPayment(tx, a.PaymentRequestID, models.PaymentApproved, a.AdminID, s.now); err != nil {
			return err
		}

		var req models.PaymentRequest
		if err := tx.First(&req, "id = ?", a.PaymentRequestID).Error; err != nil {
			return err
		}

		var sub models.Subscription
		err := tx.Where("driver_id = ? AND status = ? AND end_date > ?", req.DriverID, models.SubscriptionActive, now).
			Order("end_date DESC").
			First(&sub).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = models.Subscription{
				DriverID:         req.DriverID,
				TotalCredits:     a.Credits,
				RemainingCredits: a.Credits,
				StartDate:        now,
				EndDate:          now.AddDate(0, 0, subscriptionDays),
				Status:           models.SubscriptionActive,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			res := tx.Model(&models.Subscription{}).
				Where("id = ? AND status = ?", sub.ID, models.SubscriptionActive).
				Updates(map[string]any{
					"total_credits":     gorm.Expr("total_credits + ?", a.Credits),
					"remaining_credits": gorm.Expr("remaining_credits + ?", a.Credits),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperr.New(apperr.Conflict, "subscription changed during approval")
			}
		}

		return writeAuditTx(tx, models.NewAudit(&a.AdminID, "approve_payment", "payment_requests", a.PaymentRequestID, map[string]any{
			"credits":         a.Credits,
			"driver_id":       req.DriverID,
			"subscription_id": sub.ID,
		}))
	})
}

// RejectPayment is a single conditional update. The caller records the audit
// entry afterwards.
func (s *UserStore) RejectPayment(ctx context.Context, adminID, paymentRequestID string) error {
	return s.exec.Do(ctx, "reject_payment", func(db *gorm.DB) error {
		return transitionPayment(db, paymentRequestID, models.PaymentRejected, adminID, s.now)
	})
}

// transitionPayment moves a request out of pending. When nothing matched it
// tells a missing request apart from one already processed.
func transitionPayment(db *gorm.DB, id string, to models.PaymentStatus, adminID string, now Clock) error {
	res := db.Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", id, models.PaymentPending).
		Updates(map[string]any{
			"status":       to,
			"processed_by": adminID,
			"processed_at": now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := db.Model(&models.PaymentRequest{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.NotFound, "payment request not found")
	}
	return apperr.New(apperr.Conflict, "payment request already processed")
}
