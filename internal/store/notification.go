package store

import (
	"context"

	"gorm.io/gorm"

	"zing_pool/internal/models"
)

// TryClaimNotification flips notification_sent for an open booking. Exactly
// one caller per booking gets true.
func (s *ServiceStore) TryClaimNotification(ctx context.Context, bookingID string) (bool, error) {
	var claimed bool
	err := s.exec.Do(ctx, "claim_notification", func(db *gorm.DB) error {
		res := db.Model(&models.Booking{}).
			Where("id = ? AND notification_sent = ? AND status = ?", bookingID, false, models.BookingOpen).
			Update("notification_sent", true)
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected == 1
		return nil
	})
	return claimed, err
}

type EligibleDriver struct {
	DriverID string
	Tokens   []string
}

// EligibleDrivers returns up to limit drivers who could claim a booking for
// vehicleType right now and have at least one device, best rated first.
func (s *ServiceStore) EligibleDrivers(ctx context.Context, vehicleType string, limit int) ([]EligibleDriver, error) {
	var out []EligibleDriver
	now := s.now()

	err := s.exec.Do(ctx, "eligible_drivers", func(db *gorm.DB) error {
		vehicles := db.Session(&gorm.Session{NewDB: true}).Model(&models.Vehicle{}).
			Select("1").
			Where("vehicles.driver_id = profiles.id AND vehicles.vehicle_type = ? AND vehicles.status = ? AND vehicles.is_active = ?",
				vehicleType, models.VerificationVerified, true)
		subscriptions := db.Session(&gorm.Session{NewDB: true}).Model(&models.Subscription{}).
			Select("1").
			Where("subscriptions.driver_id = profiles.id AND subscriptions.status = ? AND subscriptions.remaining_credits > 0 AND subscriptions.end_date > ?",
				models.SubscriptionActive, now)
		devices := db.Session(&gorm.Session{NewDB: true}).Model(&models.DeviceToken{}).
			Select("1").
			Where("device_tokens.driver_id = profiles.id")

		var ids []string
		err := db.Model(&models.Profile{}).
			Where("profiles.role = ? AND profiles.is_verified = ? AND profiles.verification_status = ?",
				models.RoleDriver, true, models.VerificationVerified).
			Where("EXISTS (?)", vehicles).
			Where("EXISTS (?)", subscriptions).
			Where("EXISTS (?)", devices).
			Order("profiles.rating DESC, profiles.id").
			Limit(limit).
			Pluck("profiles.id", &ids).Error
		if err != nil || len(ids) == 0 {
			return err
		}

		var tokens []models.DeviceToken
		if err := db.Where("driver_id IN ?", ids).Order("created_at, id").Find(&tokens).Error; err != nil {
			return err
		}
		byDriver := make(map[string][]string, len(ids))
		for _, t := range tokens {
			byDriver[t.DriverID] = append(byDriver[t.DriverID], t.Token)
		}

		out = make([]EligibleDriver, 0, len(ids))
		for _, id := range ids {
			out = append(out, EligibleDriver{DriverID: id, Tokens: byDriver[id]})
		}
		return nil
	})
	return out, err
}
