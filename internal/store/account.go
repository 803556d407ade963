package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zing_pool/internal/apperr"
	"zing_pool/internal/models"
)

// RegisterDeviceToken stores a push token for the driver. A token seen
// before moves to the new owner.
func (s *UserStore) RegisterDeviceToken(ctx context.Context, driverID, token, platform string) error {
	return s.exec.Do(ctx, "register_device_token", func(db *gorm.DB) error {
		row := models.DeviceToken{DriverID: driverID, Token: token, Platform: platform}
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"driver_id", "platform"}),
		}).Create(&row).Error
	})
}

// DeleteAccount removes everything the driver owns. Bookings assigned to the
// driver that are still in progress block removal. Past bookings and audit
// history are kept.
func (s *ServiceStore) DeleteAccount(ctx context.Context, userID string) error {
	return s.exec.Run(ctx, "delete_account", func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&models.Booking{}).
			Where("assigned_driver_id = ? AND status IN ?", userID,
				[]models.BookingStatus{models.BookingAccepted, models.BookingStarted}).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return apperr.New(apperr.Conflict, "Cannot delete account with active bookings")
		}

		if err := writeAuditTx(tx, models.NewAudit(&userID, "delete_account", "profiles", userID, map[string]any{
			"source": "user_request",
		})); err != nil {
			return err
		}

		for _, owned := range []any{
			&models.DeviceToken{},
			&models.Vehicle{},
			&models.Subscription{},
			&models.PaymentRequest{},
		} {
			if err := tx.Where("driver_id = ?", userID).Delete(owned).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", userID).Delete(&models.Profile{}).Error
	})
}
