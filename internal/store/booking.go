package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zing_pool/internal/apperr"
	"zing_pool/internal/models"
)

type AcceptBookingParams struct {
	BookingID string
	DriverID  string
	VehicleID string
}

type AcceptedBooking struct {
	Booking          models.Booking
	RemainingCredits int
}

// AcceptBooking assigns an open booking to the driver and spends one credit.
// Either every step commits or none does.
func (s *UserStore) AcceptBooking(ctx context.Context, p AcceptBookingParams) (*AcceptedBooking, error) {
	var out AcceptedBooking
	now := s.now()

	err := s.exec.Run(ctx, "accept_booking", func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(lockingClause(tx)...).First(&booking, "id = ?", p.BookingID).Error; err != nil {
			return notFound(err, "booking not found")
		}
		if booking.Status != models.BookingOpen {
			return apperr.New(apperr.Conflict, "booking already accepted")
		}

		var profile models.Profile
		if err := tx.First(&profile, "id = ?", p.DriverID).Error; err != nil {
			return notFound(err, "not eligible: driver profile missing", apperr.Forbidden)
		}
		if !profile.Eligible() {
			return apperr.New(apperr.Forbidden, "not eligible: driver not verified")
		}

		var vehicle models.Vehicle
		if err := tx.First(&vehicle, "id = ? AND driver_id = ?", p.VehicleID, p.DriverID).Error; err != nil {
			return notFound(err, "not eligible: vehicle not owned by driver", apperr.Forbidden)
		}
		switch {
		case !vehicle.Assignable():
			return apperr.New(apperr.Forbidden, "not eligible: vehicle inactive or unverified")
		case vehicle.VehicleType != booking.VehicleTypeRequired:
			return apperr.New(apperr.Forbidden, "not eligible: vehicle type mismatch")
		case vehicle.Seats < booking.SeatsRequired:
			return apperr.New(apperr.Forbidden, "not eligible: not enough seats")
		}

		remaining, err := spendCredit(tx, p.DriverID, now)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, models.BookingOpen).
			Updates(map[string]any{
				"status":              models.BookingAccepted,
				"assigned_driver_id":  p.DriverID,
				"assigned_vehicle_id": p.VehicleID,
				"accepted_at":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.Conflict, "booking already accepted")
		}

		booking.Status = models.BookingAccepted
		booking.AssignedDriverID = &p.DriverID
		booking.AssignedVehicleID = &p.VehicleID
		booking.AcceptedAt = &now

		out = AcceptedBooking{Booking: booking, RemainingCredits: remaining}
		return writeAuditTx(tx, models.NewAudit(&p.DriverID, "accept_booking", "bookings", booking.ID, map[string]any{
			"vehicle_id":        p.VehicleID,
			"remaining_credits": remaining,
		}))
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// spendCredit decrements the driver's soonest-expiring usable subscription
// and returns its new balance.
func spendCredit(tx *gorm.DB, driverID string, now time.Time) (int, error) {
	var sub models.Subscription
	err := tx.Where("driver_id = ? AND status = ? AND end_date > ? AND remaining_credits > 0",
		driverID, models.SubscriptionActive, now).
		Order("end_date ASC").
		First(&sub).Error
	if err != nil {
		return 0, notFound(err, "not eligible: no credits", apperr.Forbidden)
	}

	res := tx.Model(&models.Subscription{}).
		Where("id = ? AND status = ? AND remaining_credits > 0", sub.ID, models.SubscriptionActive).
		Update("remaining_credits", gorm.Expr("remaining_credits - 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, apperr.New(apperr.Forbidden, "not eligible: no credits")
	}

	// The row is locked by our update, so this reads our own balance.
	var balance []int
	if err := tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).Pluck("remaining_credits", &balance).Error; err != nil {
		return 0, err
	}
	if len(balance) != 1 {
		return 0, apperr.New(apperr.Unknown, "subscription vanished during claim")
	}
	return balance[0], nil
}

type CancelBookingParams struct {
	BookingID string
	DriverID  string
	Reason    *string
}

// CancelBooking lets the assigned driver withdraw. The assignment ids stay
// on the row and the spent credit is not returned.
func (s *UserStore) CancelBooking(ctx context.Context, p CancelBookingParams) error {
	now := s.now()

	return s.exec.Run(ctx, "cancel_booking", func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(lockingClause(tx)...).First(&booking, "id = ?", p.BookingID).Error; err != nil {
			return notFound(err, "booking not found")
		}
		if !booking.AssignedTo(p.DriverID) {
			return apperr.New(apperr.Forbidden, "unauthorized: booking is not assigned to you")
		}
		if !booking.Cancellable() {
			return apperr.New(apperr.Conflict, "booking not cancellable")
		}

		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, booking.Status).
			Updates(map[string]any{
				"status":              models.BookingCancelled,
				"cancelled_at":        now,
				"cancellation_reason": p.Reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.Conflict, "booking not cancellable")
		}

		meta := map[string]any{"previous_status": string(booking.Status)}
		if p.Reason != nil {
			meta["reason"] = *p.Reason
		}
		return writeAuditTx(tx, models.NewAudit(&p.DriverID, "cancel_booking", "bookings", booking.ID, meta))
	})
}

// lockingClause takes a row lock where the dialect supports one.
func lockingClause(tx *gorm.DB) []clause.Expression {
	if tx.Dialector.Name() == "postgres" {
		return []clause.Expression{clause.Locking{Strength: "UPDATE"}}
	}
	return nil
}

// notFound maps a missing row onto kind (NotFound unless given) and passes
// every other error through.
func notFound(err error, msg string, kind ...apperr.Kind) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		k := apperr.NotFound
		if len(kind) > 0 {
			k = kind[0]
		}
		return apperr.New(k, msg)
	}
	return err
}
