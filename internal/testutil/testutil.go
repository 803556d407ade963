// Package testutil opens throwaway databases and seeds pool fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"zing_pool/internal/models"
)

// OpenDB returns a migrated in-memory sqlite database private to t.
// A single connection keeps concurrent callers serialised the way row locks
// would on postgres.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func Now() time.Time { return time.Now().UTC() }

// Driver is a fully onboarded driver: verified profile, one verified vehicle,
// an active subscription and one device token.
type Driver struct {
	Profile      models.Profile
	Vehicle      models.Vehicle
	Subscription models.Subscription
	Token        models.DeviceToken
}

type DriverOption func(*Driver)

func WithSeats(n int) DriverOption {
	return func(d *Driver) { d.Vehicle.Seats = n }
}

func WithRating(r float64) DriverOption {
	return func(d *Driver) { d.Profile.Rating = r }
}

func Unverified() DriverOption {
	return func(d *Driver) {
		d.Profile.IsVerified = false
		d.Profile.VerificationStatus = models.VerificationPending
	}
}

func InactiveVehicle() DriverOption {
	return func(d *Driver) { d.Vehicle.IsActive = false }
}

func ExpiredSubscription() DriverOption {
	return func(d *Driver) { d.Subscription.EndDate = Now().Add(-time.Hour) }
}

func WithToken(token string) DriverOption {
	return func(d *Driver) { d.Token.Token = token }
}

// SeedDriver creates a driver that may claim bookings for vehicleType.
func SeedDriver(t testing.TB, db *gorm.DB, vehicleType string, credits int, opts ...DriverOption) Driver {
	t.Helper()

	now := Now()
	id := uuid.NewString()
	d := Driver{
		Profile: models.Profile{
			Base:               models.Base{ID: id},
			Role:               models.RoleDriver,
			Rating:             4.5,
			IsVerified:         true,
			VerificationStatus: models.VerificationVerified,
		},
		Vehicle: models.Vehicle{
			DriverID:    id,
			VehicleType: vehicleType,
			Seats:       4,
			Status:      models.VerificationVerified,
			IsActive:    true,
		},
		Subscription: models.Subscription{
			DriverID:         id,
			TotalCredits:     credits,
			RemainingCredits: credits,
			StartDate:        now.AddDate(0, 0, -1),
			EndDate:          now.AddDate(0, 0, 29),
			Status:           models.SubscriptionActive,
		},
		Token: models.DeviceToken{
			DriverID: id,
			Token:    "tok-" + id,
			Platform: "android",
		},
	}
	for _, opt := range opts {
		opt(&d)
	}

	require.NoError(t, db.Create(&d.Profile).Error)
	require.NoError(t, db.Create(&d.Vehicle).Error)
	require.NoError(t, db.Create(&d.Subscription).Error)
	if d.Token.Token != "" {
		require.NoError(t, db.Create(&d.Token).Error)
	}
	return d
}

func SeedAdmin(t testing.TB, db *gorm.DB) models.Profile {
	t.Helper()

	admin := models.Profile{
		Role:               models.RoleAdmin,
		IsVerified:         true,
		VerificationStatus: models.VerificationVerified,
	}
	require.NoError(t, db.Create(&admin).Error)
	return admin
}

// SeedBooking creates an open, un-notified booking.
func SeedBooking(t testing.TB, db *gorm.DB, vehicleType string, seats int) models.Booking {
	t.Helper()

	pickupLat, pickupLng, dropLat, dropLng := 12.9716, 77.5946, 13.1986, 77.7066
	b := models.Booking{
		PickupAddress:       "MG Road",
		PickupLat:           &pickupLat,
		PickupLng:           &pickupLng,
		DropAddress:         "Airport",
		DropLat:             &dropLat,
		DropLng:             &dropLng,
		VehicleTypeRequired: vehicleType,
		SeatsRequired:       seats,
		FareEstimate:        850,
		CustomerName:        "Asha",
		CustomerPhone:       "+910000000000",
		Status:              models.BookingOpen,
	}
	require.NoError(t, db.Create(&b).Error)
	return b
}

func SeedPayment(t testing.TB, db *gorm.DB, driverID string, status models.PaymentStatus) models.PaymentRequest {
	t.Helper()

	p := models.PaymentRequest{
		DriverID:   driverID,
		AmountPaid: 499,
		Reference:  "UTR" + uuid.NewString()[:8],
		Status:     status,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

// AuditActions lists recorded audit actions oldest first.
func AuditActions(t testing.TB, db *gorm.DB) []string {
	t.Helper()

	var actions []string
	require.NoError(t, db.Model(&models.AuditLog{}).Order("created_at, id").Pluck("action", &actions).Error)
	return actions
}
