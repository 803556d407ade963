package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zing_pool/internal/apperr"
	"zing_pool/internal/models"
	"zing_pool/internal/testutil"
)

func TestDeleteAccountBlockedByActiveBooking(t *testing.T) {
	db := testutil.OpenDB(t)
	driver, _ := acceptedBooking(t, db, newUserStore(db))

	err := newServiceStore(db).DeleteAccount(context.Background(), driver.Profile.ID)
	assert.True(t, apperr.Is(err, apperr.Conflict), "got %v", err)

	var n int64
	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", driver.Profile.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, []string{"accept_booking"}, testutil.AuditActions(t, db))
}

func TestDeleteAccountRemovesOwnedRows(t *testing.T) {
	db := testutil.OpenDB(t)
	driver := testutil.SeedDriver(t, db, "SUV", 3)
	other := testutil.SeedDriver(t, db, "SUV", 3)
	testutil.SeedPayment(t, db, driver.Profile.ID, models.PaymentPending)

	require.NoError(t, newServiceStore(db).DeleteAccount(context.Background(), driver.Profile.ID))

	for _, m := range []any{&models.DeviceToken{}, &models.Vehicle{}, &models.Subscription{}, &models.PaymentRequest{}} {
		var n int64
		require.NoError(t, db.Model(m).Where("driver_id = ?", driver.Profile.ID).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}
	var n int64
	require.NoError(t, db.Model(&models.Profile{}).Where("id IN ?", []string{driver.Profile.ID, other.Profile.ID}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	var entry models.AuditLog
	require.NoError(t, db.First(&entry, "action = ?", "delete_account").Error)
	assert.Equal(t, driver.Profile.ID, *entry.ActorID)
	assert.Equal(t, "user_request", entry.Metadata["source"])
}

func TestRegisterDeviceTokenUpserts(t *testing.T) {
	db := testutil.OpenDB(t)
	first := testutil.SeedDriver(t, db, "SUV", 1, testutil.WithToken(""))
	second := testutil.SeedDriver(t, db, "SUV", 1, testutil.WithToken(""))
	s := newUserStore(db)
	ctx := context.Background()

	require.NoError(t, s.RegisterDeviceToken(ctx, first.Profile.ID, "shared-phone", "android"))
	require.NoError(t, s.RegisterDeviceToken(ctx, second.Profile.ID, "shared-phone", "ios"))

	var tokens []models.DeviceToken
	require.NoError(t, db.Where("token = ?", "shared-phone").Find(&tokens).Error)
	require.Len(t, tokens, 1)
	assert.Equal(t, second.Profile.ID, tokens[0].DriverID)
	assert.Equal(t, "ios", tokens[0].Platform)
}
