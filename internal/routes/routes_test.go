package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"zing_pool/internal/controllers"
	"zing_pool/internal/middleware"
	"zing_pool/internal/models"
	"zing_pool/internal/notify"
	"zing_pool/internal/routes"
	"zing_pool/internal/services"
	"zing_pool/internal/store"
	"zing_pool/internal/testutil"
)

const triggerSecret = "hook-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t        *testing.T
	db       *gorm.DB
	handler  http.Handler
	resolver *middleware.JWTResolver
	hub      *notify.PoolHub
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.OpenDB(t)
	users := store.NewUserStore(db, 5*time.Second, nil)
	system := store.NewServiceStore(db, 5*time.Second, nil)
	resolver := middleware.NewJWTResolver("test-secret")
	hub := notify.NewPoolHub()
	sink := notify.NewMulti().Add("log", notify.LogSink{}).Add("websocket", hub)

	ctrl := &controllers.Controllers{
		Users:       users,
		System:      system,
		Fanout:      services.NewFanout(system, sink, 20, time.Second),
		Sweeper:     services.NewSweeper(system, 500),
		Pool:        hub,
		Resolver:    resolver,
		AuthTimeout: time.Second,
	}
	return &harness{
		t:  t,
		db: db,
		handler: routes.Handler(routes.Options{
			Controllers:   ctrl,
			Roles:         users,
			TriggerSecret: triggerSecret,
			AccessLog:     io.Discard,
		}),
		resolver: resolver,
		hub:      hub,
	}
}

func (h *harness) token(subject string) string {
	h.t.Helper()
	tok, err := h.resolver.Issue(subject, time.Hour)
	require.NoError(h.t, err)
	return tok
}

// post sends body as JSON. caller "" sends no Authorization header.
func (h *harness) post(path, caller string, body any, header ...string) *httptest.ResponseRecorder {
	h.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("Authorization", "Bearer "+h.token(caller))
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAcceptBookingEndpoint(t *testing.T) {
	h := newHarness(t)
	driver := testutil.SeedDriver(t, h.db, "SUV", 3)
	booking := testutil.SeedBooking(t, h.db, "SUV", 4)

	w := h.post("/accept-booking", driver.Profile.ID, gin.H{"booking_id": booking.ID, "vehicle_id": driver.Vehicle.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["remaining_credits"])
	accepted := body["booking"].(map[string]any)
	assert.Equal(t, "accepted", accepted["status"])
	assert.Equal(t, driver.Profile.ID, accepted["assigned_driver_id"])
	assert.Equal(t, "LineString", body["trip"].(map[string]any)["type"])

	w = h.post("/accept-booking", driver.Profile.ID, gin.H{"booking_id": booking.ID, "vehicle_id": driver.Vehicle.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "booking already accepted", decode(t, w)["error"])
}

func TestAcceptBookingFailures(t *testing.T) {
	h := newHarness(t)
	driver := testutil.SeedDriver(t, h.db, "Sedan", 3)
	booking := testutil.SeedBooking(t, h.db, "SUV", 2)
	valid := gin.H{"booking_id": booking.ID, "vehicle_id": driver.Vehicle.ID}

	w := h.post("/accept-booking", "", valid)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.post("/accept-booking", driver.Profile.ID, gin.H{"booking_id": booking.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "booking_id and vehicle_id are required", decode(t, w)["error"])

	w = h.post("/accept-booking", driver.Profile.ID, gin.H{"booking_id": "not-a-uuid", "vehicle_id": driver.Vehicle.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.post("/accept-booking", driver.Profile.ID, valid)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not eligible: vehicle type mismatch", decode(t, w)["error"])

	w = h.post("/accept-booking", driver.Profile.ID, gin.H{"booking_id": "9a3f5c1e-0000-4000-8000-000000000000", "vehicle_id": driver.Vehicle.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConcurrentClaimsOverHTTP(t *testing.T) {
	h := newHarness(t)
	booking := testutil.SeedBooking(t, h.db, "SUV", 2)
	a := testutil.SeedDriver(t, h.db, "SUV", 3)
	b := testutil.SeedDriver(t, h.db, "SUV", 3)

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i, d := range []testutil.Driver{a, b} {
		wg.Add(1)
		go func(i int, d testutil.Driver) {
			defer wg.Done()
			codes[i] = h.post("/accept-booking", d.Profile.ID, gin.H{"booking_id": booking.ID, "vehicle_id": d.Vehicle.ID}).Code
		}(i, d)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusConflict}, codes)
}

func TestStoreFailureIsGeneric(t *testing.T) {
	h := newHarness(t)
	driver := testutil.SeedDriver(t, h.db, "SUV", 3)
	booking := testutil.SeedBooking(t, h.db, "SUV", 2)

	sqlDB, err := h.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := h.post("/accept-booking", driver.Profile.ID, gin.H{"booking_id": booking.ID, "vehicle_id": driver.Vehicle.ID})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["error"])
}

func TestCancelBookingEndpoint(t *testing.T) {
	h := newHarness(t)
	driver := testutil.SeedDriver(t, h.db, "SUV", 3)
	stranger := testutil.SeedDriver(t, h.db, "SUV", 3)
	booking := testutil.SeedBooking(t, h.db, "SUV", 2)
	require.Equal(t, http.StatusOK, h.post("/accept-booking", driver.Profile.ID, gin.H{"booking_id": booking.ID, "vehicle_id": driver.Vehicle.ID}).Code)

	w := h.post("/cancel-booking", stranger.Profile.ID, gin.H{"booking_id": booking.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.post("/cancel-booking", driver.Profile.ID, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.post("/cancel-booking", driver.Profile.ID, gin.H{"booking_id": booking.ID, "reason": "flat tyre"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = h.post("/cancel-booking", driver.Profile.ID, gin.H{"booking_id": booking.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	h := newHarness(t)
	driver := testutil.SeedDriver(t, h.db, "SUV", 3)

	for _, path := range []string{"/verify-driver-kyc", "/verify-vehicle", "/approve-payment"} {
		w := h.post(path, driver.Profile.ID, gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code, path)

		w = h.post(path, "", gin.H{})
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = h.post(path, "5e8c7f10-0000-4000-8000-000000000000", gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code, "no profile: "+path)
	}
}

func TestVerifyEndpoints(t *testing.T) {
	h := newHarness(t)
	admin := testutil.SeedAdmin(t, h.db)
	driver := testutil.SeedDriver(t, h.db, "SUV", 3, testutil.Unverified())

	w := h.post("/verify-driver-kyc", admin.ID, gin.H{"driver_id": driver.Profile.ID, "status": "approved"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid status value", decode(t, w)["error"])

	w = h.post("/verify-driver-kyc", admin.ID, gin.H{"status": "verified"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.post("/verify-driver-kyc", admin.ID, gin.H{"driver_id": driver.Profile.ID, "status": "verified"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])

	var p models.Profile
	require.NoError(t, h.db.First(&p, "id = ?", driver.Profile.ID).Error)
	assert.True(t, p.IsVerified)

	w = h.post("/verify-vehicle", admin.ID, gin.H{"vehicle_id": driver.Vehicle.ID, "status": "rejected"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.post("/verify-vehicle", admin.ID, gin.H{"vehicle_id": "7b1d2e3f-0000-4000-8000-000000000000", "status": "verified"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "vehicle not found", decode(t, w)["error"])

	assert.Equal(t, []string{"verify_driver_kyc", "verify_vehicle"}, testutil.AuditActions(t, h.db))
}

func TestApprovePaymentEndpoint(t *testing.T) {
	h := newHarness(t)
	admin := testutil.SeedAdmin(t, h.db)
	driver := testutil.SeedDriver(t, h.db, "SUV", 0)
	pending := testutil.SeedPayment(t, h.db, driver.Profile.ID, models.PaymentPending)
	other := testutil.SeedPayment(t, h.db, driver.Profile.ID, models.PaymentPending)

	w := h.post("/approve-payment", admin.ID, gin.H{"payment_request_id": pending.ID, "action": "refund"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.post("/approve-payment", admin.ID, gin.H{"payment_request_id": pending.ID, "action": "approve", "amount_credits": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credit amount", decode(t, w)["error"])

	w = h.post("/approve-payment", admin.ID, gin.H{"payment_request_id": pending.ID, "action": "approve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sub models.Subscription
	require.NoError(t, h.db.First(&sub, "id = ?", driver.Subscription.ID).Error)
	assert.Equal(t, 1000, sub.RemainingCredits)

	w = h.post("/approve-payment", admin.ID, gin.H{"payment_request_id": pending.ID, "action": "approve"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "payment request already processed", decode(t, w)["error"])

	w = h.post("/approve-payment", admin.ID, gin.H{"payment_request_id": other.ID, "action": "reject"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Rejected", decode(t, w)["message"])

	w = h.post("/approve-payment", admin.ID, gin.H{"payment_request_id": "3c2b1a09-0000-4000-8000-000000000000", "action": "reject"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []string{"approve_payment", "reject_payment"}, testutil.AuditActions(t, h.db))
}

func webhook(b models.Booking) gin.H {
	return gin.H{"type": "INSERT", "table": "bookings", "record": b, "old_record": nil}
}

func TestSendBookingNotificationEndpoint(t *testing.T) {
	h := newHarness(t)
	testutil.SeedDriver(t, h.db, "SUV", 3)
	testutil.SeedDriver(t, h.db, "SUV", 3)
	testutil.SeedDriver(t, h.db, "Bus", 3)
	booking := testutil.SeedBooking(t, h.db, "SUV", 2)

	w := h.post("/send-booking-notification", "", webhook(booking))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.post("/send-booking-notification", "", webhook(booking), middleware.TriggerHeader, triggerSecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"count":2}`, w.Body.String())

	w = h.post("/send-booking-notification", "", webhook(booking), middleware.TriggerHeader, triggerSecret)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Duplicate prevented", w.Body.String())

	sent := booking
	sent.NotificationSent = true
	w = h.post("/send-booking-notification", "", webhook(sent), middleware.TriggerHeader, triggerSecret)
	assert.Equal(t, "Already notified", w.Body.String())

	closed := booking
	closed.Status = models.BookingCancelled
	w = h.post("/send-booking-notification", "", webhook(closed), middleware.TriggerHeader, triggerSecret)
	assert.Equal(t, "No action needed", w.Body.String())

	w = h.post("/send-booking-notification", "", gin.H{"type": "DELETE", "table": "bookings"}, middleware.TriggerHeader, triggerSecret)
	assert.Equal(t, "No action needed", w.Body.String())

	var entry models.AuditLog
	require.NoError(t, h.db.First(&entry, "action = ?", "send_booking_notification").Error)
	assert.Nil(t, entry.ActorID)
	assert.Equal(t, json.Number("2"), entry.Metadata["notified_driver_count"])
	assert.Equal(t, []string{"send_booking_notification"}, testutil.AuditActions(t, h.db))
}

func TestPoolSocketReceivesOffers(t *testing.T) {
	h := newHarness(t)
	driver := testutil.SeedDriver(t, h.db, "SUV", 3)
	booking := testutil.SeedBooking(t, h.db, "SUV", 2)

	srv := httptest.NewServer(h.handler)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/pool"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?device_token="+driver.Token.Token+"&token=bogus", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?device_token="+driver.Token.Token+"&token="+h.token(driver.Profile.ID), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.hub.Connected() == 1 }, time.Second, 10*time.Millisecond)

	w := h.post("/send-booking-notification", "", webhook(booking), middleware.TriggerHeader, triggerSecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var offer notify.Offer
	require.NoError(t, conn.ReadJSON(&offer))
	assert.Equal(t, booking.ID, offer.BookingID)
	assert.Equal(t, "SUV", offer.VehicleType)
}

func TestExpireSubscriptionsEndpoint(t *testing.T) {
	h := newHarness(t)
	testutil.SeedDriver(t, h.db, "SUV", 3, testutil.ExpiredSubscription())
	testutil.SeedDriver(t, h.db, "SUV", 3)

	w := h.post("/expire-subscriptions", "", nil, middleware.TriggerHeader, triggerSecret)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"expired_count":1}`, w.Body.String())

	w = h.post("/expire-subscriptions", "", nil, middleware.TriggerHeader, triggerSecret)
	assert.JSONEq(t, `{"success":true,"expired_count":0}`, w.Body.String())

	w = h.post("/expire-subscriptions", "", nil, middleware.TriggerHeader, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccountEndpoints(t *testing.T) {
	h := newHarness(t)
	busy := testutil.SeedDriver(t, h.db, "SUV", 3)
	idle := testutil.SeedDriver(t, h.db, "SUV", 3)
	booking := testutil.SeedBooking(t, h.db, "SUV", 2)
	require.Equal(t, http.StatusOK, h.post("/accept-booking", busy.Profile.ID, gin.H{"booking_id": booking.ID, "vehicle_id": busy.Vehicle.ID}).Code)

	w := h.post("/delete-account", busy.Profile.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Cannot delete account with active bookings", decode(t, w)["error"])

	w = h.post("/device-tokens", idle.Profile.ID, gin.H{"token": "fcm-new", "platform": "ios"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.post("/device-tokens", idle.Profile.ID, gin.H{"token": "fcm-new", "platform": "symbian"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.post("/delete-account", idle.Profile.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var n int64
	require.NoError(t, h.db.Model(&models.DeviceToken{}).Where("driver_id = ?", idle.Profile.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestHealthAndPreflight(t *testing.T) {
	h := newHarness(t)

	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/accept-booking", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}
