package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"zing_pool/internal/middleware"
	"zing_pool/internal/store"
)

// AcceptBooking lets a driver claim an open booking with one of their vehicles.
func (h *Controllers) AcceptBooking(c *gin.Context) {
	var input struct {
		BookingID string `json:"booking_id" binding:"required,uuid"`
		VehicleID string `json:"vehicle_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "booking_id and vehicle_id are required")
		return
	}

	driverID := middleware.CallerID(c)
	fields := logrus.Fields{"booking_id": input.BookingID, "driver_id": driverID, "vehicle_id": input.VehicleID}

	accepted, err := h.Users.AcceptBooking(c.Request.Context(), store.AcceptBookingParams{
		BookingID: input.BookingID,
		DriverID:  driverID,
		VehicleID: input.VehicleID,
	})
	if err != nil {
		abortWithError(c, err, fields)
		return
	}

	trip, err := accepted.Booking.TripGeoJSON()
	if err != nil {
		logrus.WithFields(fields).WithError(err).Warn("Could not render trip geometry")
	}

	logrus.WithFields(fields).WithField("remaining_credits", accepted.RemainingCredits).Info("Booking accepted")
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"booking":           accepted.Booking,
		"remaining_credits": accepted.RemainingCredits,
		"trip":              trip,
	})
}

// CancelBooking lets the assigned driver give a booking back.
func (h *Controllers) CancelBooking(c *gin.Context) {
	var input struct {
		BookingID string  `json:"booking_id" binding:"required,uuid"`
		Reason    *string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Missing booking_id")
		return
	}

	driverID := middleware.CallerID(c)
	fields := logrus.Fields{"booking_id": input.BookingID, "driver_id": driverID}

	err := h.Users.CancelBooking(c.Request.Context(), store.CancelBookingParams{
		BookingID: input.BookingID,
		DriverID:  driverID,
		Reason:    input.Reason,
	})
	if err != nil {
		abortWithError(c, err, fields)
		return
	}

	logrus.WithFields(fields).Info("Booking cancelled")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
