package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"zing_pool/internal/services"
)

// SendBookingNotification reacts to the bookings insert webhook.
func (h *Controllers) SendBookingNotification(c *gin.Context) {
	var event services.BookingEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		badRequest(c, "Invalid webhook payload")
		return
	}

	fields := logrus.Fields{"event": event.Type, "table": event.Table}
	if event.Record != nil {
		fields["booking_id"] = event.Record.ID
	}

	result, err := h.Fanout.Handle(c.Request.Context(), event.Record)
	if err != nil {
		abortWithError(c, err, fields)
		return
	}

	if result.Outcome != services.OutcomeSent {
		c.String(http.StatusOK, result.Outcome.String())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": result.NotifiedDrivers})
}

// ExpireSubscriptions runs one sweep, for the external scheduler.
func (h *Controllers) ExpireSubscriptions(c *gin.Context) {
	n, err := h.Sweeper.Sweep(c.Request.Context())
	if err != nil {
		abortWithError(c, err, logrus.Fields{"job": "expire_subscriptions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "expired_count": n})
}

func (h *Controllers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.System.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
