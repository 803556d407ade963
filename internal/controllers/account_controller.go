package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"zing_pool/internal/middleware"
)

// DeleteAccount removes the caller and everything they own, unless they
// still hold an active booking.
func (h *Controllers) DeleteAccount(c *gin.Context) {
	userID := middleware.CallerID(c)
	fields := logrus.Fields{"user_id": userID}

	if err := h.System.DeleteAccount(c.Request.Context(), userID); err != nil {
		abortWithError(c, err, fields)
		return
	}

	logrus.WithFields(fields).Info("Account deleted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterDeviceToken stores the caller's push token.
func (h *Controllers) RegisterDeviceToken(c *gin.Context) {
	var input struct {
		Token    string `json:"token" binding:"required,max=4096"`
		Platform string `json:"platform" binding:"required,oneof=android ios web"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid device token input: "+err.Error())
		return
	}

	driverID := middleware.CallerID(c)
	if err := h.Users.RegisterDeviceToken(c.Request.Context(), driverID, input.Token, input.Platform); err != nil {
		abortWithError(c, err, logrus.Fields{"driver_id": driverID, "platform": input.Platform})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
