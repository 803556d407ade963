package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"zing_pool/internal/middleware"
	"zing_pool/internal/models"
	"zing_pool/internal/store"
)

const defaultApprovalCredits = 1000

func (h *Controllers) VerifyDriverKYC(c *gin.Context) {
	var input struct {
		DriverID        string  `json:"driver_id" binding:"required,uuid"`
		Status          string  `json:"status" binding:"required"`
		RejectionReason *string `json:"rejection_reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Missing driver_id or status")
		return
	}
	status, ok := models.ParseDecision(input.Status)
	if !ok {
		badRequest(c, "Invalid status value")
		return
	}

	adminID := middleware.CallerID(c)
	fields := logrus.Fields{"admin_id": adminID, "driver_id": input.DriverID, "status": status}

	err := h.Users.VerifyDriverKYC(c.Request.Context(), store.KYCDecision{
		AdminID:         adminID,
		DriverID:        input.DriverID,
		Status:          status,
		RejectionReason: input.RejectionReason,
	})
	if err != nil {
		abortWithError(c, err, fields)
		return
	}

	logrus.WithFields(fields).Info("Driver KYC updated")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Driver KYC updated successfully"})
}

func (h *Controllers) VerifyVehicle(c *gin.Context) {
	var input struct {
		VehicleID string `json:"vehicle_id" binding:"required,uuid"`
		Status    string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Missing vehicle_id or status")
		return
	}
	status, ok := models.ParseDecision(input.Status)
	if !ok {
		badRequest(c, "Invalid status value")
		return
	}

	adminID := middleware.CallerID(c)
	fields := logrus.Fields{"admin_id": adminID, "vehicle_id": input.VehicleID, "status": status}

	err := h.Users.VerifyVehicle(c.Request.Context(), store.VehicleDecision{
		AdminID:   adminID,
		VehicleID: input.VehicleID,
		Status:    status,
	})
	if err != nil {
		abortWithError(c, err, fields)
		return
	}

	logrus.WithFields(fields).Info("Vehicle status updated")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Vehicle status updated successfully"})
}

// ApprovePayment approves (granting credits) or rejects a pending payment request.
func (h *Controllers) ApprovePayment(c *gin.Context) {
	var input struct {
		PaymentRequestID string `json:"payment_request_id" binding:"required,uuid"`
		Action           string `json:"action" binding:"required"`
		AmountCredits    *int   `json:"amount_credits"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if input.Action != "approve" && input.Action != "reject" {
		badRequest(c, "Invalid action")
		return
	}

	adminID := middleware.CallerID(c)
	fields := logrus.Fields{"admin_id": adminID, "payment_request_id": input.PaymentRequestID, "action": input.Action}
	ctx := c.Request.Context()

	if input.Action == "reject" {
		if err := h.Users.RejectPayment(ctx, adminID, input.PaymentRequestID); err != nil {
			abortWithError(c, err, fields)
			return
		}
		entry := models.NewAudit(&adminID, "reject_payment", "payment_requests", input.PaymentRequestID, map[string]any{"action": "reject"})
		if err := h.System.WriteAudit(ctx, entry); err != nil {
			logrus.WithFields(fields).WithError(err).Error("Failed to write payment rejection audit entry")
		}
		logrus.WithFields(fields).Info("Payment rejected")
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Rejected"})
		return
	}

	credits := defaultApprovalCredits
	if input.AmountCredits != nil {
		credits = *input.AmountCredits
	}
	if credits <= 0 {
		badRequest(c, "Invalid credit amount")
		return
	}
	fields["credits"] = credits

	err := h.Users.ApprovePayment(ctx, store.PaymentApproval{
		AdminID:          adminID,
		PaymentRequestID: input.PaymentRequestID,
		Credits:          credits,
	})
	if err != nil {
		abortWithError(c, err, fields)
		return
	}

	logrus.WithFields(fields).Info("Payment approved")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Approved"})
}
