package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"zing_pool/internal/apperr"
	"zing_pool/internal/middleware"
	"zing_pool/internal/models"
	"zing_pool/internal/notify"
	"zing_pool/internal/services"
	"zing_pool/internal/store"
)

// UserStore is what handlers may do with the caller-scoped handle.
type UserStore interface {
	AcceptBooking(ctx context.Context, p store.AcceptBookingParams) (*store.AcceptedBooking, error)
	CancelBooking(ctx context.Context, p store.CancelBookingParams) error
	VerifyDriverKYC(ctx context.Context, d store.KYCDecision) error
	VerifyVehicle(ctx context.Context, d store.VehicleDecision) error
	ApprovePayment(ctx context.Context, a store.PaymentApproval) error
	RejectPayment(ctx context.Context, adminID, paymentRequestID string) error
	RegisterDeviceToken(ctx context.Context, driverID, token, platform string) error
}

// ServiceStore is what handlers may do with the service-role handle.
type ServiceStore interface {
	WriteAudit(ctx context.Context, entries ...models.AuditLog) error
	DeleteAccount(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

type Notifier interface {
	Handle(ctx context.Context, booking *models.Booking) (services.FanoutResult, error)
}

type Expirer interface {
	Sweep(ctx context.Context) (int, error)
}

// Controllers holds the dependencies shared by every handler.
type Controllers struct {
	Users       UserStore
	System      ServiceStore
	Fanout      Notifier
	Sweeper     Expirer
	Pool        *notify.PoolHub
	Resolver    middleware.IdentityResolver
	AuthTimeout time.Duration
}

// abortWithError maps err onto its status code. Unknown failures are logged
// in full and reported generically.
func abortWithError(c *gin.Context, err error, fields logrus.Fields) {
	kind := apperr.KindOf(err)
	entry := logrus.WithFields(fields).WithField("path", c.FullPath()).WithError(err)
	if kind == apperr.Unknown {
		entry.Error("Request failed")
	} else {
		entry.WithField("kind", kind.String()).Info("Request rejected")
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"error": apperr.PublicMessage(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
