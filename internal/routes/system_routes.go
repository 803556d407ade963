package routes

import (
	"github.com/gin-gonic/gin"

	"zing_pool/internal/middleware"
)

// SystemRoutes are called by the database webhook and the scheduler, not by users.
func SystemRoutes(r *gin.Engine, o Options) {
	r.GET("/healthz", o.Controllers.Health)

	system := r.Group("/")
	system.Use(middleware.RequireTriggerSecret(o.TriggerSecret))
	{
		system.POST("/send-booking-notification", o.Controllers.SendBookingNotification)
		system.POST("/expire-subscriptions", o.Controllers.ExpireSubscriptions)
	}
}
