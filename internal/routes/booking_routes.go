package routes

import (
	"github.com/gin-gonic/gin"
)

func BookingRoutes(r *gin.Engine, o Options) {
	booking := r.Group("/")
	booking.Use(requireAuth(o))
	{
		booking.POST("/accept-booking", o.Controllers.AcceptBooking)
		booking.POST("/cancel-booking", o.Controllers.CancelBooking)
	}
}
