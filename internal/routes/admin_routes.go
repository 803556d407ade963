package routes

import (
	"github.com/gin-gonic/gin"

	"zing_pool/internal/middleware"
	"zing_pool/internal/models"
)

func AdminRoutes(r *gin.Engine, o Options) {
	admin := r.Group("/")
	admin.Use(requireAuth(o), middleware.RequireRole(o.Roles, models.RoleAdmin))
	{
		admin.POST("/verify-driver-kyc", o.Controllers.VerifyDriverKYC)
		admin.POST("/verify-vehicle", o.Controllers.VerifyVehicle)
		admin.POST("/approve-payment", o.Controllers.ApprovePayment)
	}
}
