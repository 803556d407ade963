package routes

import (
	"github.com/gin-gonic/gin"
)

func AccountRoutes(r *gin.Engine, o Options) {
	account := r.Group("/")
	account.Use(requireAuth(o))
	{
		account.POST("/delete-account", o.Controllers.DeleteAccount)
		account.POST("/device-tokens", o.Controllers.RegisterDeviceToken)
	}
}
