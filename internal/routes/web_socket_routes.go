package routes

import (
	"github.com/gin-gonic/gin"
)

func WebSocketRoutes(r *gin.Engine, o Options) {
	r.GET("/ws/pool", o.Controllers.PoolSocket)
}
