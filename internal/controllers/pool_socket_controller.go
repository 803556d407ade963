package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients send no stable Origin
	},
}

// PoolSocket streams live booking offers to a driver's device. Browsers and
// the app cannot set headers on the upgrade, so the bearer token comes in
// the query string.
func (h *Controllers) PoolSocket(c *gin.Context) {
	deviceToken := c.Query("device_token")
	if deviceToken == "" {
		badRequest(c, "device_token is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.AuthTimeout)
	driverID, err := h.Resolver.Resolve(ctx, c.Query("token"))
	cancel()
	if err != nil {
		abortWithError(c, err, nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithField("driver_id", driverID).WithError(err).Error("WebSocket upgrade failed")
		return
	}
	h.Pool.Listen(deviceToken, driverID, conn)
}
