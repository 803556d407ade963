package routes

import (
	"io"
	"net/http"
	"os"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"zing_pool/internal/controllers"
	"zing_pool/internal/middleware"
)

type Options struct {
	Controllers   *controllers.Controllers
	Roles         middleware.RoleLookup
	TriggerSecret string
	AccessLog     io.Writer
}

func SetupRouter(o Options) *gin.Engine {
	if o.AccessLog == nil {
		o.AccessLog = os.Stdout
	}

	r := gin.New()
	r.Use(ginlog.SetLogger(
		ginlog.WithWriter(o.AccessLog),
		ginlog.WithUTC(true),
		ginlog.WithSkipPath([]string{"/healthz"}),
	))
	r.Use(gin.Recovery())

	BookingRoutes(r, o)
	AdminRoutes(r, o)
	AccountRoutes(r, o)
	SystemRoutes(r, o)
	WebSocketRoutes(r, o)

	return r
}

// Handler is the router wrapped in CORS, ready for http.Server.
func Handler(o Options) http.Handler {
	return middleware.EnableCORS(SetupRouter(o))
}

func requireAuth(o Options) gin.HandlerFunc {
	return middleware.RequireAuth(o.Controllers.Resolver, o.Controllers.AuthTimeout)
}
