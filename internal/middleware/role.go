package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"zing_pool/internal/apperr"
	"zing_pool/internal/models"
)

// RoleLookup reads a caller's role from the user-scoped store handle.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (models.Role, error)
}

// RequireRole must run after RequireAuth. A missing profile counts as the
// wrong role.
func RequireRole(lookup RoleLookup, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID := CallerID(c)

		got, err := lookup.RoleOf(c.Request.Context(), callerID)
		switch {
		case apperr.Is(err, apperr.NotFound):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		case err != nil:
			logrus.WithFields(logrus.Fields{"caller_id": callerID, "role": role}).WithError(err).Error("Role lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		case got != role:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: " + string(role) + "s only"})
			return
		}

		c.Next()
	}
}
