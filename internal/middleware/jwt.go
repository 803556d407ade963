package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"zing_pool/internal/apperr"
)

const callerKey = "caller_id"

// IdentityResolver turns a bearer token into the caller's user id.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// JWTResolver verifies HS256 tokens issued by the identity provider.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (r *JWTResolver) Resolve(ctx context.Context, token string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperr.Wrap(apperr.Unauthenticated, "Unauthorized", err)
	}
	if token == "" {
		return "", apperr.New(apperr.Unauthenticated, "Missing Authorization header")
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", apperr.Wrap(apperr.Unauthenticated, "Invalid or expired token", err)
	}
	if claims.Subject == "" {
		return "", apperr.New(apperr.Unauthenticated, "Invalid token claims")
	}
	return claims.Subject, nil
}

// Issue signs a token for subject. Used by local tooling and tests; real
// tokens come from the identity provider.
func (r *JWTResolver) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.New(apperr.Unauthenticated, "Missing Authorization header")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", apperr.New(apperr.Unauthenticated, "Missing or invalid Authorization header")
	}
	return strings.TrimSpace(token), nil
}

// RequireAuth resolves the caller before anything else runs.
func RequireAuth(resolver IdentityResolver, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthenticated(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		callerID, err := resolver.Resolve(ctx, token)
		if err != nil {
			abortUnauthenticated(c, err)
			return
		}

		c.Set(callerKey, callerID)
		c.Next()
	}
}

// CallerID returns the id stored by RequireAuth.
func CallerID(c *gin.Context) string {
	return c.GetString(callerKey)
}

func abortUnauthenticated(c *gin.Context, err error) {
	logrus.WithFields(logrus.Fields{"path": c.FullPath()}).WithError(err).Debug("Rejected unauthenticated request")

	msg := "Unauthorized"
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind == apperr.Unauthenticated {
		msg = ae.Msg
	}
	c.AbortWithStatusJSON(apperr.Unauthenticated.HTTPStatus(), gin.H{"error": msg})
}
