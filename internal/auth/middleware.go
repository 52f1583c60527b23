package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/eventnotify/server/internal/errors"
)

const (
	subjectKey = "subject"
	serviceKey = "service"
)

// requires a valid bearer token issued to a service
func ServiceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			return
		}

		if !claims.Service {
			errors.Forbidden(c, "service token required")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// lets anonymous requests through but rejects a token that doesn't validate.
// the token may also come from the token query parameter, since browsers can't
// set headers on websocket upgrades.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")

		if header := c.GetHeader("Authorization"); header != "" {
			var ok bool
			if token, ok = bearerToken(header); !ok {
				errors.Unauthorized(c, "invalid authorization header format")
				return
			}
		}

		if token != "" {
			claims, err := ValidateJWT(token)
			if err != nil {
				errors.Unauthorized(c, "invalid or expired token")
				return
			}

			setClaims(c, claims)
		}

		c.Next()
	}
}

// extracts the subject stored by one of the middlewares
func GetSubject(c *gin.Context) (string, bool) {
	subject := c.GetString(subjectKey)
	return subject, subject != ""
}

// reports whether the request was authenticated with a service token
func IsService(c *gin.Context) bool {
	return c.GetBool(serviceKey)
}

func bearerClaims(c *gin.Context) (*Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		errors.Unauthorized(c, "authorization header required")
		return nil, false
	}

	token, ok := bearerToken(header)
	if !ok {
		errors.Unauthorized(c, "invalid authorization header format")
		return nil, false
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		errors.Unauthorized(c, "invalid or expired token")
		return nil, false
	}

	return claims, true
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(subjectKey, claims.Subject)
	c.Set(serviceKey, claims.Service)
}
