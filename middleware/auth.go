package middleware

import (
	"net/http"
	"strings"

	"pcohire/models"
	"pcohire/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const callerKey = "caller"

// JWTAuthMiddleware verifies the bearer token and stores the caller identity.
// Tokens are issued elsewhere; only the signature, expiry and claims are checked here.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		caller, err := utils.CallerFromToken(tokenString)
		if err != nil {
			zap.L().Debug("token rejected", zap.String("ip", getClientIP(c)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(callerKey, caller)
		if l, ok := c.Get(loggerKey); ok {
			if logger, ok := l.(*zap.Logger); ok {
				c.Set(loggerKey, logger.With(zap.String("caller_id", caller.ID), zap.String("caller_role", caller.Role)))
			}
		}
		c.Next()
	}
}

// CallerFromContext returns the identity stored by JWTAuthMiddleware.
func CallerFromContext(c *gin.Context) (models.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return models.Caller{}, false
	}
	caller, ok := v.(models.Caller)
	return caller, ok
}
