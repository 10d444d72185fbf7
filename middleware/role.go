package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRoles rejects callers whose token role is not in roles. It must run
// after JWTAuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
			return
		}
		if !allowed[caller.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role " + caller.Role + " is not permitted for this action"})
			return
		}
		c.Next()
	}
}
