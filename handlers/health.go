package handlers

import (
	"net/http"

	"pcohire/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency probe. It answers 503 until every
// dependency has responded.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "dependencies": status})
}
