package routes

import (
	"time"

	"pcohire/handlers"
	"pcohire/middleware"
	"pcohire/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the booking workflow endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())

		partnerOnly := api.Group("")
		partnerOnly.Use(middleware.RequireRoles(models.RolePartner, models.RoleAdmin))
		partnerOnly.POST("/change-vehicle", hb.ChangeVehicleHandler)
		partnerOnly.POST("/change-vehicle/quote", hb.QuoteVehicleChangeHandler)

		parties := api.Group("")
		parties.Use(middleware.RequireRoles(models.RoleDriver, models.RolePartner, models.RoleAdmin))
		parties.POST("/request-return", hb.RequestReturnHandler)

		api.GET("/:id", hb.GetBookingHandler)
		api.GET("/:id/history", hb.GetBookingHistoryHandler)
	}
}

// RegisterNotificationRoutes sets up the caller's notification inbox endpoints.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", hb.ListNotificationsHandler)
		api.PATCH("/:id/read", hb.MarkNotificationRead)
		api.POST("/push-token", hb.RegisterPushToken)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
}
