package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints
	ChangeVehicleHandler      gin.HandlerFunc
	QuoteVehicleChangeHandler gin.HandlerFunc
	RequestReturnHandler      gin.HandlerFunc
	GetBookingHandler         gin.HandlerFunc
	GetBookingHistoryHandler  gin.HandlerFunc

	// Notification endpoints
	ListNotificationsHandler gin.HandlerFunc
	MarkNotificationRead     gin.HandlerFunc
	RegisterPushToken        gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires the handler structs into the bundle routes consume.
func NewHandlerBundle(bh *BookingHandler, nh *NotificationHandler) *HandlerBundle {
	return &HandlerBundle{
		ChangeVehicleHandler:      bh.ChangeVehicleHandler,
		QuoteVehicleChangeHandler: bh.QuoteVehicleChangeHandler,
		RequestReturnHandler:      bh.RequestReturnHandler,
		GetBookingHandler:         bh.GetBookingHandler,
		GetBookingHistoryHandler:  bh.GetBookingHistoryHandler,

		ListNotificationsHandler: nh.ListNotificationsHandler,
		MarkNotificationRead:     nh.MarkReadHandler,
		RegisterPushToken:        nh.RegisterPushTokenHandler,

		HealthHandler: HealthHandler,
	}
}
