package handlers

import (
	"net/http"
	"strconv"

	"pcohire/models"
	"pcohire/services/notification"
	"pcohire/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Service notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: svc}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// ListNotificationsHandler returns the caller's notifications, newest first.
func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	unreadOnly := c.Query("unread") == "true"

	items, err := h.Service.List(c.Request.Context(), caller, page, limit, unreadOnly)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "page": page, "limit": limit})
}

func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	if err := h.Service.MarkRead(c.Request.Context(), caller, c.Param("id")); err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NotificationHandler) RegisterPushTokenHandler(c *gin.Context) {
	var req models.PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "token is required"})
		return
	}
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	if err := h.Service.RegisterPushToken(c.Request.Context(), caller, req.Token); err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
