package models

import "time"

// Recipient and actor types.
const (
	RoleDriver     = "driver"
	RolePartner    = "partner"
	RoleAdmin      = "admin"
	RoleOperations = "operations"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification types emitted by the booking workflows.
const (
	NotificationVehicleChanged   = "vehicle_changed"
	NotificationReturnRequested  = "return_requested"
	NotificationReturnApproved   = "return_approved"
	NotificationReturnRejected   = "return_rejected"
	NotificationAdminAlert       = "admin_alert"
	NotificationAdminActionAlert = "admin_action_required"
)

// Notification is a directed message. Rows are written once; only Read and Delivered change later.
type Notification struct {
	ID             string         `bson:"id" json:"id"`
	RecipientID    string         `bson:"recipient_id" json:"recipient_id"`
	RecipientType  string         `bson:"recipient_type" json:"recipient_type"`
	Type           string         `bson:"type" json:"type"`
	Title          string         `bson:"title" json:"title"`
	Message        string         `bson:"message" json:"message"`
	Priority       string         `bson:"priority" json:"priority"`
	Data           map[string]any `bson:"data,omitempty" json:"data,omitempty"`
	TargetRoles    []string       `bson:"target_roles,omitempty" json:"target_roles,omitempty"`
	RequiresAction bool           `bson:"requires_action" json:"requires_action"`
	Enhanced       bool           `bson:"enhanced" json:"enhanced"`
	Read           bool           `bson:"read" json:"read"`
	Delivered      bool           `bson:"delivered" json:"delivered"`
	DeliveredAt    *time.Time     `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	CreatedAt      time.Time      `bson:"created_at" json:"created_at"`
}

// PushToken maps a recipient to its most recent FCM registration token.
type PushToken struct {
	RecipientID   string    `bson:"recipient_id" json:"recipient_id"`
	RecipientType string    `bson:"recipient_type" json:"recipient_type"`
	Token         string    `bson:"token" json:"token"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// NotificationTaskPayload is the queued delivery job for one notification row.
type NotificationTaskPayload struct {
	NotificationID string `json:"notificationId"`
}
