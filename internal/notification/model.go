package notification

import (
	"time"
)

// InAppNotification - per-user bell notifications about their application
type InAppNotification struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	ApplicationRef *uint     `gorm:"index" json:"application_ref,omitempty"`
	Title          string    `gorm:"size:150;not null" json:"title"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	Category       string    `gorm:"size:30;not null" json:"category"` // application, certificate, system
	IsRead         bool      `gorm:"default:false" json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FCMDeviceToken - stores user device tokens for push notifications
type FCMDeviceToken struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_user_token,unique" json:"user_id"`
	DeviceToken string    `gorm:"size:255;not null;index:idx_user_token,unique" json:"device_token"`
	DeviceType  string    `gorm:"size:20" json:"device_type"` // android, ios, web
	DeviceName  string    `gorm:"size:100" json:"device_name"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	LastUsedAt  time.Time `json:"last_used_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Event types published for vendor applications.
const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationApproved  = "application.approved"
	EventApplicationRejected  = "application.rejected"
	EventCertificateIssued    = "certificate.issued"
)

// ApplicationEvent is the message published to Kafka and fanned out to the
// vendor's inbox and devices.
type ApplicationEvent struct {
	Type           string    `json:"type"`
	ApplicationRef uint      `json:"application_ref"`
	ApplicationID  string    `json:"application_id"`
	UserID         uint      `json:"user_id"`
	VendorType     string    `json:"vendor_type"`
	Status         string    `json:"status"`
	Message        string    `json:"message,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
