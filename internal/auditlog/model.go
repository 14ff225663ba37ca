package auditlog

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog represents the audit_logs table
type AuditLog struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         *uint          `gorm:"index" json:"user_id"`         // nullable (system actions)
	ApplicationRef *uint          `gorm:"index" json:"application_ref"` // nullable (vendor applications only)
	Action         string         `gorm:"size:100;not null;index" json:"action"`
	Details        datatypes.JSON `json:"details"`
	IPAddress      string         `gorm:"size:45" json:"ip_address"`
	Status         string         `gorm:"size:20;not null;index" json:"status"` // success/failure
	CreatedAt      time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName overrides table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogResponse represents the audit log response for API
type AuditLogResponse struct {
	ID             uint           `json:"id"`
	UserID         *uint          `json:"user_id"`
	ApplicationRef *uint          `json:"application_ref"`
	Action         string         `json:"action"`
	Details        datatypes.JSON `json:"details"`
	IPAddress      string         `json:"ip_address"`
	Status         string         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	// Joined from users and applications
	UserName      *string `json:"user_name,omitempty"`
	ApplicationID *string `json:"application_id,omitempty"`
	VendorType    *string `json:"vendor_type,omitempty"`
}

// AuditLogFilter represents filters for querying audit logs
type AuditLogFilter struct {
	UserID         *uint      `json:"user_id"`
	ApplicationRef *uint      `json:"application_ref"`
	ApplicationID  string     `json:"application_id"` // ledger-assigned id
	VendorType     string     `json:"vendor_type"`
	Action         string     `json:"action"`
	Status         string     `json:"status"`
	FromDate       *time.Time `json:"from_date"`
	ToDate         *time.Time `json:"to_date"`
	Page           int        `json:"page"`
	Limit          int        `json:"limit"`
}

// PaginatedAuditLogs represents paginated audit log response
type PaginatedAuditLogs struct {
	Data       []AuditLogResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// AuditLogStats summarises a window of vendor activity.
type AuditLogStats struct {
	From                   time.Time        `json:"from"`
	To                     time.Time        `json:"to"`
	Total                  int64            `json:"total"`
	SuccessCount           int64            `json:"success_count"`
	FailureCount           int64            `json:"failure_count"`
	ActionBreakdown        map[string]int64 `json:"action_breakdown"`
	VendorTypeBreakdown    map[string]int64 `json:"vendor_type_breakdown"`
	SubmissionsSucceeded   int64            `json:"submissions_succeeded"`
	SubmissionsFailed      int64            `json:"submissions_failed"`
	ReconciliationRequired int64            `json:"reconciliation_required"`
}
