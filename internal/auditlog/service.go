package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"
)

// Common actions
const (
	ActionRoleSelected              = "VENDOR_ROLE_SELECTED"
	ActionApplicationSubmitted      = "APPLICATION_SUBMITTED"
	ActionApplicationFailed         = "APPLICATION_SUBMISSION_FAILED"
	ActionReconciliationRequired    = "APPLICATION_RECONCILIATION_REQUIRED"
	ActionApplicationApproved       = "APPLICATION_APPROVED"
	ActionApplicationRejected       = "APPLICATION_REJECTED"
	ActionCertificateIssued         = "CERTIFICATE_ISSUED"
	ActionCertificateRenewed        = "CERTIFICATE_RENEWED"
	ActionLedgerTransactionRecorded = "LEDGER_TRANSACTION_RECORDED"
)

type Service interface {
	LogAction(ctx context.Context, userID *uint, applicationRef *uint, action string, details map[string]interface{}, ip string, status string) error
	GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error)
	GetAuditLogByID(ctx context.Context, id uint) (*AuditLogResponse, error)
	GetStats(ctx context.Context, from, to time.Time) (*AuditLogStats, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// LogAction creates a new audit log entry. A failed write is logged and
// returned; callers generally ignore it.
func (s *service) LogAction(ctx context.Context, userID *uint, applicationRef *uint, action string, details map[string]interface{}, ip string, status string) error {
	if details == nil {
		details = make(map[string]interface{})
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	entry := &AuditLog{
		UserID:         userID,
		ApplicationRef: applicationRef,
		Action:         action,
		Details:        detailsJSON,
		IPAddress:      ip,
		Status:         status,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ audit log %s not written: %v", action, err)
		return err
	}
	return nil
}

// GetAuditLogs retrieves paginated audit logs with filters
func (s *service) GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	logs, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &PaginatedAuditLogs{
		Data:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// GetAuditLogByID retrieves a specific audit log by ID
func (s *service) GetAuditLogByID(ctx context.Context, id uint) (*AuditLogResponse, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("audit log not found: %w", err)
	}
	return entry, nil
}

// GetStats counts the window's entries by action, status and the vendor
// type of the application they refer to.
func (s *service) GetStats(ctx context.Context, from, to time.Time) (*AuditLogStats, error) {
	byAction, err := s.repo.CountBy(ctx, "action", from, to)
	if err != nil {
		return nil, fmt.Errorf("count by action: %w", err)
	}
	byStatus, err := s.repo.CountBy(ctx, "status", from, to)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	byVendorType, err := s.repo.CountBy(ctx, "vendor_type", from, to)
	if err != nil {
		return nil, fmt.Errorf("count by vendor type: %w", err)
	}

	stats := &AuditLogStats{
		From:                   from,
		To:                     to,
		SuccessCount:           byStatus["success"],
		ActionBreakdown:        byAction,
		VendorTypeBreakdown:    byVendorType,
		SubmissionsSucceeded:   byAction[ActionApplicationSubmitted],
		SubmissionsFailed:      byAction[ActionApplicationFailed],
		ReconciliationRequired: byAction[ActionReconciliationRequired],
	}
	for status, n := range byStatus {
		stats.Total += n
		if status != "success" {
			stats.FailureCount += n
		}
	}
	return stats, nil
}
