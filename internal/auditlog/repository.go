package auditlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error)
	GetByID(ctx context.Context, id uint) (*AuditLogResponse, error)
	CountBy(ctx context.Context, column string, from, to time.Time) (map[string]int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

const selectWithNames = `
	al.id, al.user_id, al.application_ref, al.action,
	al.details, al.ip_address, al.status, al.created_at,
	u.full_name as user_name,
	a.application_id as application_id,
	a.vendor_type as vendor_type
`

func (r *repository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("audit_logs al").
		Select(selectWithNames).
		Joins("LEFT JOIN users u ON al.user_id = u.id").
		Joins("LEFT JOIN applications a ON al.application_ref = a.id")
}

// Create inserts a new audit log entry
func (r *repository) Create(ctx context.Context, log *AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetByFilter retrieves audit logs with filtering and pagination
func (r *repository) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error) {
	var logs []AuditLogResponse
	var total int64

	query := r.base(ctx)

	if filter.UserID != nil {
		query = query.Where("al.user_id = ?", *filter.UserID)
	}
	if filter.ApplicationRef != nil {
		query = query.Where("al.application_ref = ?", *filter.ApplicationRef)
	}
	if filter.ApplicationID != "" {
		query = query.Where("a.application_id = ?", filter.ApplicationID)
	}
	if filter.VendorType != "" {
		query = query.Where("a.vendor_type = ?", strings.ToUpper(filter.VendorType))
	}
	if filter.Action != "" {
		query = query.Where("LOWER(al.action) LIKE ?", "%"+strings.ToLower(filter.Action)+"%")
	}
	if filter.Status != "" {
		query = query.Where("al.status = ?", filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("al.created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("al.created_at <= ?", *filter.ToDate)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Order("al.created_at DESC, al.id DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// GetByID retrieves a specific audit log by ID
func (r *repository) GetByID(ctx context.Context, id uint) (*AuditLogResponse, error) {
	var log AuditLogResponse
	if err := r.base(ctx).Where("al.id = ?", id).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// countColumns are the groupings CountBy accepts.
var countColumns = map[string]string{
	"action":      "al.action",
	"status":      "al.status",
	"vendor_type": "a.vendor_type",
}

// CountBy groups the window's entries by one column. Entries without an
// application have no vendor type and are left out of that grouping.
func (r *repository) CountBy(ctx context.Context, column string, from, to time.Time) (map[string]int64, error) {
	expr, ok := countColumns[column]
	if !ok {
		return nil, fmt.Errorf("unsupported audit log grouping %q", column)
	}

	var rows []struct {
		GroupKey string
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Table("audit_logs al").
		Select(expr + " AS group_key, COUNT(*) AS total").
		Joins("LEFT JOIN applications a ON al.application_ref = a.id").
		Where("al.created_at >= ? AND al.created_at <= ?", from, to).
		Where(expr + " IS NOT NULL").
		Group(expr).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupKey] = row.Total
	}
	return counts, nil
}
