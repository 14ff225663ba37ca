package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

const documentBatchSize = 100

type Repository interface {
	Create(ctx context.Context, app *Application, docs []Document) error
	GetByID(ctx context.Context, id uint) (*Application, error)
	List(ctx context.Context, filter Filter) ([]Application, int64, error)
	MarkApproved(ctx context.Context, id uint, review Review, providerID *uint64) error
	MarkRejected(ctx context.Context, id uint, review Review) error
	SaveCertificate(ctx context.Context, cert *Certificate) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository works on a plain handle or on a transaction.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create validates and inserts the application, then its documents in one
// batch. Run it inside a transaction to keep the two together.
func (r *repository) Create(ctx context.Context, app *Application, docs []Document) error {
	if err := validate(app); err != nil {
		return err
	}
	if app.Status == "" {
		app.Status = StatusPending
	}

	db := r.db.WithContext(ctx)
	if err := db.Create(app).Error; err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	for i := range docs {
		docs[i].ApplicationRef = app.ID
	}
	return db.CreateInBatches(docs, documentBatchSize).Error
}

func validate(app *Application) error {
	var missing []string
	if strings.TrimSpace(app.ApplicationID) == "" {
		missing = append(missing, "applicationId")
	}
	if app.UserID == 0 {
		missing = append(missing, "user")
	}
	if strings.TrimSpace(app.VendorType) == "" {
		missing = append(missing, "vendorType")
	}
	if app.ApplicationDataHash == "" {
		missing = append(missing, "applicationDataHash")
	}
	if app.DocumentsHash == "" {
		missing = append(missing, "documentsHash")
	}
	if strings.TrimSpace(app.RazorpayPaymentID) == "" {
		missing = append(missing, "razorpayPaymentId")
	}
	if app.RazorpayAmount <= 0 {
		missing = append(missing, "razorpayAmount")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Application, error) {
	var app Application
	err := r.db.WithContext(ctx).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Certificate").
		First(&app, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&Application{})

	if filter.Status != "" {
		query = query.Where("status = ?", strings.ToLower(filter.Status))
	}
	if filter.VendorType != "" {
		query = query.Where("vendor_type = ?", strings.ToUpper(filter.VendorType))
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(application_id) LIKE ? OR LOWER(razorpay_payment_id) LIKE ?", like, like)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		query = query.Offset(offset).Limit(filter.Limit)
	}

	var apps []Application
	if err := query.Order("created_at DESC, id DESC").Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// MarkApproved and MarkRejected only move pending applications.
func (r *repository) MarkApproved(ctx context.Context, id uint, review Review, providerID *uint64) error {
	fields := map[string]interface{}{
		"status":       StatusApproved,
		"reviewed_by":  review.ReviewerID,
		"review_notes": review.Notes,
		"score":        review.Score,
		"approved_at":  time.Now(),
	}
	if providerID != nil {
		fields["provider_id"] = *providerID
	}
	return r.transition(ctx, id, fields)
}

func (r *repository) MarkRejected(ctx context.Context, id uint, review Review) error {
	return r.transition(ctx, id, map[string]interface{}{
		"status":           StatusRejected,
		"reviewed_by":      review.ReviewerID,
		"rejection_reason": review.Reason,
		"rejected_at":      time.Now(),
	})
}

func (r *repository) transition(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&Application{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&Application{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

// SaveCertificate inserts a new certificate or overwrites the existing row
// when ID is set.
func (r *repository) SaveCertificate(ctx context.Context, cert *Certificate) error {
	return r.db.WithContext(ctx).Save(cert).Error
}
