package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/sharath018/jharkhand-tourism-backend/internal/auditlog"
	"github.com/sharath018/jharkhand-tourism-backend/internal/contentstore"
	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger/legacy"
	"github.com/sharath018/jharkhand-tourism-backend/internal/notification"
	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
)

const maxExportRows = 10000

// LegacyRegistry is the part of the legacy ledger client used for reviews.
type LegacyRegistry interface {
	ApproveApplication(ctx context.Context, applicationID uint64, notes string, score int) (*legacy.Approval, error)
	RejectApplication(ctx context.Context, applicationID uint64, reason string) (string, error)
	GenerateCertificate(ctx context.Context, providerID uint64) (*legacy.Certificate, error)
	RenewCertificate(ctx context.Context, providerID uint64) (*legacy.Certificate, error)
}

type FileStore interface {
	UploadFile(ctx context.Context, file contentstore.FileUpload) (contentstore.UploadedFile, error)
}

type ProfileStore interface {
	GetUser(ctx context.Context, userID uint) (*vendorprofile.User, error)
	MarkApproved(ctx context.Context, userID uint, providerID *uint64) error
	MarkRejected(ctx context.Context, userID uint) error
}

type Notifier interface {
	Notify(ctx context.Context, evt notification.ApplicationEvent) error
}

type Service interface {
	List(ctx context.Context, filter Filter) (*ListResult, error)
	Get(ctx context.Context, id uint) (*Application, error)
	Approve(ctx context.Context, id uint, review Review) (*Application, error)
	Reject(ctx context.Context, id uint, review Review) (*Application, error)
	RenewCertificate(ctx context.Context, id uint, actorID uint, ip string) (*Certificate, error)
	Export(ctx context.Context, filter Filter, format string) ([]byte, string, string, error)
}

type service struct {
	repo     Repository
	registry LegacyRegistry
	files    FileStore
	profiles ProfileStore
	notifier Notifier
	audit    auditlog.Service
	exporter Exporter
	validity time.Duration
	now      func() time.Time
}

func NewService(
	repo Repository,
	registry LegacyRegistry,
	files FileStore,
	profiles ProfileStore,
	notifier Notifier,
	audit auditlog.Service,
	validityDays int,
) Service {
	if validityDays <= 0 {
		validityDays = 365
	}
	return &service{
		repo:     repo,
		registry: registry,
		files:    files,
		profiles: profiles,
		notifier: notifier,
		audit:    audit,
		exporter: NewExporter(),
		validity: time.Duration(validityDays) * 24 * time.Hour,
		now:      time.Now,
	}
}

func (s *service) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return &ListResult{
		Data:       apps,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Application, error) {
	return s.repo.GetByID(ctx, id)
}

// Approve moves a pending application to approved. When the application
// reached the legacy registry it is approved there first; a registry
// failure leaves the local record untouched.
func (s *service) Approve(ctx context.Context, id uint, review Review) (*Application, error) {
	if review.Score < 0 || review.Score > 100 {
		return nil, ErrInvalidScore
	}
	app, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	var providerID *uint64
	if app.LegacyApplicationID != nil {
		approval, err := s.registry.ApproveApplication(ctx, *app.LegacyApplicationID, review.Notes, review.Score)
		if err != nil {
			s.logReview(ctx, app, review, auditlog.ActionApplicationApproved, "failure", map[string]interface{}{"error": err.Error()})
			return nil, fmt.Errorf("approve on legacy registry: %w", err)
		}
		providerID = &approval.ProviderID
		log.Printf("✅ Application %s approved on legacy registry (provider %d, tx %s)", app.ApplicationID, approval.ProviderID, approval.TxHash)
	}

	if err := s.repo.MarkApproved(ctx, app.ID, review, providerID); err != nil {
		if providerID != nil {
			log.Printf("❌ Application %s approved on ledger but not locally, reconcile provider %d: %v", app.ApplicationID, *providerID, err)
		}
		return nil, err
	}
	if err := s.profiles.MarkApproved(ctx, app.UserID, providerID); err != nil {
		log.Printf("⚠️ Vendor profile for user %d not marked approved: %v", app.UserID, err)
	}
	s.logReview(ctx, app, review, auditlog.ActionApplicationApproved, "success", map[string]interface{}{
		"score":       review.Score,
		"provider_id": providerID,
	})

	app.Status = StatusApproved
	app.ProviderID = providerID
	s.notify(ctx, app, notification.EventApplicationApproved, "")

	if _, err := s.issueCertificate(ctx, app, nil); err != nil {
		log.Printf("⚠️ Certificate for application %s not issued, renew to retry: %v", app.ApplicationID, err)
	} else {
		s.logReview(ctx, app, review, auditlog.ActionCertificateIssued, "success", nil)
		s.notify(ctx, app, notification.EventCertificateIssued, "")
	}

	return s.repo.GetByID(ctx, app.ID)
}

// Reject is terminal. The reason is forwarded to the legacy registry when
// the application exists there.
func (s *service) Reject(ctx context.Context, id uint, review Review) (*Application, error) {
	review.Reason = strings.TrimSpace(review.Reason)
	if review.Reason == "" {
		return nil, ErrReasonRequired
	}
	app, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	if app.LegacyApplicationID != nil {
		txHash, err := s.registry.RejectApplication(ctx, *app.LegacyApplicationID, review.Reason)
		if err != nil {
			s.logReview(ctx, app, review, auditlog.ActionApplicationRejected, "failure", map[string]interface{}{"error": err.Error()})
			return nil, fmt.Errorf("reject on legacy registry: %w", err)
		}
		log.Printf("✅ Application %s rejected on legacy registry (tx %s)", app.ApplicationID, txHash)
	}

	if err := s.repo.MarkRejected(ctx, app.ID, review); err != nil {
		return nil, err
	}
	if err := s.profiles.MarkRejected(ctx, app.UserID); err != nil {
		log.Printf("⚠️ Vendor profile for user %d not marked rejected: %v", app.UserID, err)
	}
	s.logReview(ctx, app, review, auditlog.ActionApplicationRejected, "success", map[string]interface{}{"reason": review.Reason})

	app.Status = StatusRejected
	s.notify(ctx, app, notification.EventApplicationRejected, review.Reason)
	return s.repo.GetByID(ctx, app.ID)
}

// RenewCertificate issues a fresh certificate for an approved application,
// or the first one if issuing failed at approval time.
func (s *service) RenewCertificate(ctx context.Context, id uint, actorID uint, ip string) (*Certificate, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != StatusApproved {
		return nil, ErrInvalidTransition
	}

	cert, err := s.issueCertificate(ctx, app, app.Certificate)
	review := Review{ReviewerID: actorID, IP: ip}
	if err != nil {
		s.logReview(ctx, app, review, auditlog.ActionCertificateRenewed, "failure", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	action := auditlog.ActionCertificateIssued
	if app.Certificate != nil {
		action = auditlog.ActionCertificateRenewed
	}
	s.logReview(ctx, app, review, action, "success", map[string]interface{}{
		"content_hash": cert.ContentHash,
		"expires_at":   cert.ExpiresAt,
	})
	s.notify(ctx, app, notification.EventCertificateIssued, "")
	return cert, nil
}

// issueCertificate asks the legacy registry for a certificate when the
// vendor is a registered provider, renders the PDF, pins it and saves the
// row. existing is replaced in place.
func (s *service) issueCertificate(ctx context.Context, app *Application, existing *Certificate) (*Certificate, error) {
	issuedAt := s.now().UTC()
	cert := &Certificate{
		ApplicationRef: app.ID,
		ProviderID:     app.ProviderID,
		IssuedAt:       issuedAt,
		ExpiresAt:      issuedAt.Add(s.validity),
	}
	if existing != nil {
		cert.ID = existing.ID
		cert.CreatedAt = existing.CreatedAt
		cert.RenewedAt = &issuedAt
	}

	if app.ProviderID != nil {
		var (
			issued *legacy.Certificate
			err    error
		)
		if existing != nil && existing.CertificateHash != "" {
			issued, err = s.registry.RenewCertificate(ctx, *app.ProviderID)
		} else {
			issued, err = s.registry.GenerateCertificate(ctx, *app.ProviderID)
		}
		if err != nil {
			return nil, fmt.Errorf("ledger certificate: %w", err)
		}
		cert.CertificateHash = issued.CertificateHash
		cert.TxHash = issued.TxHash
	}

	vendorName := fmt.Sprintf("Vendor #%d", app.UserID)
	if user, err := s.profiles.GetUser(ctx, app.UserID); err == nil && user.FullName != "" {
		vendorName = user.FullName
	} else if err != nil && !errors.Is(err, vendorprofile.ErrUserNotFound) {
		log.Printf("⚠️ Could not load user %d for certificate: %v", app.UserID, err)
	}

	pdf, err := RenderCertificate(CertificateData{
		ApplicationID:   app.ApplicationID,
		VendorName:      vendorName,
		VendorType:      app.VendorType,
		ProviderID:      app.ProviderID,
		CertificateHash: cert.CertificateHash,
		IssuedAt:        cert.IssuedAt,
		ExpiresAt:       cert.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}

	uploaded, err := s.files.UploadFile(ctx, contentstore.FileUpload{
		Name:        fmt.Sprintf("certificate-%s-%d.pdf", app.ApplicationID, issuedAt.Unix()),
		ContentType: "application/pdf",
		Data:        pdf,
	})
	if err != nil {
		return nil, fmt.Errorf("upload certificate: %w", err)
	}
	cert.ContentHash = uploaded.Hash

	if err := s.repo.SaveCertificate(ctx, cert); err != nil {
		return nil, fmt.Errorf("save certificate: %w", err)
	}
	log.Printf("✅ Certificate for application %s stored as %s", app.ApplicationID, cert.ContentHash)
	return cert, nil
}

func (s *service) Export(ctx context.Context, filter Filter, format string) ([]byte, string, string, error) {
	filter.Page = 1
	filter.Limit = maxExportRows
	apps, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", "", fmt.Errorf("list applications: %w", err)
	}
	return s.exporter.Export(format, apps)
}

func (s *service) pending(ctx context.Context, id uint) (*Application, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != StatusPending {
		return nil, ErrInvalidTransition
	}
	return app, nil
}

func (s *service) logReview(ctx context.Context, app *Application, review Review, action, status string, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["application_id"] = app.ApplicationID
	details["vendor_user_id"] = app.UserID

	var actor *uint
	if review.ReviewerID != 0 {
		actor = &review.ReviewerID
	}
	ref := app.ID
	_ = s.audit.LogAction(ctx, actor, &ref, action, details, review.IP, status)
}

func (s *service) notify(ctx context.Context, app *Application, eventType, message string) {
	err := s.notifier.Notify(ctx, notification.ApplicationEvent{
		Type:           eventType,
		ApplicationRef: app.ID,
		ApplicationID:  app.ApplicationID,
		UserID:         app.UserID,
		VendorType:     app.VendorType,
		Status:         app.Status,
		Message:        message,
		OccurredAt:     s.now().UTC(),
	})
	if err != nil {
		log.Printf("⚠️ Notification %s for application %s incomplete: %v", eventType, app.ApplicationID, err)
	}
}
