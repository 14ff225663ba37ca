package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sharath018/jharkhand-tourism-backend/internal/application"
	"github.com/sharath018/jharkhand-tourism-backend/internal/auditlog"
	"github.com/sharath018/jharkhand-tourism-backend/internal/contentstore"
	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger/legacy"
	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger/vendorreg"
	"github.com/sharath018/jharkhand-tourism-backend/internal/notification"
	"github.com/sharath018/jharkhand-tourism-backend/internal/payment"
	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
)

type ContentStore interface {
	UploadFile(ctx context.Context, file contentstore.FileUpload) (contentstore.UploadedFile, error)
	UploadJSON(ctx context.Context, value any, name string) (string, error)
}

type LegacyRegistry interface {
	SubmitApplication(ctx context.Context, req legacy.SubmitRequest) (*legacy.Submission, error)
}

type VendorRegistry interface {
	RegisterVendor(ctx context.Context, in vendorreg.VendorRegistration) (*vendorreg.Registration, error)
}

type Profiles interface {
	GetUser(ctx context.Context, userID uint) (*vendorprofile.User, error)
	GetProfileByUserID(ctx context.Context, userID uint) (*vendorprofile.VendorProfile, error)
}

type Notifier interface {
	Notify(ctx context.Context, evt notification.ApplicationEvent) error
}

// Dependencies wires the orchestrator. Verifier may be nil, in which case
// receipts are only checked locally.
type Dependencies struct {
	Profiles      Profiles
	Content       ContentStore
	Legacy        LegacyRegistry
	Vendor        VendorRegistry
	Store         Store
	Verifier      payment.Verifier
	Notifier      Notifier
	Audit         auditlog.Service
	IDs           *snowflake.Node
	LedgerTimeout time.Duration
}

type Service interface {
	SubmitForm(ctx context.Context, userID uint, form FormData, files Files, receipt payment.Receipt, ip string) (*Result, error)
}

type service struct {
	Dependencies
	now func() time.Time
}

func NewService(deps Dependencies) Service {
	if deps.LedgerTimeout <= 0 {
		deps.LedgerTimeout = 30 * time.Second
	}
	return &service{Dependencies: deps, now: time.Now}
}

type legacyAttempt struct {
	submission *legacy.Submission
	panHash    string
	err        error
}

type vendorAttempt struct {
	registration *vendorreg.Registration
	err          error
}

// SubmitForm runs one vendor submission end to end: documents and form data
// are pinned first, then both registries are tried independently, and the
// result is saved with whatever identifiers they produced. Only the failure
// of both registries, or of any upload, aborts before the save.
func (s *service) SubmitForm(ctx context.Context, userID uint, form FormData, files Files, receipt payment.Receipt, ip string) (*Result, error) {
	correlationID := uuid.NewString()
	started := s.now().UTC()
	log.Printf("🔄 [%s] Submission started for user %d", correlationID, userID)

	// 1. user and category
	user, err := s.Profiles.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, vendorprofile.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	category, err := s.resolveCategory(ctx, userID, form)
	if err != nil {
		return nil, err
	}

	// 2. payment
	if err := receipt.Validate(category); err != nil {
		s.logFailure(ctx, userID, correlationID, ip, "payment", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayment, err)
	}
	if s.Verifier != nil {
		if err := s.Verifier.Verify(ctx, receipt); err != nil {
			s.logFailure(ctx, userID, correlationID, ip, "payment", err)
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayment, err)
		}
	}

	// 3. documents and manifest
	manifest, err := uploadDocuments(ctx, s.Content, files, started)
	if err != nil {
		s.logFailure(ctx, userID, correlationID, ip, "documents", err)
		return nil, fmt.Errorf("%w: %w", ErrDocumentUploadFailed, err)
	}
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		s.logFailure(ctx, userID, correlationID, ip, "manifest", err)
		return nil, fmt.Errorf("%w: encode manifest: %w", ErrDocumentUploadFailed, err)
	}
	documentsHash, err := s.Content.UploadJSON(ctx, manifest, fmt.Sprintf("documents-%d-%d.json", userID, started.Unix()))
	if err != nil {
		s.logFailure(ctx, userID, correlationID, ip, "manifest", err)
		return nil, fmt.Errorf("%w: manifest: %w", ErrDocumentUploadFailed, err)
	}
	highlight := findHighlight(category, manifest)
	log.Printf("✅ [%s] %d documents pinned, manifest %s", correlationID, manifest.Count(), documentsHash)

	// 4. sanitized form data
	applicationDataHash, err := s.Content.UploadJSON(ctx, sanitize(form, category), fmt.Sprintf("application-%d-%d.json", userID, started.Unix()))
	if err != nil {
		s.logFailure(ctx, userID, correlationID, ip, "form", err)
		return nil, fmt.Errorf("%w: form data: %w", ErrDocumentUploadFailed, err)
	}

	// 5./6. both registries, concurrently
	vendorRes, legacyRes := s.attemptLedgers(ctx, correlationID, form, user, category, receipt, applicationDataHash, documentsHash)
	if vendorRes.err != nil && legacyRes.err != nil {
		s.logFailure(ctx, userID, correlationID, ip, "ledgers", fmt.Errorf("vendor registry: %v; legacy registry: %v", vendorRes.err, legacyRes.err))
		return nil, fmt.Errorf("%w: vendor registry: %w; legacy registry: %w", ErrBothLedgersFailed, vendorRes.err, legacyRes.err)
	}

	// 7. application id
	applicationID, idSource := s.pickApplicationID(vendorRes, legacyRes)

	// 8. record
	app := &application.Application{
		ApplicationID:       applicationID,
		IDSource:            idSource,
		UserID:              userID,
		VendorType:          string(category),
		ApplicationDataHash: applicationDataHash,
		DocumentsHash:       documentsHash,
		Manifest:            datatypes.JSON(manifestJSON),
		RazorpayPaymentID:   receipt.PaymentID,
		RazorpayOrderID:     receipt.OrderID,
		RazorpayAmount:      receipt.Amount,
		Status:              application.StatusPending,
		CorrelationID:       correlationID,
	}
	pending := vendorprofile.PendingUpdate{UserID: userID, Category: category, ApplicationID: applicationID}

	if reg := vendorRes.registration; vendorRes.err == nil {
		vendorID := strconv.FormatUint(reg.VendorID, 10)
		app.VendorID = &vendorID
		if reg.TxHash != "" {
			txHash := reg.TxHash
			app.BlockchainTxHash = &txHash
		}
		pending.VendorLedgerID = &reg.VendorID
	}
	if sub := legacyRes.submission; legacyRes.err == nil {
		panHash := legacyRes.panHash
		legacyID := sub.ApplicationID
		legacyTx := sub.TxHash
		app.PANHash = &panHash
		app.LegacyApplicationID = &legacyID
		app.LegacyTxHash = &legacyTx
		pending.LegacyApplicationID = &legacyID
	}
	applyEvidence(app, category, form, highlight)

	// 9. documents
	docs := make([]application.Document, 0, manifest.Count())
	for _, key := range sortedKeys(manifest.Documents) {
		for _, f := range manifest.Documents[key] {
			docs = append(docs, application.Document{
				Category:    key,
				FileName:    f.OriginalName,
				IPFSHash:    f.Hash,
				Size:        f.Size,
				ContentType: f.Type,
			})
		}
	}

	// 10. one transaction for application, documents and profile
	if err := s.Store.Save(ctx, app, docs, pending); err != nil {
		perr := &PersistenceError{
			ApplicationID:       applicationID,
			LegacyApplicationID: pending.LegacyApplicationID,
			VendorID:            pending.VendorLedgerID,
			Err:                 err,
		}
		if app.BlockchainTxHash != nil {
			perr.TxHash = *app.BlockchainTxHash
		}
		log.Printf("❌ [%s] Ledgers accepted application %s but the local save failed: %v", correlationID, applicationID, err)
		s.Audit.LogAction(ctx, &userID, nil, auditlog.ActionReconciliationRequired, map[string]interface{}{
			"correlation_id":        correlationID,
			"application_id":        applicationID,
			"legacy_application_id": pending.LegacyApplicationID,
			"vendor_id":             pending.VendorLedgerID,
			"tx_hash":               perr.TxHash,
			"payment_id":            receipt.PaymentID,
			"error":                 err.Error(),
		}, ip, "failure")
		return nil, perr
	}

	// 11. result
	result := s.buildResult(app, vendorRes, legacyRes, correlationID)
	ref := app.ID
	s.Audit.LogAction(ctx, &userID, &ref, auditlog.ActionApplicationSubmitted, map[string]interface{}{
		"correlation_id": correlationID,
		"vendor_type":    app.VendorType,
		"payment_id":     receipt.PaymentID,
		"id_source":      idSource,
		"ledgers":        result.Ledgers,
	}, ip, "success")
	if err := s.Notifier.Notify(ctx, notification.ApplicationEvent{
		Type:           notification.EventApplicationSubmitted,
		ApplicationRef: app.ID,
		ApplicationID:  app.ApplicationID,
		UserID:         userID,
		VendorType:     app.VendorType,
		Status:         app.Status,
		OccurredAt:     s.now().UTC(),
	}); err != nil {
		log.Printf("⚠️ [%s] Submission notification incomplete: %v", correlationID, err)
	}

	log.Printf("✅ [%s] Application %s saved (%s)", correlationID, applicationID, result.Message)
	return result, nil
}

// resolveCategory takes the form's vendor type, falling back to the
// profile's. Only vendors without a pending or approved application may
// submit, and a deactivated profile never may.
func (s *service) resolveCategory(ctx context.Context, userID uint, form FormData) (vendorprofile.Category, error) {
	var category vendorprofile.Category
	if raw := form.field("vendorType"); raw != "" {
		parsed, ok := vendorprofile.ParseCategory(raw)
		if !ok {
			return "", fmt.Errorf("%w: %q", vendorprofile.ErrInvalidCategory, raw)
		}
		category = parsed
	}

	profile, err := s.Profiles.GetProfileByUserID(ctx, userID)
	if errors.Is(err, vendorprofile.ErrProfileNotFound) {
		if category == "" {
			return "", fmt.Errorf("%w: no vendor type in form and no profile", vendorprofile.ErrInvalidCategory)
		}
		return category, nil
	}
	if err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}

	if !profile.IsActive {
		return "", fmt.Errorf("%w: user %d", vendorprofile.ErrProfileInactive, userID)
	}
	if profile.RegistrationStatus == vendorprofile.StatusPending || profile.RegistrationStatus == vendorprofile.StatusApproved {
		if category != "" && category != profile.Category {
			return "", fmt.Errorf("%w: profile is %s", vendorprofile.ErrCategoryLocked, profile.Category)
		}
		return "", fmt.Errorf("%w: profile is %s", ErrAlreadyRegistered, profile.RegistrationStatus)
	}
	if category == "" {
		category = profile.Category
	}
	return category, nil
}

// attemptLedgers runs both registry calls at once, each under its own
// timeout. A failure on one side never cancels the other.
func (s *service) attemptLedgers(
	ctx context.Context,
	correlationID string,
	form FormData,
	user *vendorprofile.User,
	category vendorprofile.Category,
	receipt payment.Receipt,
	applicationDataHash, documentsHash string,
) (vendorAttempt, legacyAttempt) {
	var (
		wg        sync.WaitGroup
		vendorRes vendorAttempt
		legacyRes legacyAttempt
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		lctx, cancel := context.WithTimeout(ctx, s.LedgerTimeout)
		defer cancel()
		vendorRes.registration, vendorRes.err = s.Vendor.RegisterVendor(lctx, registration(form, user, category, receipt.PaymentID))
		if vendorRes.err != nil {
			log.Printf("⚠️ [%s] Vendor registry registration failed: %v", correlationID, vendorRes.err)
			return
		}
		log.Printf("✅ [%s] Vendor registry id %d (tx %s)", correlationID, vendorRes.registration.VendorID, vendorRes.registration.TxHash)
	}()

	go func() {
		defer wg.Done()
		panHash, err := legacy.HashPAN(form.field("panNumber", "pan"))
		if err != nil {
			legacyRes.err = err
			log.Printf("⚠️ [%s] Legacy registry skipped: %v", correlationID, err)
			return
		}
		legacyRes.panHash = panHash

		lctx, cancel := context.WithTimeout(ctx, s.LedgerTimeout)
		defer cancel()
		legacyRes.submission, legacyRes.err = s.Legacy.SubmitApplication(lctx, legacy.SubmitRequest{
			ServiceType:         string(category),
			PANHash:             panHash,
			ApplicationDataHash: applicationDataHash,
			DocumentsHash:       documentsHash,
			PaymentID:           receipt.PaymentID,
			PaymentAmount:       receipt.Amount,
		})
		if legacyRes.err != nil {
			log.Printf("⚠️ [%s] Legacy registry submission failed: %v", correlationID, legacyRes.err)
			return
		}
		log.Printf("✅ [%s] Legacy registry id %d via %s (tx %s)", correlationID, legacyRes.submission.ApplicationID, legacyRes.submission.IDSource, legacyRes.submission.TxHash)
	}()

	wg.Wait()
	return vendorRes, legacyRes
}

// pickApplicationID prefers the legacy id, then the vendor id. The local id
// is only reachable if a caller skips the both-failed check.
func (s *service) pickApplicationID(vendorRes vendorAttempt, legacyRes legacyAttempt) (string, string) {
	switch {
	case legacyRes.err == nil && legacyRes.submission != nil:
		return strconv.FormatUint(legacyRes.submission.ApplicationID, 10), LedgerLegacy
	case vendorRes.err == nil && vendorRes.registration != nil:
		return strconv.FormatUint(vendorRes.registration.VendorID, 10), LedgerVendor
	}
	if s.IDs != nil {
		return "local-" + s.IDs.Generate().String(), "local"
	}
	return "local-" + strconv.FormatInt(s.now().UnixMilli(), 10), "local"
}

func (s *service) buildResult(app *application.Application, vendorRes vendorAttempt, legacyRes legacyAttempt, correlationID string) *Result {
	result := &Result{
		Success:               true,
		ApplicationID:         app.ApplicationID,
		LegacyContractSuccess: legacyRes.err == nil,
		DocumentHash:          app.DocumentsHash,
		ApplicationDataHash:   app.ApplicationDataHash,
		CorrelationID:         correlationID,
	}
	if app.VendorID != nil {
		result.VendorID = *app.VendorID
	}
	if app.BlockchainTxHash != nil {
		result.BlockchainTxHash = *app.BlockchainTxHash
	}
	if app.LegacyApplicationID != nil {
		result.LegacyApplicationID = strconv.FormatUint(*app.LegacyApplicationID, 10)
	}
	if app.Photo != nil {
		result.Photo = *app.Photo
	}

	vendorOut := LedgerOutcome{Ledger: LedgerVendor, Success: vendorRes.err == nil}
	if vendorRes.err != nil {
		vendorOut.Error = vendorRes.err.Error()
	} else {
		vendorOut.ID = strconv.FormatUint(vendorRes.registration.VendorID, 10)
		vendorOut.TxHash = vendorRes.registration.TxHash
		vendorOut.ExplorerURL = vendorRes.registration.ExplorerURL
		result.ExplorerURL = vendorRes.registration.ExplorerURL
	}
	legacyOut := LedgerOutcome{Ledger: LedgerLegacy, Success: legacyRes.err == nil}
	if legacyRes.err != nil {
		legacyOut.Error = legacyRes.err.Error()
	} else {
		legacyOut.ID = strconv.FormatUint(legacyRes.submission.ApplicationID, 10)
		legacyOut.IDSource = string(legacyRes.submission.IDSource)
		legacyOut.TxHash = legacyRes.submission.TxHash
	}
	result.Ledgers = []LedgerOutcome{vendorOut, legacyOut}
	result.Message = resultMessage(vendorOut.Success, legacyOut.Success)
	return result
}

func resultMessage(vendorOK, legacyOK bool) string {
	switch {
	case vendorOK && legacyOK:
		return "Application submitted successfully to both registries"
	case vendorOK:
		return "Application submitted to the vendor registry; legacy registry submission failed"
	case legacyOK:
		return "Application submitted to the legacy registry; vendor registry registration failed"
	default:
		return "Application partially submitted with errors"
	}
}

func (s *service) logFailure(ctx context.Context, userID uint, correlationID, ip, stage string, err error) {
	log.Printf("❌ [%s] Submission failed at %s: %v", correlationID, stage, err)
	s.Audit.LogAction(ctx, &userID, nil, auditlog.ActionApplicationFailed, map[string]interface{}{
		"correlation_id": correlationID,
		"stage":          stage,
		"error":          err.Error(),
	}, ip, "failure")
}

func sortedKeys(m map[string][]contentstore.UploadedFile) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
