// Package ledgerapi exposes the registries' read paths and the admin
// payment-recording writes over HTTP.
package ledgerapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/jharkhand-tourism-backend/internal/auditlog"
	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger"
	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger/legacy"
	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger/vendorreg"
	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
	"github.com/sharath018/jharkhand-tourism-backend/middleware"
)

type LegacyReader interface {
	GetStatistics(ctx context.Context) (*legacy.Statistics, error)
	VerifyCertificateByPAN(ctx context.Context, panHash string) (*legacy.Verification, error)
}

type VendorLedger interface {
	GetVendor(ctx context.Context, id uint64) (*vendorreg.Vendor, error)
	GetVendorByEmail(ctx context.Context, email string) (*vendorreg.Vendor, error)
	GetVendorsByType(ctx context.Context, vendorType string) ([]vendorreg.Vendor, error)
	GetTransactionByPaymentID(ctx context.Context, paymentID string) (*vendorreg.Transaction, error)
	GetTransactionsByType(ctx context.Context, txType string) ([]vendorreg.Transaction, error)
	CalculatePlatformFee(ctx context.Context, amount uint64) (uint64, error)
	GetRegistrationFee(ctx context.Context, vendorType string) (uint64, error)
	StoreVendorToPlatformTransaction(ctx context.Context, vendorID uint64, paymentID string, amount int64) (*vendorreg.Stored, error)
	StoreTouristToPlatformTransaction(ctx context.Context, touristID, paymentID string, amount int64) (*vendorreg.Stored, error)
}

type Handler struct {
	legacy LegacyReader
	vendor VendorLedger
	audit  auditlog.Service
}

func NewHandler(legacy LegacyReader, vendor VendorLedger, audit auditlog.Service) *Handler {
	return &Handler{legacy: legacy, vendor: vendor, audit: audit}
}

// GET /ledger/statistics
func (h *Handler) GetStatistics(c *gin.Context) {
	stats, err := h.legacy.GetStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "statistics": stats})
}

type verifyRequest struct {
	PAN string `json:"pan" binding:"required"`
}

// POST /ledger/verify
// An unknown PAN is a normal answer, not an error.
func (h *Handler) VerifyCertificate(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	panHash, err := legacy.HashPAN(req.PAN)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := h.legacy.VerifyCertificateByPAN(c.Request.Context(), panHash)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"found": false})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "certificate": v})
}

// GET /ledger/vendors/:id
func (h *Handler) GetVendor(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor ID"})
		return
	}
	v, err := h.vendor.GetVendor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// GET /ledger/vendors?email= or ?type=
func (h *Handler) FindVendors(c *gin.Context) {
	ctx := c.Request.Context()
	if email := c.Query("email"); email != "" {
		v, err := h.vendor.GetVendorByEmail(ctx, email)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
		return
	}

	raw := c.Query("type")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email or type is required"})
		return
	}
	category, ok := vendorprofile.ParseCategory(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": vendorprofile.ErrInvalidCategory.Error()})
		return
	}
	vendors, err := h.vendor.GetVendorsByType(ctx, string(category))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": vendors, "count": len(vendors)})
}

// GET /ledger/transactions/payment/:paymentId
func (h *Handler) GetTransactionByPayment(c *gin.Context) {
	tx, err := h.vendor.GetTransactionByPaymentID(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

var transactionTypes = map[string]bool{
	vendorreg.TxVendorToPlatform:  true,
	vendorreg.TxTouristToPlatform: true,
	vendorreg.TxTouristToVendor:   true,
}

// GET /ledger/transactions?type=
func (h *Handler) ListTransactions(c *gin.Context) {
	txType := c.Query("type")
	if !transactionTypes[txType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be VENDOR_TO_PLATFORM, TOURIST_TO_PLATFORM or TOURIST_TO_VENDOR"})
		return
	}
	txs, err := h.vendor.GetTransactionsByType(c.Request.Context(), txType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs, "count": len(txs)})
}

// GET /ledger/fees/platform?amount=
func (h *Handler) GetPlatformFee(c *gin.Context) {
	amount, err := strconv.ParseUint(c.Query("amount"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a non-negative integer in paise"})
		return
	}
	fee, err := h.vendor.CalculatePlatformFee(c.Request.Context(), amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount, "platformFee": fee})
}

// GET /ledger/fees/registration/:vendorType
func (h *Handler) GetRegistrationFee(c *gin.Context) {
	category, ok := vendorprofile.ParseCategory(c.Param("vendorType"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": vendorprofile.ErrInvalidCategory.Error()})
		return
	}
	fee, err := h.vendor.GetRegistrationFee(c.Request.Context(), string(category))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendorType": category, "registrationFee": fee})
}

type vendorPaymentRequest struct {
	VendorID  uint64 `json:"vendor_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
}

// POST /ledger/transactions/vendor-to-platform
func (h *Handler) RecordVendorPayment(c *gin.Context) {
	var req vendorPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	stored, err := h.vendor.StoreVendorToPlatformTransaction(c.Request.Context(), req.VendorID, req.PaymentID, req.Amount)
	h.recorded(c, vendorreg.TxVendorToPlatform, req.PaymentID, req.Amount, stored, err)
}

type touristPaymentRequest struct {
	TouristID string `json:"tourist_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
}

// POST /ledger/transactions/tourist-to-platform
func (h *Handler) RecordTouristPayment(c *gin.Context) {
	var req touristPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	stored, err := h.vendor.StoreTouristToPlatformTransaction(c.Request.Context(), req.TouristID, req.PaymentID, req.Amount)
	h.recorded(c, vendorreg.TxTouristToPlatform, req.PaymentID, req.Amount, stored, err)
}

func (h *Handler) recorded(c *gin.Context, txType, paymentID string, amount int64, stored *vendorreg.Stored, err error) {
	var actor *uint
	if id, ok := middleware.CurrentUserID(c); ok {
		actor = &id
	}
	details := map[string]interface{}{"type": txType, "payment_id": paymentID, "amount": amount}
	status := "success"
	if err != nil {
		details["error"] = err.Error()
		status = "failure"
	} else {
		details["transaction_id"] = stored.TransactionID
		details["tx_hash"] = stored.TxHash
	}
	h.audit.LogAction(c.Request.Context(), actor, nil, auditlog.ActionLedgerTransactionRecorded, details, middleware.GetIPFromContext(c), status)

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "transaction": stored})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found on ledger", "details": err.Error()})
	case errors.Is(err, ledger.ErrDuplicatePayment):
		c.JSON(http.StatusConflict, gin.H{"error": "Payment already recorded", "details": err.Error()})
	case errors.Is(err, ledger.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ledger unavailable", "details": err.Error()})
	case errors.Is(err, ledger.ErrRejected), errors.Is(err, ledger.ErrMalformed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Ledger request failed", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ledger request failed"})
	}
}
