package submission

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/jharkhand-tourism-backend/internal/contentstore"
	"github.com/sharath018/jharkhand-tourism-backend/internal/payment"
	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
	"github.com/sharath018/jharkhand-tourism-backend/middleware"
)

const (
	maxFileSize      = 10 << 20
	maxMultipartSize = 64 << 20
)

// receiptFields are multipart values, not file categories.
var receiptFields = map[string]bool{
	"formData": true, "paymentId": true, "orderId": true, "signature": true, "amount": true,
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// POST /api/v1/vendor/applications
// multipart: formData (JSON), paymentId, orderId, signature, amount (paise),
// and files under their category names.
func (h *Handler) Submit(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated"})
		return
	}

	if err := c.Request.ParseMultipartForm(maxMultipartSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid multipart form", "details": err.Error()})
		return
	}
	mf := c.Request.MultipartForm

	form := FormData{}
	if raw := c.PostForm("formData"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "formData must be a JSON object"})
			return
		}
	}

	// A missing amount is an unpaid receipt, left to payment validation.
	var amount int64
	if raw := strings.TrimSpace(c.PostForm("amount")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "amount must be an integer in paise"})
			return
		}
		amount = parsed
	}
	receipt := payment.Receipt{
		PaymentID: strings.TrimSpace(c.PostForm("paymentId")),
		OrderID:   strings.TrimSpace(c.PostForm("orderId")),
		Signature: strings.TrimSpace(c.PostForm("signature")),
		Amount:    amount,
	}

	files, err := readFiles(mf.File)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.service.SubmitForm(c.Request.Context(), userID, form, files, receipt, middleware.GetIPFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func readFiles(headers map[string][]*multipart.FileHeader) (Files, error) {
	files := Files{}
	for category, list := range headers {
		if receiptFields[category] {
			continue
		}
		for _, fh := range list {
			if fh.Size > maxFileSize {
				return nil, fmt.Errorf("%s exceeds the %d MB limit", fh.Filename, maxFileSize>>20)
			}
			data, err := readFile(fh)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
			}
			files[category] = append(files[category], contentstore.FileUpload{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxFileSize+1))
}

func respondError(c *gin.Context, err error) {
	var perr *PersistenceError
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, vendorprofile.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, vendorprofile.ErrProfileInactive):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, vendorprofile.ErrCategoryLocked), errors.Is(err, ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, ErrInvalidPayment):
		c.JSON(http.StatusPaymentRequired, gin.H{"success": false, "error": "payment could not be verified", "details": err.Error()})
	case errors.Is(err, ErrDocumentUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "document upload failed", "details": err.Error()})
	case errors.Is(err, ErrBothLedgersFailed):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "both registries rejected the application", "details": err.Error()})
	case errors.As(err, &perr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":        false,
			"error":          "database save failed",
			"application_id": perr.ApplicationID,
			"details":        perr.Err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "submission failed", "details": err.Error()})
	}
}
