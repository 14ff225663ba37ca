package application

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger"
	"github.com/sharath018/jharkhand-tourism-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GET /api/v1/admin/applications
func (h *Handler) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch applications"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/v1/admin/applications/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	app, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// POST /api/v1/admin/applications/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
		Score *int   `json:"score" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score is required"})
		return
	}

	reviewer, _ := middleware.CurrentUserID(c)
	app, err := h.service.Approve(c.Request.Context(), id, Review{
		ReviewerID: reviewer,
		Notes:      req.Notes,
		Score:      *req.Score,
		IP:         middleware.GetIPFromContext(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "application approved", "application": app})
}

// POST /api/v1/admin/applications/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	reviewer, _ := middleware.CurrentUserID(c)
	app, err := h.service.Reject(c.Request.Context(), id, Review{
		ReviewerID: reviewer,
		Reason:     req.Reason,
		IP:         middleware.GetIPFromContext(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "application rejected", "application": app})
}

// POST /api/v1/admin/applications/:id/certificate/renew
func (h *Handler) RenewCertificate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actor, _ := middleware.CurrentUserID(c)
	cert, err := h.service.RenewCertificate(c.Request.Context(), id, actor, middleware.GetIPFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "certificate issued", "certificate": cert})
}

// GET /api/v1/admin/applications/export?format=excel|csv|pdf
func (h *Handler) Export(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, filename, contentType, err := h.service.Export(c.Request.Context(), filter, c.DefaultQuery("format", FormatCSV))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return 0, false
	}
	return uint(id), true
}

func parseFilter(c *gin.Context) (Filter, error) {
	filter := Filter{
		Status:     c.Query("status"),
		VendorType: c.Query("vendor_type"),
		Search:     c.Query("search"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if raw := c.Query("user_id"); raw != "" {
		uid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, errors.New("invalid user_id")
		}
		filter.UserID = uint(uid)
	}
	if raw := c.Query("from_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errors.New("invalid from_date format. Use YYYY-MM-DD")
		}
		filter.FromDate = &t
	}
	if raw := c.Query("to_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errors.New("invalid to_date format. Use YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.ToDate = &end
	}
	return filter, nil
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidScore), errors.Is(err, ErrReasonRequired), errors.Is(err, ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ledger unavailable", "details": err.Error()})
	case errors.Is(err, ledger.ErrRejected), errors.Is(err, ledger.ErrMalformed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "ledger rejected the request", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}
