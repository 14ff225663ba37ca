package vendorprofile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/jharkhand-tourism-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

type selectRoleRequest struct {
	Category string `json:"category" binding:"required"`
}

// POST /vendor/role
func (h *Handler) SelectRole(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var req selectRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	profile, err := h.service.SelectRole(c.Request.Context(), userID, req.Category, middleware.GetIPFromContext(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Vendor category selected", "profile": profile})
	case errors.Is(err, ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, ErrCategoryLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to select category"})
	}
}

// GET /vendor/profile
func (h *Handler) GetMyProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DELETE /vendor/profile deactivates; the row is kept.
func (h *Handler) Deactivate(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), userID, middleware.GetIPFromContext(c)); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vendor profile deactivated"})
}
