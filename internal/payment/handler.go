package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
	"github.com/sharath018/jharkhand-tourism-backend/middleware"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, userID uint, category vendorprofile.Category) (*Order, error)
}

type Handler struct {
	orders OrderCreator
}

func NewHandler(orders OrderCreator) *Handler {
	return &Handler{orders: orders}
}

type createOrderRequest struct {
	VendorType string `json:"vendor_type" binding:"required"`
}

// POST /vendor/payments/order
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	category, ok := vendorprofile.ParseCategory(req.VendorType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrUnknownCategory.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), userID, category)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, order)
	case errors.Is(err, ErrUnknownCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrGatewayFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not create payment order", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create payment order"})
	}
}
