package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
)

// Verifier confirms a receipt with the payment gateway.
type Verifier interface {
	Verify(ctx context.Context, r Receipt) error
}

type paymentFetcher interface {
	Fetch(paymentID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Order is handed to the client-side checkout.
type Order struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	RazorpayKey string `json:"razorpay_key"`
}

// RazorpayGateway creates registration-fee orders and verifies payments.
type RazorpayGateway struct {
	key      string
	secret   string
	payments paymentFetcher
	orders   orderCreator
}

func NewRazorpayGateway(key, secret string) *RazorpayGateway {
	client := razorpay.NewClient(key, secret)
	return &RazorpayGateway{
		key:      key,
		secret:   secret,
		payments: client.Payment,
		orders:   client.Order,
	}
}

// CreateOrder opens an order for the category's registration fee.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, userID uint, category vendorprofile.Category) (*Order, error) {
	fee, err := MinimumFee(category)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":          fee,
		"currency":        "INR",
		"payment_capture": 1,
		"notes": map[string]interface{}{
			"user_id":  userID,
			"category": string(category),
			"purpose":  "vendor_registration",
		},
	}

	order, err := g.orders.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: order create: %v", ErrGatewayFailure, err)
	}
	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("%w: order id missing from response", ErrGatewayFailure)
	}

	return &Order{OrderID: orderID, Amount: fee, Currency: "INR", RazorpayKey: g.key}, nil
}

// Verify checks the checkout signature when the client sent one, then asks
// the gateway whether the payment settled for at least the receipt amount.
func (g *RazorpayGateway) Verify(ctx context.Context, r Receipt) error {
	if r.OrderID != "" && r.Signature != "" {
		if !g.validSignature(r.OrderID, r.PaymentID, r.Signature) {
			return ErrInvalidSignature
		}
	}

	p, err := g.payments.Fetch(r.PaymentID, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: payment fetch: %v", ErrGatewayFailure, err)
	}

	status, _ := p["status"].(string)
	if status != "captured" && status != "authorized" {
		return fmt.Errorf("%w: status %q", ErrPaymentNotSettled, status)
	}

	amount, err := paise(p["amount"])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	if amount < r.Amount {
		return fmt.Errorf("%w: gateway %d, receipt %d", ErrAmountMismatch, amount, r.Amount)
	}

	log.Printf("✅ payment %s verified (%s, %d paise)", r.PaymentID, status, amount)
	return nil
}

func (g *RazorpayGateway) validSignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func paise(v interface{}) (int64, error) {
	switch val := v.(type) {
	case float64:
		return int64(val), nil
	case json.Number:
		return val.Int64()
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("unsupported amount type: %T", val)
	}
}
