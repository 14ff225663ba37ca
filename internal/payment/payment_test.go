package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
)

type stubPayments struct {
	payment map[string]interface{}
	err     error
	fetched []string
}

func (s *stubPayments) Fetch(id string, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	s.fetched = append(s.fetched, id)
	return s.payment, s.err
}

type stubOrders struct {
	data  map[string]interface{}
	order map[string]interface{}
	err   error
}

func (s *stubOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	s.data = data
	return s.order, s.err
}

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestReceiptValidate(t *testing.T) {
	tests := []struct {
		name     string
		receipt  Receipt
		category vendorprofile.Category
		want     error
	}{
		{name: "guide at fee", receipt: Receipt{PaymentID: "pay_1", Amount: 10000}, category: vendorprofile.CategoryGuide},
		{name: "accommodation above fee", receipt: Receipt{PaymentID: "pay_1", Amount: 60000}, category: vendorprofile.CategoryAccommodation},
		{name: "missing id", receipt: Receipt{Amount: 10000}, category: vendorprofile.CategoryGuide, want: ErrMissingPaymentID},
		{name: "blank id", receipt: Receipt{PaymentID: "  ", Amount: 10000}, category: vendorprofile.CategoryGuide, want: ErrMissingPaymentID},
		{name: "below fee", receipt: Receipt{PaymentID: "pay_1", Amount: 24999}, category: vendorprofile.CategoryFoodRestaurant, want: ErrAmountBelowFee},
		{name: "unknown category", receipt: Receipt{PaymentID: "pay_1", Amount: 99999}, category: "SPA", want: ErrUnknownCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.receipt.Validate(tt.category)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMinimumFee(t *testing.T) {
	for _, c := range vendorprofile.Categories {
		fee, err := MinimumFee(c)
		require.NoError(t, err)
		assert.Positive(t, fee)
	}
	fee, _ := MinimumFee(vendorprofile.CategoryTransportation)
	assert.Equal(t, int64(20000), fee)
}

func TestRazorpayVerify(t *testing.T) {
	const secret = "rzp_secret"
	newGateway := func(p map[string]interface{}, err error) (*RazorpayGateway, *stubPayments) {
		stub := &stubPayments{payment: p, err: err}
		return &RazorpayGateway{secret: secret, payments: stub}, stub
	}

	t.Run("captured with valid signature", func(t *testing.T) {
		g, stub := newGateway(map[string]interface{}{"status": "captured", "amount": float64(10000)}, nil)
		r := Receipt{PaymentID: "pay_1", OrderID: "order_1", Signature: sign(secret, "order_1", "pay_1"), Amount: 10000}
		require.NoError(t, g.Verify(context.Background(), r))
		assert.Equal(t, []string{"pay_1"}, stub.fetched)
	})

	t.Run("authorized without signature", func(t *testing.T) {
		g, _ := newGateway(map[string]interface{}{"status": "authorized", "amount": json.Number("15000")}, nil)
		assert.NoError(t, g.Verify(context.Background(), Receipt{PaymentID: "pay_2", Amount: 15000}))
	})

	t.Run("bad signature skips fetch", func(t *testing.T) {
		g, stub := newGateway(nil, nil)
		err := g.Verify(context.Background(), Receipt{PaymentID: "pay_1", OrderID: "order_1", Signature: "deadbeef", Amount: 1})
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.Empty(t, stub.fetched)
	})

	t.Run("failed payment", func(t *testing.T) {
		g, _ := newGateway(map[string]interface{}{"status": "failed", "amount": float64(10000)}, nil)
		assert.ErrorIs(t, g.Verify(context.Background(), Receipt{PaymentID: "pay_1", Amount: 10000}), ErrPaymentNotSettled)
	})

	t.Run("gateway amount lower than receipt", func(t *testing.T) {
		g, _ := newGateway(map[string]interface{}{"status": "captured", "amount": float64(5000)}, nil)
		assert.ErrorIs(t, g.Verify(context.Background(), Receipt{PaymentID: "pay_1", Amount: 10000}), ErrAmountMismatch)
	})

	t.Run("gateway error", func(t *testing.T) {
		g, _ := newGateway(nil, errors.New("BAD_REQUEST_ERROR"))
		assert.ErrorIs(t, g.Verify(context.Background(), Receipt{PaymentID: "pay_1", Amount: 10000}), ErrGatewayFailure)
	})
}

func TestRazorpayCreateOrder(t *testing.T) {
	orders := &stubOrders{order: map[string]interface{}{"id": "order_9"}}
	g := &RazorpayGateway{key: "rzp_key", orders: orders}

	order, err := g.CreateOrder(context.Background(), 3, vendorprofile.CategoryActivity)
	require.NoError(t, err)
	assert.Equal(t, &Order{OrderID: "order_9", Amount: 15000, Currency: "INR", RazorpayKey: "rzp_key"}, order)
	assert.Equal(t, int64(15000), orders.data["amount"])

	_, err = (&RazorpayGateway{orders: &stubOrders{order: map[string]interface{}{}}}).CreateOrder(context.Background(), 3, vendorprofile.CategoryGuide)
	assert.ErrorIs(t, err, ErrGatewayFailure)

	_, err = g.CreateOrder(context.Background(), 3, "SPA")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestMemoryReplayGuard_ConcurrentClaims(t *testing.T) {
	guard := NewMemoryReplayGuard()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := guard.Claim(context.Background(), "pay_same")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	ok, err := guard.Claim(context.Background(), "pay_other")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryReplayGuard_ReleaseAllowsReclaim(t *testing.T) {
	guard := NewMemoryReplayGuard()
	ctx := context.Background()

	ok, err := guard.Claim(ctx, "pay_retry")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, guard.Release(ctx, "pay_retry"))
	ok, err = guard.Claim(ctx, "pay_retry")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.Claim(ctx, "pay_retry")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisReplayGuard_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	guard := NewRedisReplayGuard(client, time.Hour)
	_, err := guard.Claim(context.Background(), "pay_1")
	assert.Error(t, err)
	assert.Error(t, guard.Release(context.Background(), "pay_1"))
}
