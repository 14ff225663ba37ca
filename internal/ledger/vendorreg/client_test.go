package vendorreg

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger"
)

type fakeContract struct {
	receipt *ledger.Receipt
	sendErr error
	reads   map[string]json.RawMessage
	sent    []string
	args    [][]any
}

func (f *fakeContract) Send(ctx context.Context, fn string, args ...any) (*ledger.Receipt, error) {
	f.sent = append(f.sent, fn)
	f.args = append(f.args, args)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if f.receipt != nil {
		return f.receipt, nil
	}
	return &ledger.Receipt{TxHash: "0xtx", GasUsed: 52000}, nil
}

func (f *fakeContract) Call(ctx context.Context, fn string, args ...any) (json.RawMessage, error) {
	if raw, ok := f.reads[fn]; ok {
		return raw, nil
	}
	return nil, ledger.ErrNotFound
}

type claimer struct {
	seen map[string]bool
	err  error
}

func (c *claimer) Claim(ctx context.Context, paymentID string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	if c.seen[paymentID] {
		return false, nil
	}
	c.seen[paymentID] = true
	return true, nil
}

func (c *claimer) Release(ctx context.Context, paymentID string) error {
	delete(c.seen, paymentID)
	return nil
}

func registration() VendorRegistration {
	return VendorRegistration{
		Name:            "Netarhat Homestay",
		Email:           "stay@example.com",
		Contact:         "9800000000",
		VendorType:      "accommodation",
		BusinessAddress: "Netarhat, Latehar",
		PaymentID:       "pay_Q1",
	}
}

const vendorTuple = `[4, "Netarhat Homestay", "stay@example.com", "9800000000", "ACCOMMODATION", "Netarhat", "pay_Q1", 1760000000, true]`

func TestRegisterVendor_EventID(t *testing.T) {
	fake := &fakeContract{receipt: &ledger.Receipt{
		TxHash:  "0xreg",
		GasUsed: 91000,
		Logs:    []ledger.Log{{Event: "VendorRegistered", Args: []json.RawMessage{json.RawMessage(`"4"`)}}},
	}}

	reg, err := NewClient(fake, "https://explorer.example/").RegisterVendor(context.Background(), registration())
	require.NoError(t, err)
	assert.Equal(t, &Registration{
		VendorID:    4,
		TxHash:      "0xreg",
		GasUsed:     91000,
		ExplorerURL: "https://explorer.example/tx/0xreg",
	}, reg)
	assert.Equal(t, "ACCOMMODATION", fake.args[0][3])
}

func TestRegisterVendor_TotalCountFallback(t *testing.T) {
	fake := &fakeContract{reads: map[string]json.RawMessage{"getTotalVendors": json.RawMessage(`4`)}}

	reg, err := NewClient(fake, "").RegisterVendor(context.Background(), registration())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), reg.VendorID)
	assert.Empty(t, reg.ExplorerURL)
}

func TestRegisterVendor_AcceptsRepeatedPaymentByDefault(t *testing.T) {
	fake := &fakeContract{reads: map[string]json.RawMessage{
		"getTotalVendors":           json.RawMessage(`5`),
		"getTransactionByPaymentId": json.RawMessage(`[1, "pay_Q1", "", "", 50000, 0, "VENDOR_TO_PLATFORM", 4, 0]`),
	}}

	_, err := NewClient(fake, "").RegisterVendor(context.Background(), registration())
	require.NoError(t, err)
	assert.Equal(t, []string{"registerVendor"}, fake.sent)
}

func TestRegisterVendor_LedgerReplayCheck(t *testing.T) {
	seen := &fakeContract{reads: map[string]json.RawMessage{
		"getTransactionByPaymentId": json.RawMessage(`[1, "pay_Q1", "", "", 50000, 0, "VENDOR_TO_PLATFORM", 4, 0]`),
	}}
	_, err := NewClient(seen, "", WithLedgerReplayCheck()).RegisterVendor(context.Background(), registration())
	assert.ErrorIs(t, err, ledger.ErrDuplicatePayment)
	assert.Empty(t, seen.sent)

	fresh := &fakeContract{reads: map[string]json.RawMessage{
		"getTransactionByPaymentId": json.RawMessage(`[0, "", "", "", 0, 0, "", 0, 0]`),
		"getTotalVendors":           json.RawMessage(`1`),
	}}
	reg, err := NewClient(fresh, "", WithLedgerReplayCheck()).RegisterVendor(context.Background(), registration())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reg.VendorID)
}

func TestRegisterVendor_PaymentClaimer(t *testing.T) {
	c := &claimer{seen: map[string]bool{}}
	fake := &fakeContract{reads: map[string]json.RawMessage{"getTotalVendors": json.RawMessage(`1`)}}
	client := NewClient(fake, "", WithPaymentClaimer(c))

	_, err := client.RegisterVendor(context.Background(), registration())
	require.NoError(t, err)

	_, err = client.RegisterVendor(context.Background(), registration())
	assert.ErrorIs(t, err, ledger.ErrDuplicatePayment)
	assert.Len(t, fake.sent, 1)

	down := NewClient(fake, "", WithPaymentClaimer(&claimer{err: errors.New("redis down")}))
	_, err = down.RegisterVendor(context.Background(), registration())
	assert.ErrorIs(t, err, ledger.ErrUnavailable)
}

func TestRegisterVendor_FailedSendReleasesClaim(t *testing.T) {
	c := &claimer{seen: map[string]bool{}}
	fake := &fakeContract{
		sendErr: ledger.ErrUnavailable,
		reads:   map[string]json.RawMessage{"getTotalVendors": json.RawMessage(`1`)},
	}
	client := NewClient(fake, "", WithPaymentClaimer(c))

	_, err := client.RegisterVendor(context.Background(), registration())
	assert.ErrorIs(t, err, ledger.ErrUnavailable)
	assert.False(t, c.seen["pay_Q1"])

	fake.sendErr = nil
	reg, err := client.RegisterVendor(context.Background(), registration())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reg.VendorID)
	assert.Len(t, fake.sent, 2)
	assert.True(t, c.seen["pay_Q1"])
}

func TestRegisterVendor_UnrecoverableIDKeepsClaim(t *testing.T) {
	c := &claimer{seen: map[string]bool{}}
	fake := &fakeContract{}
	client := NewClient(fake, "", WithPaymentClaimer(c))

	_, err := client.RegisterVendor(context.Background(), registration())
	require.Error(t, err)
	assert.True(t, c.seen["pay_Q1"])

	_, err = client.RegisterVendor(context.Background(), registration())
	assert.ErrorIs(t, err, ledger.ErrDuplicatePayment)
	assert.Len(t, fake.sent, 1)
}

func TestRegisterVendor_Errors(t *testing.T) {
	missing := registration()
	missing.Email = ""
	_, err := NewClient(&fakeContract{}, "").RegisterVendor(context.Background(), missing)
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = NewClient(&fakeContract{sendErr: ledger.ErrUnavailable}, "").RegisterVendor(context.Background(), registration())
	var le *ledger.Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, Ledger, le.Ledger)
	assert.Equal(t, "registerVendor", le.Op)
	assert.ErrorIs(t, err, ledger.ErrUnavailable)
}

func TestStoreTransactions(t *testing.T) {
	fake := &fakeContract{receipt: &ledger.Receipt{
		TxHash: "0xstore",
		Logs:   []ledger.Log{{Event: "TransactionStored", Args: []json.RawMessage{json.RawMessage(`21`)}}},
	}}
	client := NewClient(fake, "")

	stored, err := client.StoreVendorToPlatformTransaction(context.Background(), 4, "pay_1", 50000)
	require.NoError(t, err)
	assert.Equal(t, uint64(21), stored.TransactionID)

	_, err = client.StoreTouristToPlatformTransaction(context.Background(), "tourist-1", "pay_2", 1200)
	require.NoError(t, err)

	_, err = client.StoreTransaction(context.Background(), TransactionInput{PaymentID: "pay_3", Type: TxTouristToVendor, Amount: 900, VendorID: 4})
	require.NoError(t, err)

	_, err = client.StoreVendorToPlatformTransaction(context.Background(), 0, "pay_1", 50000)
	assert.ErrorIs(t, err, ErrMissingField)

	assert.Equal(t, []string{"storeVendorToPlatformTransaction", "storeTouristToPlatformTransaction", "storeTransaction"}, fake.sent)
}

func TestLookups(t *testing.T) {
	fake := &fakeContract{reads: map[string]json.RawMessage{
		"getVendor":             json.RawMessage(vendorTuple),
		"getVendorsByType":      json.RawMessage(`[` + vendorTuple + `, [0, "", "", "", "", "", "", 0, false]]`),
		"getTransactionsByType": json.RawMessage(`[[3, "pay_3", "tourist-1", "platform", 1200, 60, "TOURIST_TO_PLATFORM", 0, 1760000000]]`),
		"calculatePlatformFee":  json.RawMessage(`"250"`),
		"getRegistrationFee":    json.RawMessage(`50000`),
	}}
	client := NewClient(fake, "")
	ctx := context.Background()

	v, err := client.GetVendor(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Netarhat Homestay", v.Name)
	assert.True(t, v.IsActive)

	_, err = client.GetVendorByEmail(ctx, "nobody@example.com")
	assert.True(t, ledger.IsNotFound(err))

	vendors, err := client.GetVendorsByType(ctx, "accommodation")
	require.NoError(t, err)
	assert.Len(t, vendors, 1)

	txs, err := client.GetTransactionsByType(ctx, TxTouristToPlatform)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, uint64(60), txs[0].PlatformFee)

	fee, err := client.CalculatePlatformFee(ctx, 5000)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), fee)

	regFee, err := client.GetRegistrationFee(ctx, "ACCOMMODATION")
	require.NoError(t, err)
	assert.Equal(t, uint64(50000), regFee)

	_, err = client.GetTransactionByPaymentID(ctx, "pay_missing")
	assert.True(t, ledger.IsNotFound(err))
}
