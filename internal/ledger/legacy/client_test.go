package legacy

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger"
)

type sentCall struct {
	fn   string
	args []any
}

type fakeContract struct {
	receipts map[string]*ledger.Receipt
	sendErr  map[string]error
	reads    map[string]json.RawMessage
	sent     []sentCall
	called   []string
}

func (f *fakeContract) Send(ctx context.Context, fn string, args ...any) (*ledger.Receipt, error) {
	f.sent = append(f.sent, sentCall{fn: fn, args: args})
	if err := f.sendErr[fn]; err != nil {
		return nil, err
	}
	if r, ok := f.receipts[fn]; ok {
		return r, nil
	}
	return &ledger.Receipt{TxHash: "0x" + fn}, nil
}

func (f *fakeContract) Call(ctx context.Context, fn string, args ...any) (json.RawMessage, error) {
	f.called = append(f.called, fn)
	if raw, ok := f.reads[fn]; ok {
		return raw, nil
	}
	return nil, ledger.ErrNotFound
}

func args(values ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		out[i] = json.RawMessage(v)
	}
	return out
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		ServiceType:         "guide",
		PANHash:             "0xpan",
		ApplicationDataHash: "QmData",
		DocumentsHash:       "QmDocs",
		PaymentID:           "pay_1",
		PaymentAmount:       10000,
	}
}

func TestSubmitApplication_EventID(t *testing.T) {
	fake := &fakeContract{receipts: map[string]*ledger.Receipt{
		"submitApplication": {TxHash: "0xaaa", Logs: []ledger.Log{{Event: "ApplicationSubmitted", Args: args(`"14"`, `"0xpan"`)}}},
	}}

	sub, err := NewClient(fake).SubmitApplication(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, uint64(14), sub.ApplicationID)
	assert.Equal(t, "0xaaa", sub.TxHash)
	assert.Equal(t, ledger.IDFromEvent, sub.IDSource)

	require.Len(t, fake.sent, 1)
	assert.Equal(t, []any{uint8(0), "0xpan", "QmData", "QmDocs", "pay_1", int64(10000)}, fake.sent[0].args)
	assert.Empty(t, fake.called)
}

func TestSubmitApplication_FallbackID(t *testing.T) {
	fake := &fakeContract{
		receipts: map[string]*ledger.Receipt{"submitApplication": {TxHash: "0xbbb"}},
		reads:    map[string]json.RawMessage{"nextApplicationId": json.RawMessage(`15`)},
	}

	sub, err := NewClient(fake).SubmitApplication(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, uint64(14), sub.ApplicationID)
	assert.Equal(t, ledger.IDFromFallback, sub.IDSource)
}

func TestSubmitApplication_RejectedBeforeCall(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
		want   error
	}{
		{name: "unknown service type", mutate: func(r *SubmitRequest) { r.ServiceType = "SPA" }, want: ErrUnknownServiceType},
		{name: "missing pan hash", mutate: func(r *SubmitRequest) { r.PANHash = "" }, want: ErrMissingField},
		{name: "missing payment", mutate: func(r *SubmitRequest) { r.PaymentID = "" }, want: ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeContract{}
			req := validRequest()
			tt.mutate(&req)

			_, err := NewClient(fake).SubmitApplication(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			var le *ledger.Error
			require.ErrorAs(t, err, &le)
			assert.Equal(t, Ledger, le.Ledger)
			assert.Empty(t, fake.sent)
		})
	}
}

func TestSubmitApplication_DuplicatePayment(t *testing.T) {
	fake := &fakeContract{sendErr: map[string]error{
		"submitApplication": wrapRejected("execution reverted: Payment ID already used"),
	}}

	_, err := NewClient(fake).SubmitApplication(context.Background(), validRequest())
	assert.ErrorIs(t, err, ledger.ErrDuplicatePayment)
	assert.ErrorIs(t, err, ledger.ErrRejected)
}

func wrapRejected(msg string) error {
	return &ledger.Error{Ledger: "relayer", Op: "send", Err: joinRejected{msg}}
}

type joinRejected struct{ msg string }

func (j joinRejected) Error() string { return j.msg }
func (j joinRejected) Unwrap() error { return ledger.ErrRejected }

func TestApproveApplication(t *testing.T) {
	t.Run("score out of range", func(t *testing.T) {
		for _, score := range []int{-1, 101} {
			fake := &fakeContract{}
			_, err := NewClient(fake).ApproveApplication(context.Background(), 3, "ok", score)
			assert.ErrorIs(t, err, ErrInvalidScore)
			assert.Empty(t, fake.sent)
		}
	})

	t.Run("provider id from event", func(t *testing.T) {
		fake := &fakeContract{receipts: map[string]*ledger.Receipt{
			"approveApplication": {TxHash: "0xapp", Logs: []ledger.Log{{Event: "ProviderApproved", Args: args(`3`, `9`)}}},
		}}
		approval, err := NewClient(fake).ApproveApplication(context.Background(), 3, "documents verified", 88)
		require.NoError(t, err)
		assert.Equal(t, &Approval{ProviderID: 9, TxHash: "0xapp"}, approval)
	})

	t.Run("provider id from counter", func(t *testing.T) {
		fake := &fakeContract{reads: map[string]json.RawMessage{"nextProviderId": json.RawMessage(`"0x0a"`)}}
		approval, err := NewClient(fake).ApproveApplication(context.Background(), 3, "", 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(9), approval.ProviderID)
	})
}

func TestRejectApplication_RequiresReason(t *testing.T) {
	fake := &fakeContract{}
	_, err := NewClient(fake).RejectApplication(context.Background(), 1, "  ")
	assert.ErrorIs(t, err, ErrMissingField)

	tx, err := NewClient(fake).RejectApplication(context.Background(), 1, "blurred licence")
	require.NoError(t, err)
	assert.Equal(t, "0xrejectApplication", tx)
}

func TestGenerateCertificate(t *testing.T) {
	fake := &fakeContract{receipts: map[string]*ledger.Receipt{
		"generateCertificate": {TxHash: "0xcert", Logs: []ledger.Log{{Event: "CertificateGenerated", Args: args(`9`, `"0xhash"`)}}},
	}}
	cert, err := NewClient(fake).GenerateCertificate(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "0xhash", cert.CertificateHash)

	_, err = NewClient(fake).RenewCertificate(context.Background(), 9)
	assert.ErrorIs(t, err, ledger.ErrMalformed)
}

func TestVerifyCertificateByPAN(t *testing.T) {
	fake := &fakeContract{reads: map[string]json.RawMessage{
		"verifyCertificateByPAN": json.RawMessage(`[true, "9", 3, 0, 1767225600, "Ravi Kumar", "Ranchi"]`),
	}}

	v, err := NewClient(fake).VerifyCertificateByPAN(context.Background(), "0xpan")
	require.NoError(t, err)
	assert.True(t, v.IsValid)
	assert.Equal(t, uint64(9), v.ProviderID)
	assert.Equal(t, "TRANSPORTATION", v.ServiceType)
	assert.Equal(t, "ACTIVE", v.Status)
	assert.Equal(t, 2026, v.ExpiryDate.Year())
	assert.Equal(t, "Ranchi", v.City)

	empty := &fakeContract{reads: map[string]json.RawMessage{
		"verifyCertificateByPAN": json.RawMessage(`[false, 0, 0, 0, 0, "", ""]`),
	}}
	_, err = NewClient(empty).VerifyCertificateByPAN(context.Background(), "0xother")
	assert.True(t, ledger.IsNotFound(err))
}

func TestGetStatistics(t *testing.T) {
	fake := &fakeContract{reads: map[string]json.RawMessage{
		"getStatistics": json.RawMessage(`[10, 6, 2, 6, "2500000000000000000", "0x1bc16d674ec80000"]`),
	}}

	stats, err := NewClient(fake).GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Statistics{
		TotalApplications: 10,
		TotalApprovals:    6,
		TotalRejections:   2,
		TotalProviders:    6,
		ContractBalance:   "2.5",
		TotalFunding:      "2",
	}, stats)
}

func TestHashPAN(t *testing.T) {
	a, err := HashPAN("abcde1234f")
	require.NoError(t, err)
	b, err := HashPAN(" ABCDE1234F ")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 66)

	_, err = HashPAN("ABCD1234F")
	assert.ErrorIs(t, err, ErrInvalidPAN)
}
