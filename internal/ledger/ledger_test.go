package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterReader struct {
	values map[string]json.RawMessage
	err    error
	calls  []string
}

func (c *counterReader) Send(ctx context.Context, fn string, args ...any) (*Receipt, error) {
	return nil, errors.New("not used")
}

func (c *counterReader) Call(ctx context.Context, fn string, args ...any) (json.RawMessage, error) {
	c.calls = append(c.calls, fn)
	if c.err != nil {
		return nil, c.err
	}
	v, ok := c.values[fn]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func TestRecoverID_EventAndFallbackAgree(t *testing.T) {
	recovery := IDRecovery{Event: "ApplicationSubmitted", ArgIndex: 0, Accessor: "nextApplicationId", Offset: -1}

	parsed := &Receipt{TxHash: "0xabc", Logs: []Log{
		{Event: "Transfer", Args: []json.RawMessage{json.RawMessage(`"0x1"`)}},
		{Event: "ApplicationSubmitted", Args: []json.RawMessage{json.RawMessage(`7`), json.RawMessage(`"0xpan"`)}},
	}}
	malformed := &Receipt{TxHash: "0xabc", Logs: []Log{
		{Event: "ApplicationSubmitted", Args: []json.RawMessage{json.RawMessage(`{"bad":true}`)}},
	}}
	reader := &counterReader{values: map[string]json.RawMessage{"nextApplicationId": json.RawMessage(`"8"`)}}

	fromEvent, err := RecoverID(context.Background(), parsed, recovery, reader)
	require.NoError(t, err)
	assert.Equal(t, IDFromEvent, fromEvent.Source)
	assert.Empty(t, reader.calls)

	fromFallback, err := RecoverID(context.Background(), malformed, recovery, reader)
	require.NoError(t, err)
	assert.Equal(t, IDFromFallback, fromFallback.Source)
	assert.Equal(t, fromEvent.Value, fromFallback.Value)
	assert.Equal(t, uint64(7), fromFallback.Value)
	assert.Equal(t, []string{"nextApplicationId"}, reader.calls)
}

func TestRecoverID_TotalCountAccessor(t *testing.T) {
	recovery := IDRecovery{Event: "VendorRegistered", ArgIndex: 0, Accessor: "getTotalVendors", Offset: 0}
	reader := &counterReader{values: map[string]json.RawMessage{"getTotalVendors": json.RawMessage(`12`)}}

	got, err := RecoverID(context.Background(), &Receipt{TxHash: "0x1"}, recovery, reader)
	require.NoError(t, err)
	assert.Equal(t, RecoveredID{Value: 12, Source: IDFromFallback}, got)
}

func TestRecoverID_Unrecoverable(t *testing.T) {
	recovery := IDRecovery{Event: "ApplicationSubmitted", Accessor: "nextApplicationId", Offset: -1}

	t.Run("counter still at zero", func(t *testing.T) {
		reader := &counterReader{values: map[string]json.RawMessage{"nextApplicationId": json.RawMessage(`0`)}}
		_, err := RecoverID(context.Background(), &Receipt{}, recovery, reader)
		assert.ErrorIs(t, err, ErrIDUnrecoverable)
	})

	t.Run("accessor read fails", func(t *testing.T) {
		reader := &counterReader{err: ErrUnavailable}
		_, err := RecoverID(context.Background(), &Receipt{}, recovery, reader)
		assert.ErrorIs(t, err, ErrIDUnrecoverable)
	})

	t.Run("no accessor configured", func(t *testing.T) {
		_, err := RecoverID(context.Background(), &Receipt{}, IDRecovery{Event: "X"}, nil)
		assert.ErrorIs(t, err, ErrIDUnrecoverable)
	})
}

func TestDecodeUint(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint64
		wantErr bool
	}{
		{raw: `42`, want: 42},
		{raw: `"42"`, want: 42},
		{raw: `"0x2a"`, want: 42},
		{raw: `"abc"`, wantErr: true},
		{raw: `-1`, wantErr: true},
		{raw: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := DecodeUint(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatNative(t *testing.T) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, "1.5", FormatNative(wei))
	assert.Equal(t, "0", FormatNative(big.NewInt(0)))
	assert.Equal(t, "0.000000000000000001", FormatNative(big.NewInt(1)))
	assert.Equal(t, "2", FormatNative(new(big.Int).Mul(big.NewInt(2), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap("legacy", "submitApplication", nil))

	err := Wrap("legacy", "submitApplication", ErrRejected)
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "legacy", le.Ledger)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Same(t, err, Wrap("legacy", "submitApplication", err))
}

func TestGateway_SendAndCall(t *testing.T) {
	var lastReq rpcRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lastReq))
		w.Header().Set("Content-Type", "application/json")
		switch lastReq.Params[0].Function {
		case "submitApplication":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"transactionHash":"0xtx","gasUsed":21000,"status":1,"logs":[{"event":"ApplicationSubmitted","args":["5"]}]}}`))
		case "nextApplicationId":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":2,"result":"6"}`))
		case "getApplication":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":3,"result":null}`))
		case "pause":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":4,"error":{"code":3,"message":"execution reverted: Pausable: paused"}}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	gw := NewGateway(srv.URL, "0xcontract", time.Second)

	receipt, err := gw.Send(context.Background(), "submitApplication", "GUIDE", 10000)
	require.NoError(t, err)
	assert.Equal(t, "0xtx", receipt.TxHash)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
	assert.Equal(t, "ledger_sendTransaction", lastReq.Method)
	assert.Equal(t, "0xcontract", lastReq.Params[0].Contract)
	id, err := RecoverID(context.Background(), receipt, IDRecovery{Event: "ApplicationSubmitted"}, gw)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id.Value)

	raw, err := gw.Call(context.Background(), "nextApplicationId")
	require.NoError(t, err)
	assert.JSONEq(t, `"6"`, string(raw))

	_, err = gw.Call(context.Background(), "getApplication", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = gw.Send(context.Background(), "pause")
	assert.ErrorIs(t, err, ErrRejected)

	_, err = gw.Call(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGateway_RevertedReceipt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"transactionHash":"0xdead","status":0,"logs":[]}}`))
	}))
	defer srv.Close()

	_, err := NewGateway(srv.URL, "0xc", time.Second).Send(context.Background(), "registerVendor")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestGateway_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewGateway(srv.URL, "0xc", time.Second).Send(ctx, "registerVendor")
	assert.ErrorIs(t, err, ErrUnavailable)
}
