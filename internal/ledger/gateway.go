package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// Contract is the call surface of one deployed registry contract. Send
// submits a state-changing transaction and waits for its receipt; Call runs
// a read-only function and returns the raw decoded output.
type Contract interface {
	Send(ctx context.Context, fn string, args ...any) (*Receipt, error)
	Call(ctx context.Context, fn string, args ...any) (json.RawMessage, error)
}

const (
	methodSend = "ledger_sendTransaction"
	methodCall = "ledger_call"

	// execution reverted, as reported by geth-style nodes
	codeReverted = 3
)

// Gateway is a JSON-RPC 2.0 client for a ledger relayer that holds the
// signing key and exposes contract functions by name.
type Gateway struct {
	http     *resty.Client
	contract string
	seq      atomic.Uint64
}

type rpcRequest struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      uint64       `json:"id"`
	Method  string       `json:"method"`
	Params  []callParams `json:"params"`
}

type callParams struct {
	Contract string `json:"contract"`
	Function string `json:"function"`
	Args     []any  `json:"args"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewGateway(rpcURL, contract string, timeout time.Duration) *Gateway {
	return &Gateway{
		http: resty.New().
			SetBaseURL(strings.TrimRight(rpcURL, "/")).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		contract: contract,
	}
}

func (g *Gateway) Send(ctx context.Context, fn string, args ...any) (*Receipt, error) {
	raw, err := g.invoke(ctx, methodSend, fn, args)
	if err != nil {
		return nil, err
	}
	var receipt Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("%w: receipt: %v", ErrMalformed, err)
	}
	if receipt.TxHash == "" {
		return nil, fmt.Errorf("%w: receipt without transaction hash", ErrMalformed)
	}
	if !receipt.Succeeded() {
		return &receipt, fmt.Errorf("%w: %s reverted in %s", ErrRejected, fn, receipt.TxHash)
	}
	return &receipt, nil
}

func (g *Gateway) Call(ctx context.Context, fn string, args ...any) (json.RawMessage, error) {
	raw, err := g.invoke(ctx, methodCall, fn, args)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, ErrNotFound
	}
	return raw, nil
}

func (g *Gateway) invoke(ctx context.Context, method, fn string, args []any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      g.seq.Add(1),
		Method:  method,
		Params:  []callParams{{Contract: g.contract, Function: fn, Args: args}},
	}

	var out rpcResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s timed out", ErrUnavailable, fn)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode(), resp.String())
	}
	if out.Error != nil {
		if out.Error.Code == codeReverted || strings.Contains(strings.ToLower(out.Error.Message), "revert") {
			return nil, fmt.Errorf("%w: %s", ErrRejected, out.Error.Message)
		}
		return nil, fmt.Errorf("%w: rpc error %d: %s", ErrRejected, out.Error.Code, out.Error.Message)
	}
	return out.Result, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
