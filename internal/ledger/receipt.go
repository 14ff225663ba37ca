package ledger

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Receipt is the mined-transaction result returned by the gateway.
type Receipt struct {
	TxHash      string `json:"transactionHash"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
	Status      *int   `json:"status,omitempty"`
	Logs        []Log  `json:"logs"`
}

// Log is one decoded contract event. Args are positional, in ABI order.
type Log struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args"`
}

// Succeeded treats a missing status as success; only an explicit 0 is a revert.
func (r *Receipt) Succeeded() bool {
	return r.Status == nil || *r.Status != 0
}

// Event returns the first log with the given event name.
func (r *Receipt) Event(name string) (*Log, bool) {
	if r == nil {
		return nil, false
	}
	for i := range r.Logs {
		if r.Logs[i].Event == name {
			return &r.Logs[i], true
		}
	}
	return nil, false
}

// Uint decodes the positional argument at idx as an unsigned integer.
func (l *Log) Uint(idx int) (uint64, error) {
	if idx < 0 || idx >= len(l.Args) {
		return 0, fmt.Errorf("%w: %s has no argument %d", ErrMalformed, l.Event, idx)
	}
	return DecodeUint(l.Args[idx])
}

// String decodes the positional argument at idx as a string.
func (l *Log) String(idx int) (string, error) {
	if idx < 0 || idx >= len(l.Args) {
		return "", fmt.Errorf("%w: %s has no argument %d", ErrMalformed, l.Event, idx)
	}
	return DecodeString(l.Args[idx])
}

// DecodeUint accepts a JSON number, a decimal string or a 0x-prefixed hex
// string, which covers how relayers serialise uint256 values that fit in 64 bits.
func DecodeUint(raw json.RawMessage) (uint64, error) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil && num != "" {
		v, err := strconv.ParseUint(num.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return v, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrMalformed, string(raw))
	}
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// DecodeBig is DecodeUint for values that may exceed 64 bits (wei amounts).
func DecodeBig(raw json.RawMessage) (*big.Int, error) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil && num != "" {
		v, ok := new(big.Int).SetString(num.String(), 10)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not an integer", ErrMalformed, num)
		}
		return v, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %s is not an integer", ErrMalformed, string(raw))
	}
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrMalformed, s)
	}
	return v, nil
}

func DecodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s is not a string", ErrMalformed, string(raw))
	}
	return s, nil
}

func DecodeBool(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, fmt.Errorf("%w: %s is not a bool", ErrMalformed, string(raw))
	}
	return b, nil
}

// Tuple splits a positional struct output into its fields, requiring at
// least min entries.
func Tuple(raw json.RawMessage, min int) ([]json.RawMessage, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: expected tuple: %v", ErrMalformed, err)
	}
	if len(fields) < min {
		return nil, fmt.Errorf("%w: tuple has %d fields, want %d", ErrMalformed, len(fields), min)
	}
	return fields, nil
}
