package ledger

import (
	"context"
	"fmt"
	"log"
)

type IDSource string

const (
	IDFromEvent    IDSource = "event"
	IDFromFallback IDSource = "fallback"
)

// IDRecovery describes where a newly assigned identifier can be found: an
// event argument first, otherwise a counter accessor plus Offset. Use
// Offset -1 for "next id" counters and 0 for "total count" accessors.
type IDRecovery struct {
	Event    string
	ArgIndex int
	Accessor string
	Offset   int64
}

type RecoveredID struct {
	Value  uint64
	Source IDSource
}

func (r RecoveredID) String() string {
	return fmt.Sprintf("%d", r.Value)
}

// RecoverID extracts the identifier a transaction assigned. The fallback
// read is not atomic with the transaction: a concurrent submission landing
// between the two can make it return the other submission's id. Both paths
// are otherwise treated as equally trustworthy.
func RecoverID(ctx context.Context, receipt *Receipt, recovery IDRecovery, reader Contract) (RecoveredID, error) {
	if ev, ok := receipt.Event(recovery.Event); ok {
		id, err := ev.Uint(recovery.ArgIndex)
		if err == nil {
			return RecoveredID{Value: id, Source: IDFromEvent}, nil
		}
		log.Printf("⚠️ %s event unreadable (%v), falling back to %s", recovery.Event, err, recovery.Accessor)
	} else {
		log.Printf("⚠️ %s event missing from %s, falling back to %s", recovery.Event, txHashOf(receipt), recovery.Accessor)
	}

	if recovery.Accessor == "" || reader == nil {
		return RecoveredID{}, fmt.Errorf("%w: no %s event and no fallback accessor", ErrIDUnrecoverable, recovery.Event)
	}

	raw, err := reader.Call(ctx, recovery.Accessor)
	if err != nil {
		return RecoveredID{}, fmt.Errorf("%w: %s: %v", ErrIDUnrecoverable, recovery.Accessor, err)
	}
	counter, err := DecodeUint(raw)
	if err != nil {
		return RecoveredID{}, fmt.Errorf("%w: %s: %v", ErrIDUnrecoverable, recovery.Accessor, err)
	}

	value := int64(counter) + recovery.Offset
	if value <= 0 {
		return RecoveredID{}, fmt.Errorf("%w: %s returned %d", ErrIDUnrecoverable, recovery.Accessor, counter)
	}
	return RecoveredID{Value: uint64(value), Source: IDFromFallback}, nil
}

func txHashOf(r *Receipt) string {
	if r == nil {
		return "<no receipt>"
	}
	return r.TxHash
}
