package nodestate

import (
	"fmt"
	"sync"
)

// ErrInvalidMessage is returned when a node state is asked to handle a
// message key it was never configured for — a programmer error per
// spec.md §7's InvalidMessage taxonomy entry.
var ErrInvalidMessage = fmt.Errorf("invalid message for node state")

// NodeState is the polymorphic per-device stateful object of spec.md §3.
type NodeState interface {
	// UpdateRx invokes every handler registered for msgKey with values,
	// and records values as that message's last-known state.
	UpdateRx(msgKey string, values map[string]float64) error
	// RegisterHandler appends a callback invoked on every future
	// UpdateRx for msgKey.
	RegisterHandler(msgKey string, cb func(map[string]float64))
	// TxPayload returns the payload to send for a periodic tx message.
	TxPayload(msgKey string) (map[string]float64, error)
	// RxState returns the last value received for msgKey, if any.
	RxState(msgKey string) (map[string]float64, bool)
}

// base implements the bookkeeping shared by every variant: handler lists
// and last-known rx state, keyed by message key (node_state.py's
// rx_message_state / rx_message_handler dicts). rxState is written by the
// dispatch goroutine on every UpdateRx and read by the simulator and HTTP
// goroutines (via RxState), so it is guarded by mu, the same mutex-guarded
// shape as the teacher's tpdo.go.
type base struct {
	mu sync.Mutex

	rxKeys   map[string]bool
	rxState  map[string]map[string]float64
	handlers map[string][]func(map[string]float64)
}

// newBase returns a *base rather than a base so that constructing a
// Thermometer/Relay/Master never copies the embedded mutex by value.
func newBase(rxKeys []string) *base {
	b := &base{
		rxKeys:   make(map[string]bool, len(rxKeys)),
		rxState:  make(map[string]map[string]float64, len(rxKeys)),
		handlers: make(map[string][]func(map[string]float64), len(rxKeys)),
	}
	for _, k := range rxKeys {
		b.rxKeys[k] = true
	}
	return b
}

func (b *base) UpdateRx(msgKey string, values map[string]float64) error {
	b.mu.Lock()
	if !b.rxKeys[msgKey] {
		b.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrInvalidMessage, msgKey)
	}
	b.rxState[msgKey] = values
	handlers := append([]func(map[string]float64){}, b.handlers[msgKey]...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(values)
	}
	return nil
}

func (b *base) RegisterHandler(msgKey string, cb func(map[string]float64)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[msgKey] = append(b.handlers[msgKey], cb)
}

func (b *base) RxState(msgKey string) (map[string]float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.rxState[msgKey]
	return v, ok
}
