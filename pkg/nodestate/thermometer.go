package nodestate

import (
	"fmt"
	"sync"
	"time"
)

// Thermometer holds two sliding-window series, temp_c and temp_v, each
// trimmed to a configured window length. It is the node-state variant for
// any node whose node type declares node_state_class "thermometer"
// (spec.md §3). The dispatch goroutine appends to tempC/tempV via
// onTempState while the data-collector and HTTP goroutines read them via
// TempState, so both are guarded by mu.
type Thermometer struct {
	*base
	window float64

	mu    sync.Mutex
	tempC *WindowedDataFrame
	tempV *WindowedDataFrame

	// Now returns the current time as Unix seconds. Overridable in tests;
	// defaults to the wall clock.
	Now func() float64
}

// NewThermometer builds a Thermometer with the given window (seconds).
// rxMessageKey names the inbound message carrying temp_c/temp_v
// (conventionally "temp_state").
func NewThermometer(window float64, rxMessageKey string) *Thermometer {
	t := &Thermometer{
		base:   newBase([]string{rxMessageKey}),
		window: window,
		tempC:  NewWindowedDataFrame(window),
		tempV:  NewWindowedDataFrame(window),
		Now:    nowUnix,
	}
	t.RegisterHandler(rxMessageKey, t.onTempState)
	return t
}

func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

func (t *Thermometer) onTempState(values map[string]float64) {
	now := t.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := values["temp_c"]; ok {
		t.tempC.Append(now, v)
	}
	if v, ok := values["temp_v"]; ok {
		t.tempV.Append(now, v)
	}
}

// TempState returns the interpolated temp_c/temp_v at the current time.
// A series with no samples is simply absent from the result, the Go
// analogue of the original's per-series None.
func (t *Thermometer) TempState() map[string]float64 {
	now := t.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]float64, 2)
	if v, ok := t.tempC.Interp(now); ok {
		out["temp_c"] = v
	}
	if v, ok := t.tempV.Interp(now); ok {
		out["temp_v"] = v
	}
	return out
}

func (t *Thermometer) TxPayload(msgKey string) (map[string]float64, error) {
	return nil, fmt.Errorf("%w: thermometer has no tx message %q", ErrInvalidMessage, msgKey)
}
