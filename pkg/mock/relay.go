package mock

import (
	"fmt"
	"sync"
)

// Relay stores the last relay_cmd payload it was sent and periodically
// re-emits it as relay_state (spec.md §4.6). It is intentionally separate
// from nodestate.Relay: this object models the simulated physical device,
// while nodestate.Relay models the controller's view of it.
type Relay struct {
	mu         sync.Mutex
	relayState map[string]float64

	// MsgInterval is the cadence, in seconds, at which the supervisor's
	// mock producer task calls Emit.
	MsgInterval float64
}

// NewRelay builds a Relay starting in the off state.
func NewRelay() *Relay {
	return &Relay{
		relayState:  map[string]float64{"on": 0},
		MsgInterval: 0.1,
	}
}

// HandleMessage accepts relay_cmd and stores it as the relay's current
// state; any other message is rejected.
func (r *Relay) HandleMessage(msgKey string, payload map[string]float64) error {
	if msgKey != "relay_cmd" {
		return fmt.Errorf("%w: %q", ErrNotAccepted, msgKey)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.relayState = map[string]float64{"on": payload["on"]}
	return nil
}

// Emit returns the relay_state payload for the next periodic tx tick.
func (r *Relay) Emit() map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]float64, len(r.relayState))
	for k, v := range r.relayState {
		out[k] = v
	}
	return out
}

// On reports the relay's last commanded state as a boolean, used by
// State.Simulate to decide whether the heat plate is heating.
func (r *Relay) On() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.relayState["on"] != 0
}
