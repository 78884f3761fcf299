package nodestate

import (
	"fmt"
	"sync"

	"github.com/brewbot/controller/pkg/util"
)

// relayCmdKey is the tx message key every Relay produces, matching
// node_state.py's RelayNodeState.
const relayCmdKey = "relay_cmd"

// Relay holds a commanded boolean state and produces it as the payload
// for its periodic relay_cmd tx message (spec.md §3). CmdState is written
// by the control-loop and HTTP goroutines (Set) and read by the per-node
// tx-producer goroutine (TxPayload), so access goes through cmdMu.
// CmdState itself stays exported for tests that read it synchronously
// after the goroutine under test has already returned.
type Relay struct {
	*base
	CmdState bool

	cmdMu sync.Mutex
}

// NewRelay builds a Relay. rxMessageKeys names the inbound messages this
// relay accepts (conventionally "relay_state", the mock/physical
// device's periodic state re-emission).
func NewRelay(rxMessageKeys ...string) *Relay {
	return &Relay{base: newBase(rxMessageKeys)}
}

// Set writes the commanded state; the next relay_cmd tx tick broadcasts
// it (spec.md §4.5: "Setting the relay writes cmd_state ... the periodic
// tx producer broadcasts the new state on the next tick").
func (r *Relay) Set(on bool) {
	r.cmdMu.Lock()
	r.CmdState = on
	r.cmdMu.Unlock()
}

func (r *Relay) TxPayload(msgKey string) (map[string]float64, error) {
	if msgKey != relayCmdKey {
		return nil, fmt.Errorf("%w: relay has no tx message %q", ErrInvalidMessage, msgKey)
	}
	r.cmdMu.Lock()
	cmdState := r.CmdState
	r.cmdMu.Unlock()
	return map[string]float64{"on": float64(util.EncodeOnOff(cmdState))}, nil
}
