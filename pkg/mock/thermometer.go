package mock

import (
	"fmt"
	"math/rand"
)

// ErrNotAccepted is returned by a mock device's HandleMessage for any
// message it does not accept as a command, mirroring the original
// MockThermometer.handle_message always raising ValueError.
var ErrNotAccepted = fmt.Errorf("mock node does not accept this message")

// Thermometer reads the simulator's temperature, adds Gaussian
// measurement noise, and derives the corresponding sensor voltage
// (spec.md §4.6). Constants match MockThermometer exactly.
type Thermometer struct {
	state *State

	errorMu    float64
	errorSigma float64
	vToTempM   float64
	vToTempB   float64

	// MsgInterval is the cadence, in seconds, at which the supervisor's
	// mock producer task calls Measure.
	MsgInterval float64

	// Rand draws one Gaussian sample with mean 0, stddev 1; overridable
	// in tests for determinism. Defaults to math/rand's global source via
	// rand.NormFloat64, the Go analogue of random.gauss.
	Rand func() float64
}

// NewThermometer builds a Thermometer coupled to state.
func NewThermometer(state *State) *Thermometer {
	return &Thermometer{
		state:       state,
		errorMu:     0.0,
		errorSigma:  0.2,
		vToTempM:    23.69448038,
		vToTempB:    -4.59983094,
		MsgInterval: 0.1,
		Rand:        rand.NormFloat64,
	}
}

func (t *Thermometer) measureError() float64 {
	return t.errorMu + t.errorSigma*t.Rand()
}

// Measure returns one simulated temp_state payload.
func (t *Thermometer) Measure() map[string]float64 {
	tempC := t.state.Temp + t.measureError()
	tempV := (tempC - t.vToTempB) / t.vToTempM
	return map[string]float64{"temp_c": tempC, "temp_v": tempV}
}

// HandleMessage always fails: a mock thermometer accepts no commands.
func (t *Thermometer) HandleMessage(msgKey string, payload map[string]float64) error {
	return fmt.Errorf("%w: %q", ErrNotAccepted, msgKey)
}
