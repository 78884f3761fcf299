// Package mock implements the in-process device harness and thermodynamic
// simulator used for off-bench development (spec.md §4.6): mock nodes
// bypass the CAN port entirely, looping their frames through the same
// dispatch path a physical device's frames would take.
package mock

// State is the thermodynamic simulator coupling the heat-plate relay's
// commanded state to a simulated kettle temperature (spec.md §3 "Mock
// State"). Every constant below is taken directly from the original
// implementation's MockState.
type State struct {
	Temp           float64
	EffectivePower float64

	pOn               float64
	waterAmount       float64
	waterHeatCapacity float64
	tau               float64
	ambient           float64
	k                 float64

	// SimulationInterval is the tick period, in seconds, the supervisor's
	// simulator task sleeps between Simulate calls.
	SimulationInterval float64

	// HeatPlateOn reports whether the heat-plate relay is currently
	// commanded on. The simulator reads it instead of holding a direct
	// reference to a nodestate.Relay, keeping this package independent of
	// pkg/nodestate.
	HeatPlateOn func() bool
}

// NewState builds the simulator with its default constants and starting
// temperature, matching MockState.__init__.
func NewState(heatPlateOn func() bool) *State {
	const (
		pOn               = 5000.0
		waterAmount       = 20.0
		waterHeatCapacity = 4186.0
		tau               = 2.0
		ambient           = 20.0
	)

	return &State{
		Temp:               20.0,
		EffectivePower:     0.0,
		pOn:                pOn,
		waterAmount:        waterAmount,
		waterHeatCapacity:  waterHeatCapacity,
		tau:                tau,
		ambient:            ambient,
		k:                  pOn / (100 - ambient),
		SimulationInterval: 0.1,
		HeatPlateOn:        heatPlateOn,
	}
}

// Simulate advances the model by dt seconds: the effective power first-
// order-lags toward the relay's target power, then the temperature
// updates from the balance between delivered power and ambient loss.
func (s *State) Simulate(dt float64) {
	heating := s.HeatPlateOn != nil && s.HeatPlateOn()

	targetPower := 0.0
	if heating {
		targetPower = s.pOn
	}
	s.EffectivePower += (targetPower - s.EffectivePower) * dt / s.tau

	tempDiff := (s.EffectivePower - s.k*(s.Temp-s.ambient)) * dt / (s.waterAmount * s.waterHeatCapacity)
	s.Temp += tempDiff
}
