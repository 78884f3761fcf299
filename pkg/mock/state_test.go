package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateHeatsTowardTargetPower(t *testing.T) {
	s := NewState(func() bool { return true })
	startTemp := s.Temp
	for i := 0; i < 50; i++ {
		s.Simulate(s.SimulationInterval)
	}
	assert.Greater(t, s.Temp, startTemp)
	assert.Greater(t, s.EffectivePower, 0.0)
}

func TestSimulateCoolsWhenOff(t *testing.T) {
	s := NewState(func() bool { return false })
	s.Temp = 80
	s.EffectivePower = 0
	for i := 0; i < 50; i++ {
		s.Simulate(s.SimulationInterval)
	}
	assert.Less(t, s.Temp, 80.0)
}

func TestMeasureVoltageConversion(t *testing.T) {
	state := NewState(func() bool { return false })
	state.Temp = 50
	therm := NewThermometer(state)
	therm.Rand = func() float64 { return 0 }

	m := therm.Measure()
	assert.InDelta(t, 50.0, m["temp_c"], 1e-9)
	assert.InDelta(t, 2.305, m["temp_v"], 0.001)
}

func TestThermometerRejectsCommands(t *testing.T) {
	therm := NewThermometer(NewState(func() bool { return false }))
	err := therm.HandleMessage("anything", nil)
	assert.ErrorIs(t, err, ErrNotAccepted)
}

func TestRelayStoresAndEmitsCommand(t *testing.T) {
	r := NewRelay()
	assert.False(t, r.On())

	require.NoError(t, r.HandleMessage("relay_cmd", map[string]float64{"on": 1}))
	assert.True(t, r.On())
	assert.Equal(t, float64(1), r.Emit()["on"])
}

func TestRelayRejectsUnknownMessage(t *testing.T) {
	r := NewRelay()
	err := r.HandleMessage("bogus", nil)
	assert.ErrorIs(t, err, ErrNotAccepted)
}
