package nodestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThermometerUpdateRxPopulatesFrames(t *testing.T) {
	therm := NewThermometer(10, "temp_state")
	clock := 0.0
	therm.Now = func() float64 { return clock }

	require.NoError(t, therm.UpdateRx("temp_state", map[string]float64{"temp_c": 20, "temp_v": 2.0}))
	clock = 5
	require.NoError(t, therm.UpdateRx("temp_state", map[string]float64{"temp_c": 30, "temp_v": 2.1}))
	clock = 10
	require.NoError(t, therm.UpdateRx("temp_state", map[string]float64{"temp_c": 40, "temp_v": 2.2}))

	state := therm.TempState()
	assert.InDelta(t, 40.0, state["temp_c"], 1e-9)
	assert.InDelta(t, 2.2, state["temp_v"], 1e-9)
}

func TestThermometerRejectsUnknownMessage(t *testing.T) {
	therm := NewThermometer(10, "temp_state")
	err := therm.UpdateRx("bogus", nil)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestThermometerEmptyStateOmitsKeys(t *testing.T) {
	therm := NewThermometer(10, "temp_state")
	state := therm.TempState()
	assert.NotContains(t, state, "temp_c")
	assert.NotContains(t, state, "temp_v")
}
