package nodestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayTxPayloadReflectsCmdState(t *testing.T) {
	r := NewRelay("relay_state")

	payload, err := r.TxPayload("relay_cmd")
	require.NoError(t, err)
	assert.Equal(t, float64(0), payload["on"])

	r.Set(true)
	payload, err = r.TxPayload("relay_cmd")
	require.NoError(t, err)
	assert.Equal(t, float64(1), payload["on"])
}

func TestRelayTxPayloadRejectsUnknownKey(t *testing.T) {
	r := NewRelay()
	_, err := r.TxPayload("bogus")
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestRelayUpdateRxInvokesHandlers(t *testing.T) {
	r := NewRelay("relay_state")
	var seen map[string]float64
	r.RegisterHandler("relay_state", func(v map[string]float64) { seen = v })

	require.NoError(t, r.UpdateRx("relay_state", map[string]float64{"on": 1}))
	assert.Equal(t, float64(1), seen["on"])
}
