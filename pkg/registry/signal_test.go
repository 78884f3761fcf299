package registry

import (
	"testing"

	"github.com/brewbot/controller/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minmax(lo, hi float64) (*float64, *float64) { return &lo, &hi }

func TestSignalFloatRoundTrip(t *testing.T) {
	lo, hi := minmax(-40, 215)
	sig := config.Signal{
		Key: "temp_c", StartBit: 0, SignalSize: 16, Signed: true,
		Scale: 0.01, Offset: 0, Min: lo, Max: hi, Kind: config.SignalFloat,
	}
	var data [8]byte
	require.NoError(t, encodeSignal(&data, sig, 23.45))
	got, err := decodeSignal(data, sig)
	require.NoError(t, err)
	assert.InDelta(t, 23.45, got, 0.01)
}

func TestSignalFlagRoundTrip(t *testing.T) {
	sig := config.Signal{Key: "on", StartBit: 0, SignalSize: 8, Kind: config.SignalFlag}
	var data [8]byte
	require.NoError(t, encodeSignal(&data, sig, 1))
	got, err := decodeSignal(data, sig)
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)
}

func TestSignalFlagRejectsGarbageByte(t *testing.T) {
	sig := config.Signal{Key: "on", StartBit: 0, SignalSize: 8, Kind: config.SignalFlag}
	data := [8]byte{0x42}
	_, err := decodeSignal(data, sig)
	assert.Error(t, err)
}

func TestSignalsAtDisjointBitRangesDoNotClobber(t *testing.T) {
	tempC := config.Signal{Key: "temp_c", StartBit: 0, SignalSize: 16, Signed: true, Scale: 0.01, Offset: 0, Kind: config.SignalFloat}
	tempV := config.Signal{Key: "temp_v", StartBit: 16, SignalSize: 16, Signed: true, Scale: 0.001, Offset: 0, Kind: config.SignalFloat}

	var data [8]byte
	require.NoError(t, encodeSignal(&data, tempC, 23.45))
	require.NoError(t, encodeSignal(&data, tempV, 2.305))

	gotC, err := decodeSignal(data, tempC)
	require.NoError(t, err)
	gotV, err := decodeSignal(data, tempV)
	require.NoError(t, err)

	assert.InDelta(t, 23.45, gotC, 0.01)
	assert.InDelta(t, 2.305, gotV, 0.001)
}

func TestSignalNegativeOnUnsignedRejected(t *testing.T) {
	sig := config.Signal{Key: "x", StartBit: 0, SignalSize: 8, Signed: false, Scale: 1, Kind: config.SignalInt}
	var data [8]byte
	err := encodeSignal(&data, sig, -1)
	assert.ErrorIs(t, err, ErrSignalOutOfRange)
}
