package registry

import (
	"testing"

	"github.com/brewbot/controller/pkg/canbus"
	"github.com/brewbot/controller/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	freq := 1.0
	return &config.Config{
		MessageTypes: []config.MessageType{
			{
				Key: "temp_state", DBCName: "TEMP_STATE", Priority: 6, PGN: 0xF004, Direction: config.DirectionRx,
				Signals: []config.Signal{
					{Key: "temp_c", DBCName: "TEMP_C", StartBit: 0, SignalSize: 16, Signed: true, Scale: 0.01, Kind: config.SignalFloat},
				},
			},
			{
				Key: "relay_cmd", DBCName: "RELAY_CMD", Priority: 6, PGN: 0x1031, Direction: config.DirectionTx,
				Signals: []config.Signal{
					{Key: "on", DBCName: "RELAY_STATE", StartBit: 0, SignalSize: 8, Kind: config.SignalFlag},
				},
			},
		},
		NodeTypes: []config.NodeType{
			{Key: "thermometer", Messages: []config.NodeTypeMessage{{Key: "temp_state", MsgTypeRef: "temp_state"}}},
			{Key: "relay", Messages: []config.NodeTypeMessage{{Key: "relay_cmd", MsgTypeRef: "relay_cmd", Frequency: &freq}}},
		},
		Nodes: []config.Node{
			{Key: "kettle_therm", NodeTypeRef: "thermometer", NodeAddr: 0x10},
			{Key: "heat_plate", NodeTypeRef: "relay", NodeAddr: 0x20},
		},
	}
}

func TestRegistryDecodeMatchesBroadcastDestination(t *testing.T) {
	reg, err := New(testConfig())
	require.NoError(t, err)

	id := PGNToCANID(0xF004, 6, 0x10, 0xFF)
	var data [8]byte
	require.NoError(t, encodeSignal(&data, testConfig().MessageTypes[0].Signals[0], 23.45))

	decoded, ok := reg.Decode(canbus.Frame{ID: id, Data: data})
	require.True(t, ok)
	assert.Equal(t, "kettle_therm", decoded.NodeKey)
	assert.Equal(t, "temp_state", decoded.MessageKey)
	assert.InDelta(t, 23.45, decoded.Values["temp_c"], 0.01)
}

func TestRegistryDecodeUnknownPGNAbsent(t *testing.T) {
	reg, err := New(testConfig())
	require.NoError(t, err)

	_, ok := reg.Decode(canbus.Frame{ID: PGNToCANID(0xABCD, 6, 0x10, 0xFF)})
	assert.False(t, ok)
}

func TestRegistryDecodeSourceMismatchAbsent(t *testing.T) {
	reg, err := New(testConfig())
	require.NoError(t, err)

	id := PGNToCANID(0xF004, 6, 0x99, 0xFF)
	_, ok := reg.Decode(canbus.Frame{ID: id})
	assert.False(t, ok)
}

func TestRegistryEncodeProducesAddressedFrame(t *testing.T) {
	reg, err := New(testConfig())
	require.NoError(t, err)

	frame, err := reg.Encode("heat_plate", "relay_cmd", map[string]float64{"on": 1}, "")
	require.NoError(t, err)

	_, _, src, dst := CANIDToPGN(frame.ID)
	assert.Equal(t, uint8(0), src)
	assert.Equal(t, uint8(0x20), dst)
}

func TestRegistryEncodeUnknownTargetFails(t *testing.T) {
	reg, err := New(testConfig())
	require.NoError(t, err)

	_, err = reg.Encode("missing", "relay_cmd", nil, "")
	assert.Error(t, err)
}
