package supervisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brewbot/controller/pkg/canport"
	"github.com/brewbot/controller/pkg/config"
	"github.com/brewbot/controller/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockOnlyDoc = `
port:
  process_interval: 0.05
  device_connect_interval: 1
message_types:
  - key: temp_state
    dbc_name: TEMP_STATE
    priority: 6
    pgn: 0xF004
    direction: rx
    signals:
      - key: temp_c
        dbc_name: TEMP_C
        start_bit: 0
        signal_size: 16
        signed: true
        value_scale: 0.01
        value_offset: 0
        py_type: float
      - key: temp_v
        dbc_name: TEMP_V
        start_bit: 16
        signal_size: 16
        signed: false
        value_scale: 0.001
        value_offset: 0
        py_type: float
  - key: relay_cmd
    dbc_name: RELAY_CMD
    priority: 6
    pgn: 0x1031
    direction: tx
    signals:
      - key: "on"
        dbc_name: RELAY_CMD_ON
        start_bit: 0
        signal_size: 8
        signed: false
        value_scale: 1
        value_offset: 0
        py_type: flag
  - key: relay_state
    dbc_name: RELAY_STATE
    priority: 6
    pgn: 0x1032
    direction: rx
    signals:
      - key: "on"
        dbc_name: RELAY_STATE_ON
        start_bit: 0
        signal_size: 8
        signed: false
        value_scale: 1
        value_offset: 0
        py_type: flag
node_types:
  - key: thermometer
    messages:
      - key: temp_state
        msg_type_ref: temp_state
    mock_class: thermometer
    node_state_class: thermometer
  - key: relay
    messages:
      - key: relay_cmd
        msg_type_ref: relay_cmd
        frequency: 5.0
      - key: relay_state
        msg_type_ref: relay_state
    mock_class: relay
    node_state_class: relay
nodes:
  - key: kettle_therm
    node_type_ref: thermometer
    node_addr: 0x10
    debug: {mock: true}
  - key: heat_plate_1
    node_type_ref: relay
    node_addr: 0x20
    debug: {mock: true}
  - key: steering_1
    node_type_ref: relay
    node_addr: 0x21
    debug: {mock: true}
assembly_types:
  - key: kettle
    assembly_class: kettle
assemblies:
  - key: kettle1
    assembly_type_ref: kettle
    nodes:
      thermometer: [kettle_therm]
      heat_plate: [heat_plate_1]
      steering: [steering_1]
    params:
      - name: volume
        value: 20.0
      - name: controller
        config_class: controller
        value:
          p_gain: 1.0
          d_gain: 1.0
          max_cs: 2.5
          low_jump_thres: 0.1
          high_jump_thres: 0.9
          pwm_interval: 5.0
      - name: data_collect
        config_class: data_collect
        value:
          window: 10.0
          collect_interval: 5.0
`

func newTestSupervisor(t *testing.T) *Supervisor {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(mockOnlyDoc), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	reg, err := registry.New(cfg)
	require.NoError(t, err)

	port := canport.New(canport.Config{}, nil)
	return New(cfg, reg, port, nil)
}

// TestReconnectCycle exercises spec.md §8 scenario 6: starting without
// any session, driving a connected event then a shutdown event leaves
// every per-session map empty, and a second connected event rebuilds
// cleanly.
func TestReconnectCycle(t *testing.T) {
	s := newTestSupervisor(t)

	s.onConnected()
	s.mu.Lock()
	assert.NotEmpty(t, s.nodeStates)
	assert.NotEmpty(t, s.mockNodes)
	assert.NotEmpty(t, s.assemblies)
	assert.NotNil(t, s.tasks)
	s.mu.Unlock()

	s.onShutdown()
	s.mu.Lock()
	assert.Empty(t, s.nodeStates)
	assert.Empty(t, s.mockNodes)
	assert.Empty(t, s.assemblies)
	assert.Nil(t, s.tasks)
	s.mu.Unlock()

	s.onConnected()
	s.mu.Lock()
	assert.NotEmpty(t, s.nodeStates)
	assert.NotNil(t, s.tasks)
	s.mu.Unlock()
	s.onShutdown()
}

func TestOnConnectedIsIdempotentWhileSessionRunning(t *testing.T) {
	s := newTestSupervisor(t)
	s.onConnected()

	s.mu.Lock()
	first := s.tasks
	s.mu.Unlock()

	s.onConnected()

	s.mu.Lock()
	second := s.tasks
	s.mu.Unlock()

	assert.Same(t, first, second)
	s.onShutdown()
}

func TestAssemblyAndKettleAccessors(t *testing.T) {
	s := newTestSupervisor(t)
	s.onConnected()
	defer s.onShutdown()

	a, ok := s.Assembly("kettle1")
	require.True(t, ok)
	assert.Equal(t, "kettle1", a.AssemblyKey())

	k, ok := s.Kettle("kettle1")
	require.True(t, ok)
	assert.NotNil(t, k)

	_, ok = s.Kettle("missing")
	assert.False(t, ok)
}
