package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `
port:
  process_interval: 0.1
  device_connect_interval: 2.0
  bus:
    channel: "can0"
    interface: "socketcan"
    receive_timeout: 0.1
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
        value_offset: -40
        unit: C
        py_type: float
  - key: relay_cmd
    dbc_name: RELAY_CMD
    priority: 6
    pgn: 0x1031
    direction: tx
    signals:
      - key: on
        dbc_name: RELAY_STATE
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
    node_state_class: thermometer
  - key: relay
    messages:
      - key: relay_cmd
        msg_type_ref: relay_cmd
        frequency: 1.0
    node_state_class: relay
nodes:
  - key: kettle_therm
    node_type_ref: thermometer
    node_addr: 0x10
  - key: heat_plate
    node_type_ref: relay
    node_addr: 0x20
assembly_types:
  - key: kettle
    assembly_class: kettle
assemblies:
  - key: kettle1
    assembly_type_ref: kettle
    nodes:
      thermometer: [kettle_therm]
      heat_plate: [heat_plate]
    params:
      - name: volume
        value: 20.0
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValidDocument(t *testing.T) {
	cfg, err := Load(writeTemp(t, validDoc))
	require.NoError(t, err)
	assert.Len(t, cfg.MessageTypes, 2)
	assert.Len(t, cfg.Nodes, 2)
	assert.Equal(t, uint32(0xF004), cfg.MessageTypes[0].PGN)
}

func TestLoadRejectsUnresolvedReference(t *testing.T) {
	doc := validDoc + "\n  - key: kettle2\n    assembly_type_ref: missing\n    nodes: {}\n"
	_, err := Load(writeTemp(t, doc))
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateNodeKey(t *testing.T) {
	doc := `
port: {process_interval: 0.1, device_connect_interval: 1.0}
message_types: []
node_types:
  - key: thermometer
    messages: []
nodes:
  - key: dup
    node_type_ref: thermometer
    node_addr: 1
  - key: dup
    node_type_ref: thermometer
    node_addr: 2
assembly_types: []
assemblies: []
`
	_, err := Load(writeTemp(t, doc))
	assert.Error(t, err)
}

func TestLoadRejectsZeroScale(t *testing.T) {
	doc := `
port: {process_interval: 0.1, device_connect_interval: 1.0}
message_types:
  - key: bad
    dbc_name: BAD
    priority: 1
    pgn: 1
    direction: rx
    signals:
      - key: s
        dbc_name: S
        start_bit: 0
        signal_size: 8
        signed: false
        value_scale: 0
        value_offset: 0
        py_type: int
node_types: []
nodes: []
assembly_types: []
assemblies: []
`
	_, err := Load(writeTemp(t, doc))
	assert.Error(t, err)
}
