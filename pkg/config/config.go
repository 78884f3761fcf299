// Package config holds the typed description of a brewbot deployment: the
// message/signal vocabulary, the node fleet, and the assemblies built on
// top of them. It mirrors the shape of the original Python configuration
// objects (brewbot.config) without interpreting any "*_class" field as a
// dynamically loaded plugin — those become string tags resolved through
// registration tables in the packages that consume them (pkg/nodestate,
// pkg/mock, pkg/assembly).
package config

import "gopkg.in/yaml.v3"

// SignalKind is the logical value kind a signal decodes to on the wire,
// called py_type in the original configuration.
type SignalKind string

const (
	SignalInt   SignalKind = "int"
	SignalFloat SignalKind = "float"
	SignalFlag  SignalKind = "flag"
)

// Direction is a message's direction from the master's perspective.
type Direction string

const (
	DirectionRx Direction = "rx"
	DirectionTx Direction = "tx"
)

// Signal is a named field inside a message payload.
type Signal struct {
	Key        string     `yaml:"key"`
	DBCName    string     `yaml:"dbc_name"`
	StartBit   int        `yaml:"start_bit"`
	SignalSize int        `yaml:"signal_size"`
	Signed     bool       `yaml:"signed"`
	Scale      float64    `yaml:"value_scale"`
	Offset     float64    `yaml:"value_offset"`
	Min        *float64   `yaml:"value_min,omitempty"`
	Max        *float64   `yaml:"value_max,omitempty"`
	Unit       string     `yaml:"unit,omitempty"`
	CType      string     `yaml:"c_type,omitempty"`
	Kind       SignalKind `yaml:"py_type"`
}

// MessageType is a J1939 message description: a PGN, a priority, a
// direction, and the ordered signals carried in its 8-byte payload.
type MessageType struct {
	Key       string    `yaml:"key"`
	DBCName   string    `yaml:"dbc_name"`
	Priority  uint8     `yaml:"priority"`
	PGN       uint32    `yaml:"pgn"`
	Direction Direction `yaml:"direction"`
	Signals   []Signal  `yaml:"signals"`
}

// NodeTypeMessage references a message type used by a node type, with an
// optional tx frequency in Hz.
type NodeTypeMessage struct {
	Key        string   `yaml:"key"`
	MsgTypeRef string   `yaml:"msg_type_ref"`
	Frequency  *float64 `yaml:"frequency,omitempty"`
}

// NodeType is an ordered set of message references shared by every node of
// that type, plus default implementation tags.
type NodeType struct {
	Key             string            `yaml:"key"`
	Messages        []NodeTypeMessage `yaml:"messages"`
	MockClass       string            `yaml:"mock_class,omitempty"`
	NodeStateClass  string            `yaml:"node_state_class,omitempty"`
}

// NodeDebug carries development-only flags about a node.
type NodeDebug struct {
	Mock bool `yaml:"mock,omitempty"`
}

// Node is a concrete device instance on the bus.
type Node struct {
	Key            string         `yaml:"key"`
	NodeTypeRef    string         `yaml:"node_type_ref"`
	NodeAddr       uint8          `yaml:"node_addr"`
	Params         map[string]any `yaml:"params,omitempty"`
	Debug          NodeDebug      `yaml:"debug,omitempty"`
	MockClass      string         `yaml:"mock_class,omitempty"`
	NodeStateClass string         `yaml:"node_state_class,omitempty"`
}

// AssemblyType names the constructor tag an assembly resolves to.
type AssemblyType struct {
	Key            string `yaml:"key"`
	AssemblyClass  string `yaml:"assembly_class"`
}

// AssemblyParam is a named, optionally-typed construction parameter. Value
// is kept as a raw yaml.Node so the assembly factory for AssemblyClass can
// decode it into whatever concrete Go type it expects (e.g. ControllerConfig,
// DataCollectConfig, or a bare float64), the statically-typed equivalent of
// the original's config_class-driven dynamic instantiation.
type AssemblyParam struct {
	Name        string    `yaml:"name"`
	ConfigClass string    `yaml:"config_class,omitempty"`
	Value       yaml.Node `yaml:"value"`
}

// Assembly is a logical grouping of nodes, keyed roles pointing at one or
// more node keys (e.g. "thermometer" -> several keys, "heat_plate" -> one).
type Assembly struct {
	Key             string              `yaml:"key"`
	AssemblyTypeRef string              `yaml:"assembly_type_ref"`
	Nodes           map[string][]string `yaml:"nodes"`
	Params          []AssemblyParam     `yaml:"params,omitempty"`
}

// BusConfig describes the physical SocketCAN interface, absent when the
// deployment runs mock-only.
type BusConfig struct {
	Channel        string  `yaml:"channel"`
	Interface      string  `yaml:"interface"`
	ReceiveTimeout float64 `yaml:"receive_timeout"`
}

// PortConfig governs the CAN port's polling cadence.
type PortConfig struct {
	ProcessInterval       float64    `yaml:"process_interval"`
	DeviceConnectInterval float64    `yaml:"device_connect_interval"`
	Bus                   *BusConfig `yaml:"bus,omitempty"`
}

// Config is the fully parsed configuration document.
type Config struct {
	Port          PortConfig     `yaml:"port"`
	MessageTypes  []MessageType  `yaml:"message_types"`
	NodeTypes     []NodeType     `yaml:"node_types"`
	Nodes         []Node         `yaml:"nodes"`
	AssemblyTypes []AssemblyType `yaml:"assembly_types"`
	Assemblies    []Assembly     `yaml:"assemblies"`
}

// ControllerConfig is the PD + PWM control-loop tuning for a heat-plate
// controller, the typed form of an assembly param with config_class
// "controller".
type ControllerConfig struct {
	PGain         float64 `yaml:"p_gain"`
	DGain         float64 `yaml:"d_gain"`
	MaxCS         float64 `yaml:"max_cs"`
	LowJumpThres  float64 `yaml:"low_jump_thres"`
	HighJumpThres float64 `yaml:"high_jump_thres"`
	PWMInterval   float64 `yaml:"pwm_interval"`
}

// DataCollectConfig governs the kettle's temperature sampling cadence and
// window, the typed form of an assembly param with config_class
// "data_collect".
type DataCollectConfig struct {
	Window          float64 `yaml:"window"`
	CollectInterval float64 `yaml:"collect_interval"`
}
