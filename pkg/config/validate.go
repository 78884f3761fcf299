package config

import "fmt"

// ErrConfig wraps every structural problem Validate finds: malformed
// references, duplicate keys, out-of-range values. Fatal at startup, per
// spec.md's ConfigError.
type ErrConfig struct {
	msg string
}

func (e *ErrConfig) Error() string { return e.msg }

func configErrf(format string, args ...any) error {
	return &ErrConfig{msg: fmt.Sprintf(format, args...)}
}

// Validate checks every invariant spec.md §3 places on the data model:
// unique keys, resolvable references, and value ranges. It does not
// build any runtime object; it only certifies the document is internally
// consistent.
func (c *Config) Validate() error {
	msgTypes, err := validateMessageTypes(c.MessageTypes)
	if err != nil {
		return err
	}

	nodeTypes, err := validateNodeTypes(c.NodeTypes, msgTypes)
	if err != nil {
		return err
	}

	nodeKeys, err := validateNodes(c.Nodes, nodeTypes)
	if err != nil {
		return err
	}

	asmTypes, err := validateAssemblyTypes(c.AssemblyTypes)
	if err != nil {
		return err
	}

	if err := validateAssemblies(c.Assemblies, asmTypes, nodeKeys); err != nil {
		return err
	}

	return nil
}

func validateMessageTypes(msgs []MessageType) (map[string]MessageType, error) {
	byKey := make(map[string]MessageType, len(msgs))
	pgnByDir := map[Direction]map[uint32]bool{DirectionRx: {}, DirectionTx: {}}

	for _, m := range msgs {
		if _, dup := byKey[m.Key]; dup {
			return nil, configErrf("duplicate message_type key %q", m.Key)
		}
		byKey[m.Key] = m

		if m.Direction != DirectionRx && m.Direction != DirectionTx {
			return nil, configErrf("message_type %q: invalid direction %q", m.Key, m.Direction)
		}
		if pgnByDir[m.Direction][m.PGN] {
			return nil, configErrf("message_type %q: duplicate pgn 0x%X within direction %q", m.Key, m.PGN, m.Direction)
		}
		pgnByDir[m.Direction][m.PGN] = true

		if m.Priority > 7 {
			return nil, configErrf("message_type %q: priority %d out of range 0-7", m.Key, m.Priority)
		}

		for _, s := range m.Signals {
			if err := validateSignal(m.Key, s); err != nil {
				return nil, err
			}
		}
	}

	return byKey, nil
}

func validateSignal(msgKey string, s Signal) error {
	if s.SignalSize < 1 || s.SignalSize > 64 {
		return configErrf("message_type %q signal %q: signal_size %d out of range [1,64]", msgKey, s.Key, s.SignalSize)
	}
	if s.Scale == 0 {
		return configErrf("message_type %q signal %q: value_scale must be non-zero", msgKey, s.Key)
	}
	if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
		return configErrf("message_type %q signal %q: value_min > value_max", msgKey, s.Key)
	}
	switch s.Kind {
	case SignalInt, SignalFloat, SignalFlag:
	default:
		return configErrf("message_type %q signal %q: invalid py_type %q", msgKey, s.Key, s.Kind)
	}
	return nil
}

func validateNodeTypes(nodeTypes []NodeType, msgTypes map[string]MessageType) (map[string]NodeType, error) {
	byKey := make(map[string]NodeType, len(nodeTypes))
	for _, nt := range nodeTypes {
		if _, dup := byKey[nt.Key]; dup {
			return nil, configErrf("duplicate node_type key %q", nt.Key)
		}
		byKey[nt.Key] = nt

		for _, m := range nt.Messages {
			if _, ok := msgTypes[m.MsgTypeRef]; !ok {
				return nil, configErrf("node_type %q: unresolved msg_type_ref %q", nt.Key, m.MsgTypeRef)
			}
			if m.Frequency != nil && *m.Frequency <= 0 {
				return nil, configErrf("node_type %q message %q: frequency must be positive", nt.Key, m.Key)
			}
		}
	}
	return byKey, nil
}

func validateNodes(nodes []Node, nodeTypes map[string]NodeType) (map[string]bool, error) {
	keys := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if keys[n.Key] {
			return nil, configErrf("duplicate node key %q", n.Key)
		}
		keys[n.Key] = true

		if _, ok := nodeTypes[n.NodeTypeRef]; !ok {
			return nil, configErrf("node %q: unresolved node_type_ref %q", n.Key, n.NodeTypeRef)
		}
		if n.NodeAddr > 254 {
			return nil, configErrf("node %q: node_addr %d out of range 0-254 (255 is broadcast)", n.Key, n.NodeAddr)
		}
	}
	return keys, nil
}

func validateAssemblyTypes(types []AssemblyType) (map[string]bool, error) {
	keys := make(map[string]bool, len(types))
	for _, t := range types {
		if keys[t.Key] {
			return nil, configErrf("duplicate assembly_type key %q", t.Key)
		}
		keys[t.Key] = true
	}
	return keys, nil
}

func validateAssemblies(assemblies []Assembly, asmTypes map[string]bool, nodeKeys map[string]bool) error {
	seen := make(map[string]bool, len(assemblies))
	for _, a := range assemblies {
		if seen[a.Key] {
			return configErrf("duplicate assembly key %q", a.Key)
		}
		seen[a.Key] = true

		if !asmTypes[a.AssemblyTypeRef] {
			return configErrf("assembly %q: unresolved assembly_type_ref %q", a.Key, a.AssemblyTypeRef)
		}
		for role, refs := range a.Nodes {
			for _, ref := range refs {
				if !nodeKeys[ref] {
					return configErrf("assembly %q role %q: unresolved node key %q", a.Key, role, ref)
				}
			}
		}
	}
	return nil
}
