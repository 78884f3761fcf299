package registry

import (
	"fmt"

	"github.com/brewbot/controller/pkg/canbus"
	"github.com/brewbot/controller/pkg/config"
)

// BoundMessage is a message-type definition joined with a specific node's
// source address, compiled into encode/decode closures at registry
// construction time (spec.md §3, §9 "declarative registry -> compiled
// codecs").
type BoundMessage struct {
	Key       string
	MsgType   config.MessageType
	SrcAddr   *uint8 // nil means "unconstrained" (any source matches on decode)
	Frequency *float64
}

// Encode turns a semantic payload into wire bytes.
func (b *BoundMessage) Encode(values map[string]float64) ([8]byte, error) {
	var data [8]byte
	for _, sig := range b.MsgType.Signals {
		v, ok := values[sig.Key]
		if !ok {
			continue
		}
		if err := encodeSignal(&data, sig, v); err != nil {
			return data, fmt.Errorf("message %q: %w", b.Key, err)
		}
	}
	return data, nil
}

// Decode turns wire bytes into a semantic payload.
func (b *BoundMessage) Decode(data [8]byte) (map[string]float64, error) {
	out := make(map[string]float64, len(b.MsgType.Signals))
	for _, sig := range b.MsgType.Signals {
		v, err := decodeSignal(data, sig)
		if err != nil {
			return nil, fmt.Errorf("message %q: %w", b.Key, err)
		}
		out[sig.Key] = v
	}
	return out, nil
}

// nodeMessages compiles a Node's ordered message references into
// BoundMessages, resolving msg_type_ref through the node's node type.
func nodeMessages(node config.Node, nodeType config.NodeType, msgTypes map[string]config.MessageType) (map[string]*BoundMessage, error) {
	bound := make(map[string]*BoundMessage, len(nodeType.Messages))
	for _, ref := range nodeType.Messages {
		mt, ok := msgTypes[ref.MsgTypeRef]
		if !ok {
			return nil, fmt.Errorf("registry: node %q: unresolved msg_type_ref %q", node.Key, ref.MsgTypeRef)
		}

		var src *uint8
		if mt.Direction == config.DirectionRx {
			addr := node.NodeAddr
			src = &addr
		}

		bound[ref.Key] = &BoundMessage{
			Key:       ref.Key,
			MsgType:   mt,
			SrcAddr:   src,
			Frequency: ref.Frequency,
		}
	}
	return bound, nil
}

// boundNode is a Node joined with its compiled messages, the unit the
// registry indexes and dispatches against.
type boundNode struct {
	Node     config.Node
	Messages map[string]*BoundMessage
}

// CANFrame renders a bound message addressed to target as a canbus.Frame.
func CANFrame(target config.Node, src config.Node, msg *BoundMessage, values map[string]float64) (canbus.Frame, error) {
	data, err := msg.Encode(values)
	if err != nil {
		return canbus.Frame{}, err
	}
	id := PGNToCANID(msg.MsgType.PGN, msg.MsgType.Priority, src.NodeAddr, target.NodeAddr)
	return canbus.Frame{ID: id, DLC: 8, Data: data}, nil
}
