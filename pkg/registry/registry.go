package registry

import (
	"fmt"

	"github.com/brewbot/controller/pkg/canbus"
	"github.com/brewbot/controller/pkg/config"
)

const masterNodeKey = "master"

// pgnEntry is one candidate for a received PGN: the owning node and its
// compiled rx message.
type pgnEntry struct {
	node *boundNode
	msg  *BoundMessage
}

// Registry compiles a config.Config into the PGN index and per-message
// codecs spec.md §4.1 describes, and is the only place that converts
// between semantic payloads and wire frames.
type Registry struct {
	nodes     map[string]*boundNode
	msgByPGN  map[uint32][]pgnEntry
	nodeTypes map[string]config.NodeType
}

// New compiles cfg into a Registry. cfg is assumed already
// config.Validate()-clean; New re-checks only what it needs to build the
// index (message type and node type resolution), returning an error for
// anything Validate should have already caught.
func New(cfg *config.Config) (*Registry, error) {
	msgTypes := make(map[string]config.MessageType, len(cfg.MessageTypes))
	for _, mt := range cfg.MessageTypes {
		msgTypes[mt.Key] = mt
	}

	nodeTypes := make(map[string]config.NodeType, len(cfg.NodeTypes))
	for _, nt := range cfg.NodeTypes {
		nodeTypes[nt.Key] = nt
	}

	r := &Registry{
		nodes:     make(map[string]*boundNode, len(cfg.Nodes)),
		msgByPGN:  make(map[uint32][]pgnEntry),
		nodeTypes: nodeTypes,
	}

	// A virtual "master" node represents the controller itself as a
	// message source/target, the default src_node_key of the original's
	// MsgRegistry.encode.
	r.nodes[masterNodeKey] = &boundNode{
		Node:     config.Node{Key: masterNodeKey, NodeAddr: 0},
		Messages: map[string]*BoundMessage{},
	}

	for _, n := range cfg.Nodes {
		nt, ok := nodeTypes[n.NodeTypeRef]
		if !ok {
			return nil, fmt.Errorf("registry: node %q: unresolved node_type_ref %q", n.Key, n.NodeTypeRef)
		}

		bound, err := nodeMessages(n, nt, msgTypes)
		if err != nil {
			return nil, err
		}

		bn := &boundNode{Node: n, Messages: bound}
		r.nodes[n.Key] = bn

		for _, msg := range bound {
			if msg.MsgType.Direction != config.DirectionRx {
				continue
			}
			pgn := CanonicalPGN(msg.MsgType.PGN)
			r.msgByPGN[pgn] = append(r.msgByPGN[pgn], pgnEntry{node: bn, msg: msg})
		}
	}

	return r, nil
}

// Decoded is one successfully decoded inbound message.
type Decoded struct {
	NodeKey    string
	MessageKey string
	Values     map[string]float64
}

// Decode resolves frame's PGN bucket, then picks the first entry whose
// node address matches the frame's destination (or destination is
// broadcast) and whose declared source matches the frame's source (or
// source is unconstrained). It returns ok=false for an unknown PGN or no
// matching candidate, per spec.md §4.1's "unknown PGN -> decode returns
// absent".
func (r *Registry) Decode(frame canbus.Frame) (Decoded, bool) {
	pgn, _, frameSrc, frameDst := CANIDToPGN(frame.ID)

	for _, entry := range r.msgByPGN[pgn] {
		if frameDst != BroadcastAddr && frameDst != entry.node.Node.NodeAddr {
			continue
		}
		if entry.msg.SrcAddr != nil && *entry.msg.SrcAddr != frameSrc {
			continue
		}

		values, err := entry.msg.Decode(frame.Data)
		if err != nil {
			return Decoded{}, false
		}
		return Decoded{NodeKey: entry.node.Node.Key, MessageKey: entry.msg.Key, Values: values}, true
	}

	return Decoded{}, false
}

// Encode looks up targetNodeKey's bound message and renders an outbound
// frame. An unknown source, target or message key is a programmer error;
// Encode reports it as a returned error and does not panic.
func (r *Registry) Encode(targetNodeKey, msgKey string, values map[string]float64, srcNodeKey string) (canbus.Frame, error) {
	if srcNodeKey == "" {
		srcNodeKey = masterNodeKey
	}

	src, ok := r.nodes[srcNodeKey]
	if !ok {
		return canbus.Frame{}, fmt.Errorf("registry: encode: unknown src node %q", srcNodeKey)
	}
	target, ok := r.nodes[targetNodeKey]
	if !ok {
		return canbus.Frame{}, fmt.Errorf("registry: encode: unknown target node %q", targetNodeKey)
	}
	msg, ok := target.Messages[msgKey]
	if !ok {
		return canbus.Frame{}, fmt.Errorf("registry: encode: node %q has no message %q", targetNodeKey, msgKey)
	}

	return CANFrame(target.Node, src.Node, msg, values)
}

// NodeType returns the node type a node key was bound against.
func (r *Registry) NodeType(nodeKey string) (config.NodeType, bool) {
	bn, ok := r.nodes[nodeKey]
	if !ok {
		return config.NodeType{}, false
	}
	nt, ok := r.nodeTypes[bn.Node.NodeTypeRef]
	return nt, ok
}

// Node returns the config.Node a key is bound against.
func (r *Registry) Node(nodeKey string) (config.Node, bool) {
	bn, ok := r.nodes[nodeKey]
	if !ok {
		return config.Node{}, false
	}
	return bn.Node, true
}

// BoundMessage returns a node's compiled message by key.
func (r *Registry) BoundMessage(nodeKey, msgKey string) (*BoundMessage, bool) {
	bn, ok := r.nodes[nodeKey]
	if !ok {
		return nil, false
	}
	msg, ok := bn.Messages[msgKey]
	return msg, ok
}
