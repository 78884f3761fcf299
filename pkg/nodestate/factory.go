package nodestate

import (
	"fmt"

	"github.com/brewbot/controller/pkg/config"
)

// Factory builds a NodeState for a node, given its compiled rx message
// keys (computed by the caller from the node's node type).
type Factory func(node config.Node, rxMessageKeys []string) (NodeState, error)

var factories = map[string]Factory{}

// RegisterFactory makes a node-state constructor available under tag, the
// statically-typed equivalent of the original's node_state_class ->
// load_object(fully.qualified.Name) (spec.md §9 "Dynamic class loading").
func RegisterFactory(tag string, factory Factory) {
	factories[tag] = factory
}

// Build resolves a node's node_state_class (falling back to its node
// type's) through the registration table and constructs the NodeState.
func Build(node config.Node, nodeType config.NodeType, rxMessageKeys []string) (NodeState, error) {
	tag := node.NodeStateClass
	if tag == "" {
		tag = nodeType.NodeStateClass
	}
	if tag == "" {
		return nil, nil
	}

	factory, ok := factories[tag]
	if !ok {
		return nil, fmt.Errorf("nodestate: unknown node_state_class %q for node %q", tag, node.Key)
	}
	return factory(node, rxMessageKeys)
}

func floatParam(node config.Node, key string, fallback float64) float64 {
	if node.Params == nil {
		return fallback
	}
	v, ok := node.Params[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return fallback
	}
}

func init() {
	RegisterFactory("thermometer", func(node config.Node, rxKeys []string) (NodeState, error) {
		rxKey := "temp_state"
		if len(rxKeys) > 0 {
			rxKey = rxKeys[0]
		}
		window := floatParam(node, "window", 10.0)
		return NewThermometer(window, rxKey), nil
	})

	RegisterFactory("relay", func(node config.Node, rxKeys []string) (NodeState, error) {
		return NewRelay(rxKeys...), nil
	})

	RegisterFactory("master", func(node config.Node, rxKeys []string) (NodeState, error) {
		return NewMaster(), nil
	})
}
