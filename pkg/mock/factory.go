package mock

import (
	"fmt"

	"github.com/brewbot/controller/pkg/config"
)

// Node is the common shape of every mock device: something that can be
// handed an outbound message instead of a real CAN frame (spec.md §4.6
// "MockNode ... receives outbound frames via handle_message").
type Node interface {
	HandleMessage(msgKey string, payload map[string]float64) error
}

// Factory builds a mock Node for a node, given the shared simulator
// state.
type Factory func(node config.Node, state *State) (Node, error)

var factories = map[string]Factory{}

// RegisterFactory makes a mock-node constructor available under tag, the
// statically-typed equivalent of the original's mock_class ->
// load_object(fully.qualified.Name).
func RegisterFactory(tag string, factory Factory) {
	factories[tag] = factory
}

// Build resolves a node's mock_class (falling back to its node type's)
// and constructs the mock device. It returns (nil, nil) for a node
// that isn't mocked.
func Build(node config.Node, nodeType config.NodeType, state *State) (Node, error) {
	if !node.Debug.Mock {
		return nil, nil
	}

	tag := node.MockClass
	if tag == "" {
		tag = nodeType.MockClass
	}
	if tag == "" {
		return nil, fmt.Errorf("mock: node %q has debug.mock=true but no mock_class", node.Key)
	}

	factory, ok := factories[tag]
	if !ok {
		return nil, fmt.Errorf("mock: unknown mock_class %q for node %q", tag, node.Key)
	}
	return factory(node, state)
}

func init() {
	RegisterFactory("thermometer", func(node config.Node, state *State) (Node, error) {
		return NewThermometer(state), nil
	})
	RegisterFactory("relay", func(node config.Node, state *State) (Node, error) {
		return NewRelay(), nil
	})
}
