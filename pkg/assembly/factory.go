package assembly

import (
	"fmt"

	"github.com/brewbot/controller/pkg/config"
	"github.com/brewbot/controller/pkg/nodestate"
	"github.com/sirupsen/logrus"
)

// Assembly is the common shape every assembly_class builds to: a thing
// the supervisor can run periodic tasks against.
type Assembly interface {
	AssemblyKey() string
}

// AssemblyKey implements Assembly.
func (k *Kettle) AssemblyKey() string { return k.Key }

// Factory builds an Assembly from its config, the node states already
// constructed for its referenced nodes (keyed by node key), and the
// resolved assembly params.
type Factory func(
	assembly config.Assembly,
	nodeStates map[string]nodestate.NodeState,
	log *logrus.Entry,
) (Assembly, error)

var factories = map[string]Factory{}

// RegisterFactory makes an assembly constructor available under tag.
func RegisterFactory(tag string, factory Factory) {
	factories[tag] = factory
}

// Build resolves assemblyType's assembly_class and constructs the
// assembly, the statically-typed equivalent of the original's
// from_config classmethods.
func Build(
	assembly config.Assembly,
	assemblyType config.AssemblyType,
	nodeStates map[string]nodestate.NodeState,
	log *logrus.Entry,
) (Assembly, error) {
	factory, ok := factories[assemblyType.AssemblyClass]
	if !ok {
		return nil, fmt.Errorf("assembly: unknown assembly_class %q for assembly %q", assemblyType.AssemblyClass, assembly.Key)
	}
	return factory(assembly, nodeStates, log)
}

func paramByName(assembly config.Assembly, name string) (*config.AssemblyParam, bool) {
	for i := range assembly.Params {
		if assembly.Params[i].Name == name {
			return &assembly.Params[i], true
		}
	}
	return nil, false
}

func thermometersFromNodes(assembly config.Assembly, nodeStates map[string]nodestate.NodeState, role string) ([]*nodestate.Thermometer, error) {
	keys := assembly.Nodes[role]
	out := make([]*nodestate.Thermometer, 0, len(keys))
	for _, key := range keys {
		ns, ok := nodeStates[key]
		if !ok {
			return nil, fmt.Errorf("assembly: node %q referenced by %q has no node state", key, assembly.Key)
		}
		therm, ok := ns.(*nodestate.Thermometer)
		if !ok {
			return nil, fmt.Errorf("assembly: node %q referenced as %q is not a thermometer", key, role)
		}
		out = append(out, therm)
	}
	return out, nil
}

func relayFromNode(assembly config.Assembly, nodeStates map[string]nodestate.NodeState, role string) (*nodestate.Relay, error) {
	keys := assembly.Nodes[role]
	if len(keys) != 1 {
		return nil, fmt.Errorf("assembly: %q expects exactly one node under role %q, got %d", assembly.Key, role, len(keys))
	}
	ns, ok := nodeStates[keys[0]]
	if !ok {
		return nil, fmt.Errorf("assembly: node %q referenced by %q has no node state", keys[0], assembly.Key)
	}
	relay, ok := ns.(*nodestate.Relay)
	if !ok {
		return nil, fmt.Errorf("assembly: node %q referenced as %q is not a relay", keys[0], role)
	}
	return relay, nil
}

func init() {
	RegisterFactory("kettle", func(
		a config.Assembly,
		nodeStates map[string]nodestate.NodeState,
		log *logrus.Entry,
	) (Assembly, error) {
		thermometers, err := thermometersFromNodes(a, nodeStates, "thermometer")
		if err != nil {
			return nil, err
		}
		steering, err := relayFromNode(a, nodeStates, "steering")
		if err != nil {
			return nil, err
		}
		heatPlate, err := relayFromNode(a, nodeStates, "heat_plate")
		if err != nil {
			return nil, err
		}

		var controllerConf config.ControllerConfig
		if p, ok := paramByName(a, "controller"); ok {
			if err := p.DecodeParam(&controllerConf); err != nil {
				return nil, fmt.Errorf("assembly %q: controller param: %w", a.Key, err)
			}
		}

		var dataCollectConf config.DataCollectConfig
		if p, ok := paramByName(a, "data_collect"); ok {
			if err := p.DecodeParam(&dataCollectConf); err != nil {
				return nil, fmt.Errorf("assembly %q: data_collect param: %w", a.Key, err)
			}
		}

		var volume float64
		if p, ok := paramByName(a, "volume"); ok {
			if err := p.DecodeParam(&volume); err != nil {
				return nil, fmt.Errorf("assembly %q: volume param: %w", a.Key, err)
			}
		}

		return NewKettle(a.Key, thermometers, steering, heatPlate, volume, controllerConf, dataCollectConf, log), nil
	})
}
