package supervisor

import (
	"context"

	"github.com/brewbot/controller/pkg/assembly"
	"github.com/brewbot/controller/pkg/config"
	"github.com/brewbot/controller/pkg/mock"
	"github.com/brewbot/controller/pkg/nodestate"
	"github.com/brewbot/controller/pkg/util"
)

// onConnected builds all per-session state and starts its background
// tasks (spec.md §4.3 "On connected event").
func (s *Supervisor) onConnected() {
	s.mu.Lock()
	if s.tasks != nil {
		s.mu.Unlock()
		return // a session is already running
	}
	s.mu.Unlock()

	nodeStates, nodeRxKeys, err := s.buildNodeStates()
	if err != nil {
		s.log.WithError(err).Error("failed to build node states, aborting session")
		return
	}

	mockState := mock.NewState(heatPlateOnFunc(nodeStates))
	mockNodes, err := s.buildMockNodes(mockState)
	if err != nil {
		s.log.WithError(err).Error("failed to build mock nodes, aborting session")
		return
	}

	assemblies, err := s.buildAssemblies(nodeStates)
	if err != nil {
		s.log.WithError(err).Error("failed to build assemblies, aborting session")
		return
	}

	parent := s.ctx
	if parent == nil {
		parent = context.Background()
	}

	s.mu.Lock()
	s.nodeStates = nodeStates
	s.nodeRxKeys = nodeRxKeys
	s.mockState = mockState
	s.mockNodes = mockNodes
	s.assemblies = assemblies
	s.tasks = util.NewTaskGroup(parent)
	s.mu.Unlock()

	s.log.WithField("nodes", len(nodeStates)).Info("session starting")
	s.startTasks()
}

// onShutdown cooperatively cancels every background task, awaits
// completion, and clears all per-session state (spec.md §4.3 "On
// shutdown event").
func (s *Supervisor) onShutdown() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()

	if tasks == nil {
		return
	}

	s.log.Info("session shutting down")
	tasks.CancelAndWait()

	s.mu.Lock()
	s.nodeStates = nil
	s.nodeRxKeys = nil
	s.mockNodes = nil
	s.mockState = nil
	s.assemblies = nil
	s.mu.Unlock()
}

// heatPlateOnFunc closes over a fixed nodeStates snapshot so mock.State
// need not take a lock on the supervisor itself (spec.md §4.6, the
// simulator reading node_states['heat_plate_1'].rx_message_state).
func heatPlateOnFunc(nodeStates map[string]nodestate.NodeState) func() bool {
	return func() bool {
		ns, ok := nodeStates[heatPlateNodeKey]
		if !ok {
			return false
		}
		relay, ok := ns.(*nodestate.Relay)
		if !ok {
			return false
		}
		state, ok := relay.RxState("relay_state")
		if !ok {
			return false
		}
		return state["on"] != 0
	}
}

func (s *Supervisor) buildNodeStates() (map[string]nodestate.NodeState, map[string][]string, error) {
	nodeStates := make(map[string]nodestate.NodeState, len(s.cfg.Nodes))
	nodeRxKeys := make(map[string][]string, len(s.cfg.Nodes))

	for _, n := range s.cfg.Nodes {
		nt, err := nodeTypeByKey(s.cfg, n.NodeTypeRef)
		if err != nil {
			return nil, nil, err
		}

		var rxKeys []string
		for _, ref := range nt.Messages {
			bm, ok := s.reg.BoundMessage(n.Key, ref.Key)
			if !ok {
				continue
			}
			if bm.MsgType.Direction == config.DirectionRx {
				rxKeys = append(rxKeys, ref.Key)
			}
		}
		nodeRxKeys[n.Key] = rxKeys

		ns, err := nodestate.Build(n, nt, rxKeys)
		if err != nil {
			return nil, nil, err
		}
		if ns != nil {
			nodeStates[n.Key] = ns
		}
	}

	return nodeStates, nodeRxKeys, nil
}

func (s *Supervisor) buildMockNodes(state *mock.State) (map[string]mock.Node, error) {
	out := make(map[string]mock.Node)
	for _, n := range s.cfg.Nodes {
		if !n.Debug.Mock {
			continue
		}
		nt, err := nodeTypeByKey(s.cfg, n.NodeTypeRef)
		if err != nil {
			return nil, err
		}
		node, err := mock.Build(n, nt, state)
		if err != nil {
			return nil, err
		}
		if node != nil {
			out[n.Key] = node
		}
	}
	return out, nil
}

func (s *Supervisor) buildAssemblies(nodeStates map[string]nodestate.NodeState) (map[string]assembly.Assembly, error) {
	out := make(map[string]assembly.Assembly, len(s.cfg.Assemblies))
	for _, a := range s.cfg.Assemblies {
		at, err := assemblyTypeByKey(s.cfg, a.AssemblyTypeRef)
		if err != nil {
			return nil, err
		}
		built, err := assembly.Build(a, at, nodeStates, s.log)
		if err != nil {
			return nil, err
		}
		out[a.Key] = built
	}
	return out, nil
}
