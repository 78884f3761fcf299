package supervisor

import (
	"context"
	"time"

	"github.com/brewbot/controller/pkg/assembly"
	"github.com/brewbot/controller/pkg/canbus"
	"github.com/brewbot/controller/pkg/config"
	"github.com/brewbot/controller/pkg/mock"
	"github.com/brewbot/controller/pkg/nodestate"
	"github.com/brewbot/controller/pkg/util"
)

// startTasks spawns every background task for the session currently held
// under s.mu: the dispatch task, the send task, each node's periodic tx
// producers, the mock device producers, the simulator tick, and each
// assembly's periodic tasks (spec.md §4.3 "On connected event" / §4.4 /
// §4.5 / §4.6).
func (s *Supervisor) startTasks() {
	s.mu.Lock()
	tasks := s.tasks
	nodeStates := s.nodeStates
	mockNodes := s.mockNodes
	mockState := s.mockState
	assemblies := s.assemblies
	s.mu.Unlock()

	tasks.Go(s.dispatchTask)
	tasks.Go(s.sendTask)

	for nodeKey, ns := range nodeStates {
		s.startNodeTxProducers(tasks, nodeKey, ns)
	}

	for nodeKey, node := range mockNodes {
		s.startMockProducer(tasks, nodeKey, node)
	}

	if mockState != nil {
		tasks.Go(func(ctx context.Context) {
			s.simulatorTask(ctx, mockState)
		})
	}

	for _, a := range assemblies {
		s.startAssemblyTasks(tasks, a)
	}
}

// dispatchTask round-robins between the mock inbound queue and the
// physical port, decoding frames and invoking the owning node's
// UpdateRx, in receive order (spec.md §4.3 "Dispatch task", §5
// "Ordering guarantees"). A mock-only deployment (no configured bus) has
// no physical port to poll, so it simply blocks on the mock queue
// instead of busy-spinning against an always-disconnected port.
func (s *Supervisor) dispatchTask(ctx context.Context) {
	if s.cfg.Port.Bus == nil {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-s.mockCh:
				s.routeMockRx(evt)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-s.mockCh:
			s.routeMockRx(evt)
		default:
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, ok := s.port.RecvTimeout(s.port.ReceiveTimeout())
		if ok {
			s.routePhysicalFrame(frame)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.processInterval):
		}
	}
}

func (s *Supervisor) routeMockRx(evt mockRxEvent) {
	s.mu.Lock()
	ns, ok := s.nodeStates[evt.nodeKey]
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := ns.UpdateRx(evt.msgKey, evt.values); err != nil {
		s.log.WithError(err).WithField("node", evt.nodeKey).Warn("invalid mock rx message")
	}
}

func (s *Supervisor) routePhysicalFrame(frame canbus.Frame) {
	decoded, ok := s.reg.Decode(frame)
	if !ok {
		return
	}

	s.mu.Lock()
	ns, ok := s.nodeStates[decoded.NodeKey]
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := ns.UpdateRx(decoded.MessageKey, decoded.Values); err != nil {
		s.log.WithError(err).WithField("node", decoded.NodeKey).Warn("invalid rx message")
	}
}

// sendTask drains the send queue, routing each entry to a mock loopback
// or the physical port's encode+send path, sleeping processInterval
// between iterations (spec.md §4.3 "Send task").
func (s *Supervisor) sendTask(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.sendCh:
			s.routeSend(req)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.processInterval):
		}
	}
}

func (s *Supervisor) routeSend(req sendRequest) {
	s.mu.Lock()
	mockNode, isMock := s.mockNodes[req.targetNodeKey]
	s.mu.Unlock()

	if isMock {
		if err := mockNode.HandleMessage(req.msgKey, req.values); err != nil {
			s.log.WithError(err).WithField("node", req.targetNodeKey).Warn("mock node rejected message")
		}
		return
	}

	frame, err := s.reg.Encode(req.targetNodeKey, req.msgKey, req.values, "")
	if err != nil {
		s.log.WithError(err).WithField("node", req.targetNodeKey).Error("failed to encode outbound message")
		return
	}
	s.port.Send(frame)
}

// startNodeTxProducers spawns one periodic producer per tx message the
// node's type declares a frequency for (spec.md §4.4 "Node State
// lifecycle").
func (s *Supervisor) startNodeTxProducers(tasks *util.TaskGroup, nodeKey string, ns nodestate.NodeState) {
	nodeType, ok := s.reg.NodeType(nodeKey)
	if !ok {
		return
	}

	for _, ref := range nodeType.Messages {
		bm, ok := s.reg.BoundMessage(nodeKey, ref.Key)
		if !ok || bm.MsgType.Direction != config.DirectionTx || bm.Frequency == nil || *bm.Frequency <= 0 {
			continue
		}
		msgKey := ref.Key
		interval := time.Duration(float64(time.Second) / *bm.Frequency)

		tasks.Go(func(ctx context.Context) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
				payload, err := ns.TxPayload(msgKey)
				if err != nil {
					s.log.WithError(err).WithField("node", nodeKey).Warn("tx producer failed")
					continue
				}
				s.Enqueue(nodeKey, msgKey, payload)
			}
		})
	}
}

// startMockProducer spawns the periodic device-state emitter for a mock
// node: a thermometer measures and enqueues temp_state, a relay re-emits
// its last commanded state as relay_state (spec.md §4.6).
func (s *Supervisor) startMockProducer(tasks *util.TaskGroup, nodeKey string, node mock.Node) {
	switch m := node.(type) {
	case *mock.Thermometer:
		interval := time.Duration(m.MsgInterval * float64(time.Second))
		tasks.Go(func(ctx context.Context) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
				select {
				case s.mockCh <- mockRxEvent{nodeKey: nodeKey, msgKey: "temp_state", values: m.Measure()}:
				case <-ctx.Done():
					return
				}
			}
		})
	case *mock.Relay:
		interval := time.Duration(m.MsgInterval * float64(time.Second))
		tasks.Go(func(ctx context.Context) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
				select {
				case s.mockCh <- mockRxEvent{nodeKey: nodeKey, msgKey: "relay_state", values: m.Emit()}:
				case <-ctx.Done():
					return
				}
			}
		})
	}
}

// simulatorTask ticks the thermodynamic simulator on its own interval
// (spec.md §3 "Mock State").
func (s *Supervisor) simulatorTask(ctx context.Context, state *mock.State) {
	interval := time.Duration(state.SimulationInterval * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		state.Simulate(state.SimulationInterval)
	}
}

// startAssemblyTasks spawns the data collector and heat-plate controller
// tasks for every Kettle assembly (spec.md §4.5).
func (s *Supervisor) startAssemblyTasks(tasks *util.TaskGroup, a assembly.Assembly) {
	k, ok := a.(*assembly.Kettle)
	if !ok {
		return
	}

	tasks.Go(func(ctx context.Context) {
		ticker := time.NewTicker(k.CollectInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			k.CollectData()
		}
	})

	tasks.Go(func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			k.ControlHeatPlateTick(func(d time.Duration) {
				select {
				case <-ctx.Done():
				case <-time.After(d):
				}
			})
		}
	})
}
