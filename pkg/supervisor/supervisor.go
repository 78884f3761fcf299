// Package supervisor drives the lifecycle of all per-session state: node
// states, mock devices, the physical simulator, assemblies, and the
// dispatch/send tasks that connect them to the CAN port (spec.md §4.3).
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brewbot/controller/pkg/assembly"
	"github.com/brewbot/controller/pkg/canport"
	"github.com/brewbot/controller/pkg/config"
	"github.com/brewbot/controller/pkg/mock"
	"github.com/brewbot/controller/pkg/nodestate"
	"github.com/brewbot/controller/pkg/registry"
	"github.com/brewbot/controller/pkg/util"
	"github.com/sirupsen/logrus"
)

// heatPlateNodeKey is the conventional node key the shared physical
// simulator reads relay state from, matching mock.py's
// MockState.simulate hardcoding node_states['heat_plate_1'].
const heatPlateNodeKey = "heat_plate_1"

const defaultProcessInterval = 100 * time.Millisecond

// sendRequest is one entry on the send queue: a semantic payload destined
// for a node's message, routed to either a mock loopback or the physical
// port depending on whether the target is mocked (spec.md §4.3 "Send
// task").
type sendRequest struct {
	targetNodeKey string
	msgKey        string
	values        map[string]float64
}

// mockRxEvent is one synthesized inbound message a mock node drops onto
// the mock queue, read by the dispatch task with equal priority to the
// physical queue (spec.md §4.3 "mock inbound queue").
type mockRxEvent struct {
	nodeKey string
	msgKey  string
	values  map[string]float64
}

// Supervisor is the runtime entry point. It subscribes to its CAN port's
// lifecycle events and, for every "connected" session, builds and runs
// per-session state until "shutdown".
type Supervisor struct {
	cfg  *config.Config
	reg  *registry.Registry
	port *canport.Port
	log  *logrus.Entry

	processInterval time.Duration

	sendCh chan sendRequest
	mockCh chan mockRxEvent

	ctx context.Context

	mu         sync.Mutex
	nodeStates map[string]nodestate.NodeState
	nodeRxKeys map[string][]string
	mockNodes  map[string]mock.Node
	mockState  *mock.State
	assemblies map[string]assembly.Assembly
	tasks      *util.TaskGroup
}

// New builds a Supervisor wired to reg and port.
func New(cfg *config.Config, reg *registry.Registry, port *canport.Port, log *logrus.Entry) *Supervisor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	interval := defaultProcessInterval
	if cfg.Port.ProcessInterval > 0 {
		interval = time.Duration(cfg.Port.ProcessInterval * float64(time.Second))
	}

	s := &Supervisor{
		cfg:             cfg,
		reg:             reg,
		port:            port,
		log:             log.WithField("component", "supervisor"),
		processInterval: interval,
		sendCh:          make(chan sendRequest, 256),
		mockCh:          make(chan mockRxEvent, 256),
	}
	port.OnEvent(s.handleEvent)
	return s
}

func (s *Supervisor) handleEvent(evt canport.Event) {
	switch evt {
	case canport.EventConnected:
		s.onConnected()
	case canport.EventShutdown:
		s.onShutdown()
	}
}

// Run blocks until ctx is cancelled, driving the physical connect loop
// when a bus interface is configured, or starting a single always-on
// session immediately for a mock-only deployment (spec.md §4.6 implies
// mock nodes run without any physical device present).
func (s *Supervisor) Run(ctx context.Context) {
	s.ctx = ctx

	if s.cfg.Port.Bus == nil {
		s.onConnected()
		<-ctx.Done()
		s.onShutdown()
		return
	}

	connectInterval := defaultProcessInterval
	if s.cfg.Port.DeviceConnectInterval > 0 {
		connectInterval = time.Duration(s.cfg.Port.DeviceConnectInterval * float64(time.Second))
	}
	s.port.ConnectLoop(ctx, connectInterval)
}

// Enqueue places a semantic payload on the send queue, the entry point
// HTTP handlers and internal producers use instead of calling the
// registry or port directly (spec.md §3 "Send Queue").
func (s *Supervisor) Enqueue(targetNodeKey, msgKey string, values map[string]float64) {
	select {
	case s.sendCh <- sendRequest{targetNodeKey: targetNodeKey, msgKey: msgKey, values: values}:
	default:
		s.log.Warn("send queue full, blocking producer")
		s.sendCh <- sendRequest{targetNodeKey: targetNodeKey, msgKey: msgKey, values: values}
	}
}

// Assembly returns a built assembly by key, present only while a session
// is active.
func (s *Supervisor) Assembly(key string) (assembly.Assembly, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assemblies[key]
	return a, ok
}

// Kettle is a convenience accessor for HTTP handlers that need the
// concrete type.
func (s *Supervisor) Kettle(key string) (*assembly.Kettle, bool) {
	a, ok := s.Assembly(key)
	if !ok {
		return nil, false
	}
	k, ok := a.(*assembly.Kettle)
	return k, ok
}

var errUnknownAssemblyType = fmt.Errorf("supervisor: unresolved assembly_type_ref")

func assemblyTypeByKey(cfg *config.Config, key string) (config.AssemblyType, error) {
	for _, at := range cfg.AssemblyTypes {
		if at.Key == key {
			return at, nil
		}
	}
	return config.AssemblyType{}, fmt.Errorf("%w: %q", errUnknownAssemblyType, key)
}

var errUnknownNodeType = fmt.Errorf("supervisor: unresolved node_type_ref")

func nodeTypeByKey(cfg *config.Config, key string) (config.NodeType, error) {
	for _, nt := range cfg.NodeTypes {
		if nt.Key == key {
			return nt, nil
		}
	}
	return config.NodeType{}, fmt.Errorf("%w: %q", errUnknownNodeType, key)
}
