// Package canport owns the physical CAN bus handle and its
// connect/disconnect lifecycle, per spec.md §4.2. It notifies subscribers
// on "connected" and "shutdown" events so pkg/supervisor can build and
// tear down per-session state in response, without canport itself knowing
// anything about nodes, registries or assemblies.
package canport

import (
	"context"
	"sync"
	"time"

	"github.com/brewbot/controller/pkg/canbus"
	"github.com/sirupsen/logrus"
)

// Event is a CAN port lifecycle notification.
type Event string

const (
	EventConnected Event = "connected"
	EventShutdown  Event = "shutdown"
)

// State is the port's connection state machine.
type State int

const (
	StateDisconnected State = iota
	StateConnected
)

func (s State) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "disconnected"
}

// Config is the subset of pkg/config.PortConfig the port needs, kept
// decoupled from the config package so canport has no upward dependency.
type Config struct {
	InterfaceName  string
	Channel        string
	ReceiveTimeout time.Duration
}

// Port owns the physical bus handle, which may be absent entirely when a
// deployment runs mock-only nodes. Its methods are called from several
// goroutines (the connect loop, the supervisor's dispatch and send tasks,
// and the receive-loop watcher), so state and bus are guarded by mu.
type Port struct {
	conf Config
	log  *logrus.Entry

	mu    sync.Mutex
	state State
	bus   canbus.Bus
	frame chan canbus.Frame

	handlers []func(Event)
}

// defaultReceiveTimeout is used when a bus is configured without an
// explicit receive_timeout (spec.md §5 "Timeouts": "default ~0.1 s").
const defaultReceiveTimeout = 100 * time.Millisecond

// New builds a disconnected Port. conf.InterfaceName may be empty, in
// which case the deployment is mock-only and ConnectDevice is never
// called.
func New(conf Config, log *logrus.Entry) *Port {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if conf.ReceiveTimeout <= 0 {
		conf.ReceiveTimeout = defaultReceiveTimeout
	}
	return &Port{
		conf:  conf,
		log:   log.WithField("component", "canport"),
		state: StateDisconnected,
		frame: make(chan canbus.Frame, 64),
	}
}

// ReceiveTimeout is the configured bus.receive_timeout, the duration the
// dispatch task's RecvTimeout call blocks for at most (spec.md §5).
func (p *Port) ReceiveTimeout() time.Duration {
	return p.conf.ReceiveTimeout
}

// OnEvent registers a lifecycle event subscriber. Subscribers are invoked
// synchronously, in registration order, from whichever goroutine detects
// the transition.
func (p *Port) OnEvent(handler func(Event)) {
	p.handlers = append(p.handlers, handler)
}

func (p *Port) notify(evt Event) {
	p.log.WithField("event", string(evt)).Info("port lifecycle event")
	for _, h := range p.handlers {
		h(evt)
	}
}

// State reports the current connection state.
func (p *Port) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ConnectDevice attempts to open the physical bus. If the device does not
// exist (ENODEV), it remains Disconnected silently: that is the normal
// condition while the adapter is unplugged. Any other error propagates.
func (p *Port) ConnectDevice() error {
	p.mu.Lock()
	if p.state == StateConnected {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if p.conf.InterfaceName == "" {
		return nil
	}

	bus, err := canbus.NewBus(p.conf.InterfaceName, p.conf.Channel)
	if err != nil {
		if isNoSuchDevice(err) {
			return nil
		}
		return err
	}

	bus.Subscribe(frameHandlerFunc(func(f canbus.Frame) {
		select {
		case p.frame <- f:
		default:
			p.log.Warn("inbound frame channel full, dropping oldest")
			select {
			case <-p.frame:
			default:
			}
			p.frame <- f
		}
	}))

	if err := bus.Connect(); err != nil {
		if isNoSuchDevice(err) {
			return nil
		}
		return err
	}

	p.mu.Lock()
	p.bus = bus
	p.state = StateConnected
	p.mu.Unlock()

	go p.watchRecvLoop(bus)

	p.log.Info("connection established to can device")
	p.notify(EventConnected)
	return nil
}

// watchRecvLoop waits for bus's background receive loop to end (spec.md
// §4.2: "on any I/O error during recv/send that indicates device loss,
// transition to Disconnected and notify shutdown"). A nil error just
// means the loop returned because Disconnect was called, in which case
// Shutdown has already run or is already in flight and this is a no-op.
func (p *Port) watchRecvLoop(bus canbus.Bus) {
	err := <-bus.Err()
	p.mu.Lock()
	stillCurrent := p.bus == bus && p.state == StateConnected
	p.mu.Unlock()
	if !stillCurrent {
		return
	}
	if err != nil {
		p.log.WithError(err).Warn("connection to can device lost on receive -> shutdown")
	}
	p.Shutdown()
}

// Shutdown tears down the bus handle, if any, and notifies subscribers.
// It is idempotent.
func (p *Port) Shutdown() {
	p.mu.Lock()
	bus := p.bus
	p.bus = nil
	wasConnected := p.state == StateConnected
	p.state = StateDisconnected
	p.mu.Unlock()

	if bus != nil {
		if err := bus.Disconnect(); err != nil {
			p.log.WithError(err).Warn("error disconnecting bus")
		}
	}
	if wasConnected {
		p.notify(EventShutdown)
	}
}

// RecvTimeout waits up to timeout for one inbound frame. It returns
// (frame, true) on success, (zero, false) if nothing arrived or the port
// is disconnected.
func (p *Port) RecvTimeout(timeout time.Duration) (canbus.Frame, bool) {
	if p.State() != StateConnected {
		return canbus.Frame{}, false
	}
	select {
	case f := <-p.frame:
		return f, true
	case <-time.After(timeout):
		return canbus.Frame{}, false
	}
}

// Send transmits a frame, fire-and-forget. Any error that indicates
// device loss transitions the port to Disconnected and notifies
// shutdown, matching can_port.py's send().
func (p *Port) Send(frame canbus.Frame) {
	p.mu.Lock()
	bus := p.bus
	p.mu.Unlock()
	if bus == nil {
		return
	}

	if err := bus.Send(frame); err != nil {
		if isNoSuchDevice(err) {
			p.log.Warn("connection to can device lost -> shutdown")
			p.Shutdown()
			return
		}
		p.log.WithError(err).Error("error sending frame")
	}
}

// ConnectLoop periodically retries ConnectDevice while disconnected,
// until ctx is cancelled. On cancellation it shuts the port down, the
// same cleanup connect_can_coro performs on asyncio.CancelledError.
func (p *Port) ConnectLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := p.ConnectDevice(); err != nil {
			p.log.WithError(err).Error("error connecting to can device")
		}
		select {
		case <-ctx.Done():
			p.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

type frameHandlerFunc func(canbus.Frame)

func (f frameHandlerFunc) Handle(frame canbus.Frame) { f(frame) }
