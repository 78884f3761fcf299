package canbus

import (
	"github.com/brutella/can"
)

// SocketcanBus wraps github.com/brutella/can, the same library and
// adapter shape the teacher uses in its own socketcan.go: a thin
// translation between the library's Frame/Bus types and this package's.
type SocketcanBus struct {
	bus     *can.Bus
	handler Handler
	errCh   chan error
}

// NewSocketcanBus opens a SocketCAN interface by name (e.g. "can0").
func NewSocketcanBus(name string) (Bus, error) {
	bus, err := can.NewBusForInterfaceWithName(name)
	if err != nil {
		return nil, err
	}
	return &SocketcanBus{bus: bus, errCh: make(chan error, 1)}, nil
}

func (s *SocketcanBus) Send(frame Frame) error {
	out := can.Frame{ID: frame.ID, Length: frame.DLC, Flags: 0, Res0: 0, Res1: 0, Data: frame.Data}
	return s.bus.Publish(out)
}

func (s *SocketcanBus) Subscribe(h Handler) {
	s.handler = h
	s.bus.Subscribe(s)
}

// Connect starts brutella/can's blocking receive loop in the background,
// the same "go bus.ConnectAndPublish()" the teacher's own socketcan.go
// uses. Unlike the teacher, it keeps the loop's return value: a device
// that disappears mid-receive ends ConnectAndPublish with an error, which
// is forwarded on errCh so canport can transition to Disconnected on the
// recv path too, not only on the next failed Send.
func (s *SocketcanBus) Connect() error {
	go func() {
		s.errCh <- s.bus.ConnectAndPublish()
	}()
	return nil
}

// Err implements canbus.Bus.
func (s *SocketcanBus) Err() <-chan error {
	return s.errCh
}

func (s *SocketcanBus) Disconnect() error {
	return s.bus.Disconnect()
}

// Handle satisfies brutella/can's Handler interface; it is the entry
// point for every frame the kernel delivers.
func (s *SocketcanBus) Handle(frame can.Frame) {
	if s.handler == nil {
		return
	}
	s.handler.Handle(Frame{ID: frame.ID, DLC: frame.Length, Data: frame.Data})
}

func init() {
	RegisterInterface("socketcan", func(channel string) (Bus, error) {
		return NewSocketcanBus(channel)
	})
}
