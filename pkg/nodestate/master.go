package nodestate

import "fmt"

// Master is a placeholder for controller-side state that isn't tied to
// any one device (spec.md §3 "Master. Placeholder for controller-side
// state."). Its HeatPlateSetpoint field is not read by the assemblies:
// the Kettle assembly keeps its own setpoint.
type Master struct {
	*base
	HeatPlateSetpoint *float64
}

// NewMaster builds an empty Master node state.
func NewMaster() *Master {
	return &Master{base: newBase(nil)}
}

func (m *Master) TxPayload(msgKey string) (map[string]float64, error) {
	return nil, fmt.Errorf("%w: master has no tx message %q", ErrInvalidMessage, msgKey)
}
