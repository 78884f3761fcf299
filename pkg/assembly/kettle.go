package assembly

import (
	"math"
	"sync"
	"time"

	"github.com/brewbot/controller/pkg/config"
	"github.com/brewbot/controller/pkg/nodestate"
	"github.com/brewbot/controller/pkg/util"
	"github.com/sirupsen/logrus"
)

// Kettle is the logical grouping of one or more thermometers and two
// relays (steering, heat plate) described in spec.md §3 "Kettle
// Assembly". mu guards tempFrame and heatPlateSetpoint: tempFrame is
// appended to by the data-collector goroutine and read by the heat-plate
// controller goroutine, and heatPlateSetpoint is written by the HTTP
// goroutine and read by the controller goroutine.
type Kettle struct {
	Key string

	thermometers []*nodestate.Thermometer
	steering     *nodestate.Relay
	heatPlate    *nodestate.Relay
	volume       float64

	controllerConf  config.ControllerConfig
	dataCollectConf config.DataCollectConfig

	mu                sync.Mutex
	heatPlateSetpoint *float64
	tempFrame         *nodestate.WindowedDataFrame

	log *logrus.Entry

	// Now returns the current time as Unix seconds; overridable in tests.
	Now func() float64
}

// NewKettle builds a Kettle assembly.
func NewKettle(
	key string,
	thermometers []*nodestate.Thermometer,
	steering, heatPlate *nodestate.Relay,
	volume float64,
	controllerConf config.ControllerConfig,
	dataCollectConf config.DataCollectConfig,
	log *logrus.Entry,
) *Kettle {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Kettle{
		Key:             key,
		thermometers:    thermometers,
		steering:        steering,
		heatPlate:       heatPlate,
		volume:          volume,
		controllerConf:  controllerConf,
		dataCollectConf: dataCollectConf,
		tempFrame:       nodestate.NewWindowedDataFrame(dataCollectConf.Window),
		log:             log.WithField("assembly", key),
		Now:             nowUnix,
	}
}

func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// TempState is the combined temperature reading across every thermometer
// in the kettle, averaging temp_c/temp_v and dropping absent readings
// (spec.md §9's resolved Open Question).
func (k *Kettle) TempState() map[string]float64 {
	readings := make([]map[string]*float64, 0, len(k.thermometers))
	for _, t := range k.thermometers {
		state := t.TempState()
		reading := make(map[string]*float64, 2)
		if v, ok := state["temp_c"]; ok {
			v := v
			reading["temp_c"] = &v
		}
		if v, ok := state["temp_v"]; ok {
			v := v
			reading["temp_v"] = &v
		}
		readings = append(readings, reading)
	}
	return util.AvgFields(readings)
}

// HeatPlateState is the heat plate relay's last observed state.
func (k *Kettle) HeatPlateState() (map[string]float64, bool) {
	return k.heatPlate.RxState("relay_state")
}

// SteeringState is the steering relay's last observed state.
func (k *Kettle) SteeringState() (map[string]float64, bool) {
	return k.steering.RxState("relay_state")
}

// SetHeatPlate commands the heat plate relay directly (used by the HTTP
// surface's manual override endpoints).
func (k *Kettle) SetHeatPlate(on bool) {
	k.heatPlate.Set(on)
}

// SetSteering commands the steering relay.
func (k *Kettle) SetSteering(on bool) {
	k.steering.Set(on)
}

// SetHeatPlateSetpoint sets (or clears, with nil) the temperature
// setpoint the PD controller drives toward.
func (k *Kettle) SetHeatPlateSetpoint(setpoint *float64) {
	k.mu.Lock()
	k.heatPlateSetpoint = setpoint
	k.mu.Unlock()
}

// HeatPlateSetpoint returns the current setpoint, if any.
func (k *Kettle) HeatPlateSetpoint() *float64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.heatPlateSetpoint
}

// CollectData is the data-collector task body: it averages the current
// thermometer readings and, if present, appends them to the kettle's own
// windowed frame (spec.md §4.5 "Data collector").
func (k *Kettle) CollectData() {
	state := k.TempState()
	tempC, ok := state["temp_c"]
	if !ok {
		return
	}
	now := k.Now()
	k.mu.Lock()
	k.tempFrame.Append(now, tempC)
	k.mu.Unlock()
}

// CollectInterval is the data collector's tick period in seconds.
func (k *Kettle) CollectInterval() time.Duration {
	return time.Duration(float64(time.Second) / k.dataCollectConf.CollectInterval)
}

// PWMInterval is the heat-plate controller's tick period in seconds.
func (k *Kettle) PWMInterval() time.Duration {
	return time.Duration(float64(time.Second) / k.controllerConf.PWMInterval)
}

// calcDutyCycle computes the PD error over the kettle's temperature
// frame and turns it into a jump-banded duty cycle (spec.md §4.5 steps
// 2-4).
func (k *Kettle) calcDutyCycle(setpoint float64) float64 {
	now := k.Now()
	k.mu.Lock()
	pd := calculatePDError(setpoint, k.tempFrame, now)
	k.mu.Unlock()

	pComp := pd.P * k.controllerConf.PGain
	dComp := pd.D * k.controllerConf.DGain
	cs := pComp + dComp

	k.log.WithFields(logrus.Fields{
		"p_comp": pComp, "d_comp": dComp, "cs": cs,
	}).Debug("heat plate control tick")

	return dutyCycle(cs, k.controllerConf.MaxCS, k.controllerConf.LowJumpThres, k.controllerConf.HighJumpThres)
}

// ControlHeatPlateTick runs one iteration of the heat-plate controller
// (spec.md §4.5 "Heat-plate controller"). sleepFn is called with the
// durations the original sleeps between relay transitions, so callers can
// run this on a real clock or drive it deterministically in tests.
func (k *Kettle) ControlHeatPlateTick(sleepFn func(time.Duration)) {
	interval := k.PWMInterval()

	setpoint := k.HeatPlateSetpoint()
	if setpoint == nil {
		sleepFn(interval)
		return
	}

	dc := k.calcDutyCycle(*setpoint)

	const eps = 1e-6
	low := k.controllerConf.LowJumpThres
	high := k.controllerConf.HighJumpThres

	switch {
	case math.IsNaN(dc):
		k.log.Debug("nan duty cycle -> no actuation")
		sleepFn(interval)
	case dc < low-eps:
		k.SetHeatPlate(false)
		sleepFn(interval)
	case dc <= high+eps:
		k.SetHeatPlate(true)
		sleepFn(time.Duration(float64(interval) * dc))
		k.SetHeatPlate(false)
		sleepFn(time.Duration(float64(interval) * (1 - dc)))
	default: // dc > high+eps
		k.SetHeatPlate(true)
		sleepFn(interval)
	}
}
