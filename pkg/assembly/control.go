// Package assembly composes node states into logical units and runs the
// PD + PWM thermal control loop described in spec.md §4.5. The Kettle
// Assembly is the only concrete assembly this repo implements; the
// assembly_class registration table (factory.go) leaves room for others.
package assembly

import (
	"math"

	"github.com/brewbot/controller/pkg/nodestate"
)

// PDError is the proportional/derivative error for one control tick.
type PDError struct {
	P float64
	D float64
}

// calculatePDError computes the PD error of setpoint against frame at
// now, per spec.md §4.5 step 2 / data/pid.py's calculate_pd_error: an
// empty frame yields NaN for both components, a single sample fixes D at
// 0, and two or more samples fit a line and take its negative slope as D.
func calculatePDError(setpoint float64, frame *nodestate.WindowedDataFrame, now float64) PDError {
	switch frame.Len() {
	case 0:
		return PDError{P: math.NaN(), D: math.NaN()}
	case 1:
		y, _ := frame.Interp(now)
		return PDError{P: setpoint - y, D: 0}
	default:
		y, _ := frame.Interp(now)
		slope, _ := frame.Slope()
		return PDError{P: setpoint - y, D: -slope}
	}
}

// dutyCycle converts a control signal into a PWM duty cycle in [0,1],
// applying the jump-band logic of spec.md §4.5 step 4 / data/pid.py's
// duty_cycle exactly.
func dutyCycle(cs, maxCS, lowJumpThres, highJumpThres float64) float64 {
	pw := math.Min(cs/maxCS, 1.0)

	switch {
	case pw < lowJumpThres/2:
		return 0.0
	case pw >= lowJumpThres/2 && pw < lowJumpThres:
		return lowJumpThres
	case pw >= highJumpThres && pw < (highJumpThres+1.0)/2:
		return highJumpThres
	case pw > highJumpThres:
		return 1.0
	default:
		return pw
	}
}
