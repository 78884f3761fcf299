// Package nodestate implements the per-device stateful accumulators of
// spec.md §3 ("Node State"): the windowed data frame used for sliding-
// window interpolation, and the Thermometer/Relay/Master variants built
// on top of it.
package nodestate

import "math"

// Sample is one (timestamp, value) observation, timestamps as Unix
// seconds to match the rest of the control-loop math.
type Sample struct {
	T float64
	Y float64
}

// WindowedDataFrame is a time-ordered buffer of samples trimmed to
// [now-window, now] on every append, supporting linear-fit interpolation
// at a query time (spec.md §3 "Windowed Data Frame").
type WindowedDataFrame struct {
	window  float64
	samples []Sample
}

// NewWindowedDataFrame builds an empty frame with the given window length
// in seconds.
func NewWindowedDataFrame(window float64) *WindowedDataFrame {
	return &WindowedDataFrame{window: window}
}

// Append adds (t, y) and trims anything older than t-window. Samples must
// arrive in non-decreasing t order, matching the single-writer-per-task
// cooperative scheduling model (spec.md §5).
func (f *WindowedDataFrame) Append(t, y float64) {
	f.samples = append(f.samples, Sample{T: t, Y: y})
	f.trim(t)
}

func (f *WindowedDataFrame) trim(now float64) {
	cutoff := now - f.window
	i := 0
	for i < len(f.samples) && f.samples[i].T < cutoff {
		i++
	}
	if i > 0 {
		f.samples = append([]Sample{}, f.samples[i:]...)
	}
}

// Len reports the number of samples currently retained.
func (f *WindowedDataFrame) Len() int {
	return len(f.samples)
}

// Samples returns the retained samples in timestamp order. Callers must
// not mutate the result.
func (f *WindowedDataFrame) Samples() []Sample {
	return f.samples
}

// Interp returns the linear-fit interpolation of the frame's contents at
// now. An empty frame has no interpolated value. A single-sample frame
// returns that sample's value. Two or more samples fit a first-degree
// polynomial and evaluate it at now (spec.md §8: interp(empty)=None,
// interp(single)=y0, interp(n>=2)=polyfit(...,1)(now)).
func (f *WindowedDataFrame) Interp(now float64) (float64, bool) {
	switch len(f.samples) {
	case 0:
		return 0, false
	case 1:
		return f.samples[0].Y, true
	default:
		slope, intercept := polyfit1(f.samples)
		return slope*now + intercept, true
	}
}

// Slope returns the first-degree polyfit slope over the frame's
// contents, used by the PD controller's derivative term. A frame with
// fewer than two samples has no defined slope.
func (f *WindowedDataFrame) Slope() (float64, bool) {
	if len(f.samples) < 2 {
		return 0, false
	}
	slope, _ := polyfit1(f.samples)
	return slope, true
}

// polyfit1 fits y = slope*t + intercept by ordinary least squares.
func polyfit1(samples []Sample) (slope, intercept float64) {
	n := float64(len(samples))
	var sumT, sumY, sumTY, sumTT float64
	for _, s := range samples {
		sumT += s.T
		sumY += s.Y
		sumTY += s.T * s.Y
		sumTT += s.T * s.T
	}

	denom := n*sumTT - sumT*sumT
	if denom == 0 || math.IsNaN(denom) {
		return 0, sumY / n
	}

	slope = (n*sumTY - sumT*sumY) / denom
	intercept = (sumY - slope*sumT) / n
	return slope, intercept
}
