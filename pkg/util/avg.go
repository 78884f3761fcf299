package util

// AvgFields averages a set of optional readings key by key, dropping any
// reading that is absent (nil) for a given key rather than treating it as
// zero or NaN. A key only appears in the result if at least one input
// carried a non-nil value for it.
func AvgFields(readings []map[string]*float64) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, r := range readings {
		for k, v := range r {
			if v == nil {
				continue
			}
			sums[k] += *v
			counts[k]++
		}
	}

	out := make(map[string]float64, len(sums))
	for k, sum := range sums {
		out[k] = sum / float64(counts[k])
	}
	return out
}
