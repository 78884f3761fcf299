package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestAvgFieldsDropsAbsent(t *testing.T) {
	readings := []map[string]*float64{
		{"temp_c": f(20), "temp_v": nil},
		{"temp_c": f(30), "temp_v": f(2.0)},
		{"temp_c": nil, "temp_v": f(4.0)},
	}
	got := AvgFields(readings)
	assert.InDelta(t, 25.0, got["temp_c"], 1e-9)
	assert.InDelta(t, 3.0, got["temp_v"], 1e-9)
}

func TestAvgFieldsAllAbsentYieldsEmpty(t *testing.T) {
	readings := []map[string]*float64{
		{"temp_c": nil},
		{"temp_c": nil},
	}
	got := AvgFields(readings)
	assert.Empty(t, got)
}

func TestAvgFieldsEmptyInput(t *testing.T) {
	assert.Empty(t, AvgFields(nil))
}
