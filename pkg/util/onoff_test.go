package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeOnOffRoundTrip(t *testing.T) {
	on, err := DecodeOnOff(EncodeOnOff(true))
	require.NoError(t, err)
	assert.True(t, on)

	off, err := DecodeOnOff(EncodeOnOff(false))
	require.NoError(t, err)
	assert.False(t, off)
}

func TestDecodeOnOffRejectsGarbage(t *testing.T) {
	_, err := DecodeOnOff(0x42)
	assert.ErrorIs(t, err, ErrInvalidOnOff)
}

func TestParseOnOff(t *testing.T) {
	cases := map[string]bool{
		"on": true, "On": true, "true": true, "1": true,
		"off": false, "false": false, "0": false,
	}
	for in, want := range cases {
		got, err := ParseOnOff(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOnOff("maybe")
	assert.ErrorIs(t, err, ErrInvalidOnOff)
}

func TestFormatOnOff(t *testing.T) {
	assert.Equal(t, "on", FormatOnOff(true))
	assert.Equal(t, "off", FormatOnOff(false))
}
