package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidOnOff is returned when a wire byte or string cannot be
// interpreted as an on/off flag.
var ErrInvalidOnOff = fmt.Errorf("invalid on/off value")

// EncodeOnOff materializes a boolean flag signal as its wire byte.
func EncodeOnOff(state bool) byte {
	if state {
		return 0x01
	}
	return 0x00
}

// DecodeOnOff interprets a wire byte as a flag signal. Any value other
// than 0x00/0x01 is invalid per the wire protocol and must be rejected,
// not coerced.
func DecodeOnOff(b byte) (bool, error) {
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, ErrInvalidOnOff
	}
}

// FormatOnOff renders a flag as the "on"/"off" strings used by the HTTP
// surface.
func FormatOnOff(state bool) string {
	if state {
		return "on"
	}
	return "off"
}

// ParseOnOff accepts the HTTP-facing spellings of a flag: "on"/"off",
// "true"/"false", "1"/"0".
func ParseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true":
		return true, nil
	case "off", "false":
		return false, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		switch n {
		case 1:
			return true, nil
		case 0:
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidOnOff, s)
}
