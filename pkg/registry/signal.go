package registry

import (
	"fmt"
	"math"

	"github.com/brewbot/controller/pkg/config"
	"github.com/brewbot/controller/pkg/util"
)

// ErrSignalOutOfRange is returned when an encoded value cannot be
// represented in its signal's configured bit width.
var ErrSignalOutOfRange = fmt.Errorf("signal value out of range")

func frameToUint(data [8]byte) uint64 {
	var v uint64
	for i, b := range data {
		v |= uint64(b) << (8 * i)
	}
	return v
}

func uintToFrame(v uint64) [8]byte {
	var data [8]byte
	for i := range data {
		data[i] = byte(v >> (8 * i))
	}
	return data
}

func bitMask(size int) uint64 {
	if size >= 64 {
		return math.MaxUint64
	}
	return (uint64(1) << uint(size)) - 1
}

// encodeSignal writes sig's value into data at its configured bit
// position. value is float64 for int/float kinds and 0/1 for flag kind.
func encodeSignal(data *[8]byte, sig config.Signal, value float64) error {
	mask := bitMask(sig.SignalSize)

	var raw uint64
	switch sig.Kind {
	case config.SignalFlag:
		if value != 0 {
			raw = uint64(util.EncodeOnOff(true))
		} else {
			raw = uint64(util.EncodeOnOff(false))
		}
	default:
		scaled := (value - sig.Offset) / sig.Scale
		rounded := math.Round(scaled)
		if sig.Signed {
			limit := float64(mask / 2)
			if rounded > limit || rounded < -limit-1 {
				return fmt.Errorf("%w: signal %q value %g exceeds signed %d-bit range", ErrSignalOutOfRange, sig.Key, value, sig.SignalSize)
			}
			raw = uint64(int64(rounded)) & mask
		} else {
			if rounded < 0 {
				return fmt.Errorf("%w: signal %q negative value on unsigned field", ErrSignalOutOfRange, sig.Key)
			}
			if rounded > float64(mask) {
				return fmt.Errorf("%w: signal %q value %g exceeds unsigned %d-bit range", ErrSignalOutOfRange, sig.Key, value, sig.SignalSize)
			}
			raw = uint64(rounded) & mask
		}
	}

	frame := frameToUint(*data)
	frame &^= mask << uint(sig.StartBit)
	frame |= (raw & mask) << uint(sig.StartBit)
	*data = uintToFrame(frame)
	return nil
}

// decodeSignal reads sig's value back out of data.
func decodeSignal(data [8]byte, sig config.Signal) (float64, error) {
	mask := bitMask(sig.SignalSize)
	frame := frameToUint(data)
	raw := (frame >> uint(sig.StartBit)) & mask

	switch sig.Kind {
	case config.SignalFlag:
		on, err := util.DecodeOnOff(byte(raw))
		if err != nil {
			return 0, fmt.Errorf("signal %q: %w", sig.Key, err)
		}
		if on {
			return 1, nil
		}
		return 0, nil
	default:
		var signedRaw int64
		if sig.Signed && sig.SignalSize < 64 && raw&(1<<(uint(sig.SignalSize)-1)) != 0 {
			signedRaw = int64(raw) - int64(mask+1)
		} else {
			signedRaw = int64(raw)
		}
		return float64(signedRaw)*sig.Scale + sig.Offset, nil
	}
}
