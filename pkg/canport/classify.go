package canport

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// isNoSuchDevice classifies an I/O error as "no such device" (ENODEV),
// the condition can_port.py detects by matching "[Errno 19]" in the
// OSError string when the adapter has been unplugged. It must not be
// treated as a fault: the port simply stays Disconnected.
func isNoSuchDevice(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ENODEV) || errors.Is(err, unix.ENODEV)
}
