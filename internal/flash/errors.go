package flash

import (
	"errors"
	"fmt"

	"flashio/internal/domain"
)

var (
	ErrInvalidArgument = errors.New("flash: invalid argument")
	ErrModeViolation   = errors.New("flash: mode violation")
	ErrOutOfRange      = errors.New("flash: address out of range")
	ErrHardwareFailure = errors.New("flash: hardware failure")
	ErrClosed          = errors.New("flash: session closed")

	// ErrRegionBusy is returned by Open when the region overlaps a live
	// session and either of them is writable.
	ErrRegionBusy = fmt.Errorf("%w: region busy", ErrInvalidArgument)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// hardware wraps a device error so that both ErrHardwareFailure and the
// device's own error match with errors.Is.
func hardware(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrHardwareFailure, fmt.Sprintf(format, args...), err)
}

func invalidRange(addr domain.Address, size int) error {
	return fmt.Errorf("%w: region %s+%d outside device bank", ErrOutOfRange, addr, size)
}
