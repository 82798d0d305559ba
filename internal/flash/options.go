package flash

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultReadyTimeout bounds every wait for the device to finish an
// erase or program.
const DefaultReadyTimeout = time.Second

// Options tune a Controller.
type Options struct {
	// PadByte fills the high half of the final word when a writable
	// session closes with a byte pending.
	PadByte byte
	// ReadyTimeout bounds each wait for device completion. Expiry is a
	// hardware failure.
	ReadyTimeout time.Duration
	Logger       zerolog.Logger
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the zero pad byte, DefaultReadyTimeout and a
// disabled logger.
func DefaultOptions() Options {
	return Options{
		PadByte:      0x00,
		ReadyTimeout: DefaultReadyTimeout,
		Logger:       zerolog.Nop(),
	}
}

// WithPadByte sets the byte that completes an odd-length write on Close.
func WithPadByte(b byte) Option {
	return func(o *Options) { o.PadByte = b }
}

// WithReadyTimeout bounds each ready wait; non-positive values are ignored.
func WithReadyTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.ReadyTimeout = d
		}
	}
}

// WithLogger routes controller logs to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
