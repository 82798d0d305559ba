package flash

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"flashio/internal/domain"
)

// Controller hands out sessions over one device and owns its lock state.
type Controller struct {
	dev  domain.Device
	opts Options
	log  zerolog.Logger

	mu      sync.Mutex
	live    map[*Session]struct{}
	writers int // live writable sessions; the device is unlocked while > 0
}

// New returns a controller for dev.
func New(dev domain.Device, opts ...Option) *Controller {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Controller{
		dev:  dev,
		opts: o,
		log:  o.Logger.With().Str("component", "flash").Logger(),
		live: make(map[*Session]struct{}),
	}
}

// Open starts a session over [addr, addr+size).
//
// addr must be even and size positive. A writable open unlocks the device
// and erases every erase unit the region touches before returning; if the
// erase fails the region is left partially erased.
func (c *Controller) Open(addr domain.Address, size int, mode domain.Mode) (*Session, error) {
	if addr%domain.WordSize != 0 {
		return nil, invalid("start address %s is not %d-byte aligned", addr, domain.WordSize)
	}
	if size <= 0 {
		return nil, invalid("region size %d", size)
	}
	if !mode.Valid() {
		return nil, invalid("mode %#x", uint8(mode))
	}
	if !c.dev.Geometry().Contains(addr, footprint(size)) {
		return nil, invalidRange(addr, size)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for other := range c.live {
		if (mode.Writable() || other.mode.Writable()) && other.overlaps(addr, size) {
			return nil, ErrRegionBusy
		}
	}

	s := &Session{
		ctl:    c,
		start:  addr,
		size:   size,
		cursor: addr,
		mode:   mode,
	}

	if mode.Writable() {
		if err := c.acquire(); err != nil {
			return nil, err
		}
		c.log.Debug().Stringer("addr", addr).Int("size", size).Msg("erase region")
		if err := c.dev.Erase(addr, size); err != nil {
			err = c.fail(hardware(err, "erase %d bytes at %s", size, addr))
			return nil, errors.Join(err, c.releaseLocked())
		}
	}
	if err := c.dev.WaitReady(c.opts.ReadyTimeout); err != nil {
		err = c.fail(hardware(err, "wait ready after open"))
		if mode.Writable() {
			err = errors.Join(err, c.releaseLocked())
		}
		return nil, err
	}

	c.live[s] = struct{}{}
	c.log.Debug().Stringer("addr", addr).Int("size", size).Stringer("mode", mode).Msg("session open")
	return s, nil
}

// Live returns the number of open sessions.
func (c *Controller) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

// acquire unlocks the device for the first writer. Caller holds c.mu.
func (c *Controller) acquire() error {
	if c.writers == 0 {
		if err := c.dev.Unlock(); err != nil {
			return c.fail(hardware(err, "unlock"))
		}
	}
	c.writers++
	return nil
}

// releaseLocked drops one writer and relocks the device after the last.
// Caller holds c.mu.
func (c *Controller) releaseLocked() error {
	c.writers--
	if c.writers > 0 {
		return nil
	}
	c.writers = 0
	if err := c.dev.Lock(); err != nil {
		return c.fail(hardware(err, "lock"))
	}
	return nil
}

// detach removes s from the live table, relocking the device if s was the
// last writer.
func (c *Controller) detach(s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.live, s)
	if !s.mode.Writable() {
		return nil
	}
	return c.releaseLocked()
}

func (c *Controller) fail(err error) error {
	c.log.Error().Err(err).Msg("flash operation failed")
	return err
}

// footprint returns the number of bytes covered by the words of a region
// of size bytes starting at an even address.
func footprint(size int) int {
	return size + size%domain.WordSize
}
