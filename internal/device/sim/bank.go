package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"flashio/internal/domain"
)

var (
	ErrLocked     = errors.New("sim: flash is locked")
	ErrBusy       = errors.New("sim: operation in progress")
	ErrNotErased  = errors.New("sim: program target not erased")
	ErrMisaligned = errors.New("sim: word address not aligned")
	ErrBounds     = errors.New("sim: address outside bank")
	ErrTimeout    = errors.New("sim: timeout waiting for ready")
	ErrGeometry   = errors.New("sim: invalid geometry")
)

// pollInterval is how often WaitReady samples the busy flag.
const pollInterval = 50 * time.Microsecond

// Faults lets tests fail individual operations. A nil hook never fails.
type Faults struct {
	Erase   func(addr domain.Address, n int) error
	Program func(addr domain.Address, w domain.Word) error
	Ready   func() error
	Lock    func() error
}

// Stats counts accepted operations.
type Stats struct {
	Erases      int
	ErasedUnits int
	Programs    int
	Reads       int
	Locks       int
	Unlocks     int
}

// Bank is an in-memory flash bank of 16-bit words.
//
// It follows the rules of small MCU flash controllers: the bank powers up
// locked, erase works on whole erase units and sets every word to 0xFFFF,
// a word can only be programmed while it is erased, and each erase or
// program keeps the bank busy for the configured busy time.
type Bank struct {
	geo      domain.Geometry
	busyTime time.Duration
	now      func() time.Time

	mu        sync.Mutex
	words     []domain.Word
	locked    bool
	busyUntil time.Time
	faults    Faults
	stats     Stats
}

// Option configures a Bank.
type Option func(*Bank)

// WithBusyTime sets how long each erase or program keeps the bank busy.
func WithBusyTime(d time.Duration) Option {
	return func(b *Bank) { b.busyTime = d }
}

func WithFaults(f Faults) Option {
	return func(b *Bank) { b.faults = f }
}

// WithClock replaces time.Now for busy tracking.
func WithClock(now func() time.Time) Option {
	return func(b *Bank) { b.now = now }
}

// New returns an erased, locked bank.
func New(geo domain.Geometry, opts ...Option) (*Bank, error) {
	if err := ValidateGeometry(geo); err != nil {
		return nil, err
	}
	b := &Bank{
		geo:    geo,
		now:    time.Now,
		words:  make([]domain.Word, geo.Size/domain.WordSize),
		locked: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	for i := range b.words {
		b.words[i] = domain.ErasedWord
	}
	return b, nil
}

// ValidateGeometry checks that geo describes a bank New can build.
func ValidateGeometry(geo domain.Geometry) error {
	switch {
	case geo.Base%domain.WordSize != 0:
		return fmt.Errorf("%w: base %s not word aligned", ErrGeometry, geo.Base)
	case geo.Size <= 0 || geo.Size%domain.WordSize != 0:
		return fmt.Errorf("%w: size %d", ErrGeometry, geo.Size)
	case geo.EraseUnit <= 0 || geo.EraseUnit%domain.WordSize != 0 || geo.Size%geo.EraseUnit != 0:
		return fmt.Errorf("%w: erase unit %d for size %d", ErrGeometry, geo.EraseUnit, geo.Size)
	case geo.End() > 1<<32:
		return fmt.Errorf("%w: bank ends past the address space", ErrGeometry)
	}
	return nil
}

func (b *Bank) Geometry() domain.Geometry { return b.geo }

// Erase erases every erase unit that [addr, addr+n) touches.
func (b *Bank) Erase(addr domain.Address, n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.writable(); err != nil {
		return err
	}
	if n <= 0 || !b.geo.Contains(addr, n) {
		return fmt.Errorf("%w: erase %d bytes at %s", ErrBounds, n, addr)
	}
	if b.faults.Erase != nil {
		if err := b.faults.Erase(addr, n); err != nil {
			return err
		}
	}

	unit := b.geo.EraseUnit
	first := int(addr-b.geo.Base) / unit
	last := (int(addr-b.geo.Base) + n - 1) / unit
	for u := first; u <= last; u++ {
		lo := u * unit / domain.WordSize
		hi := (u + 1) * unit / domain.WordSize
		for i := lo; i < hi; i++ {
			b.words[i] = domain.ErasedWord
		}
	}
	b.stats.Erases++
	b.stats.ErasedUnits += last - first + 1
	b.busyUntil = b.now().Add(b.busyTime)
	return nil
}

// ProgramWord programs the erased word at the even address addr.
func (b *Bank) ProgramWord(addr domain.Address, w domain.Word) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.writable(); err != nil {
		return err
	}
	i, err := b.index(addr)
	if err != nil {
		return err
	}
	if b.faults.Program != nil {
		if err := b.faults.Program(addr, w); err != nil {
			return err
		}
	}
	if b.words[i] != domain.ErasedWord {
		return fmt.Errorf("%w: %s holds %#04x", ErrNotErased, addr, uint16(b.words[i]))
	}
	b.words[i] = w
	b.stats.Programs++
	b.busyUntil = b.now().Add(b.busyTime)
	return nil
}

// ReadWord returns the word at addr. Odd addresses read the bytes at addr
// and addr+1 as low and high halves.
func (b *Bank) ReadWord(addr domain.Address) (domain.Word, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.geo.Contains(addr, domain.WordSize) {
		return 0, fmt.Errorf("%w: read at %s", ErrBounds, addr)
	}
	b.stats.Reads++
	off := int(addr - b.geo.Base)
	if off%domain.WordSize == 0 {
		return b.words[off/domain.WordSize], nil
	}
	_, lo := splitWord(b.words[off/domain.WordSize])
	hi, _ := splitWord(b.words[off/domain.WordSize+1])
	return domain.Word(lo) | domain.Word(hi)<<8, nil
}

// WaitReady polls until the bank is idle or timeout elapses.
func (b *Bank) WaitReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		b.mu.Lock()
		ready := !b.now().Before(b.busyUntil)
		hook := b.faults.Ready
		b.mu.Unlock()

		if hook != nil {
			if err := hook(); err != nil {
				return err
			}
		}
		if ready {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		time.Sleep(pollInterval)
	}
}

func (b *Bank) Lock() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.faults.Lock != nil {
		if err := b.faults.Lock(); err != nil {
			return err
		}
	}
	b.locked = true
	b.stats.Locks++
	return nil
}

func (b *Bank) Unlock() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locked = false
	b.stats.Unlocks++
	return nil
}

// Locked reports whether program and erase are currently refused.
func (b *Bank) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}

func (b *Bank) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// SetFaults replaces the fault hooks.
func (b *Bank) SetFaults(f Faults) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults = f
}

// Snapshot returns the bank contents as bytes, word low half first.
func (b *Bank) Snapshot() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.words)*domain.WordSize)
	for i, w := range b.words {
		binary.LittleEndian.PutUint16(out[i*domain.WordSize:], uint16(w))
	}
	return out
}

// Restore replaces the bank contents with data in Snapshot layout.
func (b *Bank) Restore(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(data) != len(b.words)*domain.WordSize {
		return fmt.Errorf("%w: image is %d bytes, bank is %d", ErrGeometry, len(data), b.geo.Size)
	}
	for i := range b.words {
		b.words[i] = domain.Word(binary.LittleEndian.Uint16(data[i*domain.WordSize:]))
	}
	return nil
}

// writable refuses program and erase while locked or busy. Caller holds b.mu.
func (b *Bank) writable() error {
	if b.locked {
		return ErrLocked
	}
	if b.now().Before(b.busyUntil) {
		return ErrBusy
	}
	return nil
}

// index maps an even in-bank address to its word slot. Caller holds b.mu.
func (b *Bank) index(addr domain.Address) (int, error) {
	if addr%domain.WordSize != 0 {
		return 0, fmt.Errorf("%w: %s", ErrMisaligned, addr)
	}
	if !b.geo.Contains(addr, domain.WordSize) {
		return 0, fmt.Errorf("%w: program at %s", ErrBounds, addr)
	}
	return int(addr-b.geo.Base) / domain.WordSize, nil
}

func splitWord(w domain.Word) (lo, hi byte) { return byte(w), byte(w >> 8) }

var _ domain.SnapshotDevice = (*Bank)(nil)
