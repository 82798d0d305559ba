package flash

import (
	"fmt"
	"io"
	"math"

	"flashio/internal/domain"
)

// Session is an open byte stream over one flash region.
type Session struct {
	ctl    *Controller
	start  domain.Address
	size   int
	cursor domain.Address
	mode   domain.Mode

	pending carry
	closed  bool
}

// Region returns the session's start address and size.
func (s *Session) Region() (domain.Address, int) { return s.start, s.size }

// Mode returns the access mode the session was opened with.
func (s *Session) Mode() domain.Mode { return s.mode }

// Cursor returns the absolute address of the next word-level position.
// After a write that leaves a byte pending, the cursor points at the word
// the pending byte will complete.
func (s *Session) Cursor() domain.Address { return s.cursor }

// Offset returns the logical stream position relative to the region start,
// counting a pending byte as written.
func (s *Session) Offset() int64 {
	return int64(s.cursor) - int64(s.start) + int64(s.pending.len())
}

// Pending returns the byte waiting to be programmed, if any.
func (s *Session) Pending() (byte, bool) { return s.pending.b, s.pending.ok }

// end returns the first address past the region.
func (s *Session) end() uint64 { return uint64(s.start) + uint64(s.size) }

func (s *Session) overlaps(addr domain.Address, size int) bool {
	return uint64(addr) < s.end() && uint64(s.start) < uint64(addr)+uint64(size)
}

func (s *Session) check(need domain.Mode, op string) error {
	if s.closed {
		return fmt.Errorf("%w: %s", ErrClosed, op)
	}
	if s.mode&need == 0 {
		return fmt.Errorf("%w: %s on %s session", ErrModeViolation, op, s.mode)
	}
	return nil
}

// clamp limits n to the bytes left between pos and the region end.
func (s *Session) clamp(pos uint64, n int) int {
	end := s.end()
	if pos >= end {
		return 0
	}
	if rem := end - pos; uint64(n) > rem {
		return int(rem)
	}
	return n
}

// Read fills p from the cursor and advances it. The request is truncated
// at the region end; at or past the end Read returns 0 and no error.
// Bytes still pending in a read-write session are not visible.
func (s *Session) Read(p []byte) (int, error) {
	if err := s.check(domain.ModeRead, "read"); err != nil {
		return 0, err
	}
	n := s.clamp(uint64(s.cursor), len(p))
	if n == 0 {
		return 0, nil
	}

	base, count := wordSpan(s.cursor, n)
	words, err := readWords(s.ctl.dev, base, count)
	if err != nil {
		return 0, s.ctl.fail(err)
	}
	unpackBytes(p[:n], words, s.cursor%domain.WordSize == 1)
	s.cursor += domain.Address(n)
	return n, nil
}

// Write programs p at the logical position and advances it. The request is
// truncated to the space left in the region. A trailing odd byte is held
// pending and counted as written.
//
// On a hardware failure the returned count is the number of bytes of p
// inside words that were programmed; the cursor and pending byte reflect
// exactly those words.
func (s *Session) Write(p []byte) (int, error) {
	if err := s.check(domain.ModeWrite, "write"); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	n := s.clamp(uint64(s.cursor)+uint64(s.pending.len()), len(p))
	if n == 0 {
		return 0, nil
	}
	src := p[:n]

	done := 0
	switch {
	case s.pending.ok:
		if err := s.program(s.cursor, packWord(s.pending.b, src[0])); err != nil {
			return 0, err
		}
		s.pending.clear()
		s.cursor += domain.WordSize
		done = 1
	case s.cursor%domain.WordSize == 1:
		// Only an erased word can be programmed, so this succeeds when the
		// low half is still 0xFF; a programmed word fails in the device.
		lead := s.cursor - 1
		w, err := s.ctl.dev.ReadWord(lead)
		if err != nil {
			return 0, s.ctl.fail(hardware(err, "read word at %s", lead))
		}
		lo, _ := unpackWord(w)
		if err := s.program(lead, packWord(lo, src[0])); err != nil {
			return 0, err
		}
		s.cursor++
		done = 1
	}

	for ; done+1 < n; done += domain.WordSize {
		if err := s.program(s.cursor, packWord(src[done], src[done+1])); err != nil {
			return done, err
		}
		s.cursor += domain.WordSize
	}
	if done < n {
		s.pending.set(src[done])
		done++
	}
	return done, nil
}

// program writes one word and waits for the device to finish.
func (s *Session) program(addr domain.Address, w domain.Word) error {
	if err := s.ctl.dev.ProgramWord(addr, w); err != nil {
		return s.ctl.fail(hardware(err, "program word %#04x at %s", uint16(w), addr))
	}
	if err := s.ctl.dev.WaitReady(s.ctl.opts.ReadyTimeout); err != nil {
		return s.ctl.fail(hardware(err, "wait ready after program at %s", addr))
	}
	return nil
}

// Seek moves the cursor.
//
// SeekStart takes a non-negative offset from the region start. SeekCurrent
// adds offset to the cursor. SeekEnd takes a non-positive offset from the
// last byte of the region (start+size-1). Positions past the region end are
// accepted and make the next Read or Write return 0; positions before the
// region start are rejected. While a byte is pending the target must be an
// even address inside the region, since the pending byte completes the
// word at the new cursor.
func (s *Session) Seek(offset int64, whence domain.Whence) error {
	if s.closed {
		return fmt.Errorf("%w: seek", ErrClosed)
	}

	var target int64
	switch whence {
	case domain.SeekStart:
		if offset < 0 {
			return invalid("seek %d from start", offset)
		}
		target = int64(s.start) + offset
	case domain.SeekCurrent:
		target = int64(s.cursor) + offset
	case domain.SeekEnd:
		if offset > 0 {
			return invalid("seek %d from end", offset)
		}
		target = int64(s.end()) - 1 + offset
	default:
		return invalid("whence %s", whence)
	}

	if target < int64(s.start) {
		return invalid("seek to %#x before region start %s", target, s.start)
	}
	if target > math.MaxUint32 {
		return invalid("seek to %#x past address space", target)
	}
	if s.pending.ok && (target%domain.WordSize != 0 || uint64(target) >= s.end()) {
		return invalid("seek to %#x with a byte pending", target)
	}
	s.cursor = domain.Address(target)
	return nil
}

// Close flushes a pending byte, padded with the pad byte, and releases
// the session. The device lock is released even if the flush fails.
// Closing a closed session does nothing.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.pending.ok {
		s.ctl.log.Debug().Stringer("addr", s.cursor).Uint8("pad", s.ctl.opts.PadByte).Msg("flush pending byte")
		err = s.program(s.cursor, packWord(s.pending.b, s.ctl.opts.PadByte))
		if err == nil {
			s.pending.clear()
		}
	}
	if rerr := s.ctl.detach(s); err == nil {
		err = rerr
	}
	return err
}

// Reader adapts the session to io.Reader, reporting io.EOF at the region end.
func (s *Session) Reader() io.Reader { return sessionReader{s} }

type sessionReader struct{ s *Session }

func (r sessionReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.s.Read(p)
	if err == nil && n == 0 {
		return 0, io.EOF
	}
	return n, err
}
