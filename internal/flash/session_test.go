package flash_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"flashio/internal/device/sim"
	"flashio/internal/domain"
	"flashio/internal/flash"
	"flashio/internal/logging/testlog"
)

var bank = domain.Geometry{Base: 0x1000, Size: 0x100, EraseUnit: 0x40}

func newController(t *testing.T, opts ...flash.Option) (*flash.Controller, *sim.Bank) {
	t.Helper()
	dev, err := sim.New(bank)
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	opts = append([]flash.Option{flash.WithLogger(testlog.Start(t))}, opts...)
	return flash.New(dev, opts...), dev
}

func open(t *testing.T, c *flash.Controller, addr domain.Address, size int, mode domain.Mode) *flash.Session {
	t.Helper()
	s, err := c.Open(addr, size, mode)
	if err != nil {
		t.Fatalf("open %s+%d %s: %v", addr, size, mode, err)
	}
	return s
}

func word(t *testing.T, dev *sim.Bank, addr domain.Address) domain.Word {
	t.Helper()
	w, err := dev.ReadWord(addr)
	if err != nil {
		t.Fatalf("read word %s: %v", addr, err)
	}
	return w
}

func TestOpen_RejectsBadArgumentsWithoutTouchingDevice(t *testing.T) {
	c, dev := newController(t)

	cases := []struct {
		addr domain.Address
		size int
		mode domain.Mode
		want error
	}{
		{0x1001, 10, domain.ModeWrite, flash.ErrInvalidArgument},
		{0x1000, 0, domain.ModeWrite, flash.ErrInvalidArgument},
		{0x1000, -4, domain.ModeRead, flash.ErrInvalidArgument},
		{0x1000, 10, 0, flash.ErrInvalidArgument},
		{0x1000, 10, 0x80, flash.ErrInvalidArgument},
		{0x10FE, 4, domain.ModeRead, flash.ErrOutOfRange},
		{0x10FE, 3, domain.ModeWrite, flash.ErrOutOfRange},
		{0x0FFE, 4, domain.ModeRead, flash.ErrOutOfRange},
	}
	for _, tc := range cases {
		_, err := c.Open(tc.addr, tc.size, tc.mode)
		if !errors.Is(err, tc.want) {
			t.Fatalf("open %s+%d %s: expected %v, got %v", tc.addr, tc.size, tc.mode, tc.want, err)
		}
	}
	if st := dev.Stats(); st != (sim.Stats{}) {
		t.Fatalf("device touched: %+v", st)
	}
}

func TestScenario_OddWritePadsOnClose(t *testing.T) {
	c, dev := newController(t)

	type eraseCall struct {
		addr domain.Address
		n    int
	}
	var erases []eraseCall
	dev.SetFaults(sim.Faults{Erase: func(addr domain.Address, n int) error {
		erases = append(erases, eraseCall{addr, n})
		return nil
	}})

	s := open(t, c, 0x1000, 10, domain.ModeWrite)
	if diff := cmp.Diff([]eraseCall{{0x1000, 10}}, erases, cmp.AllowUnexported(eraseCall{})); diff != "" {
		t.Fatalf("erase calls (-want +got):\n%s", diff)
	}
	if dev.Locked() {
		t.Fatal("writable session should unlock the device")
	}

	n, err := s.Write([]byte("ABCDE"))
	if err != nil || n != 5 {
		t.Fatalf("write = %d,%v want 5,nil", n, err)
	}
	if s.Cursor() != 0x1004 {
		t.Fatalf("cursor = %s, want 0x1004", s.Cursor())
	}
	if b, ok := s.Pending(); !ok || b != 'E' {
		t.Fatalf("pending = %q,%v want 'E',true", b, ok)
	}
	if s.Offset() != 5 {
		t.Fatalf("offset = %d, want 5", s.Offset())
	}
	before := dev.Stats().Programs

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := dev.Stats().Programs - before; got != 1 {
		t.Fatalf("close programmed %d words, want 1", got)
	}
	if w := word(t, dev, 0x1004); w != 0x0045 {
		t.Fatalf("final word = %#04x, want 0x0045 ('E' low, 0x00 high)", w)
	}
	if !dev.Locked() {
		t.Fatal("close should relock the device")
	}
}

func TestScenario_SeekEndReadsLastByte(t *testing.T) {
	c, _ := newController(t)

	s := open(t, c, 0x1000, 8, domain.ModeReadWrite)
	if n, err := s.Write([]byte("ABCDEFGH")); err != nil || n != 8 {
		t.Fatalf("write = %d,%v", n, err)
	}
	if s.Cursor() != 0x1008 {
		t.Fatalf("cursor = %s, want 0x1008", s.Cursor())
	}
	if _, ok := s.Pending(); ok {
		t.Fatal("no byte should be pending")
	}
	if err := s.Seek(0, domain.SeekEnd); err != nil {
		t.Fatalf("seek end: %v", err)
	}
	buf := make([]byte, 1)
	if n, err := s.Read(buf); err != nil || n != 1 || buf[0] != 'H' {
		t.Fatalf("read = %d,%v,%q want 1,nil,'H'", n, err, buf[0])
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// With a larger region the end anchor is the region's last byte, which
	// is still erased.
	s = open(t, c, 0x1000, 10, domain.ModeReadWrite)
	if _, err := s.Write([]byte("ABCDEFGH")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = s.Seek(0, domain.SeekEnd)
	if s.Cursor() != 0x1009 {
		t.Fatalf("cursor = %s, want 0x1009", s.Cursor())
	}
	if n, _ := s.Read(buf); n != 1 || buf[0] != 0xFF {
		t.Fatalf("read = %d,%#02x want 1,0xff", n, buf[0])
	}
	_ = s.Seek(-2, domain.SeekEnd)
	if n, _ := s.Read(buf); n != 1 || buf[0] != 'H' {
		t.Fatalf("read = %d,%q want 1,'H'", n, buf[0])
	}
	_ = s.Close()
}

func TestSeek_Errors(t *testing.T) {
	c, _ := newController(t)
	s := open(t, c, 0x1000, 10, domain.ModeRead)
	defer s.Close()

	for _, tc := range []struct {
		offset int64
		whence domain.Whence
	}{
		{-1, domain.SeekStart},
		{1, domain.SeekEnd},
		{-11, domain.SeekEnd},
		{-1, domain.SeekCurrent},
		{0, domain.Whence(7)},
		{1 << 33, domain.SeekStart},
	} {
		if err := s.Seek(tc.offset, tc.whence); !errors.Is(err, flash.ErrInvalidArgument) {
			t.Fatalf("seek(%d, %s): expected ErrInvalidArgument, got %v", tc.offset, tc.whence, err)
		}
		if s.Cursor() != 0x1000 {
			t.Fatalf("failed seek moved cursor to %s", s.Cursor())
		}
	}

	if err := s.Seek(4, domain.SeekStart); err != nil {
		t.Fatalf("seek start: %v", err)
	}
	if err := s.Seek(-3, domain.SeekCurrent); err != nil {
		t.Fatalf("seek current: %v", err)
	}
	if s.Cursor() != 0x1001 {
		t.Fatalf("cursor = %s, want 0x1001", s.Cursor())
	}
}

func TestSeek_PastEndClampsToZero(t *testing.T) {
	c, _ := newController(t)
	s := open(t, c, 0x1000, 10, domain.ModeReadWrite)
	defer s.Close()

	if err := s.Seek(40, domain.SeekStart); err != nil {
		t.Fatalf("seek past end: %v", err)
	}
	if n, err := s.Read(make([]byte, 4)); n != 0 || err != nil {
		t.Fatalf("read = %d,%v want 0,nil", n, err)
	}
	if n, err := s.Write([]byte("xy")); n != 0 || err != nil {
		t.Fatalf("write = %d,%v want 0,nil", n, err)
	}
}

func TestSeek_WithPendingByteNeedsEvenInRegionTarget(t *testing.T) {
	c, dev := newController(t)
	s := open(t, c, 0x1000, 10, domain.ModeWrite)

	if _, err := s.Write([]byte("abc")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Seek(1, domain.SeekCurrent); !errors.Is(err, flash.ErrInvalidArgument) {
		t.Fatalf("odd seek with pending: expected ErrInvalidArgument, got %v", err)
	}
	if err := s.Seek(10, domain.SeekStart); !errors.Is(err, flash.ErrInvalidArgument) {
		t.Fatalf("seek to end with pending: expected ErrInvalidArgument, got %v", err)
	}
	if err := s.Seek(6, domain.SeekStart); err != nil {
		t.Fatalf("even seek with pending: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if w := word(t, dev, 0x1006); w != packed('c', 0) {
		t.Fatalf("pending byte landed as %#04x at 0x1006", w)
	}
	if w := word(t, dev, 0x1002); w != domain.ErasedWord {
		t.Fatalf("old pending slot = %#04x, want erased", w)
	}
}

func TestModeEnforcement(t *testing.T) {
	c, dev := newController(t)

	w := open(t, c, 0x1000, 10, domain.ModeWrite)
	if _, err := w.Read(make([]byte, 2)); !errors.Is(err, flash.ErrModeViolation) {
		t.Fatalf("read on write-only: expected ErrModeViolation, got %v", err)
	}
	_ = w.Close()

	r := open(t, c, 0x1000, 10, domain.ModeRead)
	before := dev.Stats()
	if _, err := r.Write([]byte("ab")); !errors.Is(err, flash.ErrModeViolation) {
		t.Fatalf("write on read-only: expected ErrModeViolation, got %v", err)
	}
	if dev.Stats() != before {
		t.Fatal("rejected write touched the device")
	}
	if !dev.Locked() {
		t.Fatal("read-only session must not unlock the device")
	}
	_ = r.Close()
}

func TestWrite_EmptyIsNoop(t *testing.T) {
	c, dev := newController(t)
	s := open(t, c, 0x1000, 10, domain.ModeWrite)
	defer s.Close()

	if _, err := s.Write([]byte("abc")); err != nil {
		t.Fatalf("write: %v", err)
	}
	cursor, offset := s.Cursor(), s.Offset()
	pb, pok := s.Pending()
	programs := dev.Stats().Programs

	if n, err := s.Write(nil); n != 0 || err != nil {
		t.Fatalf("empty write = %d,%v", n, err)
	}
	if s.Cursor() != cursor || s.Offset() != offset {
		t.Fatal("empty write moved the position")
	}
	if b, ok := s.Pending(); b != pb || ok != pok {
		t.Fatal("empty write changed the pending byte")
	}
	if dev.Stats().Programs != programs {
		t.Fatal("empty write programmed the device")
	}
}

func TestPendingByte_FlushedExactlyOnce(t *testing.T) {
	t.Run("next write", func(t *testing.T) {
		c, dev := newController(t)
		s := open(t, c, 0x1000, 10, domain.ModeWrite)
		_, _ = s.Write([]byte("abc"))
		base := dev.Stats().Programs

		if n, err := s.Write([]byte("d")); n != 1 || err != nil {
			t.Fatalf("write = %d,%v", n, err)
		}
		if got := dev.Stats().Programs - base; got != 1 {
			t.Fatalf("merge programmed %d words, want 1", got)
		}
		if _, ok := s.Pending(); ok {
			t.Fatal("merge should clear the pending byte")
		}
		if s.Cursor() != 0x1004 {
			t.Fatalf("cursor = %s, want 0x1004", s.Cursor())
		}
		if err := s.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if got := dev.Stats().Programs - base; got != 1 {
			t.Fatalf("close programmed again: %d", got)
		}
		if w := word(t, dev, 0x1002); w != packed('c', 'd') {
			t.Fatalf("merged word = %#04x", w)
		}
	})
	t.Run("close", func(t *testing.T) {
		c, dev := newController(t)
		s := open(t, c, 0x1000, 10, domain.ModeWrite)
		_, _ = s.Write([]byte("a"))
		base := dev.Stats().Programs
		if base != 0 {
			t.Fatalf("single byte programmed %d words before close", base)
		}
		_ = s.Close()
		_ = s.Close()
		if got := dev.Stats().Programs; got != 1 {
			t.Fatalf("programs = %d, want 1", got)
		}
	})
}

func TestRoundTrip_AllAlignments(t *testing.T) {
	payload := []byte("0123456789")
	for _, off := range []int64{0, 1, 2, 3} {
		for length := 0; length <= len(payload); length++ {
			for _, chunk := range []int{1, 2, 3, 64} {
				name := fmt.Sprintf("off=%d/len=%d/chunk=%d", off, length, chunk)
				t.Run(name, func(t *testing.T) {
					roundTrip(t, off, payload[:length], chunk)
				})
			}
		}
	}
}

func roundTrip(t *testing.T, off int64, data []byte, chunk int) {
	c, _ := newController(t)
	const start, size = 0x1040, 16

	w := open(t, c, start, size, domain.ModeWrite)
	if err := w.Seek(off, domain.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	for rest := data; len(rest) > 0; {
		n := min(chunk, len(rest))
		before := w.Offset()
		got, err := w.Write(rest[:n])
		if err != nil || got != n {
			t.Fatalf("write = %d,%v want %d,nil", got, err, n)
		}
		if w.Offset() != before+int64(n) {
			t.Fatalf("offset advanced %d, want %d", w.Offset()-before, n)
		}
		rest = rest[n:]
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r := open(t, c, start, size, domain.ModeRead)
	defer r.Close()
	got := make([]byte, size)
	if n, err := r.Read(got); err != nil || n != size {
		t.Fatalf("read = %d,%v", n, err)
	}

	want := bytes.Repeat([]byte{0xFF}, size)
	copy(want[off:], data)
	if end := off + int64(len(data)); len(data) > 0 && end%2 == 1 {
		// the stream ended mid-word: close padded it with 0x00
		want[end] = 0x00
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("region contents (-want +got):\n%s", diff)
	}

	if err := r.Seek(off, domain.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	back := make([]byte, len(data))
	if n, err := r.Read(back); err != nil || n != len(data) {
		t.Fatalf("read back = %d,%v", n, err)
	}
	if diff := cmp.Diff(data, back); diff != "" && len(data) > 0 {
		t.Fatalf("read back (-want +got):\n%s", diff)
	}
}

func TestWrite_ClampsAtRegionEnd(t *testing.T) {
	c, _ := newController(t)
	s := open(t, c, 0x1000, 10, domain.ModeReadWrite)

	n, err := s.Write([]byte("ABCDEFGHIJKL"))
	if err != nil || n != 10 {
		t.Fatalf("write = %d,%v want 10,nil", n, err)
	}
	if s.Cursor() != 0x100A {
		t.Fatalf("cursor = %s, want region end", s.Cursor())
	}
	if n, err := s.Write([]byte("M")); n != 0 || err != nil {
		t.Fatalf("write at end = %d,%v", n, err)
	}

	_ = s.Seek(6, domain.SeekStart)
	buf := make([]byte, 20)
	if n, err := s.Read(buf); err != nil || n != 4 {
		t.Fatalf("read = %d,%v want 4,nil", n, err)
	}
	if string(buf[:4]) != "GHIJ" {
		t.Fatalf("read %q", buf[:4])
	}
	if s.Cursor() != 0x100A {
		t.Fatalf("cursor = %s, want region end", s.Cursor())
	}
	if n, _ := s.Read(buf); n != 0 {
		t.Fatalf("read at end = %d", n)
	}
	_ = s.Close()
}

func TestWrite_ClampCountsPendingByte(t *testing.T) {
	c, dev := newController(t)
	s := open(t, c, 0x1000, 5, domain.ModeWrite)

	if n, _ := s.Write([]byte("ABC")); n != 3 {
		t.Fatalf("first write = %d", n)
	}
	n, err := s.Write([]byte("DEFG"))
	if err != nil || n != 2 {
		t.Fatalf("second write = %d,%v want 2,nil", n, err)
	}
	if s.Offset() != 5 {
		t.Fatalf("offset = %d, want 5", s.Offset())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	got := []domain.Word{word(t, dev, 0x1000), word(t, dev, 0x1002), word(t, dev, 0x1004)}
	want := []domain.Word{packed('A', 'B'), packed('C', 'D'), packed('E', 0)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("words (-want +got):\n%s", diff)
	}
}

func TestRead_OddCursorWordCount(t *testing.T) {
	c, dev := newController(t)
	w := open(t, c, 0x1000, 8, domain.ModeWrite)
	_, _ = w.Write([]byte("ABCDEFGH"))
	_ = w.Close()

	r := open(t, c, 0x1000, 8, domain.ModeRead)
	defer r.Close()
	_ = r.Seek(1, domain.SeekStart)

	reads := dev.Stats().Reads
	buf := make([]byte, 3)
	if n, err := r.Read(buf); err != nil || n != 3 {
		t.Fatalf("read = %d,%v", n, err)
	}
	if string(buf) != "BCD" {
		t.Fatalf("read %q, want BCD", buf)
	}
	if got := dev.Stats().Reads - reads; got != 2 {
		t.Fatalf("word reads = %d, want 2", got)
	}
	if r.Cursor() != 0x1004 {
		t.Fatalf("cursor = %s", r.Cursor())
	}
}

func TestWrite_HardwareFailureKeepsCommittedWords(t *testing.T) {
	boom := errors.New("program fault")
	failAt := domain.Address(0x1004)

	c, dev := newController(t)
	dev.SetFaults(sim.Faults{Program: func(addr domain.Address, _ domain.Word) error {
		if addr == failAt {
			return boom
		}
		return nil
	}})
	s := open(t, c, 0x1000, 16, domain.ModeWrite)

	n, err := s.Write([]byte("ABCDEF"))
	if !errors.Is(err, flash.ErrHardwareFailure) || !errors.Is(err, boom) {
		t.Fatalf("expected hardware failure wrapping the fault, got %v", err)
	}
	if n != 4 || s.Cursor() != 0x1004 {
		t.Fatalf("n=%d cursor=%s, want 4 and 0x1004", n, s.Cursor())
	}
	if _, ok := s.Pending(); ok {
		t.Fatal("no byte should be pending")
	}

	// A failing merge keeps the pending byte where it was.
	failAt = 0
	_ = s.Seek(6, domain.SeekStart)
	_, _ = s.Write([]byte("x"))
	failAt = 0x1006
	if n, err := s.Write([]byte("y")); n != 0 || !errors.Is(err, flash.ErrHardwareFailure) {
		t.Fatalf("merge write = %d,%v", n, err)
	}
	if b, ok := s.Pending(); !ok || b != 'x' || s.Cursor() != 0x1006 {
		t.Fatalf("pending=%q,%v cursor=%s after failed merge", b, ok, s.Cursor())
	}
	failAt = 0
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestClose_ReleasesLockWhenFlushFails(t *testing.T) {
	boom := errors.New("flush fault")
	c, dev := newController(t)
	s := open(t, c, 0x1000, 10, domain.ModeWrite)
	_, _ = s.Write([]byte("abc"))
	dev.SetFaults(sim.Faults{Program: func(domain.Address, domain.Word) error { return boom }})

	if err := s.Close(); !errors.Is(err, flash.ErrHardwareFailure) || !errors.Is(err, boom) {
		t.Fatalf("close: expected hardware failure, got %v", err)
	}
	if !dev.Locked() {
		t.Fatal("device left unlocked after failed flush")
	}
	if c.Live() != 0 {
		t.Fatalf("live sessions = %d", c.Live())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := s.Write([]byte("z")); !errors.Is(err, flash.ErrClosed) {
		t.Fatalf("write after close: expected ErrClosed, got %v", err)
	}
	if err := s.Seek(0, domain.SeekStart); !errors.Is(err, flash.ErrClosed) {
		t.Fatalf("seek after close: expected ErrClosed, got %v", err)
	}
}

func TestOpen_EraseFailureRelocks(t *testing.T) {
	boom := errors.New("erase fault")
	c, dev := newController(t)
	dev.SetFaults(sim.Faults{Erase: func(domain.Address, int) error { return boom }})

	if _, err := c.Open(0x1000, 10, domain.ModeWrite); !errors.Is(err, flash.ErrHardwareFailure) || !errors.Is(err, boom) {
		t.Fatalf("expected hardware failure, got %v", err)
	}
	if !dev.Locked() || c.Live() != 0 {
		t.Fatalf("locked=%v live=%d after failed open", dev.Locked(), c.Live())
	}
}

func TestOpen_FailedRelockIsReported(t *testing.T) {
	eraseErr := errors.New("erase fault")
	lockErr := errors.New("lock fault")
	c, dev := newController(t)
	dev.SetFaults(sim.Faults{
		Erase: func(domain.Address, int) error { return eraseErr },
		Lock:  func() error { return lockErr },
	})

	_, err := c.Open(0x1000, 10, domain.ModeWrite)
	if !errors.Is(err, eraseErr) || !errors.Is(err, lockErr) {
		t.Fatalf("expected erase and lock errors, got %v", err)
	}
	if !errors.Is(err, flash.ErrHardwareFailure) {
		t.Fatalf("expected ErrHardwareFailure, got %v", err)
	}

	// the writer count was still dropped, so the next writer unlocks again
	dev.SetFaults(sim.Faults{})
	before := dev.Stats().Unlocks
	s := open(t, c, 0x1000, 10, domain.ModeWrite)
	if got := dev.Stats().Unlocks; got != before+1 {
		t.Fatalf("unlocks = %d, want %d", got, before+1)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !dev.Locked() {
		t.Fatal("device left unlocked")
	}
}

func TestWrite_OddCursorNeedsErasedWord(t *testing.T) {
	c, dev := newController(t)

	// erased low half: the byte lands in the high half and 0xFF stays below it
	s := open(t, c, 0x1000, 4, domain.ModeWrite)
	if err := s.Seek(1, domain.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if n, err := s.Write([]byte("X")); n != 1 || err != nil {
		t.Fatalf("write = %d,%v", n, err)
	}
	if got := word(t, dev, 0x1000); got != 0x58FF {
		t.Fatalf("word = %#04x, want 0x58ff", uint16(got))
	}
	if s.Cursor() != 0x1002 {
		t.Fatalf("cursor = %s", s.Cursor())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// programmed low half: the device refuses and nothing is committed
	rw := open(t, c, 0x1010, 4, domain.ModeReadWrite)
	if n, err := rw.Write([]byte("AB")); n != 2 || err != nil {
		t.Fatalf("write = %d,%v", n, err)
	}
	if err := rw.Seek(-1, domain.SeekCurrent); err != nil {
		t.Fatalf("seek: %v", err)
	}
	n, err := rw.Write([]byte("X"))
	if n != 0 || !errors.Is(err, flash.ErrHardwareFailure) || !errors.Is(err, sim.ErrNotErased) {
		t.Fatalf("write over programmed word = %d,%v", n, err)
	}
	if rw.Cursor() != 0x1011 {
		t.Fatalf("cursor moved to %s", rw.Cursor())
	}
	if _, ok := rw.Pending(); ok {
		t.Fatal("failed write left a pending byte")
	}
	if got := word(t, dev, 0x1010); got != 0x4241 {
		t.Fatalf("word = %#04x, want 0x4241", uint16(got))
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpen_ReadyTimeoutIsHardwareFailure(t *testing.T) {
	now := time.Unix(0, 0)
	dev, err := sim.New(bank, sim.WithBusyTime(time.Hour), sim.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	c := flash.New(dev, flash.WithReadyTimeout(time.Millisecond), flash.WithLogger(testlog.Start(t)))

	_, err = c.Open(0x1000, 10, domain.ModeWrite)
	if !errors.Is(err, flash.ErrHardwareFailure) || !errors.Is(err, sim.ErrTimeout) {
		t.Fatalf("expected hardware failure wrapping timeout, got %v", err)
	}
	if !dev.Locked() {
		t.Fatal("device left unlocked")
	}
}

func TestOpen_OverlappingSessions(t *testing.T) {
	c, dev := newController(t)

	a := open(t, c, 0x1000, 16, domain.ModeWrite)
	if _, err := c.Open(0x1008, 4, domain.ModeRead); !errors.Is(err, flash.ErrRegionBusy) || !errors.Is(err, flash.ErrInvalidArgument) {
		t.Fatalf("overlapping open: expected ErrRegionBusy, got %v", err)
	}
	b := open(t, c, 0x1080, 16, domain.ModeWrite)
	r1 := open(t, c, 0x10C0, 4, domain.ModeRead)
	r2 := open(t, c, 0x10C0, 4, domain.ModeRead)

	if err := a.Close(); err != nil {
		t.Fatalf("close a: %v", err)
	}
	if dev.Locked() {
		t.Fatal("device relocked while another writer is live")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close b: %v", err)
	}
	if !dev.Locked() {
		t.Fatal("device unlocked after last writer closed")
	}
	_ = r1.Close()
	_ = r2.Close()
	if c.Live() != 0 {
		t.Fatalf("live = %d", c.Live())
	}
}

func TestWithPadByte(t *testing.T) {
	c, dev := newController(t, flash.WithPadByte(0xAA))
	s := open(t, c, 0x1000, 4, domain.ModeWrite)
	_, _ = s.Write([]byte("E"))
	_ = s.Close()
	if w := word(t, dev, 0x1000); w != packed('E', 0xAA) {
		t.Fatalf("word = %#04x, want 0xaa45", w)
	}
}

func TestReader_ReportsEOF(t *testing.T) {
	c, _ := newController(t)
	w := open(t, c, 0x1000, 6, domain.ModeWrite)
	_, _ = w.Write([]byte("flash!"))
	_ = w.Close()

	r := open(t, c, 0x1000, 6, domain.ModeRead)
	defer r.Close()
	got, err := io.ReadAll(r.Reader())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if string(got) != "flash!" {
		t.Fatalf("got %q", got)
	}
}

func packed(lo, hi byte) domain.Word { return domain.Word(lo) | domain.Word(hi)<<8 }
