package types

import (
	"fmt"
	"strings"
)

// Address is an absolute device byte address.
type Address uint32

// String returns the address in hex.
func (a Address) String() string { return fmt.Sprintf("%#08x", uint32(a)) }

// Word is the device's native program/read unit.
type Word uint16

// WordSize is the number of bytes carried by one Word.
const WordSize = 2

// ErasedWord is the value every word holds after an erase.
const ErasedWord Word = 0xFFFF

// Mode is the access capability set of a session.
type Mode uint8

const (
	ModeRead Mode = 1 << iota
	ModeWrite

	ModeReadWrite = ModeRead | ModeWrite
)

// Readable reports whether m allows reads.
func (m Mode) Readable() bool { return m&ModeRead != 0 }

// Writable reports whether m allows writes.
func (m Mode) Writable() bool { return m&ModeWrite != 0 }

// Valid reports whether m has at least one known bit and no unknown ones.
func (m Mode) Valid() bool { return m != 0 && m&^ModeReadWrite == 0 }

func (m Mode) String() string {
	var parts []string
	if m.Readable() {
		parts = append(parts, "read")
	}
	if m.Writable() {
		parts = append(parts, "write")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Whence selects the reference point of a seek.
type Whence int

const (
	SeekStart Whence = iota
	SeekCurrent
	SeekEnd
)

func (w Whence) String() string {
	switch w {
	case SeekStart:
		return "start"
	case SeekCurrent:
		return "current"
	case SeekEnd:
		return "end"
	default:
		return fmt.Sprintf("whence(%d)", int(w))
	}
}
