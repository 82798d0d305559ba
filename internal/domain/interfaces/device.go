package interfaces

import (
	"time"

	domaintypes "flashio/internal/domain/types"
)

// Device is the word-granular flash primitive set a session drives.
//
// Program and erase require the device to be unlocked; reads never do.
// ProgramWord and Erase return once the operation has been accepted and
// callers must WaitReady before the next operation.
type Device interface {
	Geometry() domaintypes.Geometry
	Erase(addr domaintypes.Address, n int) error
	ProgramWord(addr domaintypes.Address, w domaintypes.Word) error
	ReadWord(addr domaintypes.Address) (domaintypes.Word, error)
	WaitReady(timeout time.Duration) error
	Lock() error
	Unlock() error
}

// SnapshotDevice is a Device whose whole contents can be captured and
// replaced, used to persist simulated banks as image files.
type SnapshotDevice interface {
	Device
	Snapshot() []byte
	Restore(data []byte) error
}
