package domain

import (
	interfaces "flashio/internal/domain/interfaces"
	types "flashio/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Address   = types.Address
	Word      = types.Word
	Mode      = types.Mode
	Whence    = types.Whence
	Geometry  = types.Geometry
	ImageMeta = types.ImageMeta
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Device         = interfaces.Device
	SnapshotDevice = interfaces.SnapshotDevice
	ImageStore     = interfaces.ImageStore
	FlashService   = interfaces.FlashService
)

const (
	WordSize   = types.WordSize
	ErasedWord = types.ErasedWord

	ModeRead      = types.ModeRead
	ModeWrite     = types.ModeWrite
	ModeReadWrite = types.ModeReadWrite

	SeekStart   = types.SeekStart
	SeekCurrent = types.SeekCurrent
	SeekEnd     = types.SeekEnd
)
