package interfaces

import domaintypes "flashio/internal/domain/types"

// FlashService runs session operations against a persisted image.
type FlashService interface {
	Init(passphrase string) (domaintypes.ImageMeta, error)
	Program(passphrase string, addr domaintypes.Address, data []byte) (int, error)
	Dump(passphrase string, addr domaintypes.Address, n int) ([]byte, error)
	Erase(passphrase string, addr domaintypes.Address, n int) error
	Verify(passphrase string, addr domaintypes.Address, want []byte) error
	Info() (domaintypes.ImageMeta, error)
}
