package interfaces

import domaintypes "flashio/internal/domain/types"

// ImageStore persists flash images. An empty passphrase stores the image
// in the clear; otherwise the image is sealed with it.
type ImageStore interface {
	SaveImage(passphrase string, meta domaintypes.ImageMeta, data []byte) (domaintypes.ImageMeta, error)
	LoadImage(passphrase string) (domaintypes.ImageMeta, []byte, error)
	LoadMeta() (domaintypes.ImageMeta, error)
}
