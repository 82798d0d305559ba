package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"flashio/internal/crypto"
	"flashio/internal/domain"
)

const (
	imageFormatVersion = 1
	metaSuffix         = ".json"
)

var (
	ErrNoImage            = errors.New("store: no image")
	ErrPassphraseRequired = errors.New("store: image is sealed, passphrase required")
	ErrDigestMismatch     = errors.New("store: image digest mismatch")
	ErrCorruptImage       = errors.New("store: corrupt image")
)

// ImageFileStore keeps one flash image at path and its metadata at
// path+".json".
type ImageFileStore struct {
	path string
	now  func() time.Time

	scryptN, scryptR, scryptP int

	mu sync.Mutex
}

// Option configures an ImageFileStore.
type Option func(*ImageFileStore)

// WithScryptParams overrides the key derivation cost for newly sealed images.
func WithScryptParams(N, r, p int) Option {
	return func(s *ImageFileStore) { s.scryptN, s.scryptR, s.scryptP = N, r, p }
}

// NewImageFileStore returns a store for the image at path.
func NewImageFileStore(path string, opts ...Option) *ImageFileStore {
	s := &ImageFileStore{path: path, now: time.Now}
	s.scryptN, s.scryptR, s.scryptP = scryptParamsDefault()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the image file path.
func (s *ImageFileStore) Path() string { return s.path }

func (s *ImageFileStore) metaPath() string { return s.path + metaSuffix }

// SaveImage writes data and returns the metadata actually stored, with
// version, digest, sealing flag and timestamp filled in.
func (s *ImageFileStore) SaveImage(passphrase string, meta domain.ImageMeta, data []byte) (domain.ImageMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(data) != meta.Geometry.Size {
		return domain.ImageMeta{}, fmt.Errorf("%w: %d bytes for a %d byte bank", ErrCorruptImage, len(data), meta.Geometry.Size)
	}
	meta.Version = imageFormatVersion
	meta.Digest = crypto.DigestHex(data)
	meta.Sealed = passphrase != ""
	meta.SavedAt = s.now().Unix()

	payload := data
	if meta.Sealed {
		var err error
		payload, err = seal(passphrase, data, []byte(meta.Digest), s.scryptN, s.scryptR, s.scryptP)
		if err != nil {
			return domain.ImageMeta{}, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return domain.ImageMeta{}, err
	}
	if err := writeFile(s.path, payload, 0o600); err != nil {
		return domain.ImageMeta{}, err
	}
	if err := writeJSON(s.metaPath(), meta, 0o600); err != nil {
		return domain.ImageMeta{}, err
	}
	return meta, nil
}

// LoadMeta returns the stored metadata without reading the image.
func (s *ImageFileStore) LoadMeta() (domain.ImageMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadMeta()
}

func (s *ImageFileStore) loadMeta() (domain.ImageMeta, error) {
	var meta domain.ImageMeta
	found, err := readJSON(s.metaPath(), &meta)
	if err != nil {
		return domain.ImageMeta{}, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	if !found {
		return domain.ImageMeta{}, fmt.Errorf("%w at %s", ErrNoImage, s.path)
	}
	if meta.Version > imageFormatVersion {
		return domain.ImageMeta{}, fmt.Errorf("unsupported image version %d", meta.Version)
	}
	return meta, nil
}

// LoadImage reads, unseals if needed, and checks the stored image against
// its digest.
func (s *ImageFileStore) LoadImage(passphrase string) (domain.ImageMeta, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.loadMeta()
	if err != nil {
		return domain.ImageMeta{}, nil, err
	}
	raw, err := readFile(s.path)
	if err != nil {
		return domain.ImageMeta{}, nil, err
	}
	if raw == nil {
		return domain.ImageMeta{}, nil, fmt.Errorf("%w at %s", ErrNoImage, s.path)
	}

	data := raw
	if meta.Sealed {
		if passphrase == "" {
			return domain.ImageMeta{}, nil, ErrPassphraseRequired
		}
		if data, err = unseal(passphrase, raw, []byte(meta.Digest)); err != nil {
			return domain.ImageMeta{}, nil, err
		}
	}

	if len(data) != meta.Geometry.Size {
		return domain.ImageMeta{}, nil, fmt.Errorf("%w: %d bytes for a %d byte bank", ErrCorruptImage, len(data), meta.Geometry.Size)
	}
	if !crypto.EqualDigest(crypto.DigestHex(data), meta.Digest) {
		return domain.ImageMeta{}, nil, ErrDigestMismatch
	}
	return meta, data, nil
}

var _ domain.ImageStore = (*ImageFileStore)(nil)
