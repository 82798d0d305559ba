package image

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"flashio/internal/domain"
	"flashio/internal/flash"
)

// ErrVerifyMismatch is returned by Verify when the device differs from the
// expected bytes.
var ErrVerifyMismatch = errors.New("image: verify mismatch")

// DeviceFactory builds an erased device for a geometry.
type DeviceFactory func(geo domain.Geometry) (domain.SnapshotDevice, error)

// Service programs, dumps, erases and verifies regions of a stored image.
type Service struct {
	store  domain.ImageStore
	geo    domain.Geometry
	newDev DeviceFactory
	opts   []flash.Option
	log    zerolog.Logger
}

// New returns a service over store. geo is the geometry used by Init;
// other operations use the geometry recorded with the image.
func New(store domain.ImageStore, geo domain.Geometry, newDev DeviceFactory, log zerolog.Logger, opts ...flash.Option) *Service {
	opts = append([]flash.Option{flash.WithLogger(log)}, opts...)
	return &Service{store: store, geo: geo, newDev: newDev, opts: opts, log: log}
}

// Init stores a fully erased image and returns its metadata.
func (s *Service) Init(passphrase string) (domain.ImageMeta, error) {
	dev, err := s.newDev(s.geo)
	if err != nil {
		return domain.ImageMeta{}, err
	}
	meta, err := s.store.SaveImage(passphrase, domain.ImageMeta{Geometry: s.geo}, dev.Snapshot())
	if err != nil {
		return domain.ImageMeta{}, err
	}
	s.log.Info().Stringer("base", s.geo.Base).Int("size", s.geo.Size).Str("fingerprint", meta.Fingerprint()).Msg("image initialised")
	return meta, nil
}

// Program erases the region [addr, addr+len(data)) and writes data into it.
// An odd-length payload is followed by the controller's pad byte.
func (s *Service) Program(passphrase string, addr domain.Address, data []byte) (int, error) {
	var n int
	err := s.run(passphrase, true, func(ctl *flash.Controller) error {
		sess, err := ctl.Open(addr, len(data), domain.ModeWrite)
		if err != nil {
			return err
		}
		n, err = sess.Write(data)
		if cerr := sess.Close(); err == nil {
			err = cerr
		}
		return err
	})
	if err != nil {
		return n, err
	}
	s.log.Info().Stringer("addr", addr).Int("bytes", n).Msg("programmed")
	return n, nil
}

// Dump reads n bytes from addr.
func (s *Service) Dump(passphrase string, addr domain.Address, n int) ([]byte, error) {
	var out []byte
	err := s.run(passphrase, false, func(ctl *flash.Controller) error {
		sess, err := ctl.Open(addr, n, domain.ModeRead)
		if err != nil {
			return err
		}
		defer sess.Close()

		buf := make([]byte, n)
		got, err := sess.Read(buf)
		if err != nil {
			return err
		}
		out = buf[:got]
		return nil
	})
	return out, err
}

// Erase erases every erase unit touched by [addr, addr+n).
func (s *Service) Erase(passphrase string, addr domain.Address, n int) error {
	err := s.run(passphrase, true, func(ctl *flash.Controller) error {
		sess, err := ctl.Open(addr, n, domain.ModeWrite)
		if err != nil {
			return err
		}
		return sess.Close()
	})
	if err != nil {
		return err
	}
	s.log.Info().Stringer("addr", addr).Int("bytes", n).Msg("erased")
	return nil
}

// Verify compares the device contents at addr with want.
func (s *Service) Verify(passphrase string, addr domain.Address, want []byte) error {
	got, err := s.Dump(passphrase, addr, len(want))
	if err != nil {
		return err
	}
	if len(got) != len(want) {
		return fmt.Errorf("%w: read %d of %d bytes at %s", ErrVerifyMismatch, len(got), len(want), addr)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%w at %s: want %#02x, got %#02x", ErrVerifyMismatch, addr+domain.Address(i), want[i], got[i])
		}
	}
	return nil
}

// Info returns the stored image metadata.
func (s *Service) Info() (domain.ImageMeta, error) {
	return s.store.LoadMeta()
}

// run loads the image into a fresh device, hands a controller over it to
// fn and, if persist is set and fn succeeded, saves the device contents.
func (s *Service) run(passphrase string, persist bool, fn func(*flash.Controller) error) error {
	meta, data, err := s.store.LoadImage(passphrase)
	if err != nil {
		return err
	}
	dev, err := s.newDev(meta.Geometry)
	if err != nil {
		return err
	}
	if err := dev.Restore(data); err != nil {
		return err
	}

	if err := fn(flash.New(dev, s.opts...)); err != nil {
		return err
	}
	if !persist {
		return nil
	}
	_, err = s.store.SaveImage(passphrase, domain.ImageMeta{Geometry: meta.Geometry}, dev.Snapshot())
	return err
}

// Compile-time assertion that Service implements domain.FlashService.
var _ domain.FlashService = (*Service)(nil)
