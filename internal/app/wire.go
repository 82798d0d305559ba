package app

import (
	"github.com/rs/zerolog"

	"flashio/internal/device/sim"
	"flashio/internal/domain"
	"flashio/internal/flash"
	imagesvc "flashio/internal/services/image"
	"flashio/internal/store"
)

// Build constructs the dependency graph from cfg.
func Build(cfg Config, log zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// File-based image store
	imageStore := store.NewImageFileStore(cfg.Image)

	// Simulated bank behind every image
	busy := cfg.BusyTime
	newDevice := func(geo domain.Geometry) (domain.SnapshotDevice, error) {
		return sim.New(geo, sim.WithBusyTime(busy))
	}

	flashSvc := imagesvc.New(imageStore, cfg.Geometry, newDevice, log,
		flash.WithPadByte(cfg.PadByte),
		flash.WithReadyTimeout(cfg.ReadyTimeout),
	)

	return &App{
		Config: cfg,
		Store:  imageStore,
		Flash:  flashSvc,
		Log:    log,
	}, nil
}
