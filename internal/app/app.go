package app

import (
	"github.com/rs/zerolog"

	"flashio/internal/domain"
)

// App is the dependency graph the CLI commands run against.
type App struct {
	Config Config
	Store  domain.ImageStore
	Flash  domain.FlashService
	Log    zerolog.Logger
}
