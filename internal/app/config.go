package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"flashio/internal/device/sim"
	"flashio/internal/domain"
	"flashio/internal/flash"
	"flashio/internal/logging"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Image        string          // image file path, e.g. ./flash.img
	Geometry     domain.Geometry // bank used when creating an image
	PadByte      byte            // fills the last word of odd-length writes
	ReadyTimeout time.Duration   // bound on each device ready wait
	BusyTime     time.Duration   // simulated erase/program latency
	LogLevel     string          // empty leaves the FLASHIO_LOG_LEVEL / default level
}

// DefaultConfig describes a 64 KiB bank at 0x08000000 with 1 KiB pages.
func DefaultConfig() Config {
	return Config{
		Image: "flash.img",
		Geometry: domain.Geometry{
			Base:      0x08000000,
			Size:      64 * 1024,
			EraseUnit: 1024,
		},
		PadByte:      0x00,
		ReadyTimeout: flash.DefaultReadyTimeout,
	}
}

type fileConfig struct {
	Image        string `toml:"image"`
	BankBase     int64  `toml:"bank_base"`
	BankSize     int    `toml:"bank_size"`
	EraseUnit    int    `toml:"erase_unit"`
	PadByte      int    `toml:"pad_byte"`
	ReadyTimeout string `toml:"ready_timeout"`
	BusyTime     string `toml:"busy_time"`
	LogLevel     string `toml:"log_level"`
}

// LoadConfig overlays the keys present in the TOML file at path on
// DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load flashio config: %w", err)
	}

	if meta.IsDefined("image") {
		cfg.Image = strings.TrimSpace(raw.Image)
	}
	if meta.IsDefined("bank_base") {
		if raw.BankBase < 0 || raw.BankBase > 0xFFFFFFFF {
			return Config{}, fmt.Errorf("bank_base %#x outside 32-bit address space", raw.BankBase)
		}
		cfg.Geometry.Base = domain.Address(raw.BankBase)
	}
	if meta.IsDefined("bank_size") {
		cfg.Geometry.Size = raw.BankSize
	}
	if meta.IsDefined("erase_unit") {
		cfg.Geometry.EraseUnit = raw.EraseUnit
	}
	if meta.IsDefined("pad_byte") {
		if raw.PadByte < 0 || raw.PadByte > 0xFF {
			return Config{}, fmt.Errorf("pad_byte %d is not a byte", raw.PadByte)
		}
		cfg.PadByte = byte(raw.PadByte)
	}
	if meta.IsDefined("ready_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadyTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse ready_timeout: %w", err)
		}
		cfg.ReadyTimeout = d
	}
	if meta.IsDefined("busy_time") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.BusyTime))
		if err != nil {
			return Config{}, fmt.Errorf("parse busy_time: %w", err)
		}
		cfg.BusyTime = d
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that cfg can be wired.
func (c Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf("config missing image path")
	}
	if err := sim.ValidateGeometry(c.Geometry); err != nil {
		return err
	}
	if c.ReadyTimeout <= 0 {
		return fmt.Errorf("ready_timeout must be positive, got %s", c.ReadyTimeout)
	}
	if c.BusyTime < 0 {
		return fmt.Errorf("busy_time must not be negative, got %s", c.BusyTime)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); c.LogLevel != "" && !ok {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
