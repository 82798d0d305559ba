package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "FLASHIO_LOG_LEVEL"
	EnvLogTimestamp = "FLASHIO_LOG_TIMESTAMP"
	EnvLogNoColor   = "FLASHIO_LOG_NOCOLOR"
	EnvLogBypass    = "FLASHIO_LOG_BYPASS"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config selects how the process logger renders.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	// Bypass writes raw JSON lines instead of the console format.
	Bypass bool
	Out    io.Writer
}

var (
	configureOnce sync.Once
	mu            sync.RWMutex
	logger        = zerolog.Nop()
)

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

// Configure installs the process logger for profile. Only the first call
// has an effect.
func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		applyEnvOverrides(&cfg)
		install(cfg)
	})
}

// Logger returns the process logger. It is disabled until Configure runs.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLevel changes the level of the process logger, e.g. from a CLI flag.
func SetLevel(lvl zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = logger.Level(lvl)
}

func defaultConfig(profile Profile) Config {
	cfg := Config{Out: os.Stderr}
	switch profile {
	case ProfileTest:
		cfg.Level = zerolog.DebugLevel
		cfg.Timestamp = false
	default:
		cfg.Level = zerolog.InfoLevel
		cfg.Timestamp = true
	}
	return cfg
}

func install(cfg Config) {
	var w io.Writer = cfg.Out
	if !cfg.Bypass {
		cw := zerolog.ConsoleWriter{Out: cfg.Out, NoColor: cfg.NoColor, TimeFormat: time.RFC3339}
		if !cfg.Timestamp {
			cw.PartsExclude = []string{zerolog.TimestampFieldName}
		}
		w = cw
	}
	ctx := zerolog.New(w).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}

	mu.Lock()
	defer mu.Unlock()
	logger = ctx.Logger().Level(cfg.Level)
}

// EnvLevel returns the level named by FLASHIO_LOG_LEVEL, if set and valid.
func EnvLevel() (zerolog.Level, bool) {
	return ParseLevel(os.Getenv(EnvLogLevel))
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := EnvLevel(); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogBypass)); ok {
		cfg.Bypass = v
	}
}

// ParseLevel maps a level name to a zerolog level. ok is false for an
// empty or unknown name.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
