package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"flashio/internal/app"
	"flashio/internal/logging"
)

var (
	configPath string
	imagePath  string
	passphrase string
	logLevel   string
	appCtx     *app.App
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flashio",
		Short:         "Byte-stream access to word-programmed flash images",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.ConfigureRuntime()

			cfg := app.DefaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = app.LoadConfig(configPath); err != nil {
					return err
				}
			}
			if imagePath != "" {
				cfg.Image = imagePath
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			lvl, err := resolveLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logging.SetLevel(lvl)

			a, err := app.Build(cfg, logging.Logger())
			if err != nil {
				return err
			}
			appCtx = a
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	root.PersistentFlags().StringVar(&imagePath, "image", "", "image file (overrides config)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase sealing the image")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "trace|debug|info|warn|error|off")

	root.AddCommand(initCmd(), writeCmd(), readCmd(), eraseCmd(), verifyCmd(), infoCmd())
	return root
}

// resolveLevel picks the log level: --log-level or log_level when set,
// then FLASHIO_LOG_LEVEL, then info.
func resolveLevel(name string) (zerolog.Level, error) {
	if name != "" {
		lvl, ok := logging.ParseLevel(name)
		if !ok {
			return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", name)
		}
		return lvl, nil
	}
	if lvl, ok := logging.EnvLevel(); ok {
		return lvl, nil
	}
	return zerolog.InfoLevel, nil
}
