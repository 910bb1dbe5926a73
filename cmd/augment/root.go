package main

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/VicDc/AI-Dataset-Augmenter/internal/config"
	"github.com/VicDc/AI-Dataset-Augmenter/internal/utils"
)

type globalOptions struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "augment",
		Short: "Batch image augmentation for training datasets",
		Long: `Augment walks a folder of images and writes transformed copies of each one.

Every copy runs the same ordered chain: resize, aspect crop, rotate, flip, shear,
blur, noise, brightness, exposure and cutout. Results are exported as JPEG, PNG,
TIFF, PSD or WebP. The dataset command instead writes numbered random versions
of a single image.

Settings are layered: built-in defaults, then the config file, then AUGMENT_*
environment variables (a .env file is read too), then command line flags.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (.json, .yaml or .toml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newPlanCmd(opts))
	cmd.AddCommand(newDatasetCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

// initLogger sets up a colored text logger for debugging and JSON lines otherwise
func initLogger(out io.Writer, debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

// loadConfig layers the config file and the environment over the defaults.
// An explicit --config must exist; the default path is only used when present.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg := config.Default()

	path := opts.configPath
	if path == "" {
		if p := os.Getenv(config.EnvPrefix + "CONFIG"); p != "" {
			path = p
		} else if p := config.GetConfigPath(); utils.FileExists(p) {
			path = p
		}
	}
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}
