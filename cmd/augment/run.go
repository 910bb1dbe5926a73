package main

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	augmenter "github.com/VicDc/AI-Dataset-Augmenter"
	"github.com/VicDc/AI-Dataset-Augmenter/internal/config"
	"github.com/VicDc/AI-Dataset-Augmenter/internal/notify"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/batch"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	flagCfg := config.Default()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Augment every image of the source directory",
		Example: `  # Three copies of every image with cutout, exported as PNG
  augment run --source data/raw --dest data/aug --copies 3 --cutout --format png

  # Use a config file and override the seed
  augment run -c augment.yaml --seed 42

  # Record what was produced
  augment run -c augment.yaml --manifest runs/latest.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := initLogger(cmd.ErrOrStderr(), opts.debug)

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			applyChangedFlags(cmd.Flags(), cfg, flagCfg)

			p, err := cfg.ToParams()
			if err != nil {
				return err
			}

			aug, err := augmenter.New(p,
				augmenter.WithLogger(logger),
				augmenter.WithManifest(cfg.Output.Manifest),
			)
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"run_id":  aug.RunID(),
				"source":  p.SourceDir,
				"dest":    p.DestDir,
				"copies":  p.Copies,
				"formats": p.ExportFormats(),
				"workers": p.Workers,
			}).Info("Configuration loaded")

			stats, err := aug.Run(cmd.Context())
			if errors.Is(err, batch.ErrNoInputFiles) {
				return fmt.Errorf("%w in %s", err, p.SourceDir)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), notify.Summary(stats))
			return nil
		},
	}

	bindConfigFlags(cmd.Flags(), flagCfg)
	return cmd
}
