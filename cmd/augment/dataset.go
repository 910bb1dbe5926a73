package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	augmenter "github.com/VicDc/AI-Dataset-Augmenter"
	"github.com/VicDc/AI-Dataset-Augmenter/internal/notify"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

func newDatasetCmd(opts *globalOptions) *cobra.Command {
	o := augmenter.DefaultDatasetOptions()
	var (
		format       string
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:   "dataset <image>",
		Short: "Generate numbered random versions of one image",
		Long: `Dataset writes --versions copies of a single image into --dest. Every version gets
a random rotation and zoom drawn from the given ranges, and optionally a random
horizontal or vertical mirror. The zoom is enlarged enough that the rotated image
still fills the original canvas, which is kept. Files are named <prefix>0001,
<prefix>0002 and so on.`,
		Example: `  # Twenty versions with mirroring, reproducible
  augment dataset logo.png --dest data/logo --versions 20 --mirror-h --seed 7

  # Wider rotations exported as PNG
  augment dataset part.tif --dest data/part --min-rotation -45 --max-rotation 45 --format png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := initLogger(cmd.ErrOrStderr(), opts.debug)

			f, err := types.ParseFormat(format)
			if err != nil {
				return err
			}
			o.Image = args[0]
			o.Format = f

			aug, err := augmenter.NewDataset(o,
				augmenter.WithLogger(logger),
				augmenter.WithManifest(manifestPath),
			)
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"run_id":   aug.RunID(),
				"image":    o.Image,
				"dest":     o.DestDir,
				"versions": o.Versions,
				"format":   o.Format,
			}).Info("Generating dataset")

			stats, err := aug.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), notify.Summary(stats))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&o.DestDir, "dest", "", "destination directory")
	fs.IntVar(&o.Versions, "versions", o.Versions, "number of versions to generate")
	fs.StringVar(&o.Prefix, "prefix", o.Prefix, "file name prefix, followed by a four digit number")
	fs.StringVar(&format, "format", string(o.Format), "export format: jpg, png, tif, psd or webp")
	fs.Float64Var(&o.Random.MinRotation, "min-rotation", o.Random.MinRotation, "minimum rotation in degrees")
	fs.Float64Var(&o.Random.MaxRotation, "max-rotation", o.Random.MaxRotation, "maximum rotation in degrees")
	fs.Float64Var(&o.Random.MinZoom, "min-zoom", o.Random.MinZoom, "minimum zoom in percent")
	fs.Float64Var(&o.Random.MaxZoom, "max-zoom", o.Random.MaxZoom, "maximum zoom in percent")
	fs.BoolVar(&o.Random.MirrorHorizontal, "mirror-h", false, "mirror horizontally with probability 1/2")
	fs.BoolVar(&o.Random.MirrorVertical, "mirror-v", false, "mirror vertically with probability 1/2")
	fs.Int64Var(&o.Seed, "seed", 0, "random seed, 0 for time based")
	fs.IntVar(&o.Workers, "workers", o.Workers, "versions generated in parallel")
	fs.StringVar(&manifestPath, "manifest", "", "write a run manifest (.yaml, .json or .parquet)")
	_ = cmd.MarkFlagRequired("dest")

	return cmd
}
