package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	augmenter "github.com/VicDc/AI-Dataset-Augmenter"
	"github.com/VicDc/AI-Dataset-Augmenter/internal/config"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/output"
)

func newPlanCmd(opts *globalOptions) *cobra.Command {
	flagCfg := config.Default()

	cmd := &cobra.Command{
		Use:   "plan <image>",
		Short: "Print the operations one copy of an image would go through",
		Long: `Plan loads a single image and prints the operation steps the current settings
would apply to it, with the image size after each step. Nothing is written.`,
		Example: `  augment plan photo.jpg --resize --aspect 16:9 --rotate 10 --cutout`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := initLogger(cmd.ErrOrStderr(), opts.debug)

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			applyChangedFlags(cmd.Flags(), cfg, flagCfg)

			// Planning never touches the destination, so any placeholder passes validation
			if cfg.Source.Dir == "" {
				cfg.Source.Dir = filepath.Dir(args[0])
			}
			if cfg.Source.DestDir == "" {
				cfg.Source.DestDir = "."
			}

			p, err := cfg.ToParams()
			if err != nil {
				return err
			}
			aug, err := augmenter.New(p, augmenter.WithLogger(logger))
			if err != nil {
				return err
			}

			steps, final, err := aug.Plan(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tSTEP\tSIZE")
			for i, step := range steps {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, step, step.After)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\nfinal size %s, %d step(s)\n", final, len(steps))
			for _, f := range p.ExportFormats() {
				fmt.Fprintf(out, "exports %s%s\n", output.BaseName(args[0], p.Prefix, p.Suffix, 1, p.Copies), f.Extension())
			}
			return nil
		},
	}

	bindConfigFlags(cmd.Flags(), flagCfg)
	return cmd
}
