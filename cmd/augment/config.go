package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VicDc/AI-Dataset-Augmenter/internal/config"
	"github.com/VicDc/AI-Dataset-Augmenter/internal/utils"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect configuration files",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(opts))
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a config file with the default settings",
		Long: `Init writes the default settings to file, or to the user config path when no
file is given. The encoding follows the extension: .json, .yaml/.yml or .toml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if utils.FileExists(path) && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := config.Default().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  `Show prints the configuration after the config file and AUGMENT_* variables are applied.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal("." + format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			if err != nil {
				return err
			}

			if verr := cfg.Validate(); verr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nwarning: %v\n", verr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output encoding: yaml, json or toml")
	return cmd
}
