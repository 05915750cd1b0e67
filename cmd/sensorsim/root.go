package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/uns-lab/sensorsim/internal/config"
)

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "sensorsim",
		Short:         "Industrial sensor fleet simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(
		newRunCommand(),
		newAssetsCommand(),
		newCaptureCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sensorsim %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		},
	}
}

func newAssetsCommand() *cobra.Command {
	var configPath, envPath string
	c := &cobra.Command{
		Use:   "assets",
		Short: "List the configured assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath, envPath)
			if err != nil {
				return err
			}
			if err := cfg.Catalog().Validate(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ASSET\tAREA\tSENSORS\tTOPIC ROOT")
			for _, d := range cfg.Assets {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Area, strings.Join(d.Sensors, ","), cfg.Namespace+"/"+d.Area+"/"+d.ID)
			}
			return w.Flush()
		},
	}
	c.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	c.Flags().StringVar(&envPath, "env", ".env", "Environment file (ignored when missing)")
	return c
}

// loadConfig applies defaults, the YAML file, the .env file and the
// environment in that order. It does not validate.
func loadConfig(configPath, envPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	dotenv, err := config.LoadDotEnv(envPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(config.Lookup(dotenv)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the operational logger.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn or error)", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (must be text or json)", format)
	}
}
