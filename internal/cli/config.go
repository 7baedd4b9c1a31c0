package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/sadopc/breathe/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:      %s\n", e.cfgPath)
			fmt.Fprintf(out, "db_path:   %s\n", orDefault(e.cfg.DBPath, "(default)"))
			fmt.Fprintf(out, "log_file:  %s\n", orDefault(e.cfg.LogFile, "(none)"))
			fmt.Fprintf(out, "log_level: %s\n", e.cfg.LogLevel)
			fmt.Fprintf(out, "tick_ms:   %d\n", e.cfg.TickMS)
			return nil
		},
	}
	cmd.AddCommand(newConfigInitCmd(e))
	return cmd
}

func newConfigInitCmd(e *env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				_, err := e.fs.Stat(e.cfgPath)
				if err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", e.cfgPath)
				}
				if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("stat config: %w", err)
				}
			}
			if err := config.Save(e.fs, e.cfgPath, e.cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", e.cfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
