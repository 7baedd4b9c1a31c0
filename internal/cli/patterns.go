package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sadopc/breathe/internal/catalog"
	"github.com/spf13/cobra"
)

func newPatternsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"ls"},
		Short:   "List built-in and custom breathing patterns",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := e.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			all, err := catalog.New(st, e.logger).All()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(all))
			for _, p := range all {
				kind := "built-in"
				if p.Custom {
					kind = "custom"
				}
				rows = append(rows, []string{p.ID, p.Name, p.Rhythm(), fmt.Sprintf("%ds", int(p.CycleDuration().Seconds())), kind})
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "NAME", "RHYTHM", "CYCLE", "KIND").
				Rows(rows...)
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.AddCommand(newPatternsRemoveCmd(e), newPatternsExportCmd(e))
	return cmd
}

func newPatternsRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a custom pattern",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := e.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := catalog.New(st, e.logger).Remove(args[0]); err != nil {
				return fmt.Errorf("remove %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

func newPatternsExportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.yaml>",
		Short: "Write custom patterns to a YAML file that 'breathe import' reads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := e.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			all, err := catalog.New(st, e.logger).All()
			if err != nil {
				return err
			}
			var custom []catalog.Pattern
			for _, p := range all {
				if p.Custom {
					custom = append(custom, p)
				}
			}

			if err := catalog.SaveFile(e.fs, args[0], custom); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d patterns to %s\n", len(custom), args[0])
			return nil
		},
	}
}

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Add custom patterns from a YAML file",
		Long: `Import reads a YAML file of the form

  patterns:
    - name: Calm
      inhale: 4
      hold_in: 2
      exhale: 6

and saves every pattern as a new custom method. Ids in the file are
ignored; each pattern gets a fresh one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, err := catalog.LoadFile(e.fs, args[0])
			if err != nil {
				return err
			}

			st, err := e.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			imported, err := catalog.New(st, e.logger).Import(patterns)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			for _, p := range imported {
				fmt.Fprintf(out, "imported %s (%s) as %s\n", p.Name, p.Rhythm(), p.ID)
			}
			return nil
		},
	}
}
