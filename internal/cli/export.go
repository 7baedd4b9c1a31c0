package cli

import (
	"fmt"
	"time"

	"github.com/sadopc/breathe/internal/catalog"
	"github.com/sadopc/breathe/internal/export"
	"github.com/sadopc/breathe/internal/store"
	"github.com/spf13/cobra"
)

func newExportCmd(e *env) *cobra.Command {
	var (
		format    string
		outPath   string
		patternID string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded sessions as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("unsupported format %q (want csv or json)", format)
			}
			if outPath == "" {
				outPath = fmt.Sprintf("breathe-sessions-%s.%s", time.Now().Format("2006-01-02"), format)
			}

			st, err := e.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			sessions, err := st.ListSessions(store.SessionFilter{PatternID: patternID})
			if err != nil {
				return err
			}

			names := make(map[string]string)
			patterns, err := catalog.New(st, e.logger).All()
			if err != nil {
				return err
			}
			for _, p := range patterns {
				names[p.ID] = p.Name
			}

			if format == "csv" {
				err = export.ToCSV(e.fs, sessions, names, outPath)
			} else {
				err = export.ToJSON(e.fs, sessions, names, outPath)
			}
			if err != nil {
				return err
			}

			e.logger.Info("sessions exported", "path", outPath, "count", len(sessions))
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d sessions to %s\n", len(sessions), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default breathe-sessions-<date>.<format>)")
	cmd.Flags().StringVar(&patternID, "pattern", "", "only sessions of this pattern id")
	return cmd
}
