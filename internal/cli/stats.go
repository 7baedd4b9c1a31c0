package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type statsOutput struct {
	TotalSessions int   `json:"total_sessions"`
	TotalMinutes  int64 `json:"total_minutes"`
	Streak        int   `json:"streak"`
	TodaySeconds  int64 `json:"today_seconds"`
	DailyGoalMin  int   `json:"daily_goal_min"`
}

func newStatsCmd(e *env) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show practice totals and the current streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := e.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			now := time.Now()
			stats, err := st.GetStats(now)
			if err != nil {
				return err
			}
			today, err := st.GetTodaySeconds(now)
			if err != nil {
				return err
			}

			output := statsOutput{
				TotalSessions: stats.TotalSessions,
				TotalMinutes:  stats.TotalMinutes,
				Streak:        stats.Streak,
				TodaySeconds:  today,
				DailyGoalMin:  st.GetSettingInt("daily_goal_min", 10),
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				b, err := json.Marshal(output)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}

			fmt.Fprintf(out, "sessions:  %d\n", output.TotalSessions)
			fmt.Fprintf(out, "minutes:   %d\n", output.TotalMinutes)
			fmt.Fprintf(out, "streak:    %d days\n", output.Streak)
			if output.DailyGoalMin > 0 {
				fmt.Fprintf(out, "today:     %dm of %dm\n", output.TodaySeconds/60, output.DailyGoalMin)
			} else {
				fmt.Fprintf(out, "today:     %dm\n", output.TodaySeconds/60)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print as JSON")
	return cmd
}
