package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/sadopc/breathe/internal/catalog"
	"github.com/sadopc/breathe/internal/exercise"
	"github.com/sadopc/breathe/internal/session"
	"github.com/sadopc/breathe/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newRunCmd(e *env) *cobra.Command {
	var (
		patternID string
		cycles    int
		quantum   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an exercise without the TUI, printing each phase",
		Long: `Run paces one exercise on the terminal, printing a line whenever a new
phase begins. The session is recorded when it completes, or as abandoned
when interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := e.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if patternID == "" {
				patternID, _ = st.GetSetting("default_pattern")
			}
			if cycles <= 0 {
				cycles = st.GetSettingInt("cycles", 4)
			}
			if quantum <= 0 {
				quantum = e.quantum()
			}

			p, found, err := catalog.New(st, e.logger).Lookup(patternID)
			if err != nil {
				return err
			}
			if !found {
				if cmd.Flags().Changed("pattern") {
					return fmt.Errorf("unknown pattern %q (see 'breathe patterns')", patternID)
				}
				e.logger.Warn("default pattern not found, using fallback", "id", patternID, "fallback", p.ID)
			}
			return e.runExercise(cmd, st, p, cycles, quantum)
		},
	}

	cmd.Flags().StringVarP(&patternID, "pattern", "p", "", "pattern id (default: the default_pattern setting)")
	cmd.Flags().IntVarP(&cycles, "cycles", "c", 0, "number of cycles (default: the cycles setting)")
	cmd.Flags().DurationVar(&quantum, "quantum", 0, "tick quantum, e.g. 100ms (default: tick_ms from config)")
	return cmd
}

func (e *env) runExercise(cmd *cobra.Command, st *store.Store, p catalog.Pattern, cycles int, quantum time.Duration) error {
	def, err := p.Definition(cycles)
	if err != nil {
		return fmt.Errorf("build %s: %w", p.ID, err)
	}

	eng := exercise.New(def,
		exercise.WithQuantum(quantum),
		exercise.WithClock(e.clock),
		exercise.WithLogger(e.logger),
	)
	defer eng.Close()

	tracker := session.NewTracker(st, p.ID, e.logger)
	eng.Subscribe(tracker)

	out := cmd.OutOrStdout()
	printer := newPhasePrinter(out)
	eng.Subscribe(printer)

	fmt.Fprintf(out, "%s (%s) × %d, %s\n", p.Name, p.Rhythm(), cycles, exercise.FormatClock(def.Total()))
	eng.Start()

	select {
	case <-printer.done:
		return nil
	case <-cmd.Context().Done():
		eng.Pause()
		tracker.Abandon()
		fmt.Fprintf(out, "stopped at %s\n", exercise.FormatClock(eng.Elapsed()))
		return nil
	}
}

// phasePrinter writes one line per phase as the exercise enters it.
type phasePrinter struct {
	out   io.Writer
	title cases.Caser
	last  int
	done  chan struct{}
}

func newPhasePrinter(out io.Writer) *phasePrinter {
	return &phasePrinter{
		out:   out,
		title: cases.Title(language.English),
		last:  -1,
		done:  make(chan struct{}),
	}
}

func (p *phasePrinter) Observe(s exercise.Snapshot) {
	if s.Running && s.PhaseIndex != p.last {
		p.last = s.PhaseIndex
		start := s.PhaseEnd - s.Phase.Duration
		fmt.Fprintf(p.out, "  %s  %-7s %s\n", exercise.FormatClock(start), p.title.String(s.Phase.Name), s.Phase.Duration)
	}
	if s.Finished {
		fmt.Fprintf(p.out, "done in %s\n", exercise.FormatClock(s.Elapsed))
		close(p.done)
	}
}
