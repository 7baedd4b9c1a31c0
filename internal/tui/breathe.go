package tui

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/breathe/internal/catalog"
	"github.com/sadopc/breathe/internal/exercise"
	"github.com/sadopc/breathe/internal/session"
	"github.com/sadopc/breathe/internal/store"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minCycles = 1
	maxCycles = 99

	guideMinRows = 3
	guideMaxRows = 9
)

var titleCaser = cases.Title(language.English)

// breathRun is one engine bound to the pattern and cycle count that built
// it, plus the tracker that records it.
type breathRun struct {
	id      int
	engine  *exercise.Engine
	tracker *session.Tracker
	ch      <-chan exercise.Snapshot
	cancel  func()
	done    chan struct{}
	once    sync.Once
}

// close records an unfinished run as abandoned and releases the engine.
func (r *breathRun) close() {
	r.once.Do(func() {
		r.tracker.Abandon()
		r.cancel()
		r.engine.Close()
		close(r.done)
	})
}

type breatheModel struct {
	store   *store.Store
	logger  *slog.Logger
	clock   exercise.Clock
	quantum time.Duration
	width   int
	height  int

	pattern catalog.Pattern
	cycles  int

	run    *breathRun
	runSeq int
	snap   exercise.Snapshot
	err    error

	bar progress.Model
}

func newBreatheModel(s *store.Store, logger *slog.Logger, clock exercise.Clock, quantum time.Duration) breatheModel {
	return breatheModel{
		store:   s,
		logger:  logger,
		clock:   clock,
		quantum: quantum,
		pattern: catalog.Builtins[0],
		cycles:  s.GetSettingInt("cycles", 4),
		bar: progress.New(
			progress.WithGradient(string(colorSecondary), string(colorHighlight)),
			progress.WithoutPercentage(),
		),
	}
}

func (b *breatheModel) setSize(w, h int) {
	b.width = w
	b.height = h
	b.bar.Width = max(10, w-16)
}

// load replaces the current run with a fresh, idle one for b.pattern.
func (b breatheModel) load() (breatheModel, tea.Cmd) {
	if b.run != nil {
		b.run.close()
		b.run = nil
	}

	def, err := b.pattern.Definition(b.cycles)
	b.err = err
	if err != nil {
		b.snap = exercise.Snapshot{}
		return b, func() tea.Msg { return errStatus("Pattern error: %v", err) }
	}

	b.runSeq++
	eng := exercise.New(def,
		exercise.WithQuantum(b.quantum),
		exercise.WithClock(b.clock),
		exercise.WithLogger(b.logger),
	)
	tr := session.NewTracker(b.store, b.pattern.ID, b.logger)
	eng.Subscribe(tr)
	ch, cancel := eng.Channel(8)

	b.run = &breathRun{
		id:      b.runSeq,
		engine:  eng,
		tracker: tr,
		ch:      ch,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	b.snap = eng.Snapshot()
	return b, b.waitSnapshot()
}

// waitSnapshot blocks on the run's channel until the next snapshot arrives
// or the run is closed.
func (b breatheModel) waitSnapshot() tea.Cmd {
	r := b.run
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case s := <-r.ch:
			return snapshotMsg{run: r.id, snap: s}
		case <-r.done:
			return nil
		}
	}
}

func (b breatheModel) active() bool {
	return b.snap.State == exercise.Running || b.snap.State == exercise.Paused
}

func (b breatheModel) update(msg tea.Msg) (breatheModel, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if b.run == nil || msg.run != b.run.id {
			return b, nil
		}
		wasFinished := b.snap.Finished
		b.snap = msg.snap
		if b.snap.Finished && !wasFinished {
			name := b.pattern.Name
			return b, tea.Batch(b.waitSnapshot(), func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("%s complete! \a", name)}
			})
		}
		return b, b.waitSnapshot()

	case patternSelectedMsg:
		b.pattern = msg.pattern
		return b.load()

	case tea.KeyMsg:
		if b.run == nil {
			return b, nil
		}
		eng := b.run.engine
		switch {
		case key.Matches(msg, keys.Start):
			if eng.Finished() {
				eng.Reset()
			}
			eng.Start()
		case key.Matches(msg, keys.Pause):
			if eng.Finished() {
				return b, nil
			}
			eng.Toggle()
		case key.Matches(msg, keys.Reset):
			eng.Reset()
		case key.Matches(msg, keys.More):
			return b.setCycles(b.cycles + 1)
		case key.Matches(msg, keys.Less):
			return b.setCycles(b.cycles - 1)
		}
	}
	return b, nil
}

// setCycles changes the cycle count. It only applies between runs.
func (b breatheModel) setCycles(n int) (breatheModel, tea.Cmd) {
	if b.active() || n < minCycles || n > maxCycles || n == b.cycles {
		return b, nil
	}
	b.cycles = n
	return b.load()
}

// applySettings picks up a changed cycle count between runs.
func (b breatheModel) applySettings() (breatheModel, tea.Cmd) {
	n := b.store.GetSettingInt("cycles", b.cycles)
	if b.active() || n == b.cycles || n < minCycles || n > maxCycles {
		return b, nil
	}
	b.cycles = n
	return b.load()
}

func (b breatheModel) close() {
	if b.run != nil {
		b.run.close()
	}
}

func (b breatheModel) view() string {
	w := b.width - 4

	title := titleStyle.Render(b.pattern.Name)
	rhythm := mutedStyle.Render(fmt.Sprintf("%s  •  %d cycles  •  %s", b.pattern.Rhythm(), b.cycles, b.pattern.Description))

	if b.err != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center,
			title, rhythm, "", errorStyle.Render(b.err.Error()),
		))
	}
	if b.run == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center,
			title, "", mutedStyle.Render("Loading..."),
		))
	}

	s := b.snap
	def := b.run.engine.Definition()
	color := b.phaseColor(s.Phase.Name)

	var label, clock, controls string
	switch s.State {
	case exercise.Idle:
		label = mutedStyle.Render("Ready")
		clock = clockStyle.Width(w - 6).Render(exercise.FormatClock(s.Total))
		controls = mutedStyle.Render("s: start  +/-: cycles  2: patterns")
	case exercise.Running:
		label = lipgloss.NewStyle().Bold(true).Foreground(color).Render(titleCaser.String(s.Phase.Name))
		clock = clockStyle.Width(w - 6).Render(exercise.FormatClock(s.RemainingInPhase))
		controls = mutedStyle.Render("space: pause  r: reset")
	case exercise.Paused:
		label = warningStyle.Bold(true).Render("Paused")
		clock = clockPausedStyle.Width(w - 6).Render(exercise.FormatClock(s.RemainingInPhase))
		controls = mutedStyle.Render("space: resume  r: reset")
	case exercise.Finished:
		label = successStyle.Bold(true).Render("Well done")
		clock = clockStyle.Width(w - 6).Render(exercise.FormatClock(0))
		controls = mutedStyle.Render("s: again  2: patterns")
	}

	guide := renderGuide(guideScale(s, def), color, w)

	remaining := mutedStyle.Render(fmt.Sprintf("phase %d/%d  •  %s left",
		s.PhaseIndex+1, def.Len(), exercise.FormatClock(s.Remaining())))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center,
		title,
		rhythm,
		"",
		guide,
		label,
		clock,
		"",
		b.bar.ViewAs(s.Progress/100),
		remaining,
		"",
		controls,
	))
}

func (b breatheModel) phaseColor(name string) lipgloss.Color {
	if c, ok := phaseColors[name]; ok {
		return c
	}
	if b.pattern.Color != "" {
		return lipgloss.Color(b.pattern.Color)
	}
	return colorPrimary
}

// guideScale is how far the breath guide is expanded, from 0 (empty lungs)
// to 1 (full). Holds keep the size the previous phase ended on.
func guideScale(s exercise.Snapshot, def *exercise.Definition) float64 {
	if s.State == exercise.Idle || s.Finished || s.Phase.Duration <= 0 {
		return 0
	}
	done := 1 - float64(s.RemainingInPhase)/float64(s.Phase.Duration)
	switch s.Phase.Name {
	case exercise.Inhale:
		return done
	case exercise.Exhale:
		return 1 - done
	}
	if s.PhaseIndex > 0 && def.Phase(s.PhaseIndex-1).Name == exercise.Inhale {
		return 1
	}
	return 0
}

func renderGuide(scale float64, color lipgloss.Color, maxWidth int) string {
	scale = min(max(scale, 0), 1)
	rows := guideMinRows + int(scale*float64(guideMaxRows-guideMinRows)+0.5)
	width := min(rows*4, max(maxWidth-8, guideMinRows*4))
	return guideStyle.
		BorderForeground(color).
		Width(width).
		Height(rows).
		Render(lipgloss.NewStyle().Foreground(color).Render("●"))
}
