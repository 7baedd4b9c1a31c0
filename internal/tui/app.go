package tui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/breathe/internal/catalog"
	"github.com/sadopc/breathe/internal/exercise"
	"github.com/sadopc/breathe/internal/export"
	"github.com/sadopc/breathe/internal/store"
	"github.com/spf13/afero"
)

// Options wires the app to its collaborators. Store is required; the rest
// have defaults.
type Options struct {
	Store     *store.Store
	Catalog   *catalog.Catalog
	Fs        afero.Fs
	Logger    *slog.Logger
	Clock     exercise.Clock
	Quantum   time.Duration
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	catalog   *catalog.Catalog
	fs        afero.Fs
	logger    *slog.Logger
	exportDir string
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	breathe  breatheModel
	patterns patternsModel
	stats    statsModel
	settings settingsModel

	help   help.Model
	status string
	isErr  bool
}

func NewApp(o Options) App {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Catalog == nil {
		o.Catalog = catalog.New(o.Store, o.Logger)
	}
	if o.Quantum <= 0 {
		o.Quantum = exercise.DefaultQuantum
	}
	if o.ExportDir == "" {
		o.ExportDir, _ = os.UserHomeDir()
	}

	h := help.New()
	h.ShowAll = false

	return App{
		store:      o.Store,
		catalog:    o.Catalog,
		fs:         o.Fs,
		logger:     o.Logger,
		exportDir:  o.ExportDir,
		activeView: viewBreathe,
		breathe:    newBreatheModel(o.Store, o.Logger, o.Clock, o.Quantum),
		patterns:   newPatternsModel(o.Catalog),
		stats:      newStatsModel(o.Store),
		settings:   newSettingsModel(o.Store, o.Catalog),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.loadDefaultPattern(),
		a.patterns.refresh(),
		a.stats.refresh(),
		a.settings.refresh(),
	)
}

// Close releases the running exercise, recording it as abandoned if it was
// still in progress. It is safe to call more than once.
func (a App) Close() {
	a.breathe.close()
}

func (a App) loadDefaultPattern() tea.Cmd {
	return func() tea.Msg {
		id, _ := a.store.GetSetting("default_pattern")
		p, found, err := a.catalog.Lookup(id)
		if err != nil {
			a.logger.Warn("load custom methods", "error", err)
		} else if !found {
			a.logger.Info("default pattern not found, using fallback", "id", id, "fallback", p.ID)
		}
		return patternSelectedMsg{pattern: p}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.breathe.setSize(a.width, contentHeight)
		a.patterns.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.breathe.close()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewBreathe
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewPatterns
			return a, a.patterns.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewStats
			return a, a.stats.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case snapshotMsg:
		wasFinished := a.breathe.snap.Finished
		var cmd tea.Cmd
		a.breathe, cmd = a.breathe.update(msg)
		cmds = append(cmds, cmd)
		if a.breathe.snap.Finished && !wasFinished {
			cmds = append(cmds, a.stats.refresh())
		}
		return a, tea.Batch(cmds...)

	case patternSelectedMsg:
		var cmd tea.Cmd
		a.patterns, _ = a.patterns.update(msg)
		a.breathe, cmd = a.breathe.update(msg)
		a.activeView = viewBreathe
		return a, cmd

	case patternsDataMsg:
		var cmd tea.Cmd
		a.patterns, cmd = a.patterns.update(msg)
		return a, cmd

	case statsDataMsg:
		var cmd tea.Cmd
		a.stats, cmd = a.stats.update(msg)
		return a, cmd

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case settingsSavedMsg:
		a.status = "Settings saved"
		a.isErr = false
		var cmd tea.Cmd
		a.breathe, cmd = a.breathe.applySettings()
		return a, tea.Batch(cmd, a.stats.refresh())

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewBreathe:
		a.breathe, cmd = a.breathe.update(msg)
	case viewPatterns:
		a.patterns, cmd = a.patterns.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewPatterns:
		return a.patterns.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewPatterns:
		return a.patterns.refresh()
	case viewStats:
		return a.stats.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewBreathe:
		content = a.breathe.view()
	case viewPatterns:
		content = a.patterns.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("breathe")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Exercise indicator in footer
	exerciseInfo := ""
	switch s := a.breathe.snap; s.State {
	case exercise.Running:
		exerciseInfo = successStyle.Render(fmt.Sprintf(" ● %s %s", s.Phase.Name, exercise.FormatClock(s.RemainingInPhase)))
	case exercise.Paused:
		exerciseInfo = warningStyle.Render(" ⏸ " + exercise.FormatClock(s.Remaining()))
	}

	left := footerStyle.Render(helpView)
	right := exerciseInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Sessions")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		sessions, err := a.store.ListSessions(store.SessionFilter{})
		if err != nil {
			return errStatus("Export error: %v", err)
		}

		names := make(map[string]string)
		patterns, _ := a.catalog.All()
		for _, p := range patterns {
			names[p.ID] = p.Name
		}

		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(a.exportDir, fmt.Sprintf("breathe-sessions-%s.csv", dateStr))
			if err := export.ToCSV(a.fs, sessions, names, path); err != nil {
				return errStatus("CSV error: %v", err)
			}
		} else {
			path = filepath.Join(a.exportDir, fmt.Sprintf("breathe-sessions-%s.json", dateStr))
			if err := export.ToJSON(a.fs, sessions, names, path); err != nil {
				return errStatus("JSON error: %v", err)
			}
		}

		a.logger.Info("sessions exported", "path", path, "count", len(sessions))
		return exportDoneMsg{path: path}
	}
}
