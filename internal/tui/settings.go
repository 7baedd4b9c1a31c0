package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/breathe/internal/catalog"
	"github.com/sadopc/breathe/internal/store"
)

type settingsModel struct {
	store   *store.Store
	catalog *catalog.Catalog
	width   int
	height  int

	settings   []store.Setting
	patterns   []catalog.Pattern
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	defaultPattern *string
	cycles         *string
	dailyGoal      *string
}

func newSettingsModel(s *store.Store, c *catalog.Catalog) settingsModel {
	dp, cy, dg := "", "", ""
	return settingsModel{
		store:          s,
		catalog:        c,
		defaultPattern: &dp,
		cycles:         &cy,
		dailyGoal:      &dg,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	patterns []catalog.Pattern
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		patterns, _ := s.catalog.All()
		return settingsDataMsg{settings: settings, patterns: patterns}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.patterns = msg.patterns
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.defaultPattern = s.getVal("default_pattern", catalog.Builtins[0].ID)
	*s.cycles = s.getVal("cycles", "4")
	*s.dailyGoal = s.getVal("daily_goal_min", "10")

	patterns := s.patterns
	if len(patterns) == 0 {
		patterns = catalog.Builtins
	}
	options := make([]huh.Option[string], len(patterns))
	for i, p := range patterns {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, p.Rhythm()), p.ID)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Default pattern").Options(options...).Value(s.defaultPattern),
			huh.NewInput().Title("Cycles per session").Value(s.cycles).Validate(intBetween(minCycles, maxCycles)),
		).Title("Session"),
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (min)").Value(s.dailyGoal).Validate(intBetween(0, 600)),
		).Title("Goals"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, tea.Sequence(s.save(), s.refresh())
	}

	return s, cmd
}

func (s settingsModel) save() tea.Cmd {
	values := map[string]string{
		"default_pattern": *s.defaultPattern,
		"cycles":          strings.TrimSpace(*s.cycles),
		"daily_goal_min":  strings.TrimSpace(*s.dailyGoal),
	}
	return func() tea.Msg {
		for k, v := range values {
			if err := s.store.SetSetting(k, v); err != nil {
				return errStatus("Save settings: %v", err)
			}
		}
		return settingsSavedMsg{}
	}
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(s.formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (s settingsModel) formatSettingValue(k, v string) string {
	switch k {
	case "default_pattern":
		for _, p := range s.patterns {
			if p.ID == v {
				return p.Name
			}
		}
	case "daily_goal_min":
		if n, err := strconv.Atoi(v); err == nil {
			if n == 0 {
				return "off"
			}
			return fmt.Sprintf("%d min", n)
		}
	}
	return v
}

func intBetween(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < lo || n > hi {
			return fmt.Errorf("enter a number from %d to %d", lo, hi)
		}
		return nil
	}
}
