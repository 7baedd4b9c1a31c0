package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/breathe/internal/catalog"
)


type patternsModel struct {
	catalog *catalog.Catalog
	width   int
	height  int

	patterns  []catalog.Pattern
	cursor    int
	currentID string

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTitle   *string
	formDesc    *string
	formInhale  *string
	formHoldIn  *string
	formExhale  *string
	formHoldOut *string
	formIcon    *string
	formColor   *string
}

func newPatternsModel(c *catalog.Catalog) patternsModel {
	var title, desc, in, hin, ex, hout, icon, color string
	return patternsModel{
		catalog:     c,
		currentID:   catalog.Builtins[0].ID,
		formTitle:   &title,
		formDesc:    &desc,
		formInhale:  &in,
		formHoldIn:  &hin,
		formExhale:  &ex,
		formHoldOut: &hout,
		formIcon:    &icon,
		formColor:   &color,
	}
}

func (p *patternsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type patternsDataMsg struct {
	patterns []catalog.Pattern
	err      error
}

func (p patternsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		patterns, err := p.catalog.All()
		return patternsDataMsg{patterns: patterns, err: err}
	}
}

func (p patternsModel) update(msg tea.Msg) (patternsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case patternsDataMsg:
		if msg.err != nil {
			return p, func() tea.Msg { return errStatus("Load patterns: %v", msg.err) }
		}
		p.patterns = msg.patterns
		if p.cursor >= len(p.patterns) {
			p.cursor = max(0, len(p.patterns)-1)
		}
		return p, nil

	case patternSelectedMsg:
		p.currentID = msg.pattern.ID
		return p, nil

	case tea.KeyMsg:
		return p.updateList(msg)
	}
	return p, nil
}

func (p patternsModel) updateList(msg tea.KeyMsg) (patternsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.patterns)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.patterns) > 0 {
			pat := p.patterns[p.cursor]
			p.currentID = pat.ID
			return p, func() tea.Msg { return patternSelectedMsg{pattern: pat} }
		}
	case key.Matches(msg, keys.New):
		return p.showNewPatternForm()
	case key.Matches(msg, keys.Delete):
		if len(p.patterns) > 0 {
			return p, p.remove(p.patterns[p.cursor])
		}
	}
	return p, nil
}

func (p patternsModel) remove(pat catalog.Pattern) tea.Cmd {
	return tea.Sequence(
		func() tea.Msg {
			if err := p.catalog.Remove(pat.ID); err != nil {
				if errors.Is(err, catalog.ErrInvalidMethod) {
					return statusMsg{text: "Built-in patterns cannot be deleted", isError: true}
				}
				return errStatus("Delete error: %v", err)
			}
			return statusMsg{text: "Deleted " + pat.Name}
		},
		p.refresh(),
	)
}

func (p patternsModel) showNewPatternForm() (patternsModel, tea.Cmd) {
	*p.formTitle = ""
	*p.formDesc = ""
	*p.formInhale = "4"
	*p.formHoldIn = "0"
	*p.formExhale = "4"
	*p.formHoldOut = "0"
	*p.formIcon = catalog.Icons[0]
	*p.formColor = catalog.Colors[0]

	iconOptions := make([]huh.Option[string], len(catalog.Icons))
	for i, ic := range catalog.Icons {
		iconOptions[i] = huh.NewOption(ic, ic)
	}
	colorOptions := make([]huh.Option[string], len(catalog.Colors))
	for i, c := range catalog.Colors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(p.formTitle).Validate(requireText),
			huh.NewInput().Title("Description").Value(p.formDesc),
		),
		huh.NewGroup(
			huh.NewInput().Title("Inhale (s)").Value(p.formInhale).Validate(positiveSeconds),
			huh.NewInput().Title("Hold after inhale (s)").Value(p.formHoldIn).Validate(seconds),
			huh.NewInput().Title("Exhale (s)").Value(p.formExhale).Validate(positiveSeconds),
			huh.NewInput().Title("Hold after exhale (s)").Value(p.formHoldOut).Validate(seconds),
		).Title("Rhythm"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Icon").Options(iconOptions...).Value(p.formIcon),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p patternsModel) updateForm(msg tea.Msg) (patternsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		return p, tea.Sequence(p.create(p.formPattern()), p.refresh())
	}

	return p, cmd
}

func (p patternsModel) formPattern() catalog.Pattern {
	sec := func(s *string) int {
		n, _ := strconv.Atoi(strings.TrimSpace(*s))
		return n
	}
	return catalog.Pattern{
		Name:        *p.formTitle,
		Description: strings.TrimSpace(*p.formDesc),
		Inhale:      secondsOf(sec(p.formInhale)),
		HoldIn:      secondsOf(sec(p.formHoldIn)),
		Exhale:      secondsOf(sec(p.formExhale)),
		HoldOut:     secondsOf(sec(p.formHoldOut)),
		Icon:        *p.formIcon,
		Color:       *p.formColor,
	}
}

func (p patternsModel) create(pat catalog.Pattern) tea.Cmd {
	return func() tea.Msg {
		created, err := p.catalog.Add(pat)
		if err != nil {
			return errStatus("Create error: %v", err)
		}
		return statusMsg{text: "Created " + created.Name}
	}
}

func (p patternsModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Pattern")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Patterns")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-10s %-8s %s", "", "Name", "Rhythm", "Cycle", "Description"))
	rows = append(rows, header)

	for i, pat := range p.patterns {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(pat.Color)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := style.Render(fmt.Sprintf("%s%s %-24s %-10s %-8s", cursor, dot, pat.Name, pat.Rhythm(), cycleLabel(pat)))
		desc := mutedStyle.Render(pat.Description)
		if pat.ID == p.currentID {
			desc = highlightStyle.Render("current")
		}
		rows = append(rows, row+" "+desc)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  n: new  d: delete custom"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func cycleLabel(p catalog.Pattern) string {
	return fmt.Sprintf("%ds", int(p.CycleDuration().Seconds()))
}

// --- Form validation ---

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func seconds(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a whole number of seconds")
	}
	if n < 0 || n > catalog.MaxPhaseSeconds {
		return fmt.Errorf("must be between 0 and %d", catalog.MaxPhaseSeconds)
	}
	return nil
}

func positiveSeconds(s string) error {
	if err := seconds(s); err != nil {
		return err
	}
	if n, _ := strconv.Atoi(strings.TrimSpace(s)); n == 0 {
		return errors.New("must be at least 1")
	}
	return nil
}
