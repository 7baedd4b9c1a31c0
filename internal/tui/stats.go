package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/breathe/internal/store"
)

const statsDays = 7

type statsModel struct {
	store  *store.Store
	width  int
	height int
	now    func() time.Time

	stats     store.Stats
	today     int64
	goalMin   int
	summaries []store.DailySummary
	offset    int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newStatsModel(s *store.Store) statsModel {
	return statsModel{
		store: s,
		now:   time.Now,
		chart: barchart.New(60, 12),
	}
}

func (r *statsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type statsDataMsg struct {
	stats     store.Stats
	today     int64
	goalMin   int
	summaries []store.DailySummary
	err       error
}

func (r statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		now := r.now()
		stats, err := r.store.GetStats(now)
		if err != nil {
			return statsDataMsg{err: err}
		}
		today, _ := r.store.GetTodaySeconds(now)
		from, to := r.dateRange()
		summaries, err := r.store.GetDailySummary(from, to)
		return statsDataMsg{
			stats:     stats,
			today:     today,
			goalMin:   r.store.GetSettingInt("daily_goal_min", 10),
			summaries: summaries,
			err:       err,
		}
	}
}

// dateRange is the 7-day window shown by the chart, in local days.
func (r statsModel) dateRange() (time.Time, time.Time) {
	_, tomorrow := store.DayBounds(r.now())
	end := tomorrow.AddDate(0, 0, -statsDays*r.offset)
	return end.AddDate(0, 0, -statsDays), end
}

func (r statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		if msg.err != nil {
			return r, func() tea.Msg { return errStatus("Stats error: %v", msg.err) }
		}
		r.stats = msg.stats
		r.today = msg.today
		r.goalMin = msg.goalMin
		r.summaries = msg.summaries
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *statsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 10
	if r.height > 30 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	byDate := make(map[string]store.DailySummary, len(r.summaries))
	for _, s := range r.summaries {
		byDate[s.Date] = s
	}

	from, to := r.dateRange()
	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		minutes := float64(byDate[d.Format("2006-01-02")].TotalSeconds) / 60
		style := lipgloss.NewStyle().Foreground(colorSecondary)
		if r.goalMin > 0 && minutes >= float64(r.goalMin) {
			style = lipgloss.NewStyle().Foreground(colorSuccess)
		}
		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: []barchart.BarValue{{Name: "minutes", Value: minutes, Style: style}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r statsModel) view() string {
	w := r.width - 4

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s – %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Stats"), "  ", dateLabel)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "",
			r.renderTotals(), "",
			r.chart.View(), "",
			r.renderDayTable(w), "",
			mutedStyle.Render("  ←/→: navigate weeks"),
		),
	)
}

func (r statsModel) renderTotals() string {
	goal := mutedStyle.Render("no daily goal")
	if r.goalMin > 0 {
		style := warningStyle
		if r.today >= int64(r.goalMin)*60 {
			style = successStyle
		}
		goal = style.Render(fmt.Sprintf("%s / %dm today", formatMinutes(r.today), r.goalMin))
	}

	streak := fmt.Sprintf("%d day", r.stats.Streak)
	if r.stats.Streak != 1 {
		streak += "s"
	}

	cell := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(label), highlightStyle.Bold(true).Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Sessions", fmt.Sprint(r.stats.TotalSessions)), "    ",
		cell("Minutes", fmt.Sprint(r.stats.TotalMinutes)), "    ",
		cell("Streak", streak), "    ",
		cell("Goal", goal),
	)
}

func (r statsModel) renderDayTable(w int) string {
	if len(r.summaries) == 0 {
		return mutedStyle.Render("  No sessions in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %9s", "Date", "Duration", "Sessions")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 33))))
	for _, s := range r.summaries {
		rows = append(rows, fmt.Sprintf("  %-12s %10s %9d", s.Date, formatSeconds(s.TotalSeconds), s.SessionCount))
	}
	return strings.Join(rows, "\n")
}
