package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/breathe/internal/catalog"
	"github.com/sadopc/breathe/internal/exercise"
)

// viewState represents the currently active view.
type viewState int

const (
	viewBreathe viewState = iota
	viewPatterns
	viewStats
	viewSettings
)

var viewNames = []string{"Breathe", "Patterns", "Stats", "Settings"}

// --- Messages ---

// snapshotMsg carries one engine snapshot; run ties it to the engine that
// produced it so snapshots from a replaced engine are dropped.
type snapshotMsg struct {
	run  int
	snap exercise.Snapshot
}

type patternSelectedMsg struct {
	pattern catalog.Pattern
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type settingsSavedMsg struct{}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatMinutes(secs int64) string {
	return fmt.Sprintf("%.1fm", float64(secs)/60)
}

func errStatus(format string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf(format, err), isError: true}
}

func secondsOf(n int) time.Duration {
	return time.Duration(n) * time.Second
}
