package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/breathe/internal/store"
	"github.com/spf13/afero"
)

func ToCSV(fs afero.Fs, sessions []store.Session, patterns map[string]string, path string) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Pattern", "Started", "Duration (s)", "Duration", "Completed"}); err != nil {
		return err
	}

	for _, s := range sessions {
		row := []string{
			strconv.FormatInt(s.ID, 10),
			patternName(patterns, s.PatternID),
			s.StartedAt.Local().Format(time.RFC3339),
			strconv.FormatInt(s.Duration, 10),
			formatDuration(s.Duration),
			strconv.FormatBool(s.Completed),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func patternName(patterns map[string]string, id string) string {
	if name, ok := patterns[id]; ok {
		return name
	}
	return id
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
