package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sadopc/breathe/internal/store"
	"github.com/spf13/afero"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	PatternID   string `json:"pattern_id"`
	Pattern     string `json:"pattern"`
	DurationSec int64  `json:"duration"`
	Duration    string `json:"duration_display"`
	Completed   bool   `json:"completed"`
}

func ToJSON(fs afero.Fs, sessions []store.Session, patterns map[string]string, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, s := range sessions {
		export.Sessions = append(export.Sessions, jsonSession{
			ID:          s.ID,
			Date:        s.StartedAt.UTC().Format(time.RFC3339),
			PatternID:   s.PatternID,
			Pattern:     patternName(patterns, s.PatternID),
			DurationSec: s.Duration,
			Duration:    formatDuration(s.Duration),
			Completed:   s.Completed,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
