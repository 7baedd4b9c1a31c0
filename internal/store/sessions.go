package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RecordSession persists one run of pattern patternID.
func (s *Store) RecordSession(patternID string, startedAt time.Time, d time.Duration, completed bool) (*Session, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO sessions (pattern_id, started_at, duration, completed, created_at) VALUES (?, ?, ?, ?, ?)`,
		patternID, startedAt.UTC().Format(time.RFC3339), int64(d.Seconds()), boolToInt(completed), now,
	)
	if err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(id)
}

func (s *Store) GetSession(id int64) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, pattern_id, started_at, duration, completed, created_at FROM sessions WHERE id = ?`, id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return sess, nil
}

func (s *Store) DeleteSession(id int64) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete session %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) ListSessions(f SessionFilter) ([]Session, error) {
	query := `SELECT id, pattern_id, started_at, duration, completed, created_at FROM sessions WHERE 1=1`
	var args []any

	if f.PatternID != "" {
		query += ` AND pattern_id = ?`
		args = append(args, f.PatternID)
	}
	if f.From != nil {
		query += ` AND started_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND started_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}

	query += ` ORDER BY started_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// GetDailySummary aggregates practice time per calendar day in [from, to).
// Days are taken in from's location and returned in date order.
func (s *Store) GetDailySummary(from, to time.Time) ([]DailySummary, error) {
	rows, err := s.db.Query(`
		SELECT started_at, duration
		FROM sessions
		WHERE started_at >= ? AND started_at < ?
		ORDER BY started_at`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	defer rows.Close()

	loc := from.Location()
	var summaries []DailySummary
	for rows.Next() {
		var started string
		var secs int64
		if err := rows.Scan(&started, &secs); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, started)
		if err != nil {
			continue
		}
		day := t.In(loc).Format("2006-01-02")
		if n := len(summaries); n > 0 && summaries[n-1].Date == day {
			summaries[n-1].TotalSeconds += secs
			summaries[n-1].SessionCount++
			continue
		}
		summaries = append(summaries, DailySummary{Date: day, TotalSeconds: secs, SessionCount: 1})
	}
	return summaries, rows.Err()
}

// GetStats returns totals over all sessions and the practice streak ending
// on now's day (or the day before, if nothing was recorded yet today).
// Days are calendar days in now's location.
func (s *Store) GetStats(now time.Time) (Stats, error) {
	var st Stats
	var totalSecs int64
	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(duration), 0) FROM sessions`).Scan(&st.TotalSessions, &totalSecs)
	if err != nil {
		return st, fmt.Errorf("session totals: %w", err)
	}
	st.TotalMinutes = totalSecs / 60

	rows, err := s.db.Query(`SELECT started_at FROM sessions`)
	if err != nil {
		return st, fmt.Errorf("session days: %w", err)
	}
	defer rows.Close()

	loc := now.Location()
	days := make(map[string]bool)
	for rows.Next() {
		var started string
		if err := rows.Scan(&started); err != nil {
			return st, err
		}
		t, err := time.Parse(time.RFC3339, started)
		if err != nil {
			continue
		}
		days[t.In(loc).Format("2006-01-02")] = true
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	day, _ := DayBounds(now)
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}
	for days[day.Format("2006-01-02")] {
		st.Streak++
		day = day.AddDate(0, 0, -1)
	}
	return st, nil
}

// GetTodaySeconds returns the practice time recorded on now's calendar
// day, in now's location.
func (s *Store) GetTodaySeconds(now time.Time) (int64, error) {
	from, to := DayBounds(now)
	var total int64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(duration), 0)
		FROM sessions
		WHERE started_at >= ? AND started_at < ?`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("today total: %w", err)
	}
	return total, nil
}

// DayBounds returns the start of t's calendar day and of the next one, in
// t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*Session, error) {
	sess := &Session{}
	var startedAt, createdAt string
	var completed int
	if err := r.Scan(&sess.ID, &sess.PatternID, &startedAt, &sess.Duration, &completed, &createdAt); err != nil {
		return nil, err
	}
	sess.Completed = completed == 1
	sess.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return sess, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
