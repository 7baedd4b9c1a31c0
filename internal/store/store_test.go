package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err, "new memory store")
	t.Cleanup(func() { s.Close() })
	return s
}

// insertSession is a test helper that inserts a session started at a given time.
func insertSession(t *testing.T, s *Store, patternID string, startedAt time.Time, durationSecs int) int64 {
	t.Helper()
	res, err := s.db.Exec(
		`INSERT INTO sessions (pattern_id, started_at, duration, completed) VALUES (?, ?, ?, 1)`,
		patternID, startedAt.UTC().Format(time.RFC3339), durationSecs,
	)
	require.NoError(t, err, "insert session")
	id, _ := res.LastInsertId()
	return id
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	require.NoError(t, err)
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	assert.Equal(t, 1, version)
}

func TestNewWithPath(t *testing.T) {
	path := t.TempDir() + "/sub/breathe.db"

	s, err := New(path)
	require.NoError(t, err)
	_, err = s.RecordSession("box", time.Now(), time.Minute, true)
	require.NoError(t, err)
	s.Close()

	// Reopen: data survives and migration is not re-run
	s2, err := New(path)
	require.NoError(t, err)
	defer s2.Close()
	sessions, err := s2.ListSessions(SessionFilter{})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)
	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	assert.Equal(t, 1, fk)
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.migrate(), "second migration")
}

// ============================================================
// Sessions
// ============================================================

func TestRecordAndGetSession(t *testing.T) {
	s := newTestStore(t)
	started := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

	sess, err := s.RecordSession("relax", started, 90*time.Second+400*time.Millisecond, true)
	require.NoError(t, err)
	assert.NotZero(t, sess.ID)
	assert.Equal(t, "relax", sess.PatternID)
	assert.Equal(t, int64(90), sess.Duration)
	assert.True(t, sess.Completed)
	assert.True(t, sess.StartedAt.Equal(started), "started_at = %v", sess.StartedAt)
	assert.False(t, sess.CreatedAt.IsZero(), "CreatedAt should be set")
}

func TestRecordAbandonedSession(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.RecordSession("box", time.Now(), 5*time.Second, false)
	require.NoError(t, err)
	assert.False(t, sess.Completed)
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSession(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSession(t *testing.T) {
	s := newTestStore(t)
	id := insertSession(t, s, "box", time.Now(), 60)

	require.NoError(t, s.DeleteSession(id))
	assert.ErrorIs(t, s.DeleteSession(id), ErrNotFound)
}

func TestListSessionsFilters(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	insertSession(t, s, "box", base.Add(-48*time.Hour), 60)
	insertSession(t, s, "relax", base.Add(-24*time.Hour), 120)
	insertSession(t, s, "box", base, 180)

	all, err := s.ListSessions(SessionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first
	assert.Equal(t, int64(180), all[0].Duration)
	assert.Equal(t, int64(60), all[2].Duration)

	box, _ := s.ListSessions(SessionFilter{PatternID: "box"})
	assert.Len(t, box, 2)

	from := base.Add(-30 * time.Hour)
	to := base.Add(-time.Hour)
	ranged, _ := s.ListSessions(SessionFilter{From: &from, To: &to})
	require.Len(t, ranged, 1)
	assert.Equal(t, "relax", ranged[0].PatternID)

	limited, _ := s.ListSessions(SessionFilter{Limit: 2})
	assert.Len(t, limited, 2)
}

func TestGetDailySummary(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	insertSession(t, s, "box", day.Add(8*time.Hour), 60)
	insertSession(t, s, "relax", day.Add(20*time.Hour), 120)
	insertSession(t, s, "box", day.Add(32*time.Hour), 300)

	summaries, err := s.GetDailySummary(day, day.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, []DailySummary{
		{Date: "2026-03-10", TotalSeconds: 180, SessionCount: 2},
		{Date: "2026-03-11", TotalSeconds: 300, SessionCount: 1},
	}, summaries)
}

func TestGetTodaySeconds(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	insertSession(t, s, "box", now.Add(-time.Hour), 240)
	insertSession(t, s, "box", now.Add(-26*time.Hour), 999)

	total, err := s.GetTodaySeconds(now)
	require.NoError(t, err)
	assert.Equal(t, int64(240), total)
}

func TestDaysFollowLocalZone(t *testing.T) {
	s := newTestStore(t)
	pst := time.FixedZone("PST", -8*60*60)
	// 23:30 local on the 10th is already the 11th in UTC.
	insertSession(t, s, "box", time.Date(2026, 3, 10, 23, 30, 0, 0, pst), 600)
	now := time.Date(2026, 3, 11, 8, 0, 0, 0, pst)

	today, err := s.GetTodaySeconds(now)
	require.NoError(t, err)
	assert.Zero(t, today, "yesterday evening counted as today")
	st, err := s.GetStats(now)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Streak)

	insertSession(t, s, "relax", now.Add(-time.Hour), 300)
	today, _ = s.GetTodaySeconds(now)
	assert.Equal(t, int64(300), today)
	st, _ = s.GetStats(now)
	assert.Equal(t, 2, st.Streak)

	from, _ := DayBounds(now.AddDate(0, 0, -1))
	_, to := DayBounds(now)
	summaries, err := s.GetDailySummary(from, to)
	require.NoError(t, err)
	assert.Equal(t, []DailySummary{
		{Date: "2026-03-10", TotalSeconds: 600, SessionCount: 1},
		{Date: "2026-03-11", TotalSeconds: 300, SessionCount: 1},
	}, summaries)
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("X", 5*60*60)
	from, to := DayBounds(time.Date(2026, 3, 10, 0, 0, 0, 0, loc))
	assert.True(t, from.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, loc)), "from = %v", from)
	assert.True(t, to.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, loc)), "to = %v", to)

	from, _ = DayBounds(time.Date(2026, 3, 10, 23, 59, 59, 0, loc))
	assert.Equal(t, 10, from.Day())
	assert.Equal(t, loc, from.Location())
}

// ============================================================
// Stats
// ============================================================

func TestGetStatsEmpty(t *testing.T) {
	s := newTestStore(t)
	st, err := s.GetStats(time.Now())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)
}

func TestGetStatsTotals(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	insertSession(t, s, "box", now, 150)
	insertSession(t, s, "box", now, 100)

	st, err := s.GetStats(now)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalSessions)
	assert.Equal(t, int64(4), st.TotalMinutes, "250s floored")
}

func TestStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		days []int // days before now with a session
		want int
	}{
		{"including today", []int{0, 1, 2, 4}, 3},
		{"starts yesterday when today is empty", []int{1, 2}, 2},
		{"broken", []int{2}, 0},
		{"several sessions on one day", []int{0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			for i, d := range tt.days {
				insertSession(t, s, "box", now.AddDate(0, 0, -d).Add(-time.Duration(i)*time.Minute), 60)
			}
			st, err := s.GetStats(now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.Streak)
		})
	}
}

// ============================================================
// Custom methods
// ============================================================

func sampleMethod(id string) Method {
	return Method{
		ID:          id,
		Title:       "Evening",
		Description: "Wind down",
		Icon:        "Moon",
		Color:       "#7AA2F7",
		Inhale:      4,
		HoldIn:      2,
		Exhale:      6,
		HoldOut:     0,
	}
}

func TestCreateAndGetMethod(t *testing.T) {
	s := newTestStore(t)
	m, err := s.CreateMethod(sampleMethod("custom-1"))
	require.NoError(t, err)
	assert.Equal(t, "Evening", m.Title)
	assert.Equal(t, []int{4, 2, 6, 0}, []int{m.Inhale, m.HoldIn, m.Exhale, m.HoldOut})
	assert.False(t, m.CreatedAt.IsZero(), "CreatedAt should be set")
}

func TestCreateMethodDuplicateID(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateMethod(sampleMethod("custom-1"))
	require.NoError(t, err)
	_, err = s.CreateMethod(sampleMethod("custom-1"))
	assert.Error(t, err, "duplicate method id")
}

func TestCreateMethods(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateMethods([]Method{sampleMethod("custom-a"), sampleMethod("custom-b")}))

	methods, err := s.ListMethods()
	require.NoError(t, err)
	assert.Len(t, methods, 2)
}

func TestCreateMethodsRollsBack(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateMethod(sampleMethod("custom-taken"))
	require.NoError(t, err)

	err = s.CreateMethods([]Method{sampleMethod("custom-new"), sampleMethod("custom-taken")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "custom-taken")

	_, err = s.GetMethod("custom-new")
	assert.ErrorIs(t, err, ErrNotFound, "earlier insert should be rolled back")
}

func TestGetMethodNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetMethod("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndDeleteMethods(t *testing.T) {
	s := newTestStore(t)
	s.CreateMethod(sampleMethod("custom-a"))
	s.CreateMethod(sampleMethod("custom-b"))

	methods, err := s.ListMethods()
	require.NoError(t, err)
	assert.Len(t, methods, 2)

	require.NoError(t, s.DeleteMethod("custom-a"))
	assert.ErrorIs(t, s.DeleteMethod("custom-a"), ErrNotFound)

	methods, _ = s.ListMethods()
	require.Len(t, methods, 1)
	assert.Equal(t, "custom-b", methods[0].ID)
}

// ============================================================
// Settings
// ============================================================

func TestDefaultSettings(t *testing.T) {
	s := newTestStore(t)
	want := map[string]string{
		"default_pattern": "box",
		"cycles":          "4",
		"daily_goal_min":  "10",
	}
	for k, v := range want {
		got, err := s.GetSetting(k)
		require.NoError(t, err, "get %s", k)
		assert.Equal(t, v, got, k)
	}
}

func TestSetSettingUpsert(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetSetting("cycles", "6"))
	require.NoError(t, s.SetSetting("new_key", "x"))

	v, _ := s.GetSetting("cycles")
	assert.Equal(t, "6", v)

	all, err := s.GetAllSettings()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestGetSettingMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("missing")
	assert.Error(t, err)
}

func TestGetSettingInt(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("bad", "abc")

	assert.Equal(t, 4, s.GetSettingInt("cycles", 9))
	assert.Equal(t, 9, s.GetSettingInt("bad", 9), "unparsable falls back")
	assert.Equal(t, 7, s.GetSettingInt("missing", 7))
}
