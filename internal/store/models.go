package store

import "time"

// Session is one recorded run of a breathing exercise.
type Session struct {
	ID        int64
	PatternID string
	StartedAt time.Time
	Duration  int64 // seconds
	Completed bool
	CreatedAt time.Time
}

// Method is a user-authored breathing pattern. Durations are in seconds.
type Method struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Color       string
	Inhale      int
	HoldIn      int
	Exhale      int
	HoldOut     int
	CreatedAt   time.Time
}

type Setting struct {
	Key   string
	Value string
}

// SessionFilter is used to filter sessions in queries.
type SessionFilter struct {
	PatternID string
	From      *time.Time
	To        *time.Time
	Limit     int
}

// DailySummary is the practice time recorded on one day.
type DailySummary struct {
	Date         string
	TotalSeconds int64
	SessionCount int
}

// Stats summarizes all recorded practice.
type Stats struct {
	TotalSessions int
	TotalMinutes  int64
	Streak        int // consecutive days with at least one session
}
