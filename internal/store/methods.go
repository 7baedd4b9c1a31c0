package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const insertMethod = `INSERT INTO custom_methods (id, title, description, icon, color, inhale, hold_in, exhale, hold_out, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func methodArgs(m Method, now string) []any {
	return []any{m.ID, m.Title, m.Description, m.Icon, m.Color, m.Inhale, m.HoldIn, m.Exhale, m.HoldOut, now}
}

func (s *Store) CreateMethod(m Method) (*Method, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.Exec(insertMethod, methodArgs(m, now)...); err != nil {
		return nil, fmt.Errorf("insert method: %w", err)
	}
	return s.GetMethod(m.ID)
}

// CreateMethods inserts all of ms in one transaction. Either every method
// is saved or none is.
func (s *Store) CreateMethods(ms []Method) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, m := range ms {
		if _, err := tx.Exec(insertMethod, methodArgs(m, now)...); err != nil {
			return fmt.Errorf("insert method %q: %w", m.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit methods: %w", err)
	}
	return nil
}

func (s *Store) GetMethod(id string) (*Method, error) {
	row := s.db.QueryRow(
		`SELECT id, title, description, icon, color, inhale, hold_in, exhale, hold_out, created_at
		 FROM custom_methods WHERE id = ?`, id,
	)
	m, err := scanMethod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get method %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get method %q: %w", id, err)
	}
	return m, nil
}

// ListMethods returns custom methods, oldest first.
func (s *Store) ListMethods() ([]Method, error) {
	rows, err := s.db.Query(
		`SELECT id, title, description, icon, color, inhale, hold_in, exhale, hold_out, created_at
		 FROM custom_methods ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list methods: %w", err)
	}
	defer rows.Close()

	var methods []Method
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, *m)
	}
	return methods, rows.Err()
}

func (s *Store) DeleteMethod(id string) error {
	res, err := s.db.Exec(`DELETE FROM custom_methods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete method %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete method %q: %w", id, ErrNotFound)
	}
	return nil
}

func scanMethod(r rowScanner) (*Method, error) {
	m := &Method{}
	var createdAt string
	if err := r.Scan(&m.ID, &m.Title, &m.Description, &m.Icon, &m.Color,
		&m.Inhale, &m.HoldIn, &m.Exhale, &m.HoldOut, &createdAt); err != nil {
		return nil, err
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return m, nil
}
