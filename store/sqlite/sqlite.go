// Package sqlite implements organizer.PreferencesStore using pure-Go
// SQLite. Preferences are stored one row per user; Get falls back to the
// defaults for unknown users.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trailnote/organizer"
	_ "modernc.org/sqlite"
)

// Store implements organizer.PreferencesStore backed by a SQLite file.
type Store struct {
	dbPath string
}

var _ organizer.PreferencesStore = (*Store)(nil)

// New creates a preferences store using a local SQLite file.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) openDB() (*sql.DB, error) {
	return sql.Open("sqlite", s.dbPath)
}

// Init creates the schema.
func (s *Store) Init(ctx context.Context) error {
	db, err := s.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS preferences (
		user_id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		max_items INTEGER NOT NULL,
		event_duration_hours INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

func (s *Store) Get(ctx context.Context, userID string) (organizer.Preferences, error) {
	db, err := s.openDB()
	if err != nil {
		return organizer.Preferences{}, err
	}
	defer db.Close()

	var p organizer.Preferences
	err = db.QueryRowContext(ctx,
		`SELECT category, max_items, event_duration_hours FROM preferences WHERE user_id = ?`,
		userID).Scan(&p.Category, &p.MaxItems, &p.EventDurationHours)
	if errors.Is(err, sql.ErrNoRows) {
		return organizer.DefaultPreferences(), nil
	}
	if err != nil {
		return organizer.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

func (s *Store) Set(ctx context.Context, userID string, prefs organizer.Preferences) error {
	db, err := s.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO preferences
		(user_id, category, max_items, event_duration_hours, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			category = excluded.category,
			max_items = excluded.max_items,
			event_duration_hours = excluded.event_duration_hours,
			updated_at = excluded.updated_at`,
		userID, prefs.Category, prefs.MaxItems, prefs.EventDurationHours, organizer.NowISO())
	if err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}
	return nil
}

// Update applies a read-modify-write inside a transaction.
func (s *Store) Update(ctx context.Context, userID string, apply func(organizer.Preferences) organizer.Preferences) (organizer.Preferences, error) {
	db, err := s.openDB()
	if err != nil {
		return organizer.Preferences{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return organizer.Preferences{}, err
	}
	defer tx.Rollback()

	current := organizer.DefaultPreferences()
	err = tx.QueryRowContext(ctx,
		`SELECT category, max_items, event_duration_hours FROM preferences WHERE user_id = ?`,
		userID).Scan(&current.Category, &current.MaxItems, &current.EventDurationHours)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return organizer.Preferences{}, fmt.Errorf("read preferences: %w", err)
	}

	next := apply(current)
	_, err = tx.ExecContext(ctx, `INSERT INTO preferences
		(user_id, category, max_items, event_duration_hours, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			category = excluded.category,
			max_items = excluded.max_items,
			event_duration_hours = excluded.event_duration_hours,
			updated_at = excluded.updated_at`,
		userID, next.Category, next.MaxItems, next.EventDurationHours, organizer.NowISO())
	if err != nil {
		return organizer.Preferences{}, fmt.Errorf("write preferences: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return organizer.Preferences{}, err
	}
	return next, nil
}
