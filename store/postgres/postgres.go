// Package postgres implements organizer.PreferencesStore using PostgreSQL.
//
// The Store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailnote/organizer"
)

// Store implements organizer.PreferencesStore backed by PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

var _ organizer.PreferencesStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithTable overrides the table name. Default "preferences".
func WithTable(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.table = name
		}
	}
}

// New creates a Store using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{pool: pool, table: "preferences"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the schema.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		user_id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		max_items INTEGER NOT NULL,
		event_duration_hours INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.table))
	return err
}

func (s *Store) Get(ctx context.Context, userID string) (organizer.Preferences, error) {
	var p organizer.Preferences
	err := s.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT category, max_items, event_duration_hours FROM %s WHERE user_id = $1`, s.table),
		userID).Scan(&p.Category, &p.MaxItems, &p.EventDurationHours)
	if errors.Is(err, pgx.ErrNoRows) {
		return organizer.DefaultPreferences(), nil
	}
	if err != nil {
		return organizer.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

func (s *Store) Set(ctx context.Context, userID string, prefs organizer.Preferences) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s
		(user_id, category, max_items, event_duration_hours, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE SET
			category = EXCLUDED.category,
			max_items = EXCLUDED.max_items,
			event_duration_hours = EXCLUDED.event_duration_hours,
			updated_at = now()`, s.table),
		userID, prefs.Category, prefs.MaxItems, prefs.EventDurationHours)
	if err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}
	return nil
}

// Update applies a read-modify-write inside a transaction with a row lock.
func (s *Store) Update(ctx context.Context, userID string, apply func(organizer.Preferences) organizer.Preferences) (organizer.Preferences, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return organizer.Preferences{}, err
	}
	defer tx.Rollback(ctx)

	current := organizer.DefaultPreferences()
	err = tx.QueryRow(ctx, fmt.Sprintf(
		`SELECT category, max_items, event_duration_hours FROM %s WHERE user_id = $1 FOR UPDATE`, s.table),
		userID).Scan(&current.Category, &current.MaxItems, &current.EventDurationHours)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return organizer.Preferences{}, fmt.Errorf("read preferences: %w", err)
	}

	next := apply(current)
	_, err = tx.Exec(ctx, fmt.Sprintf(`INSERT INTO %s
		(user_id, category, max_items, event_duration_hours, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE SET
			category = EXCLUDED.category,
			max_items = EXCLUDED.max_items,
			event_duration_hours = EXCLUDED.event_duration_hours,
			updated_at = now()`, s.table),
		userID, next.Category, next.MaxItems, next.EventDurationHours)
	if err != nil {
		return organizer.Preferences{}, fmt.Errorf("write preferences: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return organizer.Preferences{}, err
	}
	return next, nil
}
