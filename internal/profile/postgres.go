package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

const profileKey = "cryptoinvoicepro.profile"

// PostgresStore persists the profile as a single keyed row.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a store.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("profile store: nil db")
	}
	return &PostgresStore{db: db}, nil
}

// Get loads the stored profile.
func (s *PostgresStore) Get(ctx context.Context) (Profile, error) {
	if s == nil || s.db == nil {
		return Profile{}, errors.New("profile store: nil db")
	}

	const query = `SELECT value FROM app_settings WHERE key = $1 LIMIT 1`

	var raw []byte
	row := s.db.QueryRowContext(ctx, query, profileKey)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}

	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Put upserts the profile row.
func (s *PostgresStore) Put(ctx context.Context, p Profile) error {
	if s == nil || s.db == nil {
		return errors.New("profile store: nil db")
	}

	raw, err := json.Marshal(p.Normalized())
	if err != nil {
		return err
	}

	const query = `
INSERT INTO app_settings (key, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key)
DO UPDATE SET
	value = EXCLUDED.value,
	updated_at = NOW()`

	_, err = s.db.ExecContext(ctx, query, profileKey, raw)
	return err
}
