package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PrefsRepo is a string key/value table.
type PrefsRepo struct{ db *sqlx.DB }

func NewPrefsRepo(db *sqlx.DB) *PrefsRepo { return &PrefsRepo{db: db} }

// Get returns ErrNotFound for unknown keys.
func (r *PrefsRepo) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.GetContext(ctx, &v, r.db.Rebind(`SELECT value FROM preferences WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("preference %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get preference: %w", err)
	}
	return v, nil
}

func (r *PrefsRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO preferences(key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`), key, value, time.Now().UTC().Format(tsLayout))
	if err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

func (r *PrefsRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM preferences WHERE key = ?`), key); err != nil {
		return fmt.Errorf("delete preference: %w", err)
	}
	return nil
}
