package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingKeyAdminPasswordHash stores the bcrypt hash of the shared admin
// password.
const SettingKeyAdminPasswordHash = "admin_password_hash"

// SettingRepository handles app settings key/value access.
type SettingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository creates a new SettingRepository.
func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

// GetByKey returns the value stored under a key.
func (r *SettingRepository) GetByKey(ctx context.Context, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM app_settings WHERE key = $1`, key).Scan(&value)
	return value, err
}

// Upsert stores a value under a key, replacing any previous value.
func (r *SettingRepository) Upsert(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO app_settings (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}
