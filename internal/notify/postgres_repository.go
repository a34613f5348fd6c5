package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL settings repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Load returns the persisted settings, or ErrNoSettings.
func (r *PostgresRepository) Load(ctx context.Context) (Settings, error) {
	query := `SELECT class_start, period_end FROM notification_settings WHERE id = 1`

	var settings Settings
	err := r.pool.QueryRow(ctx, query).Scan(&settings.ClassStart, &settings.PeriodEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, ErrNoSettings
		}
		return Settings{}, fmt.Errorf("loading notification settings: %w", err)
	}
	return settings, nil
}

// Save replaces the persisted settings.
func (r *PostgresRepository) Save(ctx context.Context, settings Settings) error {
	query := `
		INSERT INTO notification_settings (id, class_start, period_end, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET class_start = $1, period_end = $2, updated_at = $3
	`

	if _, err := r.pool.Exec(ctx, query, settings.ClassStart, settings.PeriodEnd, time.Now().UTC()); err != nil {
		return fmt.Errorf("saving notification settings: %w", err)
	}
	return nil
}
