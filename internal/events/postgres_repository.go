package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository. The event
// map is stored as a single JSONB row and overwritten wholesale on refresh.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL event repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Load returns the cached event map, or ErrNoCachedEvents.
func (r *PostgresRepository) Load(ctx context.Context) (EventMap, error) {
	query := `SELECT payload FROM event_cache WHERE id = 1`

	var payload []byte
	err := r.pool.QueryRow(ctx, query).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCachedEvents
		}
		return nil, fmt.Errorf("loading event cache: %w", err)
	}

	var events EventMap
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, fmt.Errorf("decoding event cache: %w", err)
	}
	return events, nil
}

// Save replaces the cached event map.
func (r *PostgresRepository) Save(ctx context.Context, events EventMap) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encoding event cache: %w", err)
	}

	query := `
		INSERT INTO event_cache (id, payload, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET payload = $1, updated_at = $2
	`

	if _, err := r.pool.Exec(ctx, query, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("saving event cache: %w", err)
	}
	return nil
}
