package notify

import (
	"context"
	"errors"
)

// ErrNoSettings is returned when no notification settings are persisted yet.
var ErrNoSettings = errors.New("notification settings not found")

// Repository persists notification settings.
type Repository interface {
	// Load returns the persisted settings, or ErrNoSettings.
	Load(ctx context.Context) (Settings, error)

	// Save replaces the persisted settings.
	Save(ctx context.Context, settings Settings) error
}
