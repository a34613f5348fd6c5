package events

import (
	"context"
	"errors"
)

// ErrNoCachedEvents is returned when the repository holds no event map yet.
var ErrNoCachedEvents = errors.New("no cached events")

// Repository persists the most recent successfully normalized event map. The
// map is replaced wholesale on every successful refresh; there is no
// incremental merge.
type Repository interface {
	// Load returns the cached event map, or ErrNoCachedEvents.
	Load(ctx context.Context) (EventMap, error)

	// Save replaces the cached event map.
	Save(ctx context.Context, events EventMap) error
}
