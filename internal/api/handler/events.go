package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campusbell/campusbell/internal/api/models"
	"github.com/campusbell/campusbell/internal/api/response"
	"github.com/campusbell/campusbell/internal/events"
)

// EventsHandler handles district calendar endpoints.
type EventsHandler struct {
	events *events.Service
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(svc *events.Service) *EventsHandler {
	return &EventsHandler{events: svc}
}

// ListEvents handles GET /v1/events - the full event map.
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	snapshot := h.events.Events(r.Context())

	data := make(map[string][]models.Event, len(snapshot.Data))
	for key, dayEvents := range snapshot.Data {
		data[key] = toEvents(dayEvents)
	}

	response.JSON(w, r, http.StatusOK, models.EventsResponse{
		Data:     data,
		IsRemote: snapshot.IsRemote,
	})
}

// EventsForDate handles GET /v1/events/{month}/{day}/{year} - one date's
// events. The path segments mirror the unpadded M/D/YYYY keys of the map.
func (h *EventsHandler) EventsForDate(w http.ResponseWriter, r *http.Request) {
	month, okM := datePart(r, "month", 1, 12)
	day, okD := datePart(r, "day", 1, 31)
	year, okY := datePart(r, "year", 1970, 9999)
	if !okM || !okD || !okY {
		response.BadRequest(w, r, "date segments must form an M/D/YYYY date", nil)
		return
	}

	key := fmt.Sprintf("%d/%d/%d", month, day, year)
	snapshot := h.events.Events(r.Context())

	response.JSON(w, r, http.StatusOK, models.DayEventsResponse{
		Date:     key,
		Events:   toEvents(snapshot.Data[key]),
		IsRemote: snapshot.IsRemote,
	})
}

// RefreshEvents handles POST /v1/events/refresh - fetch the feed and replace
// the cache. A failed refresh leaves the cache untouched and surfaces as 502.
func (h *EventsHandler) RefreshEvents(w http.ResponseWriter, r *http.Request) {
	refreshed, err := h.events.Refresh(r.Context())
	if err != nil {
		response.BadGateway(w, r, "calendar feed refresh failed")
		return
	}

	total := 0
	for _, dayEvents := range refreshed {
		total += len(dayEvents)
	}

	response.JSON(w, r, http.StatusOK, models.RefreshResponse{
		Refreshed: true,
		Days:      len(refreshed),
		Events:    total,
	})
}

func datePart(r *http.Request, name string, min, max int) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v < min || v > max {
		return 0, false
	}
	return v, true
}

func toEvents(dayEvents []events.Event) []models.Event {
	out := make([]models.Event, 0, len(dayEvents))
	for _, e := range dayEvents {
		out = append(out, models.Event{
			AllDay:      e.AllDay,
			Start:       e.Start,
			End:         e.End,
			Name:        e.Name,
			Description: e.Description,
			Location:    e.Location,
			Categories:  e.Categories,
		})
	}
	return out
}
