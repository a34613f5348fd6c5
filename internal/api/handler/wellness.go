package handler

import (
	"net/http"
	"time"

	"github.com/campusbell/campusbell/internal/api/models"
	"github.com/campusbell/campusbell/internal/api/response"
	"github.com/campusbell/campusbell/internal/schedule"
	"github.com/campusbell/campusbell/internal/wellness"
)

// WellnessHandler handles wellness center hours endpoints.
type WellnessHandler struct {
	wellness *wellness.Service
	clock    func() time.Time
	location *time.Location
}

// NewWellnessHandler creates a new WellnessHandler.
func NewWellnessHandler(svc *wellness.Service, clock func() time.Time, location *time.Location) *WellnessHandler {
	if clock == nil {
		clock = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &WellnessHandler{
		wellness: svc,
		clock:    clock,
		location: location,
	}
}

// Status handles GET /v1/wellness - the center's hours for today or the
// given date.
func (h *WellnessHandler) Status(w http.ResponseWriter, r *http.Request) {
	date := h.clock().In(h.location)

	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		parsed, err := schedule.ParseDate(dateParam, h.location)
		if err != nil {
			response.BadRequest(w, r, "date must be in M/D/YYYY format", []models.FieldError{
				{Field: "date", Message: err.Error(), Code: "FORMAT"},
			})
			return
		}
		date = parsed
	}

	status := h.wellness.StatusForDate(date)
	response.JSON(w, r, http.StatusOK, models.WellnessStatus{
		Date:      schedule.DateKey(date),
		IsOpen:    status.IsOpen,
		Hours:     status.Hours,
		IsSpecial: status.IsSpecial,
	})
}
