// Package handler provides HTTP handlers for the CampusBell API.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/campusbell/campusbell/internal/api/models"
	"github.com/campusbell/campusbell/internal/api/response"
	"github.com/campusbell/campusbell/internal/schedule"
)

// ScheduleHandler handles schedule resolution endpoints.
type ScheduleHandler struct {
	schedules *schedule.Service
	location  *time.Location
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedules *schedule.Service, location *time.Location) *ScheduleHandler {
	if location == nil {
		location = time.Local
	}
	return &ScheduleHandler{
		schedules: schedules,
		location:  location,
	}
}

// CurrentPeriod handles GET /v1/schedule/current - the live period state.
// An optional date query pins resolution to that date's midnight; an optional
// mode query overrides the default mode of the resolved schedule.
func (h *ScheduleHandler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	at := h.schedules.Now().In(h.location)

	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		parsed, err := schedule.ParseDate(dateParam, h.location)
		if err != nil {
			response.BadRequest(w, r, "date must be in M/D/YYYY format", []models.FieldError{
				{Field: "date", Message: err.Error(), Code: "FORMAT"},
			})
			return
		}
		at = parsed
	}

	info, err := h.schedules.CurrentPeriodInfo(at, r.URL.Query().Get("mode"))
	if err != nil {
		if errors.Is(err, schedule.ErrUnknownMode) {
			response.BadRequest(w, r, "unknown schedule mode", []models.FieldError{
				{Field: "mode", Message: err.Error(), Code: "UNKNOWN"},
			})
			return
		}
		response.InternalError(w, r, "failed to resolve schedule")
		return
	}

	response.JSON(w, r, http.StatusOK, toPeriodInfo(info))
}

// DaySchedule handles GET /v1/schedule/day - a date's resolved schedule and
// timeline without the live state.
func (h *ScheduleHandler) DaySchedule(w http.ResponseWriter, r *http.Request) {
	date := h.schedules.Now().In(h.location)

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

	summary := h.schedules.ScheduleForDate(date)
	day := models.DaySchedule{
		Date:        schedule.DateKey(date),
		IsSchoolDay: summary != nil,
		Schedule:    toScheduleSummary(summary),
		Timeline:    toResolvedPeriods(h.schedules.TimelineForDate(date)),
		RotationDay: h.schedules.RotationDay(date),
	}

	response.JSON(w, r, http.StatusOK, day)
}

func toPeriodInfo(info *schedule.PeriodInfo) models.PeriodInfo {
	return models.PeriodInfo{
		IsSchoolDay:   info.IsSchoolDay,
		CurrentPeriod: info.CurrentPeriod,
		NextPeriod:    info.NextPeriod,
		TimeRemaining: info.TimeRemaining,
		TimeUntilNext: info.TimeUntilNext,
		Schedule:      toScheduleSummary(info.Schedule),
		AllPeriods:    toResolvedPeriods(info.AllPeriods),
		RotationDay:   info.RotationDay,
	}
}

func toScheduleSummary(summary *schedule.Summary) *models.ScheduleSummary {
	if summary == nil {
		return nil
	}
	return &models.ScheduleSummary{
		Name:     summary.Name,
		Special:  summary.Special,
		Mode:     summary.Mode,
		AllModes: summary.AllModes,
	}
}

func toResolvedPeriods(timeline []schedule.ResolvedPeriod) []models.ResolvedPeriod {
	periods := make([]models.ResolvedPeriod, 0, len(timeline))
	for _, p := range timeline {
		periods = append(periods, models.ResolvedPeriod{
			Period:    p.Period,
			StartTime: p.StartTime.UnixMilli(),
			EndTime:   p.EndTime.UnixMilli(),
			Index:     p.Index,
		})
	}
	return periods
}
