package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbell/campusbell/internal/api"
	"github.com/campusbell/campusbell/internal/api/models"
	"github.com/campusbell/campusbell/internal/events"
	"github.com/campusbell/campusbell/internal/notify"
	"github.com/campusbell/campusbell/internal/schedule"
	"github.com/campusbell/campusbell/internal/wellness"
)

const feedFixture = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//district//calendar//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:router-test-1\r\n" +
	"DTSTART;VALUE=DATE:20240116\r\n" +
	"SUMMARY:Institute Day\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

type stubProvider struct {
	mu      sync.Mutex
	payload string
	err     error
}

func (p *stubProvider) FetchCalendar(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return p.payload, nil
}

func (p *stubProvider) Name() string { return "stub" }

type stubScheduler struct{}

func (stubScheduler) CancelAll(context.Context) error                { return nil }
func (stubScheduler) Schedule(context.Context, notify.Trigger) error { return nil }

func testDefinitions(t *testing.T) []schedule.Definition {
	t.Helper()
	defs := []schedule.Definition{
		{
			Name:  "Regular Day",
			Dates: []string{schedule.PatternWeekdays},
			Modes: []schedule.Mode{
				{
					Name:    "Standard",
					Periods: []schedule.Label{"1", "2"},
					Start:   []string{"08:00", "08:55"},
					End:     []string{"08:50", "09:45"},
				},
				{
					Name:    "Assembly",
					Periods: []schedule.Label{"1", "2"},
					Start:   []string{"09:00", "09:55"},
					End:     []string{"09:50", "10:45"},
				},
			},
		},
	}
	require.NoError(t, schedule.ValidateDefinitions(defs))
	return defs
}

type testEnv struct {
	router   http.Handler
	provider *stubProvider
}

// Monday Jan 15 2024, 08:30 UTC - inside period 1.
func testClock() time.Time {
	return time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)

	scheduleSvc := schedule.NewService(schedule.ServiceConfig{
		Definitions: testDefinitions(t),
		Logger:      logger,
		Clock:       testClock,
	})

	provider := &stubProvider{payload: feedFixture}
	eventsSvc := events.NewService(events.ServiceConfig{
		Provider: provider,
		StaticEvents: events.EventMap{
			"1/15/2024": {{AllDay: true, Name: "Bundled Event"}},
		},
		Logger: logger,
	})

	notifySvc := notify.NewService(notify.ServiceConfig{
		Repository: notify.NewInMemoryRepository(),
		Scheduler:  stubScheduler{},
		Timelines:  scheduleSvc,
		Logger:     logger,
	})

	wellnessSvc := wellness.NewService(wellness.ServiceConfig{
		Hours: wellness.Hours{
			RegularHours: map[string]string{"1": "7:00 AM - 4:00 PM"},
			Exceptions:   map[string]string{"1/16/2024": "Closed"},
		},
		Logger: logger,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:         "test",
		BuildTime:       "2024-01-01T00:00:00Z",
		Logger:          logger,
		Location:        time.UTC,
		ScheduleService: scheduleSvc,
		EventsService:   eventsSvc,
		NotifyService:   notifySvc,
		WellnessService: wellnessSvc,
	})

	return &testEnv{router: router, provider: provider}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/ops/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/ops/ready")

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/ops/status")

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))

	// No refresh yet: still serving bundled data, so degraded.
	assert.Equal(t, models.HealthStatusDegraded, status.Status)
	require.NotEmpty(t, status.Subsystems)
	assert.Equal(t, "event-cache", status.Subsystems[0].Name)
}

func TestRouter_ScheduleCurrent(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/schedule/current")

	assert.Equal(t, http.StatusOK, w.Code)

	var info models.PeriodInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))

	assert.True(t, info.IsSchoolDay)
	require.NotNil(t, info.CurrentPeriod)
	assert.Equal(t, "1", *info.CurrentPeriod)
	require.NotNil(t, info.TimeRemaining)
	assert.Equal(t, int64(1200), *info.TimeRemaining)
	require.NotNil(t, info.Schedule)
	assert.Equal(t, "Standard", info.Schedule.Mode)
	assert.Len(t, info.AllPeriods, 2)
}

func TestRouter_ScheduleCurrent_ModeOverride(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/schedule/current?mode=Assembly")

	assert.Equal(t, http.StatusOK, w.Code)

	var info models.PeriodInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))

	require.NotNil(t, info.Schedule)
	assert.Equal(t, "Assembly", info.Schedule.Mode)
	// At 08:30 the Assembly day has not started yet.
	assert.Nil(t, info.CurrentPeriod)
	require.NotNil(t, info.NextPeriod)
	assert.Equal(t, "1", *info.NextPeriod)
}

func TestRouter_ScheduleCurrent_UnknownMode(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/schedule/current?mode=Pep%20Rally")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "mode", problem.Errors[0].Field)
}

func TestRouter_ScheduleCurrent_BadDate(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/schedule/current?date=2024-01-15")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ScheduleCurrent_WeekendNoSchool(t *testing.T) {
	env := newTestEnv(t)

	// Saturday.
	w := env.get(t, "/v1/schedule/current?date=1/20/2024")

	assert.Equal(t, http.StatusOK, w.Code)

	var info models.PeriodInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.False(t, info.IsSchoolDay)
	assert.Nil(t, info.Schedule)
}

func TestRouter_ScheduleDay(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/schedule/day?date=1/16/2024")

	assert.Equal(t, http.StatusOK, w.Code)

	var day models.DaySchedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &day))

	assert.Equal(t, "1/16/2024", day.Date)
	assert.True(t, day.IsSchoolDay)
	assert.Len(t, day.Timeline, 2)
	assert.Equal(t, "Regular Day", day.Schedule.Name)
}

func TestRouter_ListEvents_BundledFirst(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/events")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.EventsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.False(t, resp.IsRemote)
	require.Len(t, resp.Data["1/15/2024"], 1)
	assert.Equal(t, "Bundled Event", resp.Data["1/15/2024"][0].Name)
}

func TestRouter_EventsForDate(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/events/1/15/2024")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.DayEventsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "1/15/2024", resp.Date)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Bundled Event", resp.Events[0].Name)
}

func TestRouter_EventsForDate_BadSegments(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/events/13/40/2024")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_RefreshEvents(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/events/refresh", http.NoBody)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.RefreshResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Refreshed)
	assert.Equal(t, 1, resp.Days)
	assert.Equal(t, 1, resp.Events)

	// Subsequent reads serve the refreshed map.
	w2 := env.get(t, "/v1/events")
	var list models.EventsResponse
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &list))
	assert.True(t, list.IsRemote)
}

func TestRouter_RefreshEvents_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.provider.err = errors.New("connection refused")

	req := httptest.NewRequest(http.MethodPost, "/v1/events/refresh", http.NoBody)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	// Cache untouched: bundled data still served.
	w2 := env.get(t, "/v1/events")
	var list models.EventsResponse
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &list))
	assert.False(t, list.IsRemote)
}

func TestRouter_NotificationSettings_Defaults(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/notifications/settings")

	assert.Equal(t, http.StatusOK, w.Code)

	var settings models.NotificationSettings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.False(t, settings.ClassStart)
	assert.False(t, settings.PeriodEnd)
}

func TestRouter_UpdateNotificationSettings(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(models.NotificationSettings{ClassStart: true})
	req := httptest.NewRequest(http.MethodPut, "/v1/notifications/settings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.UpdateSettingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Settings.ClassStart)
	// Period 1 already started at 08:30; period 2 today and both periods
	// tomorrow remain schedulable.
	assert.Equal(t, 3, resp.Reconcile.Scheduled)

	// Settings persisted.
	w2 := env.get(t, "/v1/notifications/settings")
	var settings models.NotificationSettings
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &settings))
	assert.True(t, settings.ClassStart)
}

func TestRouter_UpdateNotificationSettings_BadBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPut, "/v1/notifications/settings", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ReconcileNotifications(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/notifications/reconcile", http.NoBody)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ReconcileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// Settings default to everything off.
	assert.Equal(t, 0, resp.Scheduled)
	assert.Equal(t, 0, resp.Failed)
}

func TestRouter_Wellness_Today(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/wellness")

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.WellnessStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))

	assert.Equal(t, "1/15/2024", status.Date)
	assert.True(t, status.IsOpen)
	assert.Equal(t, "7:00 AM - 4:00 PM", status.Hours)
}

func TestRouter_Wellness_ClosedException(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/wellness?date=1/16/2024")

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.WellnessStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.IsOpen)
	assert.Equal(t, "Closed", status.Hours)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/ops/health")

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/nonexistent")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
