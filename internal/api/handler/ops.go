package handler

import (
	"net/http"
	"time"

	"github.com/campusbell/campusbell/internal/api/models"
	"github.com/campusbell/campusbell/internal/api/response"
	"github.com/campusbell/campusbell/internal/events"
	"github.com/campusbell/campusbell/internal/provider/resilience"
	"github.com/campusbell/campusbell/internal/worker"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string

	events    *events.Service
	registry  *resilience.Registry
	jobs      *worker.RefreshJob
	schedules ScheduleStatusSource
}

// ScheduleStatusSource reports whether the bell schedules loaded.
type ScheduleStatusSource interface {
	Now() time.Time
}

// OpsHandlerConfig holds the dependencies of the ops surface. Every service
// is optional; absent ones are simply not reported.
type OpsHandlerConfig struct {
	Version       string
	BuildTime     string
	EventsService *events.Service
	Registry      *resilience.Registry
	RefreshJob    *worker.RefreshJob
	Schedules     ScheduleStatusSource
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsHandlerConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		events:    cfg.EventsService,
		registry:  cfg.Registry,
		jobs:      cfg.RefreshJob,
		schedules: cfg.Schedules,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service is
// ready once schedules are loaded; the event feed is not required since the
// bundled data set always answers reads.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	if h.schedules == nil {
		status = models.HealthStatusFail
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	if status != models.HealthStatusOK {
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   now,
	}

	if h.events != nil {
		feedStatus := h.events.Status()
		subsystem := models.SubsystemStatus{
			Name:   "event-cache",
			Status: models.HealthStatusOK,
		}
		if !feedStatus.IsRemote {
			// Still serving the bundled data set.
			subsystem.Status = models.HealthStatusDegraded
			detail := "serving bundled events, no successful refresh yet"
			subsystem.Detail = &detail
			status.Status = models.HealthStatusDegraded
		}
		if feedStatus.LastError != "" {
			subsystem.Detail = &feedStatus.LastError
		}
		status.Subsystems = append(status.Subsystems, subsystem)

		provider := models.ProviderStatus{
			Provider: feedStatus.Provider,
			Status:   models.HealthStatusOK,
		}
		if feedStatus.LastRefreshAt != nil {
			t := models.Timestamp(*feedStatus.LastRefreshAt)
			provider.LastSuccessAt = &t
		}
		if feedStatus.LastError != "" {
			provider.Status = models.HealthStatusDegraded
			provider.Message = &feedStatus.LastError
		}
		status.Providers = append(status.Providers, provider)
	}

	if h.registry != nil {
		for _, health := range h.registry.GetAllHealth() {
			provider := models.ProviderStatus{
				Provider: health.Name,
				Status:   models.HealthStatusOK,
			}
			switch {
			case health.IsUnhealthy():
				provider.Status = models.HealthStatusFail
				status.Status = models.HealthStatusDegraded
			case health.IsDegraded():
				provider.Status = models.HealthStatusDegraded
			}
			if health.LastSuccessAt != nil {
				t := models.Timestamp(*health.LastSuccessAt)
				provider.LastSuccessAt = &t
			}
			if health.LastFailureAt != nil {
				t := models.Timestamp(*health.LastFailureAt)
				provider.LastFailureAt = &t
			}
			if health.LastError != "" {
				provider.Message = &health.LastError
			}
			status.Providers = append(status.Providers, provider)
		}
	}

	if h.jobs != nil {
		metrics := h.jobs.GetMetrics()
		subsystem := models.SubsystemStatus{
			Name:   "background-jobs",
			Status: models.HealthStatusOK,
		}
		if metrics.TotalRuns > 0 && metrics.FailedRuns == metrics.TotalRuns {
			subsystem.Status = models.HealthStatusDegraded
			detail := "every job run so far has failed"
			subsystem.Detail = &detail
			status.Status = models.HealthStatusDegraded
		}
		status.Subsystems = append(status.Subsystems, subsystem)
	}

	response.JSON(w, r, http.StatusOK, status)
}
