package handler

import (
	"encoding/json"
	"net/http"

	"github.com/campusbell/campusbell/internal/api/models"
	"github.com/campusbell/campusbell/internal/api/response"
	"github.com/campusbell/campusbell/internal/notify"
)

// NotifyHandler handles notification settings and reconciliation endpoints.
type NotifyHandler struct {
	notify *notify.Service
}

// NewNotifyHandler creates a new NotifyHandler.
func NewNotifyHandler(svc *notify.Service) *NotifyHandler {
	return &NotifyHandler{notify: svc}
}

// GetSettings handles GET /v1/notifications/settings.
func (h *NotifyHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings := h.notify.Settings(r.Context())
	response.JSON(w, r, http.StatusOK, models.NotificationSettings{
		ClassStart: settings.ClassStart,
		PeriodEnd:  settings.PeriodEnd,
	})
}

// UpdateSettings handles PUT /v1/notifications/settings - persist new
// settings and reconcile the scheduled triggers against them.
func (h *NotifyHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var input models.NotificationSettings
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.notify.UpdateSettings(r.Context(), notify.Settings{
		ClassStart: input.ClassStart,
		PeriodEnd:  input.PeriodEnd,
	})
	if err != nil {
		response.InternalError(w, r, "failed to save notification settings")
		return
	}

	response.JSON(w, r, http.StatusOK, models.UpdateSettingsResponse{
		Settings:  input,
		Reconcile: toReconcile(result),
	})
}

// Reconcile handles POST /v1/notifications/reconcile - recompute and
// reschedule all triggers from the persisted settings.
func (h *NotifyHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result := h.notify.Reconcile(r.Context())
	response.JSON(w, r, http.StatusOK, toReconcile(result))
}

func toReconcile(result *notify.ReconcileResult) models.ReconcileResponse {
	return models.ReconcileResponse{
		Scheduled: result.Scheduled,
		Failed:    result.Failed,
		Errors:    result.Errors,
	}
}
