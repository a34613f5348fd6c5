package models

// NotificationSettings is the persisted notification preference pair.
type NotificationSettings struct {
	ClassStart bool `json:"classStart"`
	PeriodEnd  bool `json:"periodEnd"`
}

// ReconcileResponse summarizes one notification reconciliation run.
type ReconcileResponse struct {
	Scheduled int      `json:"scheduled"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// UpdateSettingsResponse pairs the saved settings with the reconciliation
// they triggered.
type UpdateSettingsResponse struct {
	Settings  NotificationSettings `json:"settings"`
	Reconcile ReconcileResponse    `json:"reconcile"`
}
