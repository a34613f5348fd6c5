package models

// Event is one calendar event in API responses. Times are Unix milliseconds.
type Event struct {
	AllDay      bool     `json:"allDay"`
	Start       int64    `json:"start"`
	End         int64    `json:"end"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

// EventsResponse is the full event map keyed by unpadded M/D/YYYY date.
type EventsResponse struct {
	Data map[string][]Event `json:"data"`

	// IsRemote is false while only the bundled static data set is being
	// served.
	IsRemote bool `json:"isRemote"`
}

// DayEventsResponse holds the events for a single date.
type DayEventsResponse struct {
	Date     string  `json:"date"`
	Events   []Event `json:"events"`
	IsRemote bool    `json:"isRemote"`
}

// RefreshResponse summarizes a feed refresh triggered over the API.
type RefreshResponse struct {
	Refreshed bool `json:"refreshed"`
	Days      int  `json:"days"`
	Events    int  `json:"events"`
}
