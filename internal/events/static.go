package events

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadStatic parses a bundled events JSON document: an object keyed by
// M/D/YYYY dates, each holding that date's event list.
func LoadStatic(data []byte) (EventMap, error) {
	var m EventMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing static events: %w", err)
	}
	return m, nil
}

// LoadStaticFile reads and parses a bundled events JSON file.
func LoadStaticFile(path string) (EventMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading static events file: %w", err)
	}
	return LoadStatic(data)
}
