package schedule

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// definitionsFile is the YAML shape of a schedule definitions file.
type definitionsFile struct {
	// Version identifies the schedule data revision, e.g. "2025-26.3".
	Version string `yaml:"version"`

	Schedules []Definition `yaml:"schedules"`
}

// Load parses and validates a schedule definitions YAML payload.
func Load(data []byte) ([]Definition, string, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, "", fmt.Errorf("parsing schedule definitions: %w", err)
	}

	if err := ValidateDefinitions(file.Schedules); err != nil {
		return nil, "", fmt.Errorf("validating schedule definitions: %w", err)
	}

	return file.Schedules, file.Version, nil
}

// LoadFile reads, parses and validates a schedule definitions file.
func LoadFile(path string) ([]Definition, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading schedule definitions: %w", err)
	}
	return Load(data)
}
