package wellness

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/campusbell/campusbell/internal/schedule"
)

// ServiceConfig holds configuration for the wellness service.
type ServiceConfig struct {
	Hours  Hours
	Logger zerolog.Logger
}

// Service resolves wellness center status by date.
type Service struct {
	hours  Hours
	logger zerolog.Logger
}

// NewService creates a new wellness service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		hours:  cfg.Hours,
		logger: cfg.Logger,
	}
}

// StatusForDate resolves the center's status for the given date. Exceptions
// win over the weekly pattern; a weekday missing from both tables is closed.
func (s *Service) StatusForDate(date time.Time) Status {
	if hours, ok := s.hours.Exceptions[schedule.DateKey(date)]; ok {
		if hours == Closed {
			return Status{Hours: Closed}
		}
		return Status{IsOpen: true, Hours: hours, IsSpecial: true}
	}

	hours, ok := s.hours.RegularHours[strconv.Itoa(int(date.Weekday()))]
	if !ok || hours == Closed {
		return Status{Hours: Closed}
	}
	return Status{IsOpen: true, Hours: hours}
}

// LoadHours parses an hours document from YAML.
func LoadHours(data []byte) (Hours, error) {
	var hours Hours
	if err := yaml.Unmarshal(data, &hours); err != nil {
		return Hours{}, fmt.Errorf("parsing wellness hours: %w", err)
	}
	return hours, nil
}

// LoadHoursFile reads and parses an hours document from disk.
func LoadHoursFile(path string) (Hours, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Hours{}, fmt.Errorf("reading wellness hours file: %w", err)
	}
	return LoadHours(data)
}
