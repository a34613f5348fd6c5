package events_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbell/campusbell/internal/events"
)

const feedFixture = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//district//calendar//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-001\r\n" +
	"DTSTART:20240115T120000Z\r\n" +
	"DTEND:20240115T133000Z\r\n" +
	"SUMMARY:Orchestra Concert\r\n" +
	"DESCRIPTION: Winter concert in the PAC. \r\n" +
	"LOCATION:Performing Arts Center\r\n" +
	"CATEGORIES:Music,Fine Arts\r\n" +
	"CATEGORIES:Fine Arts,Concerts\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-002\r\n" +
	"DTSTART:20240115T130000Z\r\n" +
	"DTEND:20240115T140000Z\r\n" +
	"SUMMARY:Booster Meeting\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-003\r\n" +
	"DTSTART;VALUE=DATE:20240122\r\n" +
	"SUMMARY:Institute Day\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

// findEvent locates an event by name across all date buckets.
func findEvent(t *testing.T, m events.EventMap, name string) (string, events.Event) {
	t.Helper()
	for key, bucket := range m {
		for _, ev := range bucket {
			if ev.Name == name {
				return key, ev
			}
		}
	}
	t.Fatalf("event %q not found", name)
	return "", events.Event{}
}

func TestNormalize(t *testing.T) {
	m, err := events.Normalize(feedFixture)
	require.NoError(t, err)

	total := 0
	for _, bucket := range m {
		total += len(bucket)
	}
	assert.Equal(t, 3, total)

	_, concert := findEvent(t, m, "Orchestra Concert")
	assert.False(t, concert.AllDay)
	assert.Equal(t, "Winter concert in the PAC.", concert.Description)
	assert.Equal(t, "Performing Arts Center", concert.Location)
	assert.Equal(t, int64(90*60*1000), concert.End-concert.Start)
}

func TestNormalize_CategoriesDeduplicated(t *testing.T) {
	m, err := events.Normalize(feedFixture)
	require.NoError(t, err)

	_, concert := findEvent(t, m, "Orchestra Concert")

	// Two CATEGORIES lines with an overlapping value union to a set.
	assert.Equal(t, []string{"Music", "Fine Arts", "Concerts"}, concert.Categories)
}

func TestNormalize_SameDayEventsKeepEncounterOrder(t *testing.T) {
	m, err := events.Normalize(feedFixture)
	require.NoError(t, err)

	key, _ := findEvent(t, m, "Orchestra Concert")
	bucket := m[key]
	require.Len(t, bucket, 2)
	assert.Equal(t, "Orchestra Concert", bucket[0].Name)
	assert.Equal(t, "Booster Meeting", bucket[1].Name)
}

func TestNormalize_AllDayEvent(t *testing.T) {
	m, err := events.Normalize(feedFixture)
	require.NoError(t, err)

	_, institute := findEvent(t, m, "Institute Day")
	assert.True(t, institute.AllDay)
	assert.Empty(t, institute.Description)
	assert.Empty(t, institute.Categories)
	assert.Greater(t, institute.End, institute.Start)
}

func TestNormalize_GarbageFails(t *testing.T) {
	_, err := events.Normalize("this is not a calendar")
	assert.Error(t, err)
}

func TestNormalize_EmptyFails(t *testing.T) {
	_, err := events.Normalize("")
	assert.Error(t, err)
}

func TestNormalize_EmptyCalendarYieldsEmptyMap(t *testing.T) {
	empty := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//district//calendar//EN",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	m, err := events.Normalize(empty)
	require.NoError(t, err)
	assert.Empty(t, m)
}
