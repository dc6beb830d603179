package hours

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	hourLayout = "15:04"
	timeLayout = "2006-01-02 15:04:05"
)

var guiLocation *time.Location = time.UTC

func SetGuiTimezone(timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %v", timezone, err)
	}
	guiLocation = loc
	return nil
}

func GuiLocation() *time.Location {
	return guiLocation
}

// StartOfDay returns midnight of the calendar day t falls on in loc.
// A nil loc means UTC.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// NextDay returns midnight of the day after the one starting at start.
// Calendar arithmetic, so DST days are 23 or 25 hours long.
func NextDay(start time.Time) time.Time {
	return start.AddDate(0, 0, 1)
}

// ParseIso parses an ISO-8601 timestamp with an explicit offset.
// A trailing "Z" designator is read as "+00:00". The result is in UTC.
func ParseIso(str string) (time.Time, error) {
	str = strings.TrimSpace(str)
	if strings.HasSuffix(str, "Z") {
		str = strings.TrimSuffix(str, "Z") + "+00:00"
	}
	t, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", str, err)
	}
	return t.UTC(), nil
}

func FormatTimeInGuiTimezone(t time.Time) string {
	return t.In(guiLocation).Format(timeLayout)
}

func FormatDateInGuiTimezone(t time.Time) string {
	return t.In(guiLocation).Format(dateLayout)
}

func FormatHourInGuiTimezone(t time.Time) string {
	return t.In(guiLocation).Format(hourLayout)
}
