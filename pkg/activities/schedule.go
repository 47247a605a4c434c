package activities

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedSchedule is returned when structured schedule data is present
// but its times are missing or unparsable.
var ErrMalformedSchedule = errors.New("malformed schedule details")

// FormatTime converts a 24-hour "HH:MM" string to "H:MM AM/PM".
func FormatTime(hhmm string) (string, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: time %q is not HH:MM", ErrMalformedSchedule, hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: bad hour in %q", ErrMalformedSchedule, hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: bad minute in %q", ErrMalformedSchedule, hhmm)
	}

	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	displayHour := hour % 12
	if displayHour == 0 {
		displayHour = 12
	}
	return fmt.Sprintf("%d:%02d %s", displayHour, minute, period), nil
}

// FormatSchedule renders the schedule shown on a card and used for search.
// Without structured details the legacy string is returned unchanged.
func FormatSchedule(a Activity) (string, error) {
	d := a.ScheduleDetails
	if d == nil {
		return a.Schedule, nil
	}
	if d.StartTime == "" || d.EndTime == "" {
		return "", fmt.Errorf("%w: activity %q has no start or end time", ErrMalformedSchedule, a.Name)
	}

	start, err := FormatTime(d.StartTime)
	if err != nil {
		return "", fmt.Errorf("activity %q: %w", a.Name, err)
	}
	end, err := FormatTime(d.EndTime)
	if err != nil {
		return "", fmt.Errorf("activity %q: %w", a.Name, err)
	}
	return fmt.Sprintf("%s, %s - %s", strings.Join(d.Days, ", "), start, end), nil
}
