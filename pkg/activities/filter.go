package activities

import (
	"fmt"
	"net/url"
	"strings"
)

// TimeRange narrows activities to a part of the week.
type TimeRange string

const (
	TimeRangeAny       TimeRange = ""
	TimeRangeMorning   TimeRange = "morning"
	TimeRangeAfternoon TimeRange = "afternoon"
	TimeRangeWeekend   TimeRange = "weekend"
)

// Query windows sent upstream for the morning and afternoon ranges.
const (
	morningStart   = "06:00"
	morningEnd     = "08:00"
	afternoonStart = "15:00"
	afternoonEnd   = "18:00"
)

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ParseTimeRange validates a user supplied time range. Empty means any.
func ParseTimeRange(s string) (TimeRange, error) {
	switch tr := TimeRange(strings.ToLower(strings.TrimSpace(s))); tr {
	case TimeRangeAny, TimeRangeMorning, TimeRangeAfternoon, TimeRangeWeekend:
		return tr, nil
	}
	return "", fmt.Errorf("invalid time range %q (available: morning, afternoon, weekend)", s)
}

// ParseDay validates a weekday name and returns it capitalized. Empty means
// no day filter.
func ParseDay(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, d := range weekdays {
		if strings.EqualFold(d, s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid day %q", s)
}

// FilterCriteria is the current combination of view constraints. Day and
// the morning/afternoon ranges are applied upstream, the rest locally.
type FilterCriteria struct {
	Category   Category
	Day        string
	TimeRange  TimeRange
	SearchText string
}

// DefaultCriteria shows everything.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{Category: CategoryAll}
}

// RemoteQuery returns the query parameters for the upstream activity fetch.
func RemoteQuery(c FilterCriteria) url.Values {
	q := url.Values{}
	if c.Day != "" {
		q.Set("day", c.Day)
	}
	switch c.TimeRange {
	case TimeRangeMorning:
		q.Set("start_time", morningStart)
		q.Set("end_time", morningEnd)
	case TimeRangeAfternoon:
		q.Set("start_time", afternoonStart)
		q.Set("end_time", afternoonEnd)
	}
	return q
}

// SameRemote reports whether a and b produce the same upstream query.
func SameRemote(a, b FilterCriteria) bool {
	return a.Day == b.Day && remoteRange(a.TimeRange) == remoteRange(b.TimeRange)
}

func remoteRange(tr TimeRange) TimeRange {
	if tr == TimeRangeWeekend {
		return TimeRangeAny
	}
	return tr
}

// MatchesFilters applies the locally evaluated predicates: category, then
// weekend, then search.
func MatchesFilters(a Activity, c FilterCriteria) (bool, error) {
	if c.Category != "" && c.Category != CategoryAll && Classify(a.Name, a.Description) != c.Category {
		return false, nil
	}

	if c.TimeRange == TimeRangeWeekend && !onWeekend(a) {
		return false, nil
	}

	if c.SearchText != "" {
		schedule, err := FormatSchedule(a)
		if err != nil {
			return false, err
		}
		haystack := strings.ToLower(a.Name + " " + a.Description + " " + schedule)
		if !strings.Contains(haystack, strings.ToLower(c.SearchText)) {
			return false, nil
		}
	}
	return true, nil
}

func onWeekend(a Activity) bool {
	if a.ScheduleDetails == nil {
		return false
	}
	for _, d := range a.ScheduleDetails.Days {
		if strings.EqualFold(d, "Saturday") || strings.EqualFold(d, "Sunday") {
			return true
		}
	}
	return false
}

// ViewItem is one render-ready card.
type ViewItem struct {
	Name     string
	Activity Activity
	Category Category
}

// BuildView returns the activities passing c, in collection order. Nothing
// matching yields an empty, non-nil slice.
func BuildView(coll Collection, c FilterCriteria) ([]ViewItem, error) {
	view := []ViewItem{}
	for _, a := range coll.Items() {
		ok, err := MatchesFilters(a, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		view = append(view, ViewItem{
			Name:     a.Name,
			Activity: a,
			Category: Classify(a.Name, a.Description),
		})
	}
	return view, nil
}
