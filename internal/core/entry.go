package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry is a timed calendar item read by a calendar-backed source before
// it is flattened into itinerary lines.
type Entry struct {
	// UID identifies the same meeting across calendars (iCalUID); may be empty
	UID      string
	Title    string
	Start    time.Time
	End      time.Time
	IsAllDay bool
}

// Duration returns the length of the entry.
func (e Entry) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Deduplicate drops entries whose UID was already seen, keeping the first.
// Entries without a UID are always kept.
func Deduplicate(entries []Entry) []Entry {
	seen := make(map[string]bool)
	var result []Entry
	for _, e := range entries {
		if e.UID != "" {
			if seen[e.UID] {
				continue
			}
			seen[e.UID] = true
		}
		result = append(result, e)
	}
	return result
}

// ItineraryLines flattens entries into the raw line format the parser reads:
// one "Day N" marker per day in [start, start+days), each followed by the
// timed entries starting that day as "HH:MM - Title" in local time.
// All-day and untitled entries are dropped.
func ItineraryLines(entries []Entry, start time.Time, days int) []string {
	if days <= 0 {
		days = 1
	}
	local := start.Local()
	first := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())

	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsAllDay || strings.TrimSpace(e.Title) == "" {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var lines []string
	for d := 0; d < days; d++ {
		dayStart := first.AddDate(0, 0, d)
		dayEnd := dayStart.AddDate(0, 0, 1)
		lines = append(lines, fmt.Sprintf("Day %d", d+1))

		for _, e := range sorted {
			s := e.Start.Local()
			if s.Before(dayStart) || !s.Before(dayEnd) {
				continue
			}
			title := strings.Join(strings.Fields(e.Title), " ")
			lines = append(lines, fmt.Sprintf("%s - %s", s.Format("15:04"), title))
		}
	}
	return lines
}

// RangeEnd returns the exclusive end of a request's day range.
func (r ItineraryRequest) RangeEnd() time.Time {
	start := r.RangeStart()
	days := r.Days
	if days <= 0 {
		days = 1
	}
	return start.AddDate(0, 0, days)
}

// RangeStart returns local midnight of the request's first day.
func (r ItineraryRequest) RangeStart() time.Time {
	s := r.Start
	if s.IsZero() {
		s = time.Now()
	}
	s = s.Local()
	return time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
}
