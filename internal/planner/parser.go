// Package planner holds the day-planner engine: the itinerary parser,
// the in-memory schedule, the conflict resolver and the drag state machine.
package planner

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/theakshaypant/dayplan/internal/core"
	appLog "github.com/theakshaypant/dayplan/internal/log"
	"github.com/theakshaypant/dayplan/internal/timegrid"
)

var entryRe = regexp.MustCompile(`^(\d{1,2}:\d{2})\s*-\s*(.+)`)

// IDs hands out event identifiers. The sequence never restarts, so ids
// from a re-parse cannot collide with ids already handed out.
type IDs struct {
	seq int
}

// Next returns a fresh id for an event on the given day number.
func (g *IDs) Next(day int) string {
	g.seq++
	return fmt.Sprintf("event-%d-%d", day, g.seq)
}

// ParseResult is the outcome of parsing raw itinerary lines.
type ParseResult struct {
	Days []core.Day
	// Skipped holds lines that were neither day markers nor entries.
	Skipped []string
}

// Empty reports whether nothing parsed into a day.
func (r ParseResult) Empty() bool {
	return len(r.Days) == 0
}

// Err returns core.ErrEmptyItinerary for an empty result, nil otherwise.
func (r ParseResult) Err() error {
	if r.Empty() {
		return core.ErrEmptyItinerary
	}
	return nil
}

// Parse turns raw lines into days of events.
//
// A line containing "day" (any case) closes the current day. A line of the
// form "H:MM - activity" or "HH:MM - activity" adds an event. Anything else
// is logged and skipped. Each day is sorted by time before returning.
func Parse(lines []string, ids *IDs) ParseResult {
	if ids == nil {
		ids = &IDs{}
	}

	var res ParseResult
	var current core.Day
	dayNumber := 1

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.Contains(strings.ToLower(line), "day") {
			if len(current) > 0 {
				res.Days = append(res.Days, current)
			}
			current = nil
			dayNumber++
			continue
		}

		m := entryRe.FindStringSubmatch(line)
		if m == nil {
			appLog.Info("parser: skipping line", "index", i, "line", line, "err", core.ErrMalformedLine)
			res.Skipped = append(res.Skipped, line)
			continue
		}

		t, err := timegrid.Normalize(m[1])
		if err != nil {
			appLog.Info("parser: skipping line", "index", i, "line", line, "err", err)
			res.Skipped = append(res.Skipped, line)
			continue
		}

		current = append(current, core.Event{
			ID:       ids.Next(dayNumber),
			Time:     t,
			Activity: strings.TrimSpace(m[2]),
		})
	}

	if len(current) > 0 {
		res.Days = append(res.Days, current)
	}

	for _, day := range res.Days {
		sortDay(day)
	}

	appLog.Debug("parser: done", "days", len(res.Days), "skipped", len(res.Skipped))
	return res
}

// sortDay stable-sorts a day by start time. Times are assumed valid.
func sortDay(day core.Day) {
	slices.SortStableFunc(day, func(a, b core.Event) int {
		am, _ := timegrid.ParseMinutes(a.Time)
		bm, _ := timegrid.ParseMinutes(b.Time)
		return am - bm
	})
}
