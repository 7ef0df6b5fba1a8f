package planner

import (
	"fmt"

	"github.com/theakshaypant/dayplan/internal/core"
	"github.com/theakshaypant/dayplan/internal/timegrid"
)

// Schedule is every day of the itinerary plus the duration of each event,
// in height units (4 per hour).
type Schedule struct {
	days      []core.Day
	durations map[string]float64
}

// NewSchedule copies days and derives each event's duration from the gap
// to the next event; the last event of a day gets timegrid.DefaultUnits.
func NewSchedule(days []core.Day) *Schedule {
	s := &Schedule{
		days:      make([]core.Day, len(days)),
		durations: make(map[string]float64),
	}
	for i, d := range days {
		s.days[i] = d.Clone()
	}
	s.Recompute()
	return s
}

// Recompute re-derives the whole duration map from the current times.
func (s *Schedule) Recompute() {
	s.durations = make(map[string]float64)
	for i := range s.days {
		s.recomputeDay(i)
	}
}

func (s *Schedule) recomputeDay(i int) {
	day := s.days[i]
	for j, e := range day {
		if j < len(day)-1 {
			s.durations[e.ID] = timegrid.HeightUnits(e.Time, day[j+1].Time)
		} else {
			s.durations[e.ID] = timegrid.DefaultUnits
		}
	}
}

// DayCount returns the number of days.
func (s *Schedule) DayCount() int {
	return len(s.days)
}

// Day returns a copy of the events of day i.
func (s *Schedule) Day(i int) (core.Day, error) {
	if err := s.checkDay(i); err != nil {
		return nil, err
	}
	return s.days[i].Clone(), nil
}

// Duration returns the height of an event in units.
func (s *Schedule) Duration(id string) (float64, bool) {
	d, ok := s.durations[id]
	return d, ok
}

// DurationMinutes returns the duration of an event rounded to minutes.
func (s *Schedule) DurationMinutes(id string) int {
	u, _ := s.Duration(id)
	return timegrid.UnitsToMinutes(u)
}

// Locate returns the day index and position of an event.
func (s *Schedule) Locate(id string) (day, idx int, ok bool) {
	for d, events := range s.days {
		if i := events.Index(id); i >= 0 {
			return d, i, true
		}
	}
	return 0, 0, false
}

func (s *Schedule) checkDay(i int) error {
	if i < 0 || i >= len(s.days) {
		return fmt.Errorf("%w: %d (have %d)", core.ErrDayOutOfRange, i+1, len(s.days))
	}
	return nil
}

// EventView is one laid-out block of the timeline.
type EventView struct {
	core.Event
	// Offset from midnight and height, both in units
	Offset float64
	Height float64
	// End time, "HH:MM" (clamped to 23:59)
	End     string
	Minutes int
}

// DayView is what a renderer needs to draw one day column.
type DayView struct {
	// Zero-based day index
	Index  int
	Events []EventView
}

// View lays out day i for rendering.
func (s *Schedule) View(i int) (DayView, error) {
	if err := s.checkDay(i); err != nil {
		return DayView{}, err
	}
	v := DayView{Index: i}
	for _, e := range s.days[i] {
		start, err := timegrid.ParseMinutes(e.Time)
		if err != nil {
			return DayView{}, fmt.Errorf("event %s: %w", e.ID, err)
		}
		height, _ := s.Duration(e.ID)
		mins := timegrid.UnitsToMinutes(height)
		v.Events = append(v.Events, EventView{
			Event:   e,
			Offset:  timegrid.MinutesToUnits(start),
			Height:  height,
			End:     timegrid.FormatMinutes(start + mins),
			Minutes: mins,
		})
	}
	return v, nil
}
