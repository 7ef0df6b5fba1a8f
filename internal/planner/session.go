package planner

import (
	"fmt"

	"github.com/theakshaypant/dayplan/internal/core"
	appLog "github.com/theakshaypant/dayplan/internal/log"
	"github.com/theakshaypant/dayplan/internal/timegrid"
)

// Session is the state of one planning session: the schedule, the day being
// viewed and the id sequence. It is not safe for concurrent use; the TUI
// drives it from its update loop only.
type Session struct {
	schedule *Schedule
	day      int
	ids      *IDs
}

func NewSession() *Session {
	return &Session{
		schedule: NewSchedule(nil),
		ids:      &IDs{},
	}
}

// Load parses lines and replaces the schedule with the result. An empty
// result leaves the session in the empty state.
func (s *Session) Load(lines []string) ParseResult {
	res := Parse(lines, s.ids)
	s.schedule = NewSchedule(res.Days)
	s.day = 0
	appLog.Info("session: loaded itinerary", "days", len(res.Days), "skipped", len(res.Skipped))
	return res
}

// Schedule returns the live schedule.
func (s *Session) Schedule() *Schedule {
	return s.schedule
}

// Day returns the zero-based index of the current day.
func (s *Session) Day() int {
	return s.day
}

func (s *Session) DayCount() int {
	return s.schedule.DayCount()
}

// Empty reports whether there is nothing to show.
func (s *Session) Empty() bool {
	return s.schedule.DayCount() == 0
}

// SetDay selects the day to work on.
func (s *Session) SetDay(i int) error {
	if err := s.schedule.checkDay(i); err != nil {
		return err
	}
	s.day = i
	return nil
}

// NextDay advances to the next day. Returns false on the last day.
func (s *Session) NextDay() bool {
	if s.day+1 >= s.schedule.DayCount() {
		return false
	}
	s.day++
	return true
}

// PrevDay goes back one day. Returns false on the first day.
func (s *Session) PrevDay() bool {
	if s.day == 0 {
		return false
	}
	s.day--
	return true
}

// View lays out the current day.
func (s *Session) View() (DayView, error) {
	if s.Empty() {
		return DayView{}, core.ErrEmptyItinerary
	}
	return s.schedule.View(s.day)
}

// Move moves an event of the current day to a new start time.
func (s *Session) Move(id, proposed string) (MoveResult, error) {
	if s.Empty() {
		return MoveResult{}, core.ErrEmptyItinerary
	}
	return s.schedule.Move(s.day, id, proposed)
}

// Nudge shifts an event of the current day by delta minutes. The new time
// is clamped to the day and goes through Move like a drop would.
func (s *Session) Nudge(id string, delta int) (MoveResult, error) {
	if s.Empty() {
		return MoveResult{}, core.ErrEmptyItinerary
	}
	day := s.schedule.days[s.day]
	i := day.Index(id)
	if i < 0 {
		return MoveResult{}, fmt.Errorf("%w: %s on day %d", core.ErrUnknownEvent, id, s.day+1)
	}
	cur, err := timegrid.ParseMinutes(day[i].Time)
	if err != nil {
		return MoveResult{}, err
	}
	next := min(max(cur+delta, 0), timegrid.LastMinute)
	if next == cur {
		return MoveResult{EventID: id, Time: day[i].Time}, nil
	}
	return s.schedule.Move(s.day, id, timegrid.FormatMinutes(next))
}

// Add inserts a manual event into the current day, or opens the first day
// when the session is empty.
func (s *Session) Add(req AddRequest) (core.Event, error) {
	return s.schedule.Add(s.day, req, s.ids)
}
