package planner

import (
	"fmt"
	"slices"
	"strings"

	"github.com/theakshaypant/dayplan/internal/core"
	appLog "github.com/theakshaypant/dayplan/internal/log"
	"github.com/theakshaypant/dayplan/internal/timegrid"
)

// Gaps shorter than this are closed by the sweep; longer ones are free time.
const maxClosedGap = 120

// DurationChoices are the durations (minutes) a manually added event may have.
var DurationChoices = []int{15, 30, 45, 60, 90, 120}

// MoveResult describes what a move did to the day.
type MoveResult struct {
	EventID string
	// Final start time of the moved event
	Time string
	// Swapped is set when the proposed slot was taken and the moved event
	// traded places with BlockerID.
	Swapped   bool
	BlockerID string
	// Shifted lists events the reflow sweep moved afterwards.
	Shifted []string
}

// AddRequest is a manually entered event.
type AddRequest struct {
	Activity        string
	Time            string
	DurationMinutes int
}

type slot struct {
	ev    core.Event
	start int
	dur   int
}

func (s slot) end() int { return s.start + s.dur }

// overlaps applies the three-way rule: the moving interval starts inside
// the other, ends inside it, or swallows it.
func overlaps(ms, me, es, ee int) bool {
	return (ms >= es && ms < ee) ||
		(me > es && me <= ee) ||
		(ms <= es && me >= ee)
}

// Move proposes a new start time for an event of the given day.
//
// If the new interval overlaps nothing, the event simply moves. Otherwise
// it swaps start times with the first blocking event (the blocker takes the
// moved event's original time) and the day is reflowed: gaps under two hours
// are closed and any overlap is pushed down, repeating until stable.
// The day is only committed once the whole operation succeeded.
func (s *Schedule) Move(day int, id, proposed string) (MoveResult, error) {
	if err := s.checkDay(day); err != nil {
		return MoveResult{}, err
	}
	t, err := timegrid.Normalize(proposed)
	if err != nil {
		return MoveResult{}, fmt.Errorf("move %s: %w", id, err)
	}
	slots, err := s.slots(day)
	if err != nil {
		return MoveResult{}, err
	}

	idx := slices.IndexFunc(slots, func(sl slot) bool { return sl.ev.ID == id })
	if idx < 0 {
		return MoveResult{}, fmt.Errorf("%w: %s on day %d", core.ErrUnknownEvent, id, day+1)
	}

	ms, _ := timegrid.ParseMinutes(t)
	me := ms + slots[idx].dur

	blocker := -1
	for i, o := range slots {
		if i == idx {
			continue
		}
		if overlaps(ms, me, o.start, o.end()) {
			blocker = i
			break
		}
	}

	res := MoveResult{EventID: id}

	if blocker < 0 {
		slots[idx].start = ms
		sortSlots(slots)
		s.commit(day, slots)
		res.Time = t
		appLog.Debug("resolver: moved", "id", id, "time", t)
		return res, nil
	}

	res.Swapped = true
	res.BlockerID = slots[blocker].ev.ID
	slots[idx].start, slots[blocker].start = slots[blocker].start, slots[idx].start
	sortSlots(slots)

	before := make(map[string]int, len(slots))
	for _, sl := range slots {
		before[sl.ev.ID] = sl.start
	}

	reflow(slots)

	for _, sl := range slots {
		if sl.start != before[sl.ev.ID] {
			res.Shifted = append(res.Shifted, sl.ev.ID)
		}
		if sl.ev.ID == id {
			res.Time = timegrid.FormatMinutes(sl.start)
		}
	}

	s.commit(day, slots)
	appLog.Debug("resolver: swapped", "id", id, "blocker", res.BlockerID, "time", res.Time, "shifted", len(res.Shifted))
	return res, nil
}

// reflow runs the gap-closing sweep and the overlap sweep until a full
// round changes nothing. Bounded by the number of events.
func reflow(slots []slot) {
	for round := 0; round <= len(slots); round++ {
		changed := false

		for i := 0; i+1 < len(slots); i++ {
			gap := slots[i+1].start - slots[i].end()
			if gap > 0 && gap < maxClosedGap {
				slots[i+1].start = slots[i].end()
				changed = true
			}
		}

		for i := 1; i < len(slots); i++ {
			prevEnd := slots[i-1].end()
			if prevEnd <= slots[i].start {
				continue
			}
			// Start times cannot leave the day.
			next := min(prevEnd, timegrid.LastMinute)
			if next != slots[i].start {
				slots[i].start = next
				changed = true
			}
		}

		if !changed {
			return
		}
	}
}

// Available reports whether [start, start+minutes) is free on the given day.
// A day index equal to DayCount is a new, empty day.
func (s *Schedule) Available(day int, start string, minutes int) (bool, error) {
	ms, err := timegrid.ParseMinutes(start)
	if err != nil {
		return false, err
	}
	if day == len(s.days) {
		return true, nil
	}
	if err := s.checkDay(day); err != nil {
		return false, err
	}
	slots, err := s.slots(day)
	if err != nil {
		return false, err
	}
	me := ms + minutes
	for _, o := range slots {
		if overlaps(ms, me, o.start, o.end()) {
			return false, nil
		}
	}
	return true, nil
}

// Validate checks the fields of a manual add.
func (r AddRequest) Validate() error {
	if strings.TrimSpace(r.Activity) == "" {
		return fmt.Errorf("%w: activity is required", core.ErrValidation)
	}
	if strings.TrimSpace(r.Time) == "" {
		return fmt.Errorf("%w: time is required", core.ErrValidation)
	}
	if !timegrid.Valid(strings.TrimSpace(r.Time)) {
		return fmt.Errorf("%w: time %q is not HH:MM", core.ErrValidation, r.Time)
	}
	if !slices.Contains(DurationChoices, r.DurationMinutes) {
		return fmt.Errorf("%w: duration must be one of %v minutes", core.ErrValidation, DurationChoices)
	}
	return nil
}

// Add inserts a manually entered event after checking that its slot is
// free. Adding to day DayCount opens a new day. Nothing is changed when an
// error is returned.
func (s *Schedule) Add(day int, req AddRequest, ids *IDs) (core.Event, error) {
	if err := req.Validate(); err != nil {
		return core.Event{}, err
	}
	if day < 0 || day > len(s.days) {
		return core.Event{}, fmt.Errorf("%w: %d (have %d)", core.ErrDayOutOfRange, day+1, len(s.days))
	}

	t, _ := timegrid.Normalize(strings.TrimSpace(req.Time))
	ok, err := s.Available(day, t, req.DurationMinutes)
	if err != nil {
		return core.Event{}, err
	}
	if !ok {
		return core.Event{}, fmt.Errorf("%w: %s for %d minutes", core.ErrConflict, t, req.DurationMinutes)
	}

	if ids == nil {
		ids = &IDs{}
	}
	ev := core.Event{
		ID:       s.freshID(ids, day+1),
		Time:     t,
		Activity: strings.TrimSpace(req.Activity),
	}

	if day == len(s.days) {
		s.days = append(s.days, nil)
	}
	updated := append(s.days[day].Clone(), ev)
	sortDay(updated)
	s.days[day] = updated
	s.durations[ev.ID] = timegrid.MinutesToUnits(req.DurationMinutes)

	appLog.Debug("resolver: added", "id", ev.ID, "day", day+1, "time", t, "minutes", req.DurationMinutes)
	return ev, nil
}

// freshID draws ids until one is not already in the schedule. A sequence
// that did not produce the schedule's ids can otherwise repeat one.
func (s *Schedule) freshID(ids *IDs, day int) string {
	for {
		id := ids.Next(day)
		if _, taken := s.durations[id]; !taken {
			return id
		}
	}
}

// slots snapshots a day as minute intervals.
func (s *Schedule) slots(day int) ([]slot, error) {
	events := s.days[day]
	out := make([]slot, 0, len(events))
	for _, e := range events {
		start, err := timegrid.ParseMinutes(e.Time)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		out = append(out, slot{ev: e, start: start, dur: s.DurationMinutes(e.ID)})
	}
	return out, nil
}

// commit writes slots back as the day's events.
func (s *Schedule) commit(day int, slots []slot) {
	events := make(core.Day, len(slots))
	for i, sl := range slots {
		ev := sl.ev
		ev.Time = timegrid.FormatMinutes(sl.start)
		events[i] = ev
	}
	s.days[day] = events
}

func sortSlots(slots []slot) {
	slices.SortStableFunc(slots, func(a, b slot) int {
		return a.start - b.start
	})
}
