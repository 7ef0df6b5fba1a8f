package planner

import (
	"errors"
	"testing"

	"github.com/theakshaypant/dayplan/internal/core"
)

func TestSession_DayNavigation(t *testing.T) {
	s := NewSession()
	res := s.Load([]string{"Day 1", "09:00 - A", "Day 2", "10:00 - B", "Day 3", "11:00 - C"})
	if res.Empty() || s.DayCount() != 3 {
		t.Fatalf("loaded %d days", s.DayCount())
	}

	if s.PrevDay() {
		t.Error("PrevDay moved before the first day")
	}
	if !s.NextDay() || !s.NextDay() || s.Day() != 2 {
		t.Fatalf("day = %d after two NextDay calls", s.Day())
	}
	if s.NextDay() {
		t.Error("NextDay moved past the last day")
	}

	v, err := s.View()
	if err != nil || v.Index != 2 || v.Events[0].Activity != "C" {
		t.Fatalf("View = %+v, %v", v, err)
	}
	if err := s.SetDay(7); !errors.Is(err, core.ErrDayOutOfRange) {
		t.Fatalf("SetDay(7): err = %v", err)
	}
}

func TestSession_ReloadResetsDayAndKeepsIDsUnique(t *testing.T) {
	s := NewSession()
	lines := []string{"Day 1", "09:00 - A", "Day 2", "10:00 - B"}
	s.Load(lines)
	first, _ := s.Schedule().Day(0)
	s.NextDay()

	s.Load(lines)
	if s.Day() != 0 {
		t.Fatalf("day = %d after reload", s.Day())
	}
	second, _ := s.Schedule().Day(0)
	if first[0].ID == second[0].ID {
		t.Fatalf("reload reused id %q", first[0].ID)
	}
}

func TestSession_EmptyState(t *testing.T) {
	s := NewSession()
	s.Load([]string{"nothing here"})
	if !s.Empty() {
		t.Fatal("expected empty session")
	}
	if _, err := s.View(); !errors.Is(err, core.ErrEmptyItinerary) {
		t.Fatalf("View: err = %v", err)
	}
	if _, err := s.Move("x", "10:00"); !errors.Is(err, core.ErrEmptyItinerary) {
		t.Fatalf("Move: err = %v", err)
	}

	// Adding into the empty state opens the first day.
	ev, err := s.Add(AddRequest{Activity: "Walk", Time: "07:00", DurationMinutes: 60})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if s.Empty() || ev.ID == "" {
		t.Fatalf("add did not open a day: %+v", ev)
	}
}

func TestSession_Nudge(t *testing.T) {
	s := NewSession()
	s.Load([]string{"Day 1", "08:00 - A", "12:00 - B"})
	day, _ := s.Schedule().Day(0)
	a, b := day[0].ID, day[1].ID

	// A runs 08:00-12:00 (gap to B), so nudging B up runs into A and swaps.
	res, err := s.Nudge(b, -10)
	if err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	if !res.Swapped || res.BlockerID != a {
		t.Fatalf("result = %+v, want swap with A", res)
	}

	// Nudging past midnight clamps and does nothing at the edge.
	s.Load([]string{"Day 1", "00:00 - Early"})
	day, _ = s.Schedule().Day(0)
	res, err = s.Nudge(day[0].ID, -10)
	if err != nil || res.Time != "00:00" {
		t.Fatalf("Nudge at midnight = %+v, %v", res, err)
	}

	if _, err := s.Nudge("missing", 10); !errors.Is(err, core.ErrUnknownEvent) {
		t.Fatalf("Nudge unknown: err = %v", err)
	}
}
