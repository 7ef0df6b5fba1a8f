package planner

import (
	"errors"
	"testing"

	"github.com/theakshaypant/dayplan/internal/core"
)

// Six terminal rows per hour is 1.5 rows per height unit.
const rowsPerUnit = 1.5

func newDragSession(t *testing.T) (*Session, *Drag, core.Day) {
	t.Helper()
	s := NewSession()
	s.Load([]string{"Day 1", "09:00 - Museum", "10:00 - Lunch", "15:00 - Park"})
	day, err := s.Schedule().Day(0)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	return s, NewDrag(s, rowsPerUnit), day
}

func TestDrag_PreviewAndCommit(t *testing.T) {
	s, d, day := newDragSession(t)
	museum := day[0].ID

	if err := d.Press(true, museum, 100); err != nil {
		t.Fatalf("Press: %v", err)
	}
	if d.State() != DragDragging || d.EventID() != museum {
		t.Fatalf("state = %v, id = %q", d.State(), d.EventID())
	}

	// Two units down is half an hour.
	p, ok := d.Move(100 + 2*rowsPerUnit)
	if !ok || p.Time != "09:30" {
		t.Fatalf("preview = %+v, %v; want 09:30", p, ok)
	}
	if got := layout(t, s.Schedule(), 0); got[0] != museum+"@09:00" {
		t.Fatalf("preview touched the schedule: %v", got)
	}

	// 32 units down is 17:00, a free slot.
	res, err := d.Release(100 + 32*rowsPerUnit)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if res.Time != "17:00" || res.Swapped {
		t.Fatalf("result = %+v", res)
	}
	if d.State() != DragIdle || d.Active() {
		t.Fatalf("drag not back to idle: %v", d.State())
	}
	got := layout(t, s.Schedule(), 0)
	if got[2] != museum+"@17:00" {
		t.Errorf("day = %v", got)
	}
}

func TestDrag_SnapsToTenMinutes(t *testing.T) {
	_, d, day := newDragSession(t)
	if err := d.Press(true, day[0].ID, 0); err != nil {
		t.Fatalf("Press: %v", err)
	}
	// 0.4 units is 6 minutes, which snaps to 10.
	p, _ := d.Move(0.4 * rowsPerUnit)
	if p.Time != "09:10" {
		t.Errorf("preview time = %s, want 09:10", p.Time)
	}
}

func TestDrag_ClampsToColumn(t *testing.T) {
	_, d, day := newDragSession(t)
	if err := d.Press(true, day[1].ID, 50); err != nil {
		t.Fatalf("Press: %v", err)
	}
	if p, _ := d.Move(-1000); p.Time != "00:00" || p.Offset != 0 {
		t.Errorf("dragging above the column: %+v", p)
	}
	if p, _ := d.Move(1000); p.Time != "23:00" {
		t.Errorf("dragging below the column: %+v", p)
	}
}

func TestDrag_IgnoresSecondaryAndNested(t *testing.T) {
	_, d, day := newDragSession(t)

	if err := d.Press(false, day[0].ID, 10); err != nil || d.Active() {
		t.Fatalf("secondary press started a drag: err=%v active=%v", err, d.Active())
	}
	if err := d.Press(true, day[0].ID, 10); err != nil {
		t.Fatalf("Press: %v", err)
	}
	if err := d.Press(true, day[1].ID, 20); err != nil || d.EventID() != day[0].ID {
		t.Fatalf("second press replaced the drag: err=%v id=%q", err, d.EventID())
	}
}

func TestDrag_Errors(t *testing.T) {
	_, d, _ := newDragSession(t)

	if _, err := d.Release(10); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("Release while idle: err = %v", err)
	}
	if _, ok := d.Move(10); ok {
		t.Fatal("Move while idle reported a preview")
	}
	if err := d.Press(true, "missing", 10); !errors.Is(err, core.ErrUnknownEvent) {
		t.Fatalf("Press on unknown id: err = %v", err)
	}
	if d.Active() {
		t.Fatal("failed press left the drag active")
	}

	empty := NewDrag(NewSession(), rowsPerUnit)
	if err := empty.Press(true, "x", 0); !errors.Is(err, core.ErrEmptyItinerary) {
		t.Fatalf("Press on empty session: err = %v", err)
	}
}

func TestDragState_String(t *testing.T) {
	if DragCommitting.String() != "committing" || DragState(9).String() != "DragState(9)" {
		t.Fatal("unexpected DragState names")
	}
}

func TestDrag_Abandon(t *testing.T) {
	s, d, day := newDragSession(t)
	museum := day[0].ID

	if err := d.Press(true, museum, 100); err != nil {
		t.Fatalf("Press: %v", err)
	}
	d.Move(100 + 32*rowsPerUnit)
	d.Abandon()

	if d.State() != DragIdle || d.EventID() != "" || d.Last() != (Preview{}) {
		t.Fatalf("after Abandon: state = %v, id = %q, last = %+v", d.State(), d.EventID(), d.Last())
	}
	if _, err := d.Release(100); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("Release after Abandon: err = %v, want ErrNotDragging", err)
	}
	if got := layout(t, s.Schedule(), 0); got[0] != museum+"@09:00" {
		t.Errorf("abandoned drag moved the event: %v", got)
	}
}
