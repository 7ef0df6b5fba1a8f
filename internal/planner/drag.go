package planner

import (
	"errors"
	"fmt"

	"github.com/theakshaypant/dayplan/internal/core"
	appLog "github.com/theakshaypant/dayplan/internal/log"
	"github.com/theakshaypant/dayplan/internal/timegrid"
)

// ErrNotDragging is returned by Release when no drag is in progress.
var ErrNotDragging = errors.New("no drag in progress")

// DragState is the phase of a pointer drag.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragCommitting
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragDragging:
		return "dragging"
	case DragCommitting:
		return "committing"
	default:
		return fmt.Sprintf("DragState(%d)", int(s))
	}
}

// Preview is where the dragged block would land if released now.
type Preview struct {
	Offset float64
	Time   string
}

// Drag turns pointer movement over the timeline into a move of one event
// of the session's current day.
//
// Pointer positions are in whatever unit the front end uses (terminal rows,
// pixels); pointsPerUnit says how many of them make one height unit.
type Drag struct {
	session *Session
	scale   float64

	state       DragState
	id          string
	startY      float64
	startOffset float64
	last        Preview
}

func NewDrag(session *Session, pointsPerUnit float64) *Drag {
	if pointsPerUnit <= 0 {
		pointsPerUnit = 1
	}
	return &Drag{session: session, scale: pointsPerUnit}
}

func (d *Drag) State() DragState { return d.state }

// Active reports whether a drag owns the pointer.
func (d *Drag) Active() bool { return d.state == DragDragging }

// EventID returns the id of the event being dragged, or "".
func (d *Drag) EventID() string { return d.id }

// Last returns the most recent preview.
func (d *Drag) Last() Preview { return d.last }

// Press starts a drag on an event. Non-primary buttons and presses during
// an active drag are ignored.
func (d *Drag) Press(primary bool, id string, y float64) error {
	if !primary || d.state != DragIdle {
		return nil
	}
	if d.session.Empty() {
		return core.ErrEmptyItinerary
	}
	day := d.session.schedule.days[d.session.day]
	i := day.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", core.ErrUnknownEvent, id)
	}
	offset, err := timegrid.PositionFromTime(day[i].Time)
	if err != nil {
		return err
	}

	d.state = DragDragging
	d.id = id
	d.startY = y
	d.startOffset = offset
	d.last = Preview{Offset: offset, Time: day[i].Time}
	appLog.Debug("drag: press", "id", id, "offset", offset)
	return nil
}

// Move updates the preview for the pointer at y. The schedule is not
// touched. Returns false when no drag is active.
func (d *Drag) Move(y float64) (Preview, bool) {
	if d.state != DragDragging {
		return Preview{}, false
	}
	d.last = d.candidate(y)
	return d.last, true
}

// Release commits the drop at y through the session and returns to idle,
// whatever the outcome.
func (d *Drag) Release(y float64) (MoveResult, error) {
	if d.state != DragDragging {
		return MoveResult{}, ErrNotDragging
	}
	d.state = DragCommitting
	p := d.candidate(y)
	id := d.id

	res, err := d.session.Move(id, p.Time)

	d.state = DragIdle
	d.id = ""
	d.last = Preview{}

	if err != nil {
		appLog.Error("drag: commit failed", err, "id", id, "time", p.Time)
		return res, err
	}
	appLog.Debug("drag: committed", "id", id, "time", res.Time, "swapped", res.Swapped)
	return res, nil
}

// Abandon drops an active drag without moving anything. Used when the
// schedule under the drag is replaced.
func (d *Drag) Abandon() {
	if d.state == DragIdle {
		return
	}
	appLog.Debug("drag: abandoned", "id", d.id)
	d.state = DragIdle
	d.id = ""
	d.last = Preview{}
}

func (d *Drag) candidate(y float64) Preview {
	delta := (y - d.startY) / d.scale
	offset := timegrid.ClampOffset(timegrid.SnapOffset(d.startOffset + delta))
	return Preview{Offset: offset, Time: timegrid.TimeFromPosition(offset)}
}
