package core

// Event is a single scheduled activity on the day timeline.
// Its duration is not stored here; the schedule keeps it in a side map
// keyed by ID so that moves only ever rewrite Time.
type Event struct {
	// Unique ID (stable for the lifetime of the session)
	ID string
	// Start time, zero-padded "HH:MM"
	Time string
	// Display label, e.g. "Lunch at Tsukiji Outer Market"
	Activity string
}

// Day is one 24-hour column of events ordered by start time.
type Day []Event

// Clone returns a copy of the day that can be mutated freely.
func (d Day) Clone() Day {
	if d == nil {
		return nil
	}
	out := make(Day, len(d))
	copy(out, d)
	return out
}

// Index returns the position of the event with the given ID, or -1.
func (d Day) Index(id string) int {
	for i, e := range d {
		if e.ID == id {
			return i
		}
	}
	return -1
}
