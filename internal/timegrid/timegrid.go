// Package timegrid converts between clock strings, minutes, decimal hours
// and the vertical layout unit of the day timeline.
//
// A height unit is 15 minutes of wall-clock time, so an hour is 4 units
// and a full day column is 96 units tall.
package timegrid

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/theakshaypant/dayplan/internal/core"
)

const (
	UnitsPerHour   = 4
	MinutesPerUnit = 15
	MinutesPerDay  = 24 * 60
	LastMinute     = MinutesPerDay - 1

	// SnapMinutes is the drag granularity.
	SnapMinutes = 10
	// DefaultUnits is the height given to the last event of a day and
	// the fallback for unparsable intervals.
	DefaultUnits = 4.0
	// MaxOffset is the lowest position a block can be dragged to (23:00).
	MaxOffset = 23 * UnitsPerHour
)

// snapUnits is one 10-minute step expressed in height units.
const snapUnits = float64(UnitsPerHour) / (60 / SnapMinutes)

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// split parses "H:MM" or "HH:MM" into validated hour and minute fields.
func split(s string) (int, int, error) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", core.ErrInvalidTime, s)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h > 23 || min > 59 {
		return 0, 0, fmt.Errorf("%w: %q out of range", core.ErrInvalidTime, s)
	}
	return h, min, nil
}

// Valid reports whether s is a clock time this package can parse.
func Valid(s string) bool {
	_, _, err := split(s)
	return err == nil
}

// Normalize returns s as zero-padded "HH:MM".
func Normalize(s string) (string, error) {
	h, m, err := split(s)
	if err != nil {
		return "", err
	}
	return format(h, m), nil
}

// ParseMinutes returns the minutes since midnight for an "HH:MM" string.
func ParseMinutes(s string) (int, error) {
	h, m, err := split(s)
	if err != nil {
		return 0, err
	}
	return h*60 + m, nil
}

// FormatMinutes renders minutes since midnight as "HH:MM".
// Values outside the day are clamped.
func FormatMinutes(mins int) string {
	mins = clampInt(mins, 0, LastMinute)
	return format(mins/60, mins%60)
}

// ToDecimalHours returns hours + minutes/60.
func ToDecimalHours(s string) (float64, error) {
	h, m, err := split(s)
	if err != nil {
		return 0, err
	}
	return float64(h) + float64(m)/60, nil
}

// DecimalHoursToTime is the inverse of ToDecimalHours. Minutes are rounded
// to the nearest integer; a rounded 60 carries into the hour.
func DecimalHoursToTime(d float64) string {
	hours := int(math.Floor(d))
	minutes := int(math.Round((d - float64(hours)) * 60))
	if minutes == 60 {
		minutes = 0
		hours++
	}
	return format(hours, minutes)
}

// HeightUnits returns the height of the interval [start, end) in units.
// Returns DefaultUnits if either time is malformed.
func HeightUnits(start, end string) float64 {
	s, err := ToDecimalHours(start)
	if err != nil {
		return DefaultUnits
	}
	e, err := ToDecimalHours(end)
	if err != nil {
		return DefaultUnits
	}
	return (e - s) * UnitsPerHour
}

// PositionFromTime maps a time of day to its vertical offset in units.
func PositionFromTime(s string) (float64, error) {
	h, m, err := split(s)
	if err != nil {
		return 0, err
	}
	return float64(h*UnitsPerHour) + float64(m)/60*UnitsPerHour, nil
}

// TimeFromPosition maps a vertical offset back to a time of day, snapping
// minutes to the nearest 10 and clamping the hour to [0,23].
func TimeFromPosition(offset float64) string {
	if offset < 0 {
		offset = 0
	}
	totalHours := offset / UnitsPerHour
	hours := int(math.Floor(totalHours))
	frac := totalHours - float64(hours)
	minutes := snapMinutes(int(math.Round(frac * 60)))
	if minutes == 60 {
		minutes = 0
		hours++
	}
	return format(clampInt(hours, 0, 23), minutes)
}

// SnapOffset rounds an offset to the 10-minute grid.
func SnapOffset(offset float64) float64 {
	return math.Round(offset/snapUnits) * snapUnits
}

// ClampOffset bounds an offset to [0, MaxOffset].
func ClampOffset(offset float64) float64 {
	return math.Max(0, math.Min(MaxOffset, offset))
}

// UnitsToMinutes converts a height to whole minutes.
func UnitsToMinutes(units float64) int {
	return int(math.Round(units * MinutesPerUnit))
}

// MinutesToUnits converts minutes to a height.
func MinutesToUnits(mins int) float64 {
	return float64(mins) * UnitsPerHour / 60
}

func snapMinutes(m int) int {
	return int(math.Round(float64(m)/SnapMinutes)) * SnapMinutes
}

func format(h, m int) string {
	return fmt.Sprintf("%02d:%02d", h, m)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
