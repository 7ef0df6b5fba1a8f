package core

import "errors"

var (
	// ErrMalformedLine marks a raw itinerary line that is neither a day
	// marker nor a "HH:MM - activity" entry. Never fatal.
	ErrMalformedLine = errors.New("malformed itinerary line")
	// ErrEmptyItinerary means a source returned nothing that parsed into a day.
	ErrEmptyItinerary = errors.New("itinerary has no days")
	// ErrNetwork wraps any failure of an itinerary source.
	ErrNetwork = errors.New("itinerary source failed")
	// ErrConflict is returned when a manual add overlaps an existing event.
	ErrConflict = errors.New("time slot conflicts with existing events")
	// ErrValidation is returned when a manual add is missing a field.
	ErrValidation = errors.New("invalid event")

	ErrInvalidTime   = errors.New("invalid time")
	ErrUnknownEvent  = errors.New("unknown event")
	ErrDayOutOfRange = errors.New("day out of range")
)
