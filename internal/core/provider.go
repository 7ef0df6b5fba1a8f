package core

import (
	"context"
	"time"
)

// ItineraryRequest describes the trip a source should plan or look up.
type ItineraryRequest struct {
	// Free-text preferences typed by the user (e.g. "museums, ramen, no hiking")
	Preferences string
	// Destination city, used by generating sources
	City string
	// Number of days to return
	Days int

	// First day of the range, used by calendar-backed sources.
	// Zero means today.
	Start time.Time
}

// DefaultItineraryRequest returns a one-day request starting today.
func DefaultItineraryRequest() ItineraryRequest {
	return ItineraryRequest{
		Days:  1,
		Start: time.Now(),
	}
}

// Source produces raw itinerary lines: day markers ("Day 1") and
// "HH:MM - activity" entries. It does no scheduling of its own.
type Source interface {
	// ID returns the unique identifier from the config (e.g. "work_outlook")
	ID() string
	// Name returns a human-readable label (e.g. "Trip generator")
	Name() string
	// FetchItinerary returns the raw lines for the request.
	// Blocks until done or context is cancelled. Errors wrap ErrNetwork.
	FetchItinerary(ctx context.Context, req ItineraryRequest) ([]string, error)
}

// PromptedSource is implemented by sources that need user preferences
// before they can return anything useful.
type PromptedSource interface {
	Source
	RequiresPreferences() bool
}

// CalendarSource is a source backed by a calendar account that can list
// its calendars and restrict fetching to a subset of them.
type CalendarSource interface {
	Source
	Login(ctx context.Context) error
	// Calendars returns the available calendars (ID -> Name).
	Calendars() map[string]string
	// SetCalendarFilter limits fetching to the given calendar IDs.
	// Empty means all calendars.
	SetCalendarFilter(ids []string)
}
