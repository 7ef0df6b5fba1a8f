package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/theakshaypant/dayplan/internal/core"
	appLog "github.com/theakshaypant/dayplan/internal/log"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type GoogleAdapter struct {
	id        string
	name      string
	client    *http.Client
	service   *calendar.Service
	config    *oauth2.Config
	credsFile string
	tokenFile string
	calendars map[string]string
	filter    []string
}

func NewGoogleAdapter(id, name, credsFile, tokenFile string) *GoogleAdapter {
	return &GoogleAdapter{
		id:        id,
		name:      name,
		credsFile: credsFile,
		tokenFile: tokenFile,
		calendars: make(map[string]string),
	}
}

func (g *GoogleAdapter) ID() string   { return g.id }
func (g *GoogleAdapter) Name() string { return g.name }

// Login loads credentials and token, then initializes the Calendar service.
// Run `dayplan auth` first to generate the token file.
func (g *GoogleAdapter) Login(ctx context.Context) error {
	b, err := os.ReadFile(g.credsFile)
	if err != nil {
		return fmt.Errorf("read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, calendar.CalendarReadonlyScope)
	if err != nil {
		return fmt.Errorf("parse credentials: %w", err)
	}
	g.config = config

	tok, err := tokenFromFile(g.tokenFile)
	if err != nil {
		return fmt.Errorf("read token file (run 'dayplan auth' first): %w", err)
	}

	g.client = g.config.Client(ctx, tok)
	g.service, err = calendar.NewService(ctx, option.WithHTTPClient(g.client))
	if err != nil {
		return err
	}

	if err := g.loadCalendarList(ctx); err != nil {
		return fmt.Errorf("load calendar list: %w", err)
	}

	return nil
}

// loadCalendarList fetches all calendars the user has access to.
func (g *GoogleAdapter) loadCalendarList(ctx context.Context) error {
	calList, err := g.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return err
	}

	for _, cal := range calList.Items {
		g.calendars[cal.Id] = cal.Summary
	}
	return nil
}

// Calendars returns a list of available calendars (ID -> Name).
func (g *GoogleAdapter) Calendars() map[string]string {
	return g.calendars
}

// SetCalendarFilter restricts FetchItinerary to the given calendar IDs.
func (g *GoogleAdapter) SetCalendarFilter(ids []string) {
	g.filter = ids
}

// tokenFromFile reads an OAuth token from a JSON file.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// FetchItinerary reads the timed events of the requested days and returns
// them as itinerary lines.
func (g *GoogleAdapter) FetchItinerary(ctx context.Context, req core.ItineraryRequest) ([]string, error) {
	if g.service == nil {
		return nil, fmt.Errorf("%w: google calendar not logged in", core.ErrNetwork)
	}

	start, end := req.RangeStart(), req.RangeEnd()

	calendarIDs := g.filter
	if len(calendarIDs) == 0 {
		for calID := range g.calendars {
			calendarIDs = append(calendarIDs, calID)
		}
		slices.Sort(calendarIDs)
	}

	var entries []core.Entry
	var lastErr error
	fetched := 0
	for _, calID := range calendarIDs {
		if _, exists := g.calendars[calID]; !exists {
			continue
		}
		got, err := g.fetchEntriesFromCalendar(ctx, calID, start, end)
		if err != nil {
			// Keep going with the other calendars
			appLog.Error("google: calendar fetch failed", err, "calendar", calID)
			lastErr = err
			continue
		}
		fetched++
		entries = append(entries, got...)
	}

	if fetched == 0 && lastErr != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrNetwork, lastErr)
	}

	entries = core.Deduplicate(entries)
	appLog.Debug("google: fetched entries", "count", len(entries), "calendars", fetched)
	return core.ItineraryLines(entries, start, req.Days), nil
}

func (g *GoogleAdapter) fetchEntriesFromCalendar(ctx context.Context, calendarID string, start, end time.Time) ([]core.Entry, error) {
	// Google API requires RFC3339 format
	tMin := start.Format(time.RFC3339)
	tMax := end.Format(time.RFC3339)

	var results []core.Entry
	pageToken := ""

	for {
		req := g.service.Events.List(calendarID).
			ShowDeleted(false).
			SingleEvents(true).
			TimeMin(tMin).
			TimeMax(tMax).
			OrderBy("startTime").
			Context(ctx)

		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		eventsResult, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("api call failed for calendar %s: %w", calendarID, err)
		}

		for _, item := range eventsResult.Items {
			if skipEvent(item) {
				continue
			}
			results = append(results, parseEvent(item))
		}

		pageToken = eventsResult.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return results, nil
}

// skipEvent reports whether an event has no place in a day plan: cancelled
// events and invitations the user declined.
func skipEvent(item *calendar.Event) bool {
	if item.Status == "cancelled" {
		return true
	}
	for _, attendee := range item.Attendees {
		if attendee.Self && attendee.ResponseStatus == "declined" {
			return true
		}
	}
	return false
}

// parseEvent converts a Google Calendar event to an Entry.
func parseEvent(item *calendar.Event) core.Entry {
	var startTime, endTime time.Time
	isAllDay := false

	if item.Start != nil && item.Start.DateTime != "" {
		startTime, _ = time.Parse(time.RFC3339, item.Start.DateTime)
		if item.End != nil {
			endTime, _ = time.Parse(time.RFC3339, item.End.DateTime)
		}
	} else {
		// All day event (YYYY-MM-DD)
		if item.Start != nil {
			startTime, _ = time.Parse("2006-01-02", item.Start.Date)
		}
		if item.End != nil {
			endTime, _ = time.Parse("2006-01-02", item.End.Date)
		}
		isAllDay = true
	}

	return core.Entry{
		UID:      item.ICalUID,
		Title:    item.Summary,
		Start:    startTime,
		End:      endTime,
		IsAllDay: isAllDay,
	}
}
