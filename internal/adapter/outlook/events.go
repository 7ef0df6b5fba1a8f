package outlook

import (
	"context"
	"fmt"
	"slices"
	"time"

	abstractions "github.com/microsoft/kiota-abstractions-go"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/users"

	"github.com/theakshaypant/dayplan/internal/core"
	appLog "github.com/theakshaypant/dayplan/internal/log"
)

// FetchItinerary reads the timed events of the requested days from the
// selected calendars and returns them as itinerary lines.
func (o *OutlookAdapter) FetchItinerary(ctx context.Context, req core.ItineraryRequest) ([]string, error) {
	if o.client == nil {
		return nil, fmt.Errorf("%w: outlook calendar not logged in", core.ErrNetwork)
	}

	start, end := req.RangeStart(), req.RangeEnd()

	calendarIDs := o.filter
	if len(calendarIDs) == 0 {
		for calID := range o.calendars {
			calendarIDs = append(calendarIDs, calID)
		}
		slices.Sort(calendarIDs)
	}

	var entries []core.Entry
	var lastErr error
	fetched := 0
	for _, calID := range calendarIDs {
		if _, exists := o.calendars[calID]; !exists {
			continue
		}
		got, err := o.fetchEntriesFromCalendar(ctx, calID, start, end)
		if err != nil {
			appLog.Error("outlook: calendar fetch failed", err, "calendar", calID)
			lastErr = err
			continue // skip failed calendars
		}
		fetched++
		entries = append(entries, got...)
	}

	if fetched == 0 && lastErr != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrNetwork, lastErr)
	}

	entries = core.Deduplicate(entries)
	appLog.Debug("outlook: fetched entries", "count", len(entries), "calendars", fetched)
	return core.ItineraryLines(entries, start, req.Days), nil
}

func (o *OutlookAdapter) fetchEntriesFromCalendar(ctx context.Context, calendarID string, start, end time.Time) ([]core.Entry, error) {
	startStr := start.UTC().Format(time.RFC3339)
	endStr := end.UTC().Format(time.RFC3339)
	selectFields := []string{
		"id", "iCalUId", "subject", "start", "end",
		"isAllDay", "responseStatus", "isCancelled",
	}
	orderBy := []string{"start/dateTime"}
	top := int32(100)

	headers := abstractions.NewRequestHeaders()
	headers.Add("Prefer", `outlook.timezone="UTC"`)

	var result models.EventCollectionResponseable
	var err error

	if calendarID == "default" {
		config := &users.ItemCalendarViewRequestBuilderGetRequestConfiguration{
			QueryParameters: &users.ItemCalendarViewRequestBuilderGetQueryParameters{
				StartDateTime: &startStr,
				EndDateTime:   &endStr,
				Select:        selectFields,
				Orderby:       orderBy,
				Top:           &top,
			},
			Headers: headers,
		}
		result, err = o.client.Me().CalendarView().Get(ctx, config)
	} else {
		config := &users.ItemCalendarsItemCalendarViewRequestBuilderGetRequestConfiguration{
			QueryParameters: &users.ItemCalendarsItemCalendarViewRequestBuilderGetQueryParameters{
				StartDateTime: &startStr,
				EndDateTime:   &endStr,
				Select:        selectFields,
				Orderby:       orderBy,
				Top:           &top,
			},
			Headers: headers,
		}
		result, err = o.client.Me().Calendars().ByCalendarId(calendarID).CalendarView().Get(ctx, config)
	}

	if err != nil {
		return nil, fmt.Errorf("fetch calendar view: %w", err)
	}

	var results []core.Entry

	// Use PageIterator for automatic pagination
	pageIterator, err := msgraphcore.NewPageIterator[models.Eventable](
		result,
		o.client.GetAdapter(),
		models.CreateEventCollectionResponseFromDiscriminatorValue,
	)
	if err != nil {
		return nil, fmt.Errorf("create page iterator: %w", err)
	}

	err = pageIterator.Iterate(ctx, func(item models.Eventable) bool {
		if derefBool(item.GetIsCancelled()) || declined(item) {
			return true // skip, continue
		}
		results = append(results, parseGraphEvent(item))
		return true
	})

	if err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return results, nil
}

// parseGraphEvent converts a Graph SDK event into an Entry.
func parseGraphEvent(item models.Eventable) core.Entry {
	return core.Entry{
		UID:      derefStr(item.GetICalUId()),
		Title:    derefStr(item.GetSubject()),
		Start:    parseSDKDateTime(item.GetStart()),
		End:      parseSDKDateTime(item.GetEnd()),
		IsAllDay: derefBool(item.GetIsAllDay()),
	}
}

// parseSDKDateTime converts a Graph SDK DateTimeTimeZone to time.Time.
// Times are in UTC because we set the Prefer: outlook.timezone="UTC" header.
func parseSDKDateTime(dt models.DateTimeTimeZoneable) time.Time {
	if dt == nil {
		return time.Time{}
	}
	dateTimeStr := dt.GetDateTime()
	if dateTimeStr == nil {
		return time.Time{}
	}
	layouts := []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, *dateTimeStr); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// declined reports whether the user turned the invitation down.
func declined(item models.Eventable) bool {
	rs := item.GetResponseStatus()
	if rs == nil {
		return false
	}
	resp := rs.GetResponse()
	return resp != nil && *resp == models.DECLINED_RESPONSETYPE
}
