// Package ics reads timed events from an iCalendar file or feed.
package ics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/theakshaypant/dayplan/internal/core"
	appLog "github.com/theakshaypant/dayplan/internal/log"
)

// Source reads a local .ics file or an http(s) calendar feed.
type Source struct {
	id       string
	name     string
	location string
	client   *http.Client
}

func New(id, location string) *Source {
	return &Source{
		id:       id,
		name:     "iCalendar",
		location: location,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *Source) ID() string   { return s.id }
func (s *Source) Name() string { return s.name }

// FetchItinerary reads the calendar and returns the timed events of the
// requested days as itinerary lines.
func (s *Source) FetchItinerary(ctx context.Context, req core.ItineraryRequest) ([]string, error) {
	body, err := s.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrNetwork, err)
	}

	entries, err := ParseEntries(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrNetwork, err)
	}

	start, end := req.RangeStart(), req.RangeEnd()
	var inRange []core.Entry
	for _, e := range entries {
		if e.Start.Before(start) || !e.Start.Before(end) {
			continue
		}
		inRange = append(inRange, e)
	}

	appLog.Info("ics: parsed calendar", "source", redact(s.location), "events", len(entries), "in_range", len(inRange))
	return core.ItineraryLines(core.Deduplicate(inRange), start, req.Days), nil
}

func (s *Source) read(ctx context.Context) ([]byte, error) {
	if !isURL(s.location) {
		return os.ReadFile(s.location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", redact(s.location), resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// ParseEntries parses an iCalendar payload. Cancelled events are dropped;
// events whose start cannot be read are logged and skipped.
func ParseEntries(body []byte) ([]core.Entry, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty calendar")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	var entries []core.Entry
	for _, ve := range cal.Events() {
		if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil && strings.EqualFold(p.Value, "CANCELLED") {
			continue
		}

		start, err := ve.GetStartAt()
		if err != nil {
			appLog.Error("ics: skipping event", err, "uid", propValue(ve, ical.ComponentPropertyUniqueId))
			continue
		}
		end, err := ve.GetEndAt()
		if err != nil {
			end = start
		}

		entries = append(entries, core.Entry{
			UID:      propValue(ve, ical.ComponentPropertyUniqueId),
			Title:    propValue(ve, ical.ComponentPropertySummary),
			Start:    start,
			End:      end,
			IsAllDay: isAllDay(ve),
		})
	}
	return entries, nil
}

// isAllDay inspects DTSTART: VALUE=DATE or a value without a time part.
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// redact hides query strings, which often carry private feed tokens.
func redact(s string) string {
	u, err := url.Parse(s)
	if err != nil || u.RawQuery == "" {
		return s
	}
	u.RawQuery = "redacted"
	return u.String()
}
