package ics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theakshaypant/dayplan/internal/core"
)

// Times are floating (no Z, no TZID) so they read as local wall clock.
const sample = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//dayplan//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup@example.com\r\n" +
	"DTSTAMP:20250601T000000Z\r\n" +
	"DTSTART:20250610T091500\r\n" +
	"DTEND:20250610T093000\r\n" +
	"SUMMARY:Standup\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:offsite@example.com\r\n" +
	"DTSTAMP:20250601T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20250610\r\n" +
	"DTEND;VALUE=DATE:20250611\r\n" +
	"SUMMARY:Offsite\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:cancelled@example.com\r\n" +
	"DTSTAMP:20250601T000000Z\r\n" +
	"DTSTART:20250610T130000\r\n" +
	"DTEND:20250610T140000\r\n" +
	"STATUS:CANCELLED\r\n" +
	"SUMMARY:Gone\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:museum@example.com\r\n" +
	"DTSTAMP:20250601T000000Z\r\n" +
	"DTSTART:20250611T140000\r\n" +
	"DTEND:20250611T160000\r\n" +
	"SUMMARY:Museum\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func request() core.ItineraryRequest {
	return core.ItineraryRequest{
		Start: time.Date(2025, 6, 10, 8, 0, 0, 0, time.Local),
		Days:  2,
	}
}

func TestParseEntries(t *testing.T) {
	entries, err := ParseEntries([]byte(sample))
	if err != nil {
		t.Fatalf("ParseEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3 (cancelled dropped): %+v", len(entries), entries)
	}
	if entries[0].Title != "Standup" || entries[0].IsAllDay || entries[0].Duration() != 15*time.Minute {
		t.Errorf("standup = %+v", entries[0])
	}
	if !entries[1].IsAllDay {
		t.Errorf("offsite should be all-day: %+v", entries[1])
	}
}

func TestParseEntries_Empty(t *testing.T) {
	if _, err := ParseEntries([]byte("  \n")); err == nil {
		t.Fatal("expected an error for an empty body")
	}
}

func TestFetchItinerary_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, err := New("ics", path).FetchItinerary(context.Background(), request())
	if err != nil {
		t.Fatalf("FetchItinerary: %v", err)
	}
	want := []string{"Day 1", "09:15 - Standup", "Day 2", "14:00 - Museum"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
}

func TestFetchItinerary_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(sample))
	}))
	defer srv.Close()

	lines, err := New("ics", srv.URL+"/feed.ics?token=secret").FetchItinerary(context.Background(), request())
	if err != nil {
		t.Fatalf("FetchItinerary: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
}

func TestFetchItinerary_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	if _, err := New("ics", srv.URL).FetchItinerary(context.Background(), request()); !errors.Is(err, core.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestRedact(t *testing.T) {
	if got := redact("https://cal.example.com/a.ics?token=secret"); strings.Contains(got, "secret") {
		t.Fatalf("redact leaked the token: %s", got)
	}
	if got := redact("/tmp/a.ics"); got != "/tmp/a.ics" {
		t.Fatalf("redact changed a path: %s", got)
	}
}
