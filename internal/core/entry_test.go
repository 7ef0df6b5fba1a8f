package core

import (
	"reflect"
	"testing"
	"time"
)

func TestItineraryLines(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)
	at := func(day, h, m int) time.Time {
		return start.AddDate(0, 0, day).Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}

	entries := []Entry{
		{Title: "Lunch  with\tteam", Start: at(0, 12, 0), End: at(0, 13, 0)},
		{Title: "Standup", Start: at(0, 9, 5), End: at(0, 9, 20)},
		{Title: "Offsite", Start: at(1, 0, 0), End: at(2, 0, 0), IsAllDay: true},
		{Title: "Flight", Start: at(1, 7, 30), End: at(1, 10, 0)},
		{Title: "   ", Start: at(1, 11, 0), End: at(1, 12, 0)},
		{Title: "Out of range", Start: at(3, 9, 0), End: at(3, 10, 0)},
	}

	got := ItineraryLines(entries, start.Add(15*time.Hour), 2)
	want := []string{
		"Day 1",
		"09:05 - Standup",
		"12:00 - Lunch with team",
		"Day 2",
		"07:30 - Flight",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ItineraryLines() = %q, want %q", got, want)
	}
}

func TestItineraryLines_EmptyDaysKeepMarkers(t *testing.T) {
	got := ItineraryLines(nil, time.Now(), 0)
	if len(got) != 1 || got[0] != "Day 1" {
		t.Fatalf("expected a single day marker, got %q", got)
	}
}

func TestItineraryRequestRange(t *testing.T) {
	req := ItineraryRequest{
		Days:  3,
		Start: time.Date(2025, 6, 10, 17, 45, 0, 0, time.Local),
	}
	if got := req.RangeStart(); got.Hour() != 0 || got.Day() != 10 {
		t.Errorf("RangeStart() = %v, want midnight of the 10th", got)
	}
	if got := req.RangeEnd(); got.Day() != 13 {
		t.Errorf("RangeEnd() = %v, want the 13th", got)
	}
}

func TestDayIndexAndClone(t *testing.T) {
	d := Day{{ID: "a", Time: "09:00"}, {ID: "b", Time: "10:00"}}
	if d.Index("b") != 1 || d.Index("zzz") != -1 {
		t.Fatalf("unexpected Index results")
	}
	c := d.Clone()
	c[0].Time = "08:00"
	if d[0].Time != "09:00" {
		t.Fatalf("Clone shares storage with the original")
	}
}

func TestDeduplicate(t *testing.T) {
	entries := []Entry{
		{UID: "a", Title: "Sync (work)"},
		{Title: "No uid"},
		{UID: "a", Title: "Sync (shared)"},
		{Title: "No uid"},
		{UID: "b", Title: "Other"},
	}
	got := Deduplicate(entries)
	if len(got) != 4 {
		t.Fatalf("got %d entries, want 4: %+v", len(got), got)
	}
	if got[0].Title != "Sync (work)" {
		t.Errorf("first occurrence not kept: %+v", got[0])
	}
}
