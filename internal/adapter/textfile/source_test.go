package textfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theakshaypant/dayplan/internal/core"
)

func TestFetchItinerary_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trip.txt")
	body := "Day 1\n09:00 - Breakfast\n\n12:30 - Lunch\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, err := New("file", path).FetchItinerary(context.Background(), core.ItineraryRequest{})
	if err != nil {
		t.Fatalf("FetchItinerary: %v", err)
	}
	want := []string{"Day 1", "09:00 - Breakfast", "", "12:30 - Lunch"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
}

func TestFetchItinerary_Stdin(t *testing.T) {
	s := New("file", Stdin)
	s.stdin = strings.NewReader("Day 1\r\n08:00 - Run\r\n")

	lines, err := s.FetchItinerary(context.Background(), core.ItineraryRequest{})
	if err != nil {
		t.Fatalf("FetchItinerary: %v", err)
	}
	// The scanner drops the carriage return.
	if len(lines) != 2 || lines[1] != "08:00 - Run" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestFetchItinerary_Missing(t *testing.T) {
	_, err := New("file", filepath.Join(t.TempDir(), "nope.txt")).
		FetchItinerary(context.Background(), core.ItineraryRequest{})
	if !errors.Is(err, core.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestFetchItinerary_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New("file", Stdin).FetchItinerary(ctx, core.ItineraryRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
