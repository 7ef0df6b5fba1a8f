package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theakshaypant/dayplan/internal/core"
)

func TestFetchItinerary(t *testing.T) {
	var got request
	var requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		requestID = r.Header.Get("X-Request-ID")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]string{"#Day 1", "09:00 - Breakfast at Cafe X"})
	}))
	defer srv.Close()

	c := New("generator", srv.URL, time.Second)
	lines, err := c.FetchItinerary(context.Background(), core.ItineraryRequest{
		Preferences: "museums and ramen",
		City:        "Tokyo",
		Days:        3,
	})
	if err != nil {
		t.Fatalf("FetchItinerary: %v", err)
	}
	if len(lines) != 2 || lines[1] != "09:00 - Breakfast at Cafe X" {
		t.Fatalf("lines = %q", lines)
	}
	if got.UserInput != "museums and ramen" || got.City != "Tokyo" || got.NumberOfDays != 3 {
		t.Errorf("request body = %+v", got)
	}
	if requestID == "" {
		t.Error("missing X-Request-ID header")
	}
	if !c.RequiresPreferences() {
		t.Error("generator should require preferences")
	}
}

func TestFetchItinerary_SingleStringBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"Day 1\n10:00 - Walk"`))
	}))
	defer srv.Close()

	lines, err := New("generator", srv.URL, time.Second).FetchItinerary(context.Background(), core.ItineraryRequest{Days: 1})
	if err != nil {
		t.Fatalf("FetchItinerary: %v", err)
	}
	if len(lines) != 2 || lines[1] != "10:00 - Walk" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestFetchItinerary_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Failed to generate itinerary"}`))
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"bad body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"itinerary": 42}`))
		}},
		{"null body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`null`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := New("generator", srv.URL, time.Second).FetchItinerary(context.Background(), core.ItineraryRequest{})
			if !errors.Is(err, core.ErrNetwork) {
				t.Fatalf("err = %v, want ErrNetwork", err)
			}
		})
	}
}

func TestFetchItinerary_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New("generator", url, time.Second).FetchItinerary(context.Background(), core.ItineraryRequest{})
	if !errors.Is(err, core.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}
