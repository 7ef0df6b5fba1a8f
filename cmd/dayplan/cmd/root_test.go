package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theakshaypant/dayplan/internal/adapter/generator"
	"github.com/theakshaypant/dayplan/internal/adapter/ics"
	"github.com/theakshaypant/dayplan/internal/adapter/textfile"
	"github.com/theakshaypant/dayplan/internal/core"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestParseDate(t *testing.T) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	tests := []struct {
		in   string
		want time.Time
	}{
		{"today", today},
		{"Tomorrow", today.AddDate(0, 0, 1)},
		{"2025-06-10", time.Date(2025, 6, 10, 0, 0, 0, 0, now.Location())},
		{"06/10/2025", time.Date(2025, 6, 10, 0, 0, 0, 0, now.Location())},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in, now)
		if err != nil {
			t.Errorf("parseDate(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	got, err := parseDate("monday", now)
	if err != nil || got.Weekday() != time.Monday || !got.After(today) {
		t.Errorf("parseDate(monday) = %v, %v", got, err)
	}

	if _, err := parseDate("someday", now); err == nil {
		t.Error("expected an error for an unknown date")
	}
}

func TestResolveCalendarNames(t *testing.T) {
	calendars := map[string]string{
		"primary":          "me@example.com",
		"team@example.com": "Team Offsite",
	}
	got := resolveCalendarNames([]string{"primary", " offsite ", "", "nope"}, calendars)
	if strings.Join(got, ",") != "primary,team@example.com" {
		t.Fatalf("ids = %v", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/trip.txt"); got != filepath.Join(home, "trip.txt") {
		t.Errorf("expandPath = %s", got)
	}
	if got := expandPath("/tmp/trip.txt"); got != "/tmp/trip.txt" {
		t.Errorf("expandPath changed an absolute path: %s", got)
	}
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		check    func(t *testing.T, err error, kind string)
	}{
		{"file", map[string]any{"source": "file", "file": "trip.txt"}, func(t *testing.T, err error, kind string) {
			if err != nil || kind != "*textfile.Source" {
				t.Fatalf("kind = %s, err = %v", kind, err)
			}
		}},
		{"file without path", map[string]any{"source": "file"}, func(t *testing.T, err error, _ string) {
			if err == nil {
				t.Fatal("expected an error")
			}
		}},
		{"generator by default", map[string]any{}, func(t *testing.T, err error, kind string) {
			if err != nil || kind != "*generator.Client" {
				t.Fatalf("kind = %s, err = %v", kind, err)
			}
		}},
		{"ics", map[string]any{"source": "ics", "ics": "https://example.com/cal.ics"}, func(t *testing.T, err error, kind string) {
			if err != nil || kind != "*ics.Source" {
				t.Fatalf("kind = %s, err = %v", kind, err)
			}
		}},
		{"google without credentials", map[string]any{"source": "google", "credentials_file": "/nonexistent/creds.json"}, func(t *testing.T, err error, _ string) {
			if err == nil || !strings.Contains(err.Error(), "credentials file not found") {
				t.Fatalf("err = %v", err)
			}
		}},
		{"outlook without client id", map[string]any{"source": "outlook"}, func(t *testing.T, err error, _ string) {
			if err == nil || !strings.Contains(err.Error(), "client_id") {
				t.Fatalf("err = %v", err)
			}
		}},
		{"unknown", map[string]any{"source": "carrier-pigeon"}, func(t *testing.T, err error, _ string) {
			if err == nil || !strings.Contains(err.Error(), "unknown source") {
				t.Fatalf("err = %v", err)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			for k, v := range tt.settings {
				viper.Set(k, v)
			}
			src, err := newSource(context.Background())
			kind := ""
			switch src.(type) {
			case *textfile.Source:
				kind = "*textfile.Source"
			case *generator.Client:
				kind = "*generator.Client"
			case *ics.Source:
				kind = "*ics.Source"
			}
			tt.check(t, err, kind)
		})
	}
}

func TestItineraryRequest(t *testing.T) {
	resetViper(t)
	viper.Set("city", "Kyoto")
	viper.Set("days", 3)
	viper.Set("preferences", "temples")
	viper.Set("from", "2025-06-10")

	req, err := itineraryRequest()
	if err != nil {
		t.Fatalf("itineraryRequest: %v", err)
	}
	if req.City != "Kyoto" || req.Days != 3 || req.Preferences != "temples" {
		t.Errorf("req = %+v", req)
	}
	if req.Start.Format("2006-01-02") != "2025-06-10" {
		t.Errorf("start = %v", req.Start)
	}

	viper.Set("days", 0)
	if _, err := itineraryRequest(); err == nil {
		t.Error("expected an error for zero days")
	}
}

func TestLoadSession(t *testing.T) {
	resetViper(t)
	viper.Set("days", 1)

	path := filepath.Join(t.TempDir(), "trip.txt")
	if err := os.WriteFile(path, []byte("Day 1\n09:00 - Museum\nnot an entry\n12:00 - Lunch\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	source = textfile.New("file", path)
	t.Cleanup(func() { source = nil })

	session, res, err := loadSession(context.Background())
	if err != nil {
		t.Fatalf("loadSession: %v", err)
	}
	if session.DayCount() != 1 || len(res.Skipped) != 1 {
		t.Fatalf("days = %d, skipped = %v", session.DayCount(), res.Skipped)
	}
}

func TestLoadSession_NeedsPreferences(t *testing.T) {
	resetViper(t)
	viper.Set("days", 1)
	source = generator.New("generator", "http://127.0.0.1:1", time.Second)
	t.Cleanup(func() { source = nil })

	if _, _, err := loadSession(context.Background()); err == nil || !strings.Contains(err.Error(), "preferences") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunMove_FindsEventDay(t *testing.T) {
	resetViper(t)
	viper.Set("days", 2)

	path := filepath.Join(t.TempDir(), "trip.txt")
	trip := "Day 1\n09:00 - Museum\n12:00 - Lunch\nDay 2\n09:00 - Temple\n11:00 - Tea\n"
	if err := os.WriteFile(path, []byte(trip), 0o644); err != nil {
		t.Fatal(err)
	}
	source = textfile.New("file", path)
	t.Cleanup(func() { source = nil })

	newMove := func() *cobra.Command {
		c := &cobra.Command{}
		c.SetContext(context.Background())
		c.Flags().Int("day", 1, "")
		return c
	}

	session, _, err := loadSession(context.Background())
	if err != nil {
		t.Fatalf("loadSession: %v", err)
	}
	day, _, ok := session.Schedule().Locate("event-3-4")
	if !ok || day != 1 {
		t.Fatalf("Tea located on day index %d (%v), want 1", day, ok)
	}

	// Tea is on the second day; without --day it is found there.
	if err := runMove(newMove(), []string{"event-3-4", "15:00"}); err != nil {
		t.Fatalf("move without --day: %v", err)
	}

	c := newMove()
	c.Flags().Set("day", "1")
	if err := runMove(c, []string{"event-3-4", "15:00"}); !errors.Is(err, core.ErrUnknownEvent) {
		t.Fatalf("move with --day 1: err = %v, want ErrUnknownEvent", err)
	}
}

func TestApplyProfileFlags(t *testing.T) {
	cmd := &cobra.Command{}
	addProfileFlags(cmd.Flags())
	cmd.Flags().Set("days", "3")
	cmd.Flags().Set("city", "Kyoto")
	cmd.Flags().Set("timeout", "30s")
	cmd.Flags().Set("show-id", "true")

	profile := map[string]interface{}{"source": "generator"}
	if !applyProfileFlags(cmd, profile) {
		t.Fatal("expected a change")
	}
	if profile["days"] != 3 || profile["city"] != "Kyoto" || profile["timeout"] != "30s" || profile["source"] != "generator" {
		t.Errorf("profile = %v", profile)
	}
	display, _ := profile["display"].(map[string]interface{})
	if display["id"] != true {
		t.Errorf("display = %v", display)
	}

	if applyProfileFlags(&cobra.Command{}, map[string]interface{}{}) {
		t.Error("no flags set should report no change")
	}
}

func TestSaveProfileToConfig(t *testing.T) {
	old := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "dayplan", "config.yaml")
	t.Cleanup(func() { cfgFile = old })

	if err := saveProfileToConfig("kyoto", map[string]interface{}{"city": "Kyoto", "days": 3}); err != nil {
		t.Fatalf("saveProfileToConfig: %v", err)
	}
	if err := setDefaultProfileInConfig("kyoto"); err != nil {
		t.Fatalf("setDefaultProfileInConfig: %v", err)
	}

	config, err := readConfigFile()
	if err != nil {
		t.Fatalf("readConfigFile: %v", err)
	}
	if config["default_profile"] != "kyoto" {
		t.Errorf("default_profile = %v", config["default_profile"])
	}
	profiles, _ := config["profiles"].(map[string]interface{})
	kyoto, _ := profiles["kyoto"].(map[string]interface{})
	if kyoto["city"] != "Kyoto" || kyoto["days"] != 3 {
		t.Errorf("kyoto = %v", kyoto)
	}
}

func TestFormatDurationCompact(t *testing.T) {
	tests := map[time.Duration]string{
		45 * time.Minute: "45m",
		2 * time.Hour:    "2h",
		90 * time.Minute: "1h 30m",
	}
	for d, want := range tests {
		if got := formatDurationCompact(d); got != want {
			t.Errorf("formatDurationCompact(%v) = %q, want %q", d, got, want)
		}
	}
}
