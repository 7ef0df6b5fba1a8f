package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/theakshaypant/dayplan/internal/adapter/generator"
	"github.com/theakshaypant/dayplan/internal/adapter/google"
	"github.com/theakshaypant/dayplan/internal/adapter/ics"
	"github.com/theakshaypant/dayplan/internal/adapter/outlook"
	"github.com/theakshaypant/dayplan/internal/adapter/textfile"
	"github.com/theakshaypant/dayplan/internal/core"
	appLog "github.com/theakshaypant/dayplan/internal/log"
	"github.com/theakshaypant/dayplan/internal/planner"
	"github.com/theakshaypant/dayplan/internal/util"
)

const defaultEndpoint = "http://localhost:3000/api/itinerary"

var (
	cfgFile string
	profile string
	source  core.Source
)

var rootCmd = &cobra.Command{
	Use:   "dayplan",
	Short: "Plan your days on a drag-and-drop timeline in the terminal",
	Long: `dayplan turns an itinerary into a day timeline you can rearrange.

The itinerary comes from a source: a text file, an itinerary generator
service, an iCalendar feed, or your Google / Outlook calendar. Drop an event
on another one and the two swap places; the rest of the day reflows so
nothing overlaps and short gaps close up.

Run 'dayplan ui' for the interactive timeline.`,
	PersistentPreRunE: initSource,
	RunE:              printItinerary,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (inherited by all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/dayplan/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "config profile to use (e.g., kyoto, work)")

	// Source flags
	rootCmd.PersistentFlags().StringP("source", "s", "", "Itinerary source: file, generator, ics, google, outlook")
	rootCmd.PersistentFlags().StringP("file", "f", "", "Itinerary text file for the file source ('-' reads stdin)")
	rootCmd.PersistentFlags().String("endpoint", "", "Itinerary generator URL")
	rootCmd.PersistentFlags().Duration("timeout", generator.DefaultTimeout, "Generator request timeout")
	rootCmd.PersistentFlags().String("ics", "", "iCalendar file or URL for the ics source")
	rootCmd.PersistentFlags().StringP("calendars", "c", "", "Comma-separated list of calendar names to read")

	// Request flags
	rootCmd.PersistentFlags().String("city", "", "Destination city")
	rootCmd.PersistentFlags().IntP("days", "d", 1, "Number of days to plan")
	rootCmd.PersistentFlags().StringP("preferences", "P", "", "What you'd like to do (sent to the generator)")
	rootCmd.PersistentFlags().String("from", "", "First day (YYYY-MM-DD, 'today', 'tomorrow', 'monday', etc.)")

	// Logging
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, error")

	// Display flags (list only)
	rootCmd.Flags().Bool("ids", false, "Show event IDs")

	// Bind persistent flags to viper
	viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("file", rootCmd.PersistentFlags().Lookup("file"))
	viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("ics", rootCmd.PersistentFlags().Lookup("ics"))
	viper.BindPFlag("calendars", rootCmd.PersistentFlags().Lookup("calendars"))
	viper.BindPFlag("city", rootCmd.PersistentFlags().Lookup("city"))
	viper.BindPFlag("days", rootCmd.PersistentFlags().Lookup("days"))
	viper.BindPFlag("preferences", rootCmd.PersistentFlags().Lookup("preferences"))
	viper.BindPFlag("from", rootCmd.PersistentFlags().Lookup("from"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("display.id", rootCmd.Flags().Lookup("ids"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "dayplan")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("DAYPLAN")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("source", "generator")
	viper.SetDefault("endpoint", defaultEndpoint)
	viper.SetDefault("timeout", generator.DefaultTimeout)
	viper.SetDefault("credentials_file", "credentials.json")
	viper.SetDefault("token_file", "token.json")
	viper.SetDefault("days", 1)
	viper.SetDefault("rows_per_hour", 6)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("display.duration", true)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Apply profile settings if specified
	applyProfile()

	appLog.SetLevel(appLog.ParseLevel(viper.GetString("log_level")))
}

// profileSettings can be overridden by a profile.
var profileSettings = []string{
	"source",
	"file",
	"endpoint",
	"timeout",
	"ics",
	"calendars",
	"city",
	"days",
	"preferences",
	"from",
	"credentials_file",
	"token_file",
	"client_id",
	"tenant_id",
	"rows_per_hour",
	"log_level",
	"log_file",
}

var profileDisplaySettings = []string{
	"display.id",
	"display.duration",
}

// applyProfile merges profile-specific settings over defaults
func applyProfile() {
	// Check for profile from flag or env var
	activeProfile := profile
	if activeProfile == "" {
		activeProfile = viper.GetString("default_profile")
	}
	if activeProfile == "" {
		return
	}

	profileKey := "profiles." + activeProfile
	if !viper.IsSet(profileKey) {
		fmt.Fprintf(os.Stderr, "Warning: profile '%s' not found in config\n", activeProfile)
		return
	}

	fmt.Fprintf(os.Stderr, "Using profile: %s\n", activeProfile)

	// Override each setting if present in profile,
	// but only if the user hasn't explicitly set it via CLI flag.
	for _, key := range profileSettings {
		profileSettingKey := profileKey + "." + key
		if viper.IsSet(profileSettingKey) && !isFlagExplicitlySet(key) {
			viper.Set(key, viper.Get(profileSettingKey))
		}
	}

	for _, key := range profileDisplaySettings {
		profileSettingKey := profileKey + "." + key
		if viper.IsSet(profileSettingKey) {
			viper.Set(key, viper.Get(profileSettingKey))
		}
	}
}

func isFlagExplicitlySet(viperKey string) bool {
	flagName := strings.ReplaceAll(viperKey, "_", "-")
	for _, fs := range []*pflag.FlagSet{rootCmd.PersistentFlags(), tuiCmd.Flags()} {
		if f := fs.Lookup(flagName); f != nil && f.Changed {
			return true
		}
	}
	return false
}

func initSource(cmd *cobra.Command, args []string) error {
	// Skip source init for commands that don't need it
	if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "profile" ||
		cmd.Parent() != nil && cmd.Parent().Name() == "profile" {
		return nil
	}

	var err error
	source, err = newSource(cmd.Context())
	return err
}

// newSource builds the configured itinerary source.
func newSource(ctx context.Context) (core.Source, error) {
	kind := viper.GetString("source")
	if kind == "" {
		kind = "generator"
	}

	switch kind {
	case "file":
		path := viper.GetString("file")
		if path == "" {
			return nil, fmt.Errorf("no itinerary file configured\n\nPass --file <path>, or --file=- to read stdin")
		}
		if path != textfile.Stdin {
			path = expandPath(path)
		}
		return textfile.New("file", path), nil

	case "generator":
		endpoint := viper.GetString("endpoint")
		if endpoint == "" {
			endpoint = defaultEndpoint
		}
		return generator.New("generator", endpoint, viper.GetDuration("timeout")), nil

	case "ics":
		location := viper.GetString("ics")
		if location == "" {
			return nil, fmt.Errorf("no calendar configured for the ics source\n\nPass --ics <file or URL>")
		}
		if !strings.Contains(location, "://") {
			location = expandPath(location)
		}
		return ics.New("ics", location), nil

	case "google", "outlook":
		cs, err := newCalendarSource(kind)
		if err != nil {
			return nil, err
		}
		if err := cs.Login(ctx); err != nil {
			return nil, fmt.Errorf("login failed: %w", err)
		}
		if err := applyCalendarFilter(cs); err != nil {
			return nil, err
		}
		return cs, nil

	default:
		return nil, fmt.Errorf("unknown source: %s (supported: file, generator, ics, google, outlook)", kind)
	}
}

func newCalendarSource(kind string) (core.CalendarSource, error) {
	tokenFile := expandPath(viper.GetString("token_file"))

	switch kind {
	case "google":
		credsFile := expandPath(viper.GetString("credentials_file"))
		if _, err := os.Stat(credsFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("credentials file not found: %s\n\nDownload OAuth client credentials from the Google Cloud console", credsFile)
		}
		if _, err := os.Stat(tokenFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("token file not found: %s\n\nRun 'dayplan auth' to authenticate", tokenFile)
		}
		return google.NewGoogleAdapter("google", "Google Calendar", credsFile, tokenFile), nil

	default:
		clientID := viper.GetString("client_id")
		if clientID == "" {
			return nil, fmt.Errorf("client_id not configured for the outlook source\n\nAdd it to your profile config:\n  client_id: \"your-azure-app-client-id\"")
		}
		if _, err := os.Stat(tokenFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("token file not found: %s\n\nRun 'dayplan auth' to authenticate with Microsoft", tokenFile)
		}
		return outlook.NewOutlookAdapter("outlook", "Outlook Calendar", clientID, viper.GetString("tenant_id"), tokenFile), nil
	}
}

func applyCalendarFilter(cs core.CalendarSource) error {
	calendars := viper.GetString("calendars")
	if calendars == "" {
		return nil
	}
	ids := resolveCalendarNames(strings.Split(calendars, ","), cs.Calendars())
	if len(ids) == 0 {
		return fmt.Errorf("no matching calendars found for: %s\nUse 'dayplan calendars' to see available calendars", calendars)
	}
	cs.SetCalendarFilter(ids)
	return nil
}

// itineraryRequest builds the request for the configured trip.
func itineraryRequest() (core.ItineraryRequest, error) {
	req := core.DefaultItineraryRequest()
	req.City = viper.GetString("city")
	req.Preferences = viper.GetString("preferences")
	req.Days = viper.GetInt("days")
	if req.Days < 1 {
		return req, fmt.Errorf("--days must be at least 1 (got %d)", req.Days)
	}

	if from := viper.GetString("from"); from != "" {
		start, err := parseDate(from, req.Start)
		if err != nil {
			return req, err
		}
		req.Start = start
	}
	return req, nil
}

// loadSession fetches the itinerary and loads it into a fresh session.
func loadSession(ctx context.Context) (*planner.Session, planner.ParseResult, error) {
	req, err := itineraryRequest()
	if err != nil {
		return nil, planner.ParseResult{}, err
	}

	if ps, ok := source.(core.PromptedSource); ok && ps.RequiresPreferences() && strings.TrimSpace(req.Preferences) == "" {
		return nil, planner.ParseResult{}, fmt.Errorf("the %s source needs preferences\n\nPass --preferences \"museums, ramen\" or run 'dayplan ui' to chat", source.Name())
	}

	lines, err := source.FetchItinerary(ctx, req)
	if err != nil {
		return nil, planner.ParseResult{}, fmt.Errorf("failed to fetch itinerary: %w", err)
	}

	session := planner.NewSession()
	res := session.Load(lines)
	return session, res, nil
}

func printItinerary(cmd *cobra.Command, args []string) error {
	session, res, err := loadSession(cmd.Context())
	if err != nil {
		return err
	}

	if res.Empty() {
		fmt.Println("No itinerary found.")
		return nil
	}

	opts := DisplayOptionsFromConfig()
	for i := 0; i < session.DayCount(); i++ {
		view, err := session.Schedule().View(i)
		if err != nil {
			return err
		}
		DisplayDay(view, opts)
	}

	if n := len(res.Skipped); n > 0 {
		fmt.Printf("\n%d line(s) could not be read and were skipped.\n", n)
	}
	return nil
}

// DisplayOptions controls how days are printed
type DisplayOptions struct {
	ShowDuration bool   // Show each event's duration
	ShowID       bool   // Show event IDs (needed for 'dayplan move')
	Indent       string // Indentation prefix
	TitleWidth   int    // Activity column width
}

// DefaultDisplayOptions returns options for list view
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		ShowDuration: true,
		ShowID:       false,
		Indent:       "  ",
		TitleWidth:   40,
	}
}

// DisplayOptionsFromConfig builds display options from viper config
func DisplayOptionsFromConfig() DisplayOptions {
	opts := DefaultDisplayOptions()

	if viper.IsSet("display.duration") {
		opts.ShowDuration = viper.GetBool("display.duration")
	}
	if viper.IsSet("display.id") {
		opts.ShowID = viper.GetBool("display.id")
	}

	return opts
}

// DisplayDay prints one day of the schedule
func DisplayDay(view planner.DayView, opts DisplayOptions) {
	fmt.Printf("\n📅 Day %d\n", view.Index+1)
	fmt.Println("─────────────────────────────────────────────────")

	if len(view.Events) == 0 {
		fmt.Printf("%s(nothing planned)\n", opts.Indent)
		return
	}

	for _, ev := range view.Events {
		line := fmt.Sprintf("%s%s - %s  %-*s", opts.Indent, ev.Time, ev.End, opts.TitleWidth, util.TruncateText(ev.Activity, opts.TitleWidth))
		if opts.ShowDuration {
			line += "  " + formatDurationCompact(time.Duration(ev.Minutes)*time.Minute)
		}
		if opts.ShowID {
			line += "  [" + ev.ID + "]"
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
}

// formatDurationCompact formats a duration in a compact way
func formatDurationCompact(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", minutes)
}

// parseDate parses a date string in various formats
// Supports: YYYY-MM-DD, "today", "tomorrow", "yesterday", weekday names
func parseDate(s string, defaultTime time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch s {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	weekdays := map[string]time.Weekday{
		"sunday": time.Sunday, "sun": time.Sunday,
		"monday": time.Monday, "mon": time.Monday,
		"tuesday": time.Tuesday, "tue": time.Tuesday,
		"wednesday": time.Wednesday, "wed": time.Wednesday,
		"thursday": time.Thursday, "thu": time.Thursday,
		"friday": time.Friday, "fri": time.Friday,
		"saturday": time.Saturday, "sat": time.Saturday,
	}

	// Handle "next <weekday>"
	dayName := strings.TrimPrefix(s, "next ")
	if wd, ok := weekdays[dayName]; ok {
		daysUntil := int(wd - today.Weekday())
		if daysUntil <= 0 {
			daysUntil += 7
		}
		return today.AddDate(0, 0, daysUntil), nil
	}

	// Try parsing as YYYY-MM-DD
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}

	// Try parsing as MM/DD/YYYY
	if t, err := time.ParseInLocation("01/02/2006", s, now.Location()); err == nil {
		return t, nil
	}

	return defaultTime, fmt.Errorf("unable to parse date: %s (use YYYY-MM-DD, 'today', 'tomorrow', or weekday names)", s)
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func resolveCalendarNames(names []string, calendars map[string]string) []string {
	var ids []string

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		nameLower := strings.ToLower(name)

		if _, exists := calendars[name]; exists {
			ids = append(ids, name)
			continue
		}

		for id, calName := range calendars {
			if strings.Contains(strings.ToLower(calName), nameLower) {
				ids = append(ids, id)
				break
			}
		}
	}

	return ids
}
