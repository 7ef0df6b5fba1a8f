package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage configuration profiles",
	Long: `Manage configuration profiles for different trips and calendar accounts.

Profiles let you switch between sources and trip settings quickly, e.g. a
"kyoto" profile using the generator and a "work" profile reading Outlook.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileShow,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAdd,
}

var profileSetDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileSetDefault,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a profile's settings",
	Long: `Edit a profile's settings using flags.

Example:
  dayplan profile edit kyoto --days=4 --city=Kyoto
  dayplan profile edit work --source=outlook --calendars=Calendar`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileEdit,
}

type profileFlag struct {
	flag  string
	key   string
	kind  string // string, int or duration
	usage string
}

// profileFlags are the settings a profile can carry, in display order.
var profileFlags = []profileFlag{
	{"source", "source", "string", "Itinerary source: file, generator, ics, google, outlook"},
	{"file", "file", "string", "Itinerary text file"},
	{"endpoint", "endpoint", "string", "Itinerary generator URL"},
	{"timeout", "timeout", "duration", "Generator request timeout"},
	{"ics", "ics", "string", "iCalendar file or URL"},
	{"calendars", "calendars", "string", "Calendar filter"},
	{"city", "city", "string", "Destination city"},
	{"days", "days", "int", "Number of days to plan"},
	{"preferences", "preferences", "string", "Default preferences for the generator"},
	{"from", "from", "string", "First day"},
	{"credentials-file", "credentials_file", "string", "Path to Google credentials file"},
	{"token-file", "token_file", "string", "Path to token file"},
	{"client-id", "client_id", "string", "Azure app client ID (outlook)"},
	{"tenant-id", "tenant_id", "string", "Azure tenant ID (outlook)"},
	{"rows-per-hour", "rows_per_hour", "int", "Timeline rows per hour"},
	{"log-level", "log_level", "string", "Log level"},
	{"log-file", "log_file", "string", "Log file for the UI"},
}

var displayFlags = map[string]string{
	"show-id":       "id",
	"show-duration": "duration",
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileSetDefaultCmd)
	profileCmd.AddCommand(profileEditCmd)

	addProfileFlags(profileAddCmd.Flags())
	addProfileFlags(profileEditCmd.Flags())
}

func addProfileFlags(fs *pflag.FlagSet) {
	for _, f := range profileFlags {
		switch f.kind {
		case "int":
			fs.Int(f.flag, 0, f.usage)
		case "duration":
			fs.Duration(f.flag, 0, f.usage)
		default:
			fs.String(f.flag, "", f.usage)
		}
	}
	fs.Bool("show-id", false, "Show event IDs")
	fs.Bool("show-duration", false, "Show event durations")
}

// applyProfileFlags copies every flag the user set into profile and
// reports whether anything changed.
func applyProfileFlags(cmd *cobra.Command, profile map[string]interface{}) bool {
	changed := false
	for _, f := range profileFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		switch f.kind {
		case "int":
			val, _ := cmd.Flags().GetInt(f.flag)
			profile[f.key] = val
		case "duration":
			val, _ := cmd.Flags().GetDuration(f.flag)
			profile[f.key] = val.String()
		default:
			val, _ := cmd.Flags().GetString(f.flag)
			profile[f.key] = val
		}
		changed = true
	}

	// Get existing display settings or create new
	var display map[string]interface{}
	if existing, ok := profile["display"].(map[string]interface{}); ok {
		display = existing
	} else {
		display = make(map[string]interface{})
	}

	for flag, key := range displayFlags {
		if cmd.Flags().Changed(flag) {
			val, _ := cmd.Flags().GetBool(flag)
			display[key] = val
			changed = true
		}
	}

	if len(display) > 0 {
		profile["display"] = display
	}
	return changed
}

func runProfileList(cmd *cobra.Command, args []string) error {
	profiles := viper.GetStringMap("profiles")
	defaultProfile := viper.GetString("default_profile")

	if len(profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("\nAdd one with: dayplan profile add <name> --source=<source>")
		return nil
	}

	fmt.Println("Available profiles:")
	fmt.Println("─────────────────────────────────────────────────")

	for name := range profiles {
		marker := "  "
		if name == defaultProfile {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, name)
	}

	fmt.Println("─────────────────────────────────────────────────")
	if defaultProfile != "" {
		fmt.Printf("Default: %s\n", defaultProfile)
	}
	fmt.Println("\nUse 'dayplan profile show <name>' for details")

	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	var profileName string
	if len(args) > 0 {
		profileName = args[0]
	} else {
		profileName = viper.GetString("default_profile")
		if profileName == "" {
			return fmt.Errorf("no profile specified and no default profile set")
		}
	}

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found", profileName)
	}

	settings := viper.GetStringMap(profileKey)

	fmt.Printf("Profile: %s\n", profileName)
	if profileName == viper.GetString("default_profile") {
		fmt.Println("(default)")
	}
	fmt.Println("─────────────────────────────────────────────────")

	fmt.Println("\n📥 Source:")
	printSetting(settings, "source", "source")
	printSetting(settings, "file", "file")
	printSetting(settings, "endpoint", "endpoint")
	printSetting(settings, "timeout", "timeout")
	printSetting(settings, "ics", "ics")
	printSetting(settings, "calendars", "calendars")

	fmt.Println("\n🧳 Trip:")
	printSetting(settings, "city", "city")
	printSetting(settings, "days", "days")
	printSetting(settings, "preferences", "preferences")
	printSetting(settings, "from", "from")

	fmt.Println("\n📁 Authentication:")
	printSetting(settings, "credentials_file", "credentials-file")
	printSetting(settings, "token_file", "token-file")
	printSetting(settings, "client_id", "client-id")
	printSetting(settings, "tenant_id", "tenant-id")

	fmt.Println("\n🖥️  UI:")
	printSetting(settings, "rows_per_hour", "rows-per-hour")
	printSetting(settings, "log_level", "log-level")
	printSetting(settings, "log_file", "log-file")

	if display, ok := settings["display"].(map[string]interface{}); ok && len(display) > 0 {
		fmt.Println("\n👁️  Display:")
		printSetting(display, "id", "show_id")
		printSetting(display, "duration", "show_duration")
	}

	fmt.Println()
	return nil
}

func printSetting(settings map[string]interface{}, key, displayKey string) {
	if val, ok := settings[key]; ok {
		fmt.Printf("  %s: %v\n", displayKey, val)
	}
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	profileKey := "profiles." + profileName
	if viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' already exists. Use 'dayplan profile edit %s' to modify it", profileName, profileName)
	}

	profile := make(map[string]interface{})
	applyProfileFlags(cmd, profile)

	if err := saveProfileToConfig(profileName, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	fmt.Printf("✓ Profile '%s' created\n", profileName)
	fmt.Printf("\nUse it with: dayplan -p %s\n", profileName)
	fmt.Printf("Set as default: dayplan profile default %s\n", profileName)

	return nil
}

func runProfileSetDefault(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found", profileName)
	}

	if err := setDefaultProfileInConfig(profileName); err != nil {
		return fmt.Errorf("failed to set default profile: %w", err)
	}

	fmt.Printf("✓ Default profile set to '%s'\n", profileName)
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found. Use 'dayplan profile add %s' to create it", profileName, profileName)
	}

	// Get existing profile
	existingProfile := viper.GetStringMap(profileKey)
	profile := make(map[string]interface{})
	for k, v := range existingProfile {
		profile[k] = v
	}

	if !applyProfileFlags(cmd, profile) {
		fmt.Println("No changes specified. Use flags to update settings:")
		fmt.Println("  dayplan profile edit", profileName, "--days=3 --city=Kyoto")
		return nil
	}

	if err := saveProfileToConfig(profileName, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	fmt.Printf("✓ Profile '%s' updated\n", profileName)
	return nil
}

// Config file manipulation functions

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dayplan", "config.yaml")
}

func readConfigFile() (map[string]interface{}, error) {
	configPath := getConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]interface{}), nil
		}
		return nil, err
	}

	var config map[string]interface{}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if config == nil {
		config = make(map[string]interface{})
	}

	return config, nil
}

func writeConfigFile(config map[string]interface{}) error {
	configPath := getConfigPath()

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

func saveProfileToConfig(name string, profile map[string]interface{}) error {
	config, err := readConfigFile()
	if err != nil {
		return err
	}

	profiles, ok := config["profiles"].(map[string]interface{})
	if !ok {
		profiles = make(map[string]interface{})
	}

	profiles[name] = profile
	config["profiles"] = profiles

	return writeConfigFile(config)
}

func setDefaultProfileInConfig(name string) error {
	config, err := readConfigFile()
	if err != nil {
		return err
	}

	config["default_profile"] = name

	return writeConfigFile(config)
}
