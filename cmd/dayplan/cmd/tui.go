package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theakshaypant/dayplan/internal/adapter/textfile"
	appLog "github.com/theakshaypant/dayplan/internal/log"
	"github.com/theakshaypant/dayplan/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the interactive timeline",
	Long: `Launch the interactive day timeline.

Drag an event with the mouse to move it; dropping it on another event swaps
the two and reflows the day. Press p to tell the generator what you'd like
to do, a to add an event by hand, and ? for all keys.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().Int("rows-per-hour", tui.DefaultRowsPerHour, "Timeline rows per hour (must divide 60)")
	tuiCmd.Flags().String("log-file", "", "Write logs to this file (the terminal belongs to the UI)")

	viper.BindPFlag("rows_per_hour", tuiCmd.Flags().Lookup("rows-per-hour"))
	viper.BindPFlag("log_file", tuiCmd.Flags().Lookup("log-file"))
}

func runTUI(cmd *cobra.Command, args []string) error {
	// stderr is drawn over by the UI, so logs go to a file or nowhere.
	if path := viper.GetString("log_file"); path != "" {
		f, err := tea.LogToFile(expandPath(path), "dayplan")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		appLog.SetOutput(f)
	} else {
		appLog.Discard()
	}

	req, err := itineraryRequest()
	if err != nil {
		return err
	}

	m := tui.NewModel(tui.Options{
		Source:      source,
		Request:     req,
		RowsPerHour: viper.GetInt("rows_per_hour"),
	})

	// Set up the program with mouse support and alt screen
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
	// The file source may be reading the itinerary from stdin; keys then
	// come from the terminal.
	if viper.GetString("source") == "file" && viper.GetString("file") == textfile.Stdin {
		opts = append(opts, tea.WithInputTTY())
	}

	p := tea.NewProgram(m, opts...)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
