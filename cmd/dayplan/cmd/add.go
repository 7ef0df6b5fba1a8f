package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/theakshaypant/dayplan/internal/core"
	"github.com/theakshaypant/dayplan/internal/planner"
)

var addCmd = &cobra.Command{
	Use:   "add <activity>",
	Short: "Add an event to a day if its slot is free",
	Long: `Fetch the itinerary and add an event by hand.

The event is only added when [time, time+duration) overlaps nothing on that
day. On an empty itinerary the event opens day 1.

Example:
  dayplan add "Tea ceremony" --time 16:00 --duration 90 --day 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().String("time", "", "Start time (HH:MM)")
	addCmd.Flags().Int("duration", 60, fmt.Sprintf("Duration in minutes, one of %v", planner.DurationChoices))
	addCmd.Flags().Int("day", 1, "Day to add the event to")
	addCmd.MarkFlagRequired("time")
}

func runAdd(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetString("time")
	duration, _ := cmd.Flags().GetInt("duration")
	day, _ := cmd.Flags().GetInt("day")

	session, _, err := loadSession(cmd.Context())
	if err != nil {
		return err
	}
	if !session.Empty() {
		if err := session.SetDay(day - 1); err != nil {
			return err
		}
	} else if day != 1 {
		return fmt.Errorf("the itinerary is empty; only day 1 can be added to")
	}

	ev, err := session.Add(planner.AddRequest{
		Activity:        strings.Join(args, " "),
		Time:            at,
		DurationMinutes: duration,
	})
	if errors.Is(err, core.ErrConflict) {
		return fmt.Errorf("%s overlaps an existing event on day %d: %w", at, day, err)
	}
	if err != nil {
		return err
	}

	view, err := session.View()
	if err != nil {
		return err
	}
	opts := DisplayOptionsFromConfig()
	opts.ShowID = true
	DisplayDay(view, opts)

	fmt.Printf("\n✓ Added %s at %s [%s]\n", ev.Activity, ev.Time, ev.ID)
	return nil
}
