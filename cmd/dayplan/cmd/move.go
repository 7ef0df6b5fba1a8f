package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <event-id> <HH:MM>",
	Short: "Move one event and show how the day reflows",
	Long: `Fetch the itinerary, move one event to a new start time and print the
day before and after.

If the new slot is free the event simply moves. If it overlaps another
event, the two swap start times and the rest of the day is reflowed.

Event IDs are shown by 'dayplan --ids'. Without --day the event is looked
up across the whole itinerary.

Example:
  dayplan move event-1-2 14:30
  dayplan move event-2-7 09:00 --day 2`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
	moveCmd.Flags().Int("day", 1, "Day the event is on")
}

func runMove(cmd *cobra.Command, args []string) error {
	id, at := args[0], args[1]
	day, _ := cmd.Flags().GetInt("day")

	session, res, err := loadSession(cmd.Context())
	if err != nil {
		return err
	}
	if res.Empty() {
		return fmt.Errorf("no itinerary to move events in: %w", res.Err())
	}
	if !cmd.Flags().Changed("day") {
		if d, _, ok := session.Schedule().Locate(id); ok {
			day = d + 1
		}
	}
	if err := session.SetDay(day - 1); err != nil {
		return err
	}

	opts := DisplayOptionsFromConfig()
	opts.ShowID = true

	before, err := session.View()
	if err != nil {
		return err
	}
	fmt.Println("Before:")
	DisplayDay(before, opts)

	result, err := session.Move(id, at)
	if err != nil {
		return fmt.Errorf("move failed: %w", err)
	}

	after, err := session.View()
	if err != nil {
		return err
	}
	fmt.Println("\nAfter:")
	DisplayDay(after, opts)

	fmt.Println()
	if result.Swapped {
		fmt.Printf("✓ Swapped %s with %s, now at %s\n", result.EventID, result.BlockerID, result.Time)
	} else {
		fmt.Printf("✓ Moved %s to %s\n", result.EventID, result.Time)
	}
	if len(result.Shifted) > 0 {
		fmt.Printf("  Rescheduled: %s\n", strings.Join(result.Shifted, ", "))
	}

	return nil
}
