package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/theakshaypant/dayplan/internal/core"
)

var calendarsCmd = &cobra.Command{
	Use:     "calendars",
	Aliases: []string{"cal", "cals"},
	Short:   "List the calendars a calendar source can read",
	Long: `List all calendars of the configured google or outlook account,
including shared and subscribed ones.`,
	RunE: runCalendars,
}

func init() {
	rootCmd.AddCommand(calendarsCmd)
}

func runCalendars(cmd *cobra.Command, args []string) error {
	cs, ok := source.(core.CalendarSource)
	if !ok {
		return fmt.Errorf("the %s source has no calendars (use --source google or --source outlook)", source.Name())
	}
	calendars := cs.Calendars()

	ids := make([]string, 0, len(calendars))
	for id := range calendars {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return calendars[ids[i]] < calendars[ids[j]] })

	fmt.Println("📅 Available calendars:")
	fmt.Println("─────────────────────────────────────────────────")

	for _, id := range ids {
		fmt.Printf("\n  • %s\n", calendars[id])
		fmt.Printf("    ID: %s\n", id)
	}

	fmt.Println()
	fmt.Printf("Total: %d calendars\n", len(calendars))
	fmt.Println("\nTip: Use 'dayplan -c \"calendar name\"' to plan from selected calendars only")

	return nil
}
