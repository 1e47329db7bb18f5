package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

const defaultScheduleDays = 28

// ScheduleShiftsCmd creates the scheduleShifts command
func ScheduleShiftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheduleShifts",
		Short: "Create shifts from the configured recurring shifts",
		Long: `Expand every recurring shift in the config between --from and --until (inclusive dates)
and store the resulting shifts. Shifts that already exist are left untouched, so the
same window can be scheduled more than once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromStr, _ := cmd.Flags().GetString("from")
			untilStr, _ := cmd.Flags().GetString("until")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			loc := app.Cfg.Location()
			from, until, err := parseDateRange(fromStr, untilStr, loc, app.Now())
			if err != nil {
				return err
			}

			result, err := services.ScheduleShifts(app.Ctx, app.Database, app.Logger, app.Cfg.RecurringShifts, loc, from, until, dryRun)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Printf("\nDRY RUN: %d shifts would be scheduled\n\n", len(result.Shifts))
			} else {
				fmt.Printf("\n✓ %d shifts generated, %d new\n\n", len(result.Shifts), result.Inserted)
			}

			for _, s := range result.Shifts {
				fmt.Printf("  %s  %-20s %-14s %s - %s\n",
					s.ID[:8],
					s.ShiftTypeID,
					s.Location,
					s.Start.In(loc).Format("Mon 02 Jan 2006 15:04"),
					s.End.In(loc).Format("15:04"))
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("from", "", "First date to schedule (YYYY-MM-DD, defaults to today)")
	cmd.Flags().String("until", "", fmt.Sprintf("Last date to schedule (YYYY-MM-DD, defaults to %d days after --from)", defaultScheduleDays))
	cmd.Flags().Bool("dry-run", false, "Show the shifts without saving them")

	return cmd
}

// parseDateRange resolves --from and --until into the window [from 00:00, until 23:59:59] in loc
func parseDateRange(fromStr, untilStr string, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	var from time.Time
	if fromStr == "" {
		n := now.In(loc)
		from = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	} else {
		d, err := time.ParseInLocation(time.DateOnly, fromStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date %q: %w", fromStr, err)
		}
		from = d
	}

	var untilDay time.Time
	if untilStr == "" {
		untilDay = from.AddDate(0, 0, defaultScheduleDays)
	} else {
		d, err := time.ParseInLocation(time.DateOnly, untilStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until date %q: %w", untilStr, err)
		}
		untilDay = d
	}

	until := untilDay.AddDate(0, 0, 1).Add(-time.Second)
	if until.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--until %s is before --from %s", untilDay.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	return from, until, nil
}
