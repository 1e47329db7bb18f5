package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/autoaccept"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// ViewHistoryCmd creates the viewHistory command
func ViewHistoryCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewHistory <user_id>",
		Short: "View a volunteer's signup history and the statistics auto-accept rules see",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			app.Logger.Debug("viewHistory command", zap.String("user_id", userID))

			history, err := app.Database.GetVolunteerWithSignups(app.Ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to fetch volunteer history: %w", err)
			}

			snapshot := autoaccept.BuildSnapshot(history, "", app.Now())
			loc := app.Cfg.Location()

			fmt.Printf("\n%s <%s> - %s\n\n", history.Volunteer.Name, history.Volunteer.Email, history.Volunteer.Grade)

			if len(history.Signups) == 0 {
				fmt.Println("No signups yet.")
			} else {
				fmt.Printf("%-20s %-14s %-24s %s\n", "Shift", "Location", "Start", "Status")
				fmt.Println(strings.Repeat("-", 72))
				for _, s := range history.Signups {
					fmt.Printf("%-20s %-14s %-24s %s\n",
						s.Shift.ShiftTypeID,
						s.Shift.Location,
						s.Shift.Start.In(loc).Format("Mon 02 Jan 2006 15:04"),
						colorize(signupStatusColor(s.Signup), signupStatusLabel(s.Signup)))
				}
			}

			fmt.Println()
			fmt.Printf("Completed shifts:             %d\n", snapshot.CompletedShiftCount)
			fmt.Printf("Canceled after confirmation:  %d\n", snapshot.CanceledConfirmedShiftCount)
			fmt.Printf("Attendance rate:              %s\n",
				colorize(attendanceColor(snapshot.AttendanceRatePercent, colorGreen, colorYellow, colorRed),
					fmt.Sprintf("%.1f%%", snapshot.AttendanceRatePercent)))
			fmt.Printf("Account age:                  %d days\n\n",
				int(app.Now().Sub(history.Volunteer.CreatedAt)/(24*time.Hour)))

			return nil
		},
	}
}

func colorize(color, text string) string {
	if color == "" {
		return text
	}
	return color + text + colorReset
}

func signupStatusLabel(s model.Signup) string {
	if s.Status == model.SignupCanceled && s.PreviousStatus != "" {
		return fmt.Sprintf("%s (was %s)", s.Status, s.PreviousStatus)
	}
	return string(s.Status)
}

func signupStatusColor(s model.Signup) string {
	switch s.Status {
	case model.SignupConfirmed:
		return colorGreen
	case model.SignupPending, model.SignupWaitlisted:
		return colorYellow
	case model.SignupCanceled:
		// Dropping a confirmed shift counts against attendance
		if s.PreviousStatus == model.SignupConfirmed {
			return colorRed
		}
		return colorDim
	}
	return ""
}

// attendanceColor picks green at 90% or above, yellow from 75%, red below
func attendanceColor(rate float64, green, yellow, red string) string {
	switch {
	case rate >= 90:
		return green
	case rate >= 75:
		return yellow
	default:
		return red
	}
}
