package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// VolunteersCmd creates the volunteers command and its subcommands
func VolunteersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volunteers",
		Short: "Manage volunteers",
	}

	add := &cobra.Command{
		Use:   "add <email> <name>",
		Short: "Register a volunteer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			grade, _ := cmd.Flags().GetString("grade")

			volunteer, err := services.AddVolunteer(app.Ctx, app.Database, app.Logger, app.Now(), services.NewVolunteer{
				Email: args[0],
				Name:  args[1],
				Grade: grade,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Volunteer added\n\n")
			fmt.Printf("User ID: %s\n", volunteer.ID)
			fmt.Printf("Email:   %s\n", volunteer.Email)
			fmt.Printf("Grade:   %s\n\n", volunteer.Grade)
			return nil
		},
	}
	add.Flags().String("grade", "", "Volunteer grade: GREEN, YELLOW or PINK (defaults to GREEN)")

	cmd.AddCommand(add)
	cmd.AddCommand(importVolunteersCmd(app))
	return cmd
}

func importVolunteersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Register the volunteers listed in the configured Google Sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.SheetsClient == nil {
				return fmt.Errorf("no volunteer sheet configured: set volunteerSheet.spreadsheetID")
			}

			rows, err := app.SheetsClient.ListVolunteers(app.Ctx, app.Cfg.VolunteerSheet)
			if err != nil {
				return err
			}

			app.Logger.Debug("Volunteer rows read", zap.Int("count", len(rows)))

			entries := make([]services.NewVolunteer, len(rows))
			for i, r := range rows {
				entries[i] = services.NewVolunteer{Email: r.Email, Name: r.Name, Grade: r.Grade}
			}

			result, err := services.ImportVolunteers(app.Ctx, app.Database, app.Logger, app.Now(), entries)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Import completed: %d added, %d already registered\n\n", len(result.Added), result.Existing)
			for _, v := range result.Added {
				fmt.Printf("  ✓ %s (%s) - %s\n", v.Name, v.Email, v.Grade)
			}

			if len(result.Failed) > 0 {
				fmt.Printf("\n⚠️  Skipped %d invalid rows:\n", len(result.Failed))
				for _, f := range result.Failed {
					fmt.Printf("  ✗ row %d (%s): %v\n", rows[f.Index].Row, f.Email, f.Err)
				}
			}
			fmt.Println()

			return nil
		},
	}
}

// ShiftTypesCmd creates the shiftTypes command and its subcommands
func ShiftTypesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shiftTypes",
		Short: "Manage shift types",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> <name>",
		Short: "Register a shift type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shiftType, err := services.AddShiftType(app.Ctx, app.Database, app.Logger, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Shift type %s (%s) added\n\n", shiftType.ID, shiftType.Name)
			return nil
		},
	})

	return cmd
}
