package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// SignUpCmd creates the signUp command
func SignUpCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "signUp <user_id> <shift_id>",
		Short: "Sign a volunteer up for a shift, applying auto-accept rules",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.SignUp(
				app.Ctx,
				app.Database,
				app.NewApprover(nil),
				app.Logger,
				app.Now(),
				args[0],
				args[1],
			)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Signup recorded\n\n")
			fmt.Printf("Signup ID: %s\n", result.SignupID)
			fmt.Printf("Status:    %s\n", result.Status)
			if result.AutoApproved {
				fmt.Printf("Approved automatically by rule %s\n", result.RuleID)
			}
			fmt.Println()

			return nil
		},
	}
}

// CancelSignupCmd creates the cancelSignup command
func CancelSignupCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelSignup <signup_id>",
		Short: "Cancel a signup, remembering the status it had",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signup, err := services.CancelSignup(app.Ctx, app.Database, app.Logger, app.Now(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Signup %s canceled (was %s)\n\n", signup.ID, signup.PreviousStatus)
			return nil
		},
	}
}

// CheckEligibilityCmd creates the checkEligibility command
func CheckEligibilityCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkEligibility <user_id> <shift_id>",
		Short: "Report whether a signup would be auto-accepted, without signing up",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.CheckEligibility(app.Ctx, app.Database, app.Evaluator, args[0], args[1])
			if err != nil {
				return err
			}

			if result.Approved {
				fmt.Printf("\n✓ Eligible: %s\n\n", result.Reason)
			} else {
				fmt.Printf("\n✗ Not eligible: %s\n\n", result.Reason)
			}
			return nil
		},
	}
}
