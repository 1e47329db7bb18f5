package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// RulesCmd creates the rules command and its subcommands
func RulesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage auto-accept rules",
	}

	cmd.AddCommand(createRuleCmd(app))
	cmd.AddCommand(listRulesCmd(app))
	cmd.AddCommand(setRuleEnabledCmd(app, "enable", true))
	cmd.AddCommand(setRuleEnabledCmd(app, "disable", false))
	cmd.AddCommand(deleteRuleCmd(app))

	return cmd
}

func createRuleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an auto-accept rule from a YAML definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open rule definition: %w", err)
			}
			defer f.Close()

			def, err := services.ParseRuleDefinition(f)
			if err != nil {
				return err
			}

			rule, err := services.CreateRule(app.Ctx, app.Database, app.Compiler, app.Logger, def)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Rule created\n\n")
			fmt.Printf("Rule ID:  %s\n", rule.ID)
			fmt.Printf("Name:     %s\n", rule.Name)
			fmt.Printf("Priority: %d\n", rule.Priority)
			fmt.Printf("Enabled:  %t\n\n", rule.Enabled)
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Path to the YAML rule definition")
	cmd.MarkFlagRequired("file")

	return cmd
}

func listRulesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List auto-accept rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := services.ListRules(app.Ctx, app.Database, app.Compiler)
			if err != nil {
				return err
			}

			app.Logger.Debug("Rules fetched", zap.Int("count", len(summaries)))

			if len(summaries) == 0 {
				fmt.Println("\nNo auto-accept rules defined.")
				return nil
			}

			fmt.Printf("\nFound %d rules:\n\n", len(summaries))
			for _, s := range summaries {
				fmt.Println(formatRuleSummary(s))
			}
			fmt.Println()
			return nil
		},
	}
}

func setRuleEnabledCmd(app *AppContext, verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <rule_id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " an auto-accept rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.SetRuleEnabled(app.Ctx, app.Database, app.Logger, args[0], enabled); err != nil {
				return err
			}
			fmt.Printf("\n✓ Rule %s %sd\n\n", args[0], verb)
			return nil
		},
	}
}

func deleteRuleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <rule_id>",
		Short: "Delete an auto-accept rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.DeleteRule(app.Ctx, app.Database, app.Logger, args[0]); err != nil {
				return err
			}
			fmt.Printf("\n✓ Rule %s deleted\n\n", args[0])
			return nil
		},
	}
}

// formatRuleSummary renders one line per rule, e.g.
// "- [10] Experienced (rule-1) - global - minCompletedShifts AND minAttendanceRate"
func formatRuleSummary(s services.RuleSummary) string {
	r := s.Rule

	var flags []string
	if !r.Enabled {
		flags = append(flags, "disabled")
	}
	if r.StopOnMatch {
		flags = append(flags, "stop")
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " [" + strings.Join(flags, ", ") + "]"
	}

	if s.Invalid != "" {
		return fmt.Sprintf("- [%d] %s (%s) - INVALID: %s%s", r.Priority, r.Name, r.ID, s.Invalid, suffix)
	}

	criteria := "no criteria, never matches"
	if len(s.Criteria) > 0 {
		criteria = strings.Join(s.Criteria, " "+r.CriteriaLogic+" ")
	}

	return fmt.Sprintf("- [%d] %s (%s) - %s - %s%s", r.Priority, r.Name, r.ID, s.Scope, criteria, suffix)
}
