package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/core/autoaccept"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

func TestAttendanceColor(t *testing.T) {
	green := "GREEN"
	yellow := "YELLOW"
	red := "RED"

	tests := []struct {
		name     string
		rate     float64
		expected string
	}{
		{"perfect attendance", 100, green},
		{"exactly 90", 90, green},
		{"just under 90", 89.9, yellow},
		{"exactly 75", 75, yellow},
		{"just under 75", 74.9, red},
		{"no attendance", 0, red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, attendanceColor(tt.rate, green, yellow, red))
		})
	}
}

func TestSignupStatusLabelAndColor(t *testing.T) {
	tests := []struct {
		name          string
		signup        model.Signup
		expectedLabel string
		expectedColor string
	}{
		{"confirmed", model.Signup{Status: model.SignupConfirmed}, "CONFIRMED", colorGreen},
		{"pending", model.Signup{Status: model.SignupPending}, "PENDING", colorYellow},
		{"waitlisted", model.Signup{Status: model.SignupWaitlisted}, "WAITLISTED", colorYellow},
		{"dropped after confirmation", model.Signup{Status: model.SignupCanceled, PreviousStatus: model.SignupConfirmed}, "CANCELED (was CONFIRMED)", colorRed},
		{"withdrawn while pending", model.Signup{Status: model.SignupCanceled, PreviousStatus: model.SignupPending}, "CANCELED (was PENDING)", colorDim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedLabel, signupStatusLabel(tt.signup))
			assert.Equal(t, tt.expectedColor, signupStatusColor(tt.signup))
		})
	}
}

func TestFormatRuleSummary(t *testing.T) {
	tests := []struct {
		name     string
		summary  services.RuleSummary
		expected string
	}{
		{
			name: "criteria joined by logic",
			summary: services.RuleSummary{
				Rule:     db.AutoAcceptRule{ID: "r1", Name: "Experienced", Priority: 10, Enabled: true, CriteriaLogic: "AND"},
				Scope:    "global",
				Criteria: []string{"minCompletedShifts", "minAttendanceRate"},
			},
			expected: "- [10] Experienced (r1) - global - minCompletedShifts AND minAttendanceRate",
		},
		{
			name: "disabled stop rule",
			summary: services.RuleSummary{
				Rule:     db.AutoAcceptRule{ID: "r2", Name: "Kitchen", Priority: 5, StopOnMatch: true, CriteriaLogic: "OR"},
				Scope:    "shiftType=kitchen",
				Criteria: []string{"minGrade"},
			},
			expected: "- [5] Kitchen (r2) - shiftType=kitchen - minGrade [disabled, stop]",
		},
		{
			name: "empty criteria",
			summary: services.RuleSummary{
				Rule:  db.AutoAcceptRule{ID: "r3", Name: "Empty", Priority: 1, Enabled: true, CriteriaLogic: "AND"},
				Scope: "global",
			},
			expected: "- [1] Empty (r3) - global - no criteria, never matches",
		},
		{
			name: "invalid rule",
			summary: services.RuleSummary{
				Rule:    db.AutoAcceptRule{ID: "r4", Name: "Broken", Priority: 2, Enabled: true},
				Invalid: "unknown grade",
			},
			expected: "- [2] Broken (r4) - INVALID: unknown grade",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatRuleSummary(tt.summary))
		})
	}
}

func TestParseDateRange(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)

	t.Run("defaults to today for 28 days", func(t *testing.T) {
		from, until, err := parseDateRange("", "", london, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, london), from)
		assert.Equal(t, time.Date(2025, 4, 7, 23, 59, 59, 0, london), until)
	})

	t.Run("explicit dates are inclusive", func(t *testing.T) {
		from, until, err := parseDateRange("2025-03-01", "2025-03-01", london, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, london), from)
		assert.Equal(t, time.Date(2025, 3, 1, 23, 59, 59, 0, london), until)
	})

	t.Run("until before from", func(t *testing.T) {
		_, _, err := parseDateRange("2025-03-10", "2025-03-09", london, now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "before --from")
	})

	t.Run("bad date", func(t *testing.T) {
		_, _, err := parseDateRange("10/03/2025", "", london, now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --from date")
	})
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
		wantErr  bool
	}{
		{"plain", "signUp vol-1 shift-1", []string{"signUp", "vol-1", "shift-1"}, false},
		{"double quotes", `volunteers add a@example.com "Alice Smith"`, []string{"volunteers", "add", "a@example.com", "Alice Smith"}, false},
		{"single quotes", `shiftTypes add kitchen 'Kitchen crew'`, []string{"shiftTypes", "add", "kitchen", "Kitchen crew"}, false},
		{"extra whitespace", "  rules   list  ", []string{"rules", "list"}, false},
		{"unclosed quote", `volunteers add "Alice`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := parseCommandLine(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, args)
		})
	}
}

func TestRunInteractive(t *testing.T) {
	var got []string
	root := &cobra.Command{Use: "cli"}
	group := &cobra.Command{Use: "rules"}
	enable := &cobra.Command{
		Use:  "enable <rule_id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			got = append(got, "enable:"+args[0])
			return nil
		},
	}
	failing := &cobra.Command{
		Use: "boom",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("boom failed")
		},
	}
	group.AddCommand(enable)
	root.AddCommand(group, failing, &cobra.Command{Use: "serve", Run: func(*cobra.Command, []string) {}})

	require.NoError(t, runInteractive(root, []string{"rules", "enable", "r1"}))
	assert.Equal(t, []string{"enable:r1"}, got)

	err := runInteractive(root, []string{"rules", "enable"})
	require.Error(t, err)

	err = runInteractive(root, []string{"boom"})
	require.EqualError(t, err, "boom failed")

	err = runInteractive(root, []string{"serve"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestNewApprover_DisabledReturnsUntypedNil(t *testing.T) {
	app := &AppContext{
		Cfg:    &config.Config{AutoAccept: config.AutoAcceptConfig{Enabled: false}},
		Logger: zap.NewNop(),
	}

	// A typed nil would make SignUp try to apply rules
	assert.True(t, app.NewApprover(nil) == nil)
}

func TestNewApprover_EnabledIsTrackedForShutdown(t *testing.T) {
	app := &AppContext{
		Cfg:       &config.Config{AutoAccept: config.AutoAcceptConfig{Enabled: true}},
		Logger:    zap.NewNop(),
		Evaluator: autoaccept.NewEvaluator(nil, nil, zap.NewNop(), autoaccept.EvaluatorConfig{}),
	}

	approver := app.NewApprover(nil)
	require.NotNil(t, approver)
	require.Len(t, app.appliers, 1)
	assert.Same(t, app.appliers[0], approver)

	// Nothing was applied, so there is nothing to wait for
	app.WaitForNotices()
}
