package autoaccept

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

func TestExpressionCompiler_RejectsInvalidSource(t *testing.T) {
	compiler, err := NewExpressionCompiler()
	require.NoError(t, err)

	_, err = compiler.Compile(`volunteer.completedShifts >=`)
	assert.Error(t, err)

	_, err = compiler.Compile(`"not a bool"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must evaluate to bool")
}

func TestExpressionCompiler_CachesPrograms(t *testing.T) {
	compiler, err := NewExpressionCompiler()
	require.NoError(t, err)

	_, err = compiler.Compile(`volunteer.hasShiftTypeExperience == true`)
	require.NoError(t, err)
	_, err = compiler.Compile(`volunteer.hasShiftTypeExperience == true`)
	require.NoError(t, err)

	assert.Len(t, compiler.programs, 1)
}

func TestExpressionCriterion_IsSatisfied(t *testing.T) {
	compiler, err := NewExpressionCompiler()
	require.NoError(t, err)

	in := &MatchInput{
		Snapshot: &Snapshot{
			Grade:                 model.GradePink,
			CompletedShiftCount:   8,
			AttendanceRatePercent: 92.5,
			AccountCreatedAt:      fixedNow.AddDate(0, 0, -40),
		},
		Shift: testShift(2),
		Now:   fixedNow,
	}

	tests := []struct {
		source   string
		expected bool
	}{
		{`volunteer.completedShifts > 5`, true},
		{`volunteer.attendanceRate >= 95.0`, false},
		{`volunteer.accountAgeDays >= 30 && shift.daysInAdvance <= 2`, true},
		{`shift.shiftTypeId == "front-of-house" || volunteer.grade == "PINK"`, true},
		// Runtime errors count as not satisfied
		{`volunteer.missingField == 1`, false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			criterion, err := compiler.Compile(tt.source)
			require.NoError(t, err)
			assert.Equal(t, KindExpression, criterion.Kind())
			assert.Equal(t, tt.expected, criterion.IsSatisfied(in))
		})
	}
}
