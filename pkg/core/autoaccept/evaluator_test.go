package autoaccept

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

func newTestEvaluator(t *testing.T, store EvaluatorStore, haltOnMiss bool) *Evaluator {
	t.Helper()
	compiler, err := NewExpressionCompiler()
	require.NoError(t, err)
	return NewEvaluator(store, compiler, zap.NewNop(), EvaluatorConfig{HaltOnStopRuleMiss: haltOnMiss, Now: nowFunc})
}

func TestEvaluate_HigherPriorityRuleWins(t *testing.T) {
	store := scenarioStore(model.GradeGreen, completedSignups(12, "kitchen"))

	low := globalRule("rule-b", 5)
	low.MinCompletedShifts = ptr(1)
	high := globalRule("rule-a", 10)
	high.MinCompletedShifts = ptr(1)
	// Stored out of order to prove the evaluator sorts
	store.rules = []db.AutoAcceptRule{low, high}

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "shift-1")

	assert.True(t, result.Approved)
	assert.Equal(t, "rule-a", result.RuleID)
	assert.Equal(t, "Rule rule-a", result.RuleName)
	assert.Equal(t, "Auto-approved by rule: Rule rule-a", result.Reason)
}

func TestEvaluate_PriorityTieBrokenByCreationTime(t *testing.T) {
	store := scenarioStore(model.GradeGreen, nil)

	older := globalRule("rule-z", 1)
	older.MinAttendanceRate = ptr(50.0)
	older.CreatedAt = fixedNow.AddDate(0, -2, 0)
	newer := globalRule("rule-a", 1)
	newer.MinAttendanceRate = ptr(50.0)
	store.rules = []db.AutoAcceptRule{newer, older}

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "shift-1")

	require.True(t, result.Approved)
	assert.Equal(t, "rule-z", result.RuleID)
}

func TestEvaluate_EmptyCriteriaRuleIsInert(t *testing.T) {
	store := scenarioStore(model.GradePink, completedSignups(50, "kitchen"))
	store.rules = []db.AutoAcceptRule{globalRule("empty", 100)}

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "shift-1")

	assert.False(t, result.Approved)
	assert.Equal(t, ReasonNoMatch, result.Reason)
}

func TestEvaluate_StopOnMatchMissHaltsEvaluation(t *testing.T) {
	store := scenarioStore(model.GradeGreen, completedSignups(12, "kitchen"))

	stopper := globalRule("rule-a", 10)
	stopper.MinGrade = ptr(string(model.GradePink))
	stopper.StopOnMatch = true
	fallback := globalRule("rule-b", 5)
	fallback.MinCompletedShifts = ptr(10)
	store.rules = []db.AutoAcceptRule{stopper, fallback}

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "shift-1")

	assert.False(t, result.Approved)
	assert.Empty(t, result.RuleID)
	assert.Equal(t, ReasonNoMatch, result.Reason)
}

func TestEvaluate_StopOnMatchMissContinuesWhenHaltDisabled(t *testing.T) {
	store := scenarioStore(model.GradeGreen, completedSignups(12, "kitchen"))

	stopper := globalRule("rule-a", 10)
	stopper.MinGrade = ptr(string(model.GradePink))
	stopper.StopOnMatch = true
	fallback := globalRule("rule-b", 5)
	fallback.MinCompletedShifts = ptr(10)
	store.rules = []db.AutoAcceptRule{stopper, fallback}

	result := newTestEvaluator(t, store, false).Evaluate(context.Background(), "vol-1", "shift-1")

	assert.True(t, result.Approved)
	assert.Equal(t, "rule-b", result.RuleID)
}

func TestEvaluate_NonStoppingMissFallsThrough(t *testing.T) {
	store := scenarioStore(model.GradeGreen, completedSignups(12, "kitchen"))

	first := globalRule("rule-a", 10)
	first.MinGrade = ptr(string(model.GradePink))
	second := globalRule("rule-b", 5)
	second.MinCompletedShifts = ptr(10)
	store.rules = []db.AutoAcceptRule{first, second}

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "shift-1")

	assert.True(t, result.Approved)
	assert.Equal(t, "rule-b", result.RuleID)
}

func TestEvaluate_RuleFetchErrorFailsClosed(t *testing.T) {
	store := scenarioStore(model.GradePink, completedSignups(12, "kitchen"))
	store.rulesErr = errDatabaseDown

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "shift-1")

	assert.Equal(t, EvaluationResult{Approved: false, Reason: ReasonError}, result)
}

func TestEvaluate_MissingShiftFailsClosed(t *testing.T) {
	store := scenarioStore(model.GradePink, nil)

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "no-such-shift")

	assert.False(t, result.Approved)
	assert.Equal(t, ReasonError, result.Reason)
}

func TestEvaluate_MissingVolunteerFailsClosed(t *testing.T) {
	store := scenarioStore(model.GradePink, nil)
	rule := globalRule("rule-a", 1)
	rule.MinAttendanceRate = ptr(0.0)
	store.rules = []db.AutoAcceptRule{rule}

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "ghost", "shift-1")

	assert.False(t, result.Approved)
	assert.Equal(t, ReasonError, result.Reason)
}

func TestEvaluate_SnapshotComputedOncePerCall(t *testing.T) {
	store := scenarioStore(model.GradeGreen, nil)
	var rules []db.AutoAcceptRule
	for i, id := range []string{"r1", "r2", "r3"} {
		r := globalRule(id, 10-i)
		r.MinCompletedShifts = ptr(100)
		rules = append(rules, r)
	}
	store.rules = rules

	newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "shift-1")

	assert.Equal(t, 1, store.historyFetches)
	assert.Equal(t, 1, store.ruleFetches)
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	store := scenarioStore(model.GradeYellow, append(completedSignups(4, "kitchen"), canceledConfirmedSignups(1)...))

	a := globalRule("rule-a", 3)
	a.MinAttendanceRate = ptr(90.0)
	b := globalRule("rule-b", 2)
	b.MinGrade = ptr(string(model.GradeYellow))
	b.RequireShiftTypeExperience = true
	store.rules = []db.AutoAcceptRule{a, b}

	evaluator := newTestEvaluator(t, store, true)
	first := evaluator.Evaluate(context.Background(), "vol-1", "shift-1")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, evaluator.Evaluate(context.Background(), "vol-1", "shift-1"))
	}
	assert.Equal(t, "rule-b", first.RuleID)
}

func TestEvaluate_SkipsOutOfScopeDisabledAndInvalidRules(t *testing.T) {
	store := scenarioStore(model.GradePink, completedSignups(12, "kitchen"))

	otherType := globalRule("other-type", 50)
	otherType.Global = false
	otherType.ShiftTypeID = ptr("front-of-house")
	otherType.MinCompletedShifts = ptr(1)

	otherLocation := globalRule("other-location", 40)
	otherLocation.Location = ptr("Barking")
	otherLocation.MinCompletedShifts = ptr(1)

	disabled := globalRule("disabled", 30)
	disabled.Enabled = false
	disabled.MinCompletedShifts = ptr(1)

	badGrade := globalRule("bad-grade", 20)
	badGrade.MinGrade = ptr("PURPLE")

	matching := globalRule("kitchen-ilford", 10)
	matching.Global = false
	matching.ShiftTypeID = ptr("kitchen")
	matching.Location = ptr("Ilford")
	matching.MinCompletedShifts = ptr(1)

	store.rules = []db.AutoAcceptRule{otherType, otherLocation, disabled, badGrade, matching}

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "shift-1")

	require.True(t, result.Approved)
	assert.Equal(t, "kitchen-ilford", result.RuleID)
}

func TestEvaluate_ExpressionCriterion(t *testing.T) {
	store := scenarioStore(model.GradeYellow, completedSignups(6, "kitchen"))

	rule := globalRule("expr", 1)
	rule.Expression = ptr(`volunteer.grade == "YELLOW" && volunteer.completedShifts >= 5 && shift.location == "Ilford"`)
	store.rules = []db.AutoAcceptRule{rule}

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "shift-1")

	assert.True(t, result.Approved)
	assert.Equal(t, "expr", result.RuleID)
}

func TestEvaluate_NoRulesMeansNoMatch(t *testing.T) {
	store := scenarioStore(model.GradePink, nil)

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "shift-1")

	assert.Equal(t, EvaluationResult{Approved: false, Reason: ReasonNoMatch}, result)
	assert.Equal(t, 1, store.historyFetches)
}

func TestEvaluate_MissingVolunteerWithNoRulesFailsClosed(t *testing.T) {
	store := scenarioStore(model.GradePink, nil)

	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "ghost", "shift-1")

	assert.Equal(t, EvaluationResult{Approved: false, Reason: ReasonError}, result)
}

func TestEvaluate_ShiftTypeAndLocationRuleNeedsBoth(t *testing.T) {
	store := scenarioStore(model.GradePink, nil)
	rule := globalRule("bar-ilford", 1)
	rule.Global = false
	rule.ShiftTypeID = ptr("bar")
	rule.Location = ptr("Ilford")
	rule.MinAttendanceRate = ptr(0.0)
	store.rules = []db.AutoAcceptRule{rule}

	// shift-1 is a kitchen shift at Ilford
	result := newTestEvaluator(t, store, true).Evaluate(context.Background(), "vol-1", "shift-1")

	assert.Equal(t, EvaluationResult{Approved: false, Reason: ReasonNoMatch}, result)
}
