package autoaccept

import (
	"fmt"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// Logic combines the results of a rule's criteria
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

func (l Logic) IsValid() bool {
	return l == LogicAnd || l == LogicOr
}

// Rule is an auto-accept rule decoded from storage
type Rule struct {
	ID          string
	Name        string
	Enabled     bool
	Priority    int
	Scope       Scope
	Criteria    []Criterion
	Logic       Logic
	StopOnMatch bool
	CreatedAt   time.Time
}

// RuleFromRecord decodes a stored rule. Criteria are listed in a fixed order
// and only those with a configured value are included.
func RuleFromRecord(rec *db.AutoAcceptRule, compiler *ExpressionCompiler) (*Rule, error) {
	scope, err := ScopeFromColumns(rec.Global, rec.ShiftTypeID, rec.Location)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", rec.ID, err)
	}

	logic := Logic(rec.CriteriaLogic)
	if !logic.IsValid() {
		return nil, fmt.Errorf("rule %s: unknown criteria logic %q", rec.ID, rec.CriteriaLogic)
	}

	var criteria []Criterion

	if rec.MinGrade != nil && *rec.MinGrade != "" {
		grade, err := model.ParseGrade(*rec.MinGrade)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rec.ID, err)
		}
		criteria = append(criteria, MinGradeCriterion{Grade: grade})
	}
	if rec.MinCompletedShifts != nil {
		criteria = append(criteria, MinCompletedShiftsCriterion{Count: *rec.MinCompletedShifts})
	}
	if rec.MinAttendanceRate != nil {
		criteria = append(criteria, MinAttendanceRateCriterion{Percent: *rec.MinAttendanceRate})
	}
	if rec.MinAccountAgeDays != nil {
		criteria = append(criteria, MinAccountAgeDaysCriterion{Days: *rec.MinAccountAgeDays})
	}
	if rec.MaxDaysInAdvance != nil {
		criteria = append(criteria, MaxDaysInAdvanceCriterion{Days: *rec.MaxDaysInAdvance})
	}
	if rec.RequireShiftTypeExperience {
		criteria = append(criteria, ShiftTypeExperienceCriterion{})
	}
	if rec.Expression != nil && *rec.Expression != "" {
		if compiler == nil {
			return nil, fmt.Errorf("rule %s: expression criterion requires a compiler", rec.ID)
		}
		expr, err := compiler.Compile(*rec.Expression)
		if err != nil {
			return nil, fmt.Errorf("rule %s: invalid expression: %w", rec.ID, err)
		}
		criteria = append(criteria, expr)
	}

	return &Rule{
		ID:          rec.ID,
		Name:        rec.Name,
		Enabled:     rec.Enabled,
		Priority:    rec.Priority,
		Scope:       scope,
		Criteria:    criteria,
		Logic:       logic,
		StopOnMatch: rec.StopOnMatch,
		CreatedAt:   rec.CreatedAt,
	}, nil
}
