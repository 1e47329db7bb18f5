package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/volunteer-hub/pkg/core/autoaccept"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// RuleAdminStore defines the database operations for administering rules
type RuleAdminStore interface {
	GetShiftType(ctx context.Context, shiftTypeID string) (*model.ShiftType, error)
	GetRules(ctx context.Context) ([]db.AutoAcceptRule, error)
	GetRule(ctx context.Context, ruleID string) (*db.AutoAcceptRule, error)
	InsertRule(ctx context.Context, rule *db.AutoAcceptRule) error
	SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error
	DeleteRule(ctx context.Context, ruleID string) error
}

// RuleScopeDefinition selects the shifts a rule applies to
type RuleScopeDefinition struct {
	Global      bool   `yaml:"global"`
	ShiftTypeID string `yaml:"shiftTypeID,omitempty"`
	Location    string `yaml:"location,omitempty"`
}

// RuleCriteriaDefinition lists a rule's criteria. Omitted criteria are not evaluated.
type RuleCriteriaDefinition struct {
	MinGrade                   *string  `yaml:"minGrade,omitempty" validate:"omitempty,oneof=GREEN YELLOW PINK"`
	MinCompletedShifts         *int     `yaml:"minCompletedShifts,omitempty" validate:"omitempty,min=0"`
	MinAttendanceRate          *float64 `yaml:"minAttendanceRate,omitempty" validate:"omitempty,min=0,max=100"`
	MinAccountAgeDays          *int     `yaml:"minAccountAgeDays,omitempty" validate:"omitempty,min=0"`
	MaxDaysInAdvance           *int     `yaml:"maxDaysInAdvance,omitempty" validate:"omitempty,min=0"`
	RequireShiftTypeExperience bool     `yaml:"requireShiftTypeExperience,omitempty"`
	Expression                 string   `yaml:"expression,omitempty"`
}

// RuleDefinition is the YAML form of an auto-accept rule
type RuleDefinition struct {
	ID          string                 `yaml:"id,omitempty"`
	Name        string                 `yaml:"name" validate:"required"`
	Description string                 `yaml:"description,omitempty"`
	Enabled     *bool                  `yaml:"enabled,omitempty"`
	Priority    int                    `yaml:"priority" validate:"min=0"`
	Scope       RuleScopeDefinition    `yaml:"scope"`
	Criteria    RuleCriteriaDefinition `yaml:"criteria"`
	Logic       string                 `yaml:"logic,omitempty" validate:"omitempty,oneof=AND OR"`
	StopOnMatch bool                   `yaml:"stopOnMatch,omitempty"`
}

var validate = validator.New()

// ParseRuleDefinition decodes a YAML rule definition, rejecting unknown keys
func ParseRuleDefinition(r io.Reader) (*RuleDefinition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule definition: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def RuleDefinition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse rule definition: %w: %w", ErrInvalidInput, err)
	}
	return &def, nil
}

// toRecord converts a definition into a storable rule, filling defaults
func (def *RuleDefinition) toRecord() *db.AutoAcceptRule {
	rec := &db.AutoAcceptRule{
		ID:                         def.ID,
		Name:                       def.Name,
		Description:                def.Description,
		Enabled:                    def.Enabled == nil || *def.Enabled,
		Priority:                   def.Priority,
		Global:                     def.Scope.Global,
		MinGrade:                   def.Criteria.MinGrade,
		MinCompletedShifts:         def.Criteria.MinCompletedShifts,
		MinAttendanceRate:          def.Criteria.MinAttendanceRate,
		MinAccountAgeDays:          def.Criteria.MinAccountAgeDays,
		MaxDaysInAdvance:           def.Criteria.MaxDaysInAdvance,
		RequireShiftTypeExperience: def.Criteria.RequireShiftTypeExperience,
		CriteriaLogic:              def.Logic,
		StopOnMatch:                def.StopOnMatch,
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CriteriaLogic == "" {
		rec.CriteriaLogic = string(autoaccept.LogicAnd)
	}
	if def.Scope.ShiftTypeID != "" {
		rec.ShiftTypeID = &def.Scope.ShiftTypeID
	}
	if def.Scope.Location != "" {
		rec.Location = &def.Scope.Location
	}
	if def.Criteria.Expression != "" {
		rec.Expression = &def.Criteria.Expression
	}
	return rec
}

// CreateRule validates a rule definition and stores it. The stored record is
// decoded exactly as the evaluator would decode it, so a rule that is accepted
// here is never skipped at evaluation time.
func CreateRule(ctx context.Context, store RuleAdminStore, compiler *autoaccept.ExpressionCompiler, logger *zap.Logger, def *RuleDefinition) (*db.AutoAcceptRule, error) {
	if err := validate.Struct(def); err != nil {
		return nil, fmt.Errorf("rule validation failed: %w: %w", ErrInvalidInput, err)
	}

	rec := def.toRecord()

	decoded, err := autoaccept.RuleFromRecord(rec, compiler)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if rec.ShiftTypeID != nil {
		if _, err := store.GetShiftType(ctx, *rec.ShiftTypeID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("unknown shift type %q: %w", *rec.ShiftTypeID, ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to fetch shift type: %w", err)
		}
	}

	if len(decoded.Criteria) == 0 {
		logger.Warn("Rule has no criteria and will never match", zap.String("rule_id", rec.ID), zap.String("name", rec.Name))
	}

	if err := store.InsertRule(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to insert rule: %w", err)
	}

	logger.Info("Created auto-accept rule",
		zap.String("rule_id", rec.ID),
		zap.String("name", rec.Name),
		zap.Int("priority", rec.Priority),
		zap.Stringer("scope", decoded.Scope))

	return rec, nil
}

// RuleSummary is a stored rule together with its decoded scope and criteria
type RuleSummary struct {
	Rule     db.AutoAcceptRule
	Scope    string
	Criteria []string
	// Invalid holds the decode error for a rule the evaluator would skip
	Invalid string
}

// ListRules returns every rule in evaluation order with a readable description
func ListRules(ctx context.Context, store RuleAdminStore, compiler *autoaccept.ExpressionCompiler) ([]RuleSummary, error) {
	rules, err := store.GetRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rules: %w", err)
	}

	summaries := make([]RuleSummary, 0, len(rules))
	for i := range rules {
		summary := RuleSummary{Rule: rules[i]}
		decoded, err := autoaccept.RuleFromRecord(&rules[i], compiler)
		if err != nil {
			summary.Invalid = err.Error()
		} else {
			summary.Scope = decoded.Scope.String()
			for _, c := range decoded.Criteria {
				summary.Criteria = append(summary.Criteria, string(c.Kind()))
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// SetRuleEnabled enables or disables a rule
func SetRuleEnabled(ctx context.Context, store RuleAdminStore, logger *zap.Logger, ruleID string, enabled bool) error {
	if err := store.SetRuleEnabled(ctx, ruleID, enabled); err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	logger.Info("Updated auto-accept rule", zap.String("rule_id", ruleID), zap.Bool("enabled", enabled))
	return nil
}

// DeleteRule removes a rule. Signups it already approved keep their audit record.
func DeleteRule(ctx context.Context, store RuleAdminStore, logger *zap.Logger, ruleID string) error {
	if _, err := store.GetRule(ctx, ruleID); err != nil {
		return fmt.Errorf("failed to fetch rule: %w", err)
	}

	if err := store.DeleteRule(ctx, ruleID); err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	logger.Info("Deleted auto-accept rule", zap.String("rule_id", ruleID))
	return nil
}
