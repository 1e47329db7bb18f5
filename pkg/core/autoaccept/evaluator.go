package autoaccept

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const (
	ReasonNoMatch = "No auto-accept rules matched"
	ReasonError   = "Error evaluating rules"
)

// EvaluationResult is the outcome of evaluating rules for a volunteer and shift
type EvaluationResult struct {
	Approved bool   `json:"approved"`
	RuleID   string `json:"ruleId,omitempty"`
	RuleName string `json:"ruleName,omitempty"`
	Reason   string `json:"reason"`
}

// EvaluatorStore defines the database operations needed to evaluate rules
type EvaluatorStore interface {
	HistoryStore
	GetShift(ctx context.Context, shiftID string) (*db.ShiftWithType, error)
	GetEnabledRulesForShift(ctx context.Context, shiftTypeID, location string) ([]db.AutoAcceptRule, error)
}

// EvaluatorConfig controls evaluation behaviour
type EvaluatorConfig struct {
	// HaltOnStopRuleMiss stops evaluation at a stopOnMatch rule even when it does not match.
	// When false, stopOnMatch only takes effect on a match, which always halts anyway.
	HaltOnStopRuleMiss bool

	// Now returns the evaluation time. Defaults to time.Now.
	Now func() time.Time
}

// DefaultEvaluatorConfig returns the default configuration
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		HaltOnStopRuleMiss: true,
		Now:                time.Now,
	}
}

// Evaluator selects the rules applicable to a shift and walks them against a volunteer.
// Evaluate has no side effects.
type Evaluator struct {
	store     EvaluatorStore
	collector *StatisticsCollector
	compiler  *ExpressionCompiler
	logger    *zap.Logger
	cfg       EvaluatorConfig
}

// NewEvaluator creates an Evaluator. compiler may be nil if no rule uses an expression.
func NewEvaluator(store EvaluatorStore, compiler *ExpressionCompiler, logger *zap.Logger, cfg EvaluatorConfig) *Evaluator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Evaluator{
		store:     store,
		collector: NewStatisticsCollector(store, cfg.Now),
		compiler:  compiler,
		logger:    logger,
		cfg:       cfg,
	}
}

// Evaluate decides whether userID should be auto-approved for shiftID.
// Any failure yields a non-approval; it never returns an error.
func (e *Evaluator) Evaluate(ctx context.Context, userID, shiftID string) EvaluationResult {
	result, err := e.evaluate(ctx, userID, shiftID)
	if err != nil {
		e.logger.Warn("Auto-accept evaluation failed, leaving signup for manual review",
			zap.String("user_id", userID),
			zap.String("shift_id", shiftID),
			zap.Error(err))
		return EvaluationResult{Approved: false, Reason: ReasonError}
	}
	return result
}

func (e *Evaluator) evaluate(ctx context.Context, userID, shiftID string) (EvaluationResult, error) {
	shiftRec, err := e.store.GetShift(ctx, shiftID)
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("failed to fetch shift: %w", err)
	}
	shift := &shiftRec.Shift

	records, err := e.store.GetEnabledRulesForShift(ctx, shift.ShiftTypeID, shift.Location)
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("failed to fetch rules: %w", err)
	}

	rules := e.decodeRules(records, shift)
	e.logger.Debug("Candidate auto-accept rules",
		zap.String("shift_id", shiftID),
		zap.Int("fetched", len(records)),
		zap.Int("applicable", len(rules)))

	// An unknown volunteer is an error even when no rule applies
	snapshot, err := e.collector.ComputeSnapshot(ctx, userID, shift.ShiftTypeID)
	if err != nil {
		return EvaluationResult{}, err
	}

	if len(rules) == 0 {
		return EvaluationResult{Approved: false, Reason: ReasonNoMatch}, nil
	}

	now := e.cfg.Now()
	for _, rule := range rules {
		if Matches(rule, snapshot, shift, now) {
			e.logger.Debug("Auto-accept rule matched",
				zap.String("rule_id", rule.ID),
				zap.String("rule_name", rule.Name),
				zap.String("user_id", userID))
			return EvaluationResult{
				Approved: true,
				RuleID:   rule.ID,
				RuleName: rule.Name,
				Reason:   fmt.Sprintf("Auto-approved by rule: %s", rule.Name),
			}, nil
		}

		if rule.StopOnMatch && e.cfg.HaltOnStopRuleMiss {
			e.logger.Debug("Stopping at non-matching stopOnMatch rule",
				zap.String("rule_id", rule.ID),
				zap.String("rule_name", rule.Name))
			break
		}
	}

	return EvaluationResult{Approved: false, Reason: ReasonNoMatch}, nil
}

// decodeRules converts stored rules, drops any that are disabled, undecodable or
// out of scope for the shift, and orders the rest by descending priority.
// Ties are broken by creation time then id.
func (e *Evaluator) decodeRules(records []db.AutoAcceptRule, shift *model.Shift) []*Rule {
	rules := make([]*Rule, 0, len(records))
	for i := range records {
		rec := &records[i]
		if !rec.Enabled {
			continue
		}
		rule, err := RuleFromRecord(rec, e.compiler)
		if err != nil {
			e.logger.Warn("Skipping invalid auto-accept rule", zap.String("rule_id", rec.ID), zap.Error(err))
			continue
		}
		if !rule.Scope.AppliesTo(shift) {
			continue
		}
		rules = append(rules, rule)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		if !rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].CreatedAt.Before(rules[j].CreatedAt)
		}
		return rules[i].ID < rules[j].ID
	})

	return rules
}
