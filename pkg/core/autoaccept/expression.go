package autoaccept

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// expressionCostLimit bounds the runtime cost of a single expression evaluation
const expressionCostLimit = 10000

// ExpressionCompiler compiles CEL expressions into programs and caches them by source.
// It is safe for concurrent use.
type ExpressionCompiler struct {
	env      *cel.Env
	programs map[string]cel.Program
	mu       sync.RWMutex
}

// NewExpressionCompiler creates a compiler with the volunteer and shift variables declared
func NewExpressionCompiler() (*ExpressionCompiler, error) {
	env, err := cel.NewEnv(
		cel.Variable("volunteer", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("shift", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &ExpressionCompiler{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Compile returns an ExpressionCriterion for the given source
func (c *ExpressionCompiler) Compile(source string) (*ExpressionCriterion, error) {
	c.mu.RLock()
	prog, ok := c.programs[source]
	c.mu.RUnlock()
	if ok {
		return &ExpressionCriterion{Source: source, program: prog}, nil
	}

	ast, issues := c.env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	switch ast.OutputType().String() {
	case "bool", "dyn":
	default:
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", ast.OutputType())
	}

	prog, err := c.env.Program(ast, cel.CostLimit(expressionCostLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}

	c.mu.Lock()
	c.programs[source] = prog
	c.mu.Unlock()

	return &ExpressionCriterion{Source: source, program: prog}, nil
}

// ExpressionCriterion is satisfied when its CEL expression evaluates to true.
// Evaluation errors and non-boolean results count as not satisfied.
type ExpressionCriterion struct {
	Source  string
	program cel.Program
}

func (c *ExpressionCriterion) Kind() CriterionKind { return KindExpression }

func (c *ExpressionCriterion) IsSatisfied(in *MatchInput) bool {
	out, _, err := c.program.Eval(expressionVars(in))
	if err != nil {
		return false
	}
	matched, ok := out.Value().(bool)
	return ok && matched
}

func expressionVars(in *MatchInput) map[string]any {
	s := in.Snapshot
	return map[string]any{
		"volunteer": map[string]any{
			"grade":                   string(s.Grade),
			"completedShifts":         int64(s.CompletedShiftCount),
			"canceledConfirmedShifts": int64(s.CanceledConfirmedShiftCount),
			"attendanceRate":          s.AttendanceRatePercent,
			"accountAgeDays":          int64(daysBetween(in.Now, s.AccountCreatedAt)),
			"hasShiftTypeExperience":  s.HasExperienceInShiftType,
		},
		"shift": map[string]any{
			"daysInAdvance": int64(daysBetween(in.Shift.Start, in.Now)),
			"location":      in.Shift.Location,
			"shiftTypeId":   in.Shift.ShiftTypeID,
		},
	}
}
