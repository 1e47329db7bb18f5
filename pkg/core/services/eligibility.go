package services

import (
	"context"
	"fmt"

	"github.com/jakechorley/volunteer-hub/pkg/core/autoaccept"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// EligibilityStore defines the lookups used to check a volunteer and shift exist
type EligibilityStore interface {
	GetVolunteer(ctx context.Context, userID string) (*model.Volunteer, error)
	GetShift(ctx context.Context, shiftID string) (*db.ShiftWithType, error)
}

// Evaluator reports whether a volunteer would be auto-accepted, without side effects
type Evaluator interface {
	Evaluate(ctx context.Context, userID, shiftID string) autoaccept.EvaluationResult
}

// CheckEligibility reports whether a signup by the volunteer for the shift would
// be auto-accepted. Unknown volunteers and shifts are reported as db.ErrNotFound
// rather than as a failed evaluation.
func CheckEligibility(ctx context.Context, store EligibilityStore, evaluator Evaluator, userID, shiftID string) (*autoaccept.EvaluationResult, error) {
	if _, err := store.GetVolunteer(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to fetch volunteer: %w", err)
	}
	if _, err := store.GetShift(ctx, shiftID); err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}

	result := evaluator.Evaluate(ctx, userID, shiftID)
	return &result, nil
}
