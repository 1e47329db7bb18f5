package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/autoaccept"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// SignupStore defines the database operations needed by the signup lifecycle
type SignupStore interface {
	GetVolunteer(ctx context.Context, userID string) (*model.Volunteer, error)
	GetShift(ctx context.Context, shiftID string) (*db.ShiftWithType, error)
	GetSignup(ctx context.Context, signupID string) (*model.Signup, error)
	InsertSignup(ctx context.Context, signup *model.Signup) error
	CancelSignup(ctx context.Context, signupID string, previous model.SignupStatus, at time.Time) error
}

// Approver decides whether new signups are confirmed automatically
type Approver interface {
	Apply(ctx context.Context, signupID, userID, shiftID string) (*autoaccept.ApplyResult, error)
}

// SignupResult is the outcome of a signup request
type SignupResult struct {
	SignupID     string             `json:"signupId"`
	AutoApproved bool               `json:"autoApproved"`
	Status       model.SignupStatus `json:"status"`
	RuleID       string             `json:"ruleId,omitempty"`
}

// SignUp records a PENDING signup for an upcoming shift and runs auto-accept on it.
// A nil approver leaves every signup pending for manual review.
func SignUp(ctx context.Context, store SignupStore, approver Approver, logger *zap.Logger, now time.Time, userID, shiftID string) (*SignupResult, error) {
	logger.Debug("Signing up", zap.String("user_id", userID), zap.String("shift_id", shiftID))

	if _, err := store.GetVolunteer(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to fetch volunteer: %w", err)
	}

	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}
	if !shift.Shift.Start.After(now) {
		return nil, fmt.Errorf("shift %s started at %s: %w", shiftID, shift.Shift.Start.Format(time.RFC3339), ErrInvalidInput)
	}

	signup := &model.Signup{
		ID:        uuid.New().String(),
		UserID:    userID,
		ShiftID:   shiftID,
		Status:    model.SignupPending,
		CreatedAt: now,
	}
	if err := store.InsertSignup(ctx, signup); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, fmt.Errorf("volunteer %s is already signed up for shift %s: %w", userID, shiftID, db.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert signup: %w", err)
	}

	result := &SignupResult{SignupID: signup.ID, Status: model.SignupPending}
	if approver == nil {
		logger.Info("Signup recorded, auto-accept disabled", zap.String("signup_id", signup.ID))
		return result, nil
	}

	applied, err := approver.Apply(ctx, signup.ID, userID, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to apply auto-accept to signup %s: %w", signup.ID, err)
	}

	result.AutoApproved = applied.AutoApproved
	result.Status = applied.Status
	result.RuleID = applied.RuleID

	logger.Info("Signup recorded",
		zap.String("signup_id", signup.ID),
		zap.String("status", string(result.Status)),
		zap.Bool("auto_approved", result.AutoApproved))

	return result, nil
}

// CancelSignup cancels a signup, keeping the status it held so a cancellation
// after confirmation counts against the volunteer's attendance
func CancelSignup(ctx context.Context, store SignupStore, logger *zap.Logger, now time.Time, signupID string) (*model.Signup, error) {
	signup, err := store.GetSignup(ctx, signupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signup: %w", err)
	}

	if signup.Status == model.SignupCanceled {
		return nil, fmt.Errorf("signup %s is already canceled: %w", signupID, db.ErrConflict)
	}

	previous := signup.Status
	if err := store.CancelSignup(ctx, signupID, previous, now); err != nil {
		return nil, fmt.Errorf("failed to cancel signup: %w", err)
	}

	signup.PreviousStatus = previous
	signup.Status = model.SignupCanceled

	logger.Info("Signup canceled",
		zap.String("signup_id", signupID),
		zap.String("previous_status", string(previous)))

	return signup, nil
}
