package autoaccept

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
	"github.com/jakechorley/volunteer-hub/pkg/notify"
)

// noticeTimeout bounds the confirmation notification and e-mail sent after an approval
const noticeTimeout = 2 * time.Minute

// ApplyResult is the outcome of applying auto-accept rules to a signup
type ApplyResult struct {
	AutoApproved bool               `json:"autoApproved"`
	Status       model.SignupStatus `json:"status"`
	RuleID       string             `json:"ruleId,omitempty"`
}

// ApprovalStore defines the database operations needed to apply an approval
type ApprovalStore interface {
	GetSignup(ctx context.Context, signupID string) (*model.Signup, error)
	ConfirmSignup(ctx context.Context, approval *db.AutoApproval) error
	GetVolunteer(ctx context.Context, userID string) (*model.Volunteer, error)
	GetShift(ctx context.Context, shiftID string) (*db.ShiftWithType, error)
}

// Notifier delivers in-app notifications
type Notifier interface {
	NotifyConfirmed(ctx context.Context, userID, shiftTypeName, shiftDate, shiftID string) error
}

// Mailer delivers confirmation e-mails
type Mailer interface {
	SendConfirmationEmail(ctx context.Context, email notify.ConfirmationEmail) error
}

// Applier confirms signups that pass an auto-accept rule and announces the confirmation
type Applier struct {
	evaluator *Evaluator
	store     ApprovalStore
	notifier  Notifier
	mailer    Mailer
	logger    *zap.Logger
	location  *time.Location
	now       func() time.Time

	// notices tracks confirmation notices still being sent
	notices sync.WaitGroup
}

// NewApplier creates an Applier. Shift dates in notifications are rendered in loc (UTC if nil).
func NewApplier(evaluator *Evaluator, store ApprovalStore, notifier Notifier, mailer Mailer, logger *zap.Logger, loc *time.Location) *Applier {
	if loc == nil {
		loc = time.UTC
	}
	return &Applier{
		evaluator: evaluator,
		store:     store,
		notifier:  notifier,
		mailer:    mailer,
		logger:    logger,
		location:  loc,
		now:       evaluator.cfg.Now,
	}
}

// Evaluate runs the rules without changing anything
func (a *Applier) Evaluate(ctx context.Context, userID, shiftID string) EvaluationResult {
	return a.evaluator.Evaluate(ctx, userID, shiftID)
}

// Apply evaluates the rules for a newly created signup and confirms it on a match.
//
// Only PENDING signups are considered; any other status is returned unchanged without
// evaluating or notifying. Read failures leave the signup PENDING. A failure to write
// the confirmation is returned. The notification and e-mail are sent in the background
// once the confirmation is stored; their failures are logged only.
func (a *Applier) Apply(ctx context.Context, signupID, userID, shiftID string) (*ApplyResult, error) {
	signup, err := a.store.GetSignup(ctx, signupID)
	if err != nil {
		a.logger.Warn("Failed to load signup for auto-accept, leaving pending",
			zap.String("signup_id", signupID),
			zap.Error(err))
		return &ApplyResult{AutoApproved: false, Status: model.SignupPending}, nil
	}

	if signup.UserID != userID || signup.ShiftID != shiftID {
		a.logger.Warn("Signup does not belong to the given volunteer and shift, leaving unchanged",
			zap.String("signup_id", signupID),
			zap.String("user_id", userID),
			zap.String("shift_id", shiftID))
		return &ApplyResult{AutoApproved: false, Status: signup.Status}, nil
	}

	if signup.Status != model.SignupPending {
		a.logger.Debug("Signup is not pending, skipping auto-accept",
			zap.String("signup_id", signupID),
			zap.String("status", string(signup.Status)))
		return &ApplyResult{AutoApproved: false, Status: signup.Status}, nil
	}

	result := a.evaluator.Evaluate(ctx, userID, shiftID)
	if !result.Approved {
		a.logger.Debug("Signup not auto-approved",
			zap.String("signup_id", signupID),
			zap.String("reason", result.Reason))
		return &ApplyResult{AutoApproved: false, Status: model.SignupPending}, nil
	}

	approval := &db.AutoApproval{
		ID:         uuid.New().String(),
		SignupID:   signupID,
		RuleID:     result.RuleID,
		ApprovedAt: a.now(),
	}
	if err := a.store.ConfirmSignup(ctx, approval); err != nil {
		return nil, fmt.Errorf("failed to confirm signup %s: %w", signupID, err)
	}

	a.logger.Info("Signup auto-approved",
		zap.String("signup_id", signupID),
		zap.String("user_id", userID),
		zap.String("shift_id", shiftID),
		zap.String("rule_id", result.RuleID),
		zap.String("rule_name", result.RuleName))

	// The notices outlive the request that triggered them
	noticeCtx := context.WithoutCancel(ctx)
	a.notices.Add(1)
	go func() {
		defer a.notices.Done()
		ctx, cancel := context.WithTimeout(noticeCtx, noticeTimeout)
		defer cancel()
		a.announce(ctx, userID, shiftID)
	}()

	return &ApplyResult{AutoApproved: true, Status: model.SignupConfirmed, RuleID: result.RuleID}, nil
}

// Wait blocks until every confirmation notice started by Apply has been sent or has failed
func (a *Applier) Wait() {
	a.notices.Wait()
}

// announce sends the in-app notification and confirmation e-mail. Failures are logged.
func (a *Applier) announce(ctx context.Context, userID, shiftID string) {
	shift, err := a.store.GetShift(ctx, shiftID)
	if err != nil {
		a.logger.Error("Failed to load shift for confirmation notices", zap.String("shift_id", shiftID), zap.Error(err))
		return
	}

	start := shift.Shift.Start.In(a.location)
	end := shift.Shift.End.In(a.location)
	shiftDate := start.Format("Monday, January 2, 2006")

	if err := a.notifier.NotifyConfirmed(ctx, userID, shift.ShiftType.Name, shiftDate, shiftID); err != nil {
		a.logger.Error("Failed to send confirmation notification",
			zap.String("user_id", userID),
			zap.String("shift_id", shiftID),
			zap.Error(err))
	}

	volunteer, err := a.store.GetVolunteer(ctx, userID)
	if err != nil {
		a.logger.Error("Failed to load volunteer for confirmation e-mail", zap.String("user_id", userID), zap.Error(err))
		return
	}

	email := notify.ConfirmationEmail{
		To:            volunteer.Email,
		VolunteerName: volunteer.Name,
		ShiftName:     shift.ShiftType.Name,
		ShiftDate:     shiftDate,
		ShiftTime:     fmt.Sprintf("%s - %s", start.Format("15:04"), end.Format("15:04")),
		Location:      shift.Shift.Location,
		ShiftID:       shiftID,
	}
	if err := a.mailer.SendConfirmationEmail(ctx, email); err != nil {
		a.logger.Error("Failed to send confirmation e-mail",
			zap.String("to", volunteer.Email),
			zap.String("shift_id", shiftID),
			zap.Error(err))
	}
}
