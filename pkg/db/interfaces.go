package db

import (
	"context"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// VolunteerStore defines the read operations on volunteers and their history
type VolunteerStore interface {
	GetVolunteer(ctx context.Context, userID string) (*model.Volunteer, error)
	GetVolunteerWithSignups(ctx context.Context, userID string) (*VolunteerHistory, error)
	InsertVolunteer(ctx context.Context, volunteer *model.Volunteer) error
}

// ShiftStore defines the interface for shift database operations
type ShiftStore interface {
	GetShift(ctx context.Context, shiftID string) (*ShiftWithType, error)
	GetShiftType(ctx context.Context, shiftTypeID string) (*model.ShiftType, error)
	InsertShiftType(ctx context.Context, shiftType *model.ShiftType) error
	// InsertShifts inserts shifts, skipping any whose ID already exists, and
	// returns how many were inserted
	InsertShifts(ctx context.Context, shifts []model.Shift) (int, error)
}

// RuleStore defines the interface for auto-accept rule database operations
type RuleStore interface {
	// GetEnabledRulesForShift returns enabled rules whose scope covers the given
	// shift type and location, highest priority first
	GetEnabledRulesForShift(ctx context.Context, shiftTypeID, location string) ([]AutoAcceptRule, error)
	GetRules(ctx context.Context) ([]AutoAcceptRule, error)
	GetRule(ctx context.Context, ruleID string) (*AutoAcceptRule, error)
	InsertRule(ctx context.Context, rule *AutoAcceptRule) error
	SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error
	DeleteRule(ctx context.Context, ruleID string) error
}

// SignupStore defines the interface for signup database operations
type SignupStore interface {
	GetSignup(ctx context.Context, signupID string) (*model.Signup, error)
	InsertSignup(ctx context.Context, signup *model.Signup) error
	// ConfirmSignup moves a PENDING signup to CONFIRMED and records the rule
	// that approved it in the same transaction. Returns ErrConflict if the
	// signup is no longer PENDING.
	ConfirmSignup(ctx context.Context, approval *AutoApproval) error
	CancelSignup(ctx context.Context, signupID string, previous model.SignupStatus, at time.Time) error
}

// NotificationStore defines the interface for in-app notification operations
type NotificationStore interface {
	InsertNotification(ctx context.Context, notification *Notification) error
	GetNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	VolunteerStore
	ShiftStore
	RuleStore
	SignupStore
	NotificationStore
}
