package db

import (
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// VolunteerHistory is a volunteer together with every signup they have made
type VolunteerHistory struct {
	Volunteer model.Volunteer
	Signups   []model.SignupWithShift
}

// ShiftWithType is a shift joined with its shift type
type ShiftWithType struct {
	Shift     model.Shift
	ShiftType model.ShiftType
}

// AutoAcceptRule represents a database auto_accept_rule record.
// Criterion columns are nullable; a nil pointer means the criterion is not configured.
type AutoAcceptRule struct {
	ID          string
	Name        string
	Description string
	Enabled     bool
	Priority    int

	Global      bool
	ShiftTypeID *string
	Location    *string

	MinGrade                   *string
	MinCompletedShifts         *int
	MinAttendanceRate          *float64
	MinAccountAgeDays          *int
	MaxDaysInAdvance           *int
	RequireShiftTypeExperience bool
	Expression                 *string

	CriteriaLogic string
	StopOnMatch   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AutoApproval represents a database auto_approval audit record
type AutoApproval struct {
	ID         string
	SignupID   string
	RuleID     string
	ApprovedAt time.Time
}

// Notification represents a database in-app notification record
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	ShiftID   string // nullable
	CreatedAt time.Time
	ReadAt    *time.Time
}
