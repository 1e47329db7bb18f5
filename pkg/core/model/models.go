package model

import (
	"fmt"
	"time"
)

// Grade is a volunteer's trust level. Higher grades are more experienced.
type Grade string

const (
	GradeGreen  Grade = "GREEN"
	GradeYellow Grade = "YELLOW"
	GradePink   Grade = "PINK"
)

// Rank orders grades GREEN < YELLOW < PINK. Unknown grades rank below GREEN.
func (g Grade) Rank() int {
	switch g {
	case GradeGreen:
		return 0
	case GradeYellow:
		return 1
	case GradePink:
		return 2
	default:
		return -1
	}
}

func (g Grade) IsValid() bool {
	return g.Rank() >= 0
}

// ParseGrade converts a string into a Grade, rejecting unknown values
func ParseGrade(s string) (Grade, error) {
	g := Grade(s)
	if !g.IsValid() {
		return "", fmt.Errorf("unknown volunteer grade %q", s)
	}
	return g, nil
}

type SignupStatus string

const (
	SignupPending    SignupStatus = "PENDING"
	SignupConfirmed  SignupStatus = "CONFIRMED"
	SignupWaitlisted SignupStatus = "WAITLISTED"
	SignupCanceled   SignupStatus = "CANCELED"
)

func (s SignupStatus) IsValid() bool {
	switch s {
	case SignupPending, SignupConfirmed, SignupWaitlisted, SignupCanceled:
		return true
	}
	return false
}

// Volunteer represents a registered volunteer
type Volunteer struct {
	ID        string
	Email     string
	Name      string
	Grade     Grade
	CreatedAt time.Time
}

// ShiftType represents a kind of shift (e.g. "Kitchen", "Front of house")
type ShiftType struct {
	ID   string
	Name string
}

// Shift represents a scheduled shift
type Shift struct {
	ID          string
	ShiftTypeID string
	Location    string
	Start       time.Time
	End         time.Time
}

// Signup represents a volunteer's signup for a shift.
// PreviousStatus is only set once a signup has been canceled.
type Signup struct {
	ID             string
	UserID         string
	ShiftID        string
	Status         SignupStatus
	PreviousStatus SignupStatus
	CreatedAt      time.Time
}

// SignupWithShift pairs a signup with the shift it refers to
type SignupWithShift struct {
	Signup Signup
	Shift  Shift
}
