package autoaccept

import (
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// CriterionKind identifies a configurable eligibility check
type CriterionKind string

const (
	KindMinGrade                   CriterionKind = "minGrade"
	KindMinCompletedShifts         CriterionKind = "minCompletedShifts"
	KindMinAttendanceRate          CriterionKind = "minAttendanceRate"
	KindMinAccountAgeDays          CriterionKind = "minAccountAgeDays"
	KindMaxDaysInAdvance           CriterionKind = "maxDaysInAdvance"
	KindRequireShiftTypeExperience CriterionKind = "requireShiftTypeExperience"
	KindExpression                 CriterionKind = "expression"
)

// MatchInput is everything a criterion may look at
type MatchInput struct {
	Snapshot *Snapshot
	Shift    *model.Shift
	Now      time.Time
}

// Criterion is a single configured check on a rule.
// Only configured criteria exist in a rule's list; there is no "unset" criterion value.
type Criterion interface {
	Kind() CriterionKind
	IsSatisfied(in *MatchInput) bool
}

// MinGradeCriterion requires the volunteer's grade to rank at or above Grade
type MinGradeCriterion struct {
	Grade model.Grade
}

func (c MinGradeCriterion) Kind() CriterionKind { return KindMinGrade }

func (c MinGradeCriterion) IsSatisfied(in *MatchInput) bool {
	return in.Snapshot.Grade.Rank() >= c.Grade.Rank()
}

// MinCompletedShiftsCriterion requires at least Count completed shifts
type MinCompletedShiftsCriterion struct {
	Count int
}

func (c MinCompletedShiftsCriterion) Kind() CriterionKind { return KindMinCompletedShifts }

func (c MinCompletedShiftsCriterion) IsSatisfied(in *MatchInput) bool {
	return in.Snapshot.CompletedShiftCount >= c.Count
}

// MinAttendanceRateCriterion requires an attendance rate of at least Percent
type MinAttendanceRateCriterion struct {
	Percent float64
}

func (c MinAttendanceRateCriterion) Kind() CriterionKind { return KindMinAttendanceRate }

func (c MinAttendanceRateCriterion) IsSatisfied(in *MatchInput) bool {
	return in.Snapshot.AttendanceRatePercent >= c.Percent
}

// MinAccountAgeDaysCriterion requires the account to be at least Days old
type MinAccountAgeDaysCriterion struct {
	Days int
}

func (c MinAccountAgeDaysCriterion) Kind() CriterionKind { return KindMinAccountAgeDays }

func (c MinAccountAgeDaysCriterion) IsSatisfied(in *MatchInput) bool {
	return daysBetween(in.Now, in.Snapshot.AccountCreatedAt) >= c.Days
}

// MaxDaysInAdvanceCriterion rejects shifts starting more than Days from now
type MaxDaysInAdvanceCriterion struct {
	Days int
}

func (c MaxDaysInAdvanceCriterion) Kind() CriterionKind { return KindMaxDaysInAdvance }

func (c MaxDaysInAdvanceCriterion) IsSatisfied(in *MatchInput) bool {
	return daysBetween(in.Shift.Start, in.Now) <= c.Days
}

// ShiftTypeExperienceCriterion requires a completed shift of the target shift type
type ShiftTypeExperienceCriterion struct{}

func (ShiftTypeExperienceCriterion) Kind() CriterionKind { return KindRequireShiftTypeExperience }

func (ShiftTypeExperienceCriterion) IsSatisfied(in *MatchInput) bool {
	return in.Snapshot.HasExperienceInShiftType
}

// daysBetween returns the number of whole days from earlier to later, truncated toward zero
func daysBetween(later, earlier time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}
