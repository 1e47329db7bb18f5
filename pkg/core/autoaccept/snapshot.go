package autoaccept

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// Snapshot summarises a volunteer's history at evaluation time. It is never persisted.
type Snapshot struct {
	ID                          string
	Email                       string
	Name                        string
	Grade                       model.Grade
	AccountCreatedAt            time.Time
	CompletedShiftCount         int
	CanceledConfirmedShiftCount int
	AttendanceRatePercent       float64
	HasExperienceInShiftType    bool
}

// HistoryStore defines the database operations needed to build a snapshot
type HistoryStore interface {
	GetVolunteerWithSignups(ctx context.Context, userID string) (*db.VolunteerHistory, error)
}

// StatisticsCollector derives snapshots from signup history
type StatisticsCollector struct {
	store HistoryStore
	now   func() time.Time
}

// NewStatisticsCollector creates a collector reading from store. now defaults to time.Now.
func NewStatisticsCollector(store HistoryStore, now func() time.Time) *StatisticsCollector {
	if now == nil {
		now = time.Now
	}
	return &StatisticsCollector{store: store, now: now}
}

// ComputeSnapshot loads the volunteer's history and summarises it relative to shiftTypeID.
// Returns an error wrapping db.ErrNotFound if the volunteer does not exist.
func (c *StatisticsCollector) ComputeSnapshot(ctx context.Context, userID, shiftTypeID string) (*Snapshot, error) {
	history, err := c.store.GetVolunteerWithSignups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteer history: %w", err)
	}
	return BuildSnapshot(history, shiftTypeID, c.now()), nil
}

// BuildSnapshot summarises history as of now.
//
// A signup counts as completed when it is CONFIRMED and its shift ended before now.
// A cancellation counts against attendance only when the signup was CONFIRMED before
// it was canceled. With no completed or canceled-confirmed signups the attendance
// rate is 100.
func BuildSnapshot(history *db.VolunteerHistory, shiftTypeID string, now time.Time) *Snapshot {
	completed := 0
	canceledConfirmed := 0
	experienced := false

	for _, s := range history.Signups {
		switch s.Signup.Status {
		case model.SignupConfirmed:
			if s.Shift.End.Before(now) {
				completed++
				if s.Shift.ShiftTypeID == shiftTypeID {
					experienced = true
				}
			}
		case model.SignupCanceled:
			if s.Signup.PreviousStatus == model.SignupConfirmed {
				canceledConfirmed++
			}
		}
	}

	rate := 100.0
	if total := completed + canceledConfirmed; total > 0 {
		rate = float64(completed) / float64(total) * 100
	}

	v := history.Volunteer
	return &Snapshot{
		ID:                          v.ID,
		Email:                       v.Email,
		Name:                        v.Name,
		Grade:                       v.Grade,
		AccountCreatedAt:            v.CreatedAt,
		CompletedShiftCount:         completed,
		CanceledConfirmedShiftCount: canceledConfirmed,
		AttendanceRatePercent:       rate,
		HasExperienceInShiftType:    experienced,
	}
}
