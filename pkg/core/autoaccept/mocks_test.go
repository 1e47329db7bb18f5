package autoaccept

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
	"github.com/jakechorley/volunteer-hub/pkg/notify"
)

// fixedNow is the evaluation time used throughout these tests
var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func nowFunc() time.Time { return fixedNow }

type mockStore struct {
	histories map[string]*db.VolunteerHistory
	shifts    map[string]*db.ShiftWithType
	rules     []db.AutoAcceptRule
	signups   map[string]*model.Signup

	rulesErr   error
	historyErr error
	confirmErr error

	ruleFetches    int
	historyFetches int
	approvals      []db.AutoApproval
}

func newMockStore() *mockStore {
	return &mockStore{
		histories: make(map[string]*db.VolunteerHistory),
		shifts:    make(map[string]*db.ShiftWithType),
		signups:   make(map[string]*model.Signup),
	}
}

func (m *mockStore) GetVolunteerWithSignups(ctx context.Context, userID string) (*db.VolunteerHistory, error) {
	m.historyFetches++
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	h, ok := m.histories[userID]
	if !ok {
		return nil, fmt.Errorf("volunteer %s: %w", userID, db.ErrNotFound)
	}
	return h, nil
}

func (m *mockStore) GetVolunteer(ctx context.Context, userID string) (*model.Volunteer, error) {
	h, ok := m.histories[userID]
	if !ok {
		return nil, fmt.Errorf("volunteer %s: %w", userID, db.ErrNotFound)
	}
	v := h.Volunteer
	return &v, nil
}

func (m *mockStore) GetShift(ctx context.Context, shiftID string) (*db.ShiftWithType, error) {
	s, ok := m.shifts[shiftID]
	if !ok {
		return nil, fmt.Errorf("shift %s: %w", shiftID, db.ErrNotFound)
	}
	return s, nil
}

// GetEnabledRulesForShift returns every stored rule; scope and enabled filtering
// is left to the evaluator so these tests exercise it.
func (m *mockStore) GetEnabledRulesForShift(ctx context.Context, shiftTypeID, location string) ([]db.AutoAcceptRule, error) {
	m.ruleFetches++
	if m.rulesErr != nil {
		return nil, m.rulesErr
	}
	return m.rules, nil
}

func (m *mockStore) GetSignup(ctx context.Context, signupID string) (*model.Signup, error) {
	s, ok := m.signups[signupID]
	if !ok {
		return nil, fmt.Errorf("signup %s: %w", signupID, db.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (m *mockStore) ConfirmSignup(ctx context.Context, approval *db.AutoApproval) error {
	if m.confirmErr != nil {
		return m.confirmErr
	}
	s, ok := m.signups[approval.SignupID]
	if !ok {
		return db.ErrNotFound
	}
	if s.Status != model.SignupPending {
		return db.ErrConflict
	}
	s.Status = model.SignupConfirmed
	m.approvals = append(m.approvals, *approval)
	return nil
}

type mockNotifier struct {
	calls []string
	err   error
}

func (m *mockNotifier) NotifyConfirmed(ctx context.Context, userID, shiftTypeName, shiftDate, shiftID string) error {
	m.calls = append(m.calls, fmt.Sprintf("%s|%s|%s|%s", userID, shiftTypeName, shiftDate, shiftID))
	return m.err
}

type mockMailer struct {
	emails  []notify.ConfirmationEmail
	ctxErrs []error
	err     error

	// release, when set, holds each send until it is closed
	release chan struct{}
}

func (m *mockMailer) SendConfirmationEmail(ctx context.Context, email notify.ConfirmationEmail) error {
	if m.release != nil {
		<-m.release
	}
	m.emails = append(m.emails, email)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	return m.err
}

var errDatabaseDown = errors.New("database unavailable")

func ptr[T any](v T) *T { return &v }

// completedSignups builds n confirmed signups for shifts that ended before fixedNow
func completedSignups(n int, shiftTypeID string) []model.SignupWithShift {
	var out []model.SignupWithShift
	for i := 0; i < n; i++ {
		end := fixedNow.AddDate(0, 0, -(i + 1))
		out = append(out, model.SignupWithShift{
			Signup: model.Signup{ID: fmt.Sprintf("done-%d", i), Status: model.SignupConfirmed},
			Shift:  model.Shift{ID: fmt.Sprintf("past-%d", i), ShiftTypeID: shiftTypeID, Start: end.Add(-3 * time.Hour), End: end},
		})
	}
	return out
}

// canceledConfirmedSignups builds n signups canceled after being confirmed
func canceledConfirmedSignups(n int) []model.SignupWithShift {
	var out []model.SignupWithShift
	for i := 0; i < n; i++ {
		out = append(out, model.SignupWithShift{
			Signup: model.Signup{ID: fmt.Sprintf("cancel-%d", i), Status: model.SignupCanceled, PreviousStatus: model.SignupConfirmed},
			Shift:  model.Shift{ID: fmt.Sprintf("cshift-%d", i), ShiftTypeID: "kitchen", End: fixedNow.AddDate(0, 0, -i-1)},
		})
	}
	return out
}

// scenarioStore sets up a volunteer "vol-1" and an upcoming shift "shift-1" three days out
func scenarioStore(grade model.Grade, history []model.SignupWithShift) *mockStore {
	store := newMockStore()
	store.histories["vol-1"] = &db.VolunteerHistory{
		Volunteer: model.Volunteer{
			ID:        "vol-1",
			Email:     "alice@example.com",
			Name:      "Alice Smith",
			Grade:     grade,
			CreatedAt: fixedNow.AddDate(-1, 0, 0),
		},
		Signups: history,
	}
	start := fixedNow.AddDate(0, 0, 3)
	store.shifts["shift-1"] = &db.ShiftWithType{
		Shift: model.Shift{
			ID:          "shift-1",
			ShiftTypeID: "kitchen",
			Location:    "Ilford",
			Start:       start,
			End:         start.Add(3 * time.Hour),
		},
		ShiftType: model.ShiftType{ID: "kitchen", Name: "Kitchen"},
	}
	store.signups["signup-1"] = &model.Signup{ID: "signup-1", UserID: "vol-1", ShiftID: "shift-1", Status: model.SignupPending}
	return store
}

func globalRule(id string, priority int) db.AutoAcceptRule {
	return db.AutoAcceptRule{
		ID:            id,
		Name:          "Rule " + id,
		Enabled:       true,
		Priority:      priority,
		Global:        true,
		CriteriaLogic: string(LogicAnd),
		CreatedAt:     fixedNow.AddDate(0, -1, 0),
	}
}
