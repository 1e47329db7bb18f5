package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/autoaccept"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

var errStoreDown = errors.New("store unavailable")

// mockStore is an in-memory implementation of the service store interfaces
type mockStore struct {
	volunteers map[string]*model.Volunteer
	shiftTypes map[string]*model.ShiftType
	shifts     map[string]*db.ShiftWithType
	signups    map[string]*model.Signup
	rules      []db.AutoAcceptRule

	insertShiftsErr    error
	insertVolunteerErr error
	inserted           []model.Shift
}

func newMockStore() *mockStore {
	return &mockStore{
		volunteers: make(map[string]*model.Volunteer),
		shiftTypes: make(map[string]*model.ShiftType),
		shifts:     make(map[string]*db.ShiftWithType),
		signups:    make(map[string]*model.Signup),
	}
}

func (m *mockStore) GetVolunteer(ctx context.Context, userID string) (*model.Volunteer, error) {
	v, ok := m.volunteers[userID]
	if !ok {
		return nil, fmt.Errorf("volunteer %s: %w", userID, db.ErrNotFound)
	}
	return v, nil
}

func (m *mockStore) InsertVolunteer(ctx context.Context, v *model.Volunteer) error {
	if m.insertVolunteerErr != nil {
		return m.insertVolunteerErr
	}
	for _, existing := range m.volunteers {
		if existing.Email == v.Email {
			return db.ErrConflict
		}
	}
	m.volunteers[v.ID] = v
	return nil
}

func (m *mockStore) GetShift(ctx context.Context, shiftID string) (*db.ShiftWithType, error) {
	s, ok := m.shifts[shiftID]
	if !ok {
		return nil, fmt.Errorf("shift %s: %w", shiftID, db.ErrNotFound)
	}
	return s, nil
}

func (m *mockStore) GetShiftType(ctx context.Context, shiftTypeID string) (*model.ShiftType, error) {
	st, ok := m.shiftTypes[shiftTypeID]
	if !ok {
		return nil, fmt.Errorf("shift type %s: %w", shiftTypeID, db.ErrNotFound)
	}
	return st, nil
}

func (m *mockStore) InsertShiftType(ctx context.Context, st *model.ShiftType) error {
	if _, ok := m.shiftTypes[st.ID]; !ok {
		m.shiftTypes[st.ID] = st
	}
	return nil
}

func (m *mockStore) InsertShifts(ctx context.Context, shifts []model.Shift) (int, error) {
	if m.insertShiftsErr != nil {
		return 0, m.insertShiftsErr
	}
	n := 0
	for _, s := range shifts {
		if _, ok := m.shifts[s.ID]; ok {
			continue
		}
		m.shifts[s.ID] = &db.ShiftWithType{Shift: s}
		m.inserted = append(m.inserted, s)
		n++
	}
	return n, nil
}

func (m *mockStore) GetSignup(ctx context.Context, signupID string) (*model.Signup, error) {
	s, ok := m.signups[signupID]
	if !ok {
		return nil, fmt.Errorf("signup %s: %w", signupID, db.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (m *mockStore) InsertSignup(ctx context.Context, signup *model.Signup) error {
	for _, s := range m.signups {
		if s.UserID == signup.UserID && s.ShiftID == signup.ShiftID {
			return fmt.Errorf("insert: %w", db.ErrConflict)
		}
	}
	cp := *signup
	m.signups[signup.ID] = &cp
	return nil
}

func (m *mockStore) CancelSignup(ctx context.Context, signupID string, previous model.SignupStatus, at time.Time) error {
	s, ok := m.signups[signupID]
	if !ok {
		return db.ErrNotFound
	}
	if s.Status != previous {
		return db.ErrConflict
	}
	s.PreviousStatus = previous
	s.Status = model.SignupCanceled
	return nil
}

func (m *mockStore) GetRules(ctx context.Context) ([]db.AutoAcceptRule, error) {
	return m.rules, nil
}

func (m *mockStore) GetRule(ctx context.Context, ruleID string) (*db.AutoAcceptRule, error) {
	for i := range m.rules {
		if m.rules[i].ID == ruleID {
			return &m.rules[i], nil
		}
	}
	return nil, fmt.Errorf("rule %s: %w", ruleID, db.ErrNotFound)
}

func (m *mockStore) InsertRule(ctx context.Context, rule *db.AutoAcceptRule) error {
	m.rules = append(m.rules, *rule)
	return nil
}

func (m *mockStore) SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error {
	for i := range m.rules {
		if m.rules[i].ID == ruleID {
			m.rules[i].Enabled = enabled
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockStore) DeleteRule(ctx context.Context, ruleID string) error {
	for i := range m.rules {
		if m.rules[i].ID == ruleID {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

// mockApprover confirms every signup it is asked about
type mockApprover struct {
	calls   []string
	approve bool
	err     error
	store   *mockStore
}

func (m *mockApprover) Apply(ctx context.Context, signupID, userID, shiftID string) (*autoaccept.ApplyResult, error) {
	m.calls = append(m.calls, signupID)
	if m.err != nil {
		return nil, m.err
	}
	if !m.approve {
		return &autoaccept.ApplyResult{Status: model.SignupPending}, nil
	}
	m.store.signups[signupID].Status = model.SignupConfirmed
	return &autoaccept.ApplyResult{AutoApproved: true, Status: model.SignupConfirmed, RuleID: "rule-1"}, nil
}

type mockEvaluator struct {
	result autoaccept.EvaluationResult
	calls  int
}

func (m *mockEvaluator) Evaluate(ctx context.Context, userID, shiftID string) autoaccept.EvaluationResult {
	m.calls++
	return m.result
}

func ptr[T any](v T) *T { return &v }

// seededStore has volunteer vol-1, shift type kitchen and shifts "future" (two days out) and "past"
func seededStore() *mockStore {
	store := newMockStore()
	store.volunteers["vol-1"] = &model.Volunteer{ID: "vol-1", Email: "alice@example.com", Name: "Alice", Grade: model.GradeGreen}
	store.shiftTypes["kitchen"] = &model.ShiftType{ID: "kitchen", Name: "Kitchen"}

	future := fixedNow.AddDate(0, 0, 2)
	store.shifts["future"] = &db.ShiftWithType{
		Shift:     model.Shift{ID: "future", ShiftTypeID: "kitchen", Location: "Ilford", Start: future, End: future.Add(3 * time.Hour)},
		ShiftType: *store.shiftTypes["kitchen"],
	}
	past := fixedNow.AddDate(0, 0, -2)
	store.shifts["past"] = &db.ShiftWithType{
		Shift:     model.Shift{ID: "past", ShiftTypeID: "kitchen", Location: "Ilford", Start: past, End: past.Add(3 * time.Hour)},
		ShiftType: *store.shiftTypes["kitchen"],
	}
	return store
}
