package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

func TestAddVolunteer(t *testing.T) {
	store := newMockStore()

	v, err := AddVolunteer(context.Background(), store, zap.NewNop(), fixedNow, NewVolunteer{Email: " Bob@Example.com ", Name: "Bob"})
	require.NoError(t, err)

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "bob@example.com", v.Email)
	assert.Equal(t, model.GradeGreen, v.Grade)
	assert.Equal(t, fixedNow, v.CreatedAt)
	assert.Contains(t, store.volunteers, v.ID)
}

func TestAddVolunteer_Validation(t *testing.T) {
	store := newMockStore()

	_, err := AddVolunteer(context.Background(), store, zap.NewNop(), fixedNow, NewVolunteer{Email: "not-an-email", Name: "Bob"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = AddVolunteer(context.Background(), store, zap.NewNop(), fixedNow, NewVolunteer{Email: "bob@example.com", Name: "Bob", Grade: "PURPLE"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, store.volunteers)
}

func TestAddVolunteer_DuplicateEmail(t *testing.T) {
	store := newMockStore()
	_, err := AddVolunteer(context.Background(), store, zap.NewNop(), fixedNow, NewVolunteer{Email: "bob@example.com", Name: "Bob", Grade: "PINK"})
	require.NoError(t, err)

	_, err = AddVolunteer(context.Background(), store, zap.NewNop(), fixedNow, NewVolunteer{Email: "bob@example.com", Name: "Robert"})
	assert.ErrorIs(t, err, db.ErrConflict)
}

func TestAddShiftType(t *testing.T) {
	store := newMockStore()

	st, err := AddShiftType(context.Background(), store, zap.NewNop(), "kitchen", "Kitchen")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", st.Name)
	assert.Contains(t, store.shiftTypes, "kitchen")

	_, err = AddShiftType(context.Background(), store, zap.NewNop(), " ", "Kitchen")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = AddShiftType(context.Background(), store, zap.NewNop(), "bar", "Bar\r\nBcc: eve@example.com")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotContains(t, store.shiftTypes, "bar")
}

func TestImportVolunteers(t *testing.T) {
	store := newMockStore()
	_, err := AddVolunteer(context.Background(), store, zap.NewNop(), fixedNow, NewVolunteer{Email: "alice@example.com", Name: "Alice"})
	require.NoError(t, err)

	result, err := ImportVolunteers(context.Background(), store, zap.NewNop(), fixedNow, []NewVolunteer{
		{Email: "ALICE@example.com", Name: "Alice Again"},
		{Email: "bob@example.com", Name: "Bob", Grade: "YELLOW"},
		{Email: "broken", Name: "Nobody"},
		{Email: "bob@example.com", Name: "Bob Duplicate Row"},
	})
	require.NoError(t, err)

	require.Len(t, result.Added, 1)
	assert.Equal(t, "bob@example.com", result.Added[0].Email)
	assert.Equal(t, model.GradeYellow, result.Added[0].Grade)
	assert.Equal(t, 2, result.Existing)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 2, result.Failed[0].Index)
	assert.ErrorIs(t, result.Failed[0].Err, ErrInvalidInput)
	assert.Len(t, store.volunteers, 2)
}

func TestImportVolunteers_StoreFailureAborts(t *testing.T) {
	store := newMockStore()
	store.insertVolunteerErr = errStoreDown

	result, err := ImportVolunteers(context.Background(), store, zap.NewNop(), fixedNow, []NewVolunteer{
		{Email: "bob@example.com", Name: "Bob"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Nil(t, result)
}
