package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/volunteer-hub/pkg/db"
)

func TestPendingMigrations(t *testing.T) {
	all, err := pendingMigrations(map[string]bool{})
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, "001_initial_schema.sql", all[0])

	rest, err := pendingMigrations(map[string]bool{"001_initial_schema.sql": true})
	require.NoError(t, err)
	assert.NotContains(t, rest, "001_initial_schema.sql")
}

func TestTranslateError(t *testing.T) {
	assert.ErrorIs(t, translateError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), db.ErrNotFound)

	unique := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "signup_user_id_shift_id_key"}
	err := translateError(unique)
	assert.ErrorIs(t, err, db.ErrConflict)
	assert.Contains(t, err.Error(), "signup_user_id_shift_id_key")

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
}
