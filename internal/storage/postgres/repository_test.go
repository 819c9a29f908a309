package postgres

import (
	"errors"
	"fmt"
	"testing"

	repo "github.com/ilindan-dev/pitch-dispatcher/internal/domain/repository"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := parseID("7b1f0c4e-8a53-4a54-9b7e-2f0b5d1d2c11")
	require.NoError(t, err)
	assert.True(t, id.Valid)

	_, err = parseID("not-a-uuid")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = parseID("")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), repo.ErrNotFound)
	assert.ErrorIs(t, mapError(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)), repo.ErrNotFound)

	invalid := &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}
	assert.ErrorIs(t, mapError(invalid), repo.ErrNotFound)

	other := &pgconn.PgError{Code: pgerrcode.UndefinedTable}
	assert.False(t, errors.Is(mapError(other), repo.ErrNotFound))

	boom := errors.New("connection refused")
	assert.Equal(t, boom, mapError(boom))
}

func TestProfileColumnsCastRoleToText(t *testing.T) {
	// role may be an enum column; '' is only a valid fallback for text.
	assert.Contains(t, profileColumns, "COALESCE(p.role::text, '')")
	assert.NotContains(t, profileColumns, "COALESCE(p.role, '')")
}
