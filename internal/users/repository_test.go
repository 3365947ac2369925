package users

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arena-club/arena-club/internal/shared"
)

// failingDB returns the configured error from every call, standing in
// for a connection hitting a constraint violation.
type failingDB struct{ err error }

func (f failingDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, f.err
}

func (f failingDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, f.err
}

func (f failingDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{err: f.err}
}

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

func TestDeleteUserWithDependentRowsConflicts(t *testing.T) {
	repo := NewRepository(nil)
	fkErr := &pgconn.PgError{Code: "23503", ConstraintName: "classes_teacher_id_fkey"}

	err := repo.Delete(context.Background(), failingDB{err: fkErr}, 7)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateDuplicateEmailMapsToField(t *testing.T) {
	repo := NewRepository(nil)
	dupErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	_, err := repo.Create(context.Background(), failingDB{err: dupErr}, User{Email: "teste@arena.cv"})
	validation, ok := shared.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validation.Fields, "email")
}
