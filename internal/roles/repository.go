package roles

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/shared"
	"github.com/arena-club/arena-club/internal/users"
)

// RepositoryPort is the persistence surface the engine needs. All methods
// run on the caller-supplied transaction handle.
type RepositoryPort interface {
	GetRoleForUpdate(ctx context.Context, q db.DBTX, userID int64) (users.Role, error)
	SetRole(ctx context.Context, q db.DBTX, userID int64, old, next users.Role) error
	AppendEntry(ctx context.Context, q db.DBTX, entry Entry) error
}

// Repository provides PostgreSQL backed persistence for role transitions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying pool for the engine's own transactions.
func (r *Repository) Pool() *pgxpool.Pool { return r.pool }

func (r *Repository) q(q db.DBTX) db.DBTX {
	if q != nil {
		return q
	}
	return r.pool
}

// GetRoleForUpdate locks the user row and returns its current role. The
// lock serializes concurrent transitions for the same user.
func (r *Repository) GetRoleForUpdate(ctx context.Context, q db.DBTX, userID int64) (users.Role, error) {
	var role string
	err := r.q(q).QueryRow(ctx, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", shared.StorageErr("lock user role", err)
	}
	return users.Role(role), nil
}

// SetRole writes the new role and keeps the detail variant consistent with
// it: promotion to student assigns the enrollment number once and flags the
// detail active, demotion from student clears the flag.
func (r *Repository) SetRole(ctx context.Context, q db.DBTX, userID int64, old, next users.Role) error {
	tag, err := r.q(q).Exec(ctx, `
		UPDATE users SET
			role = $2,
			student_no = CASE WHEN $2 = 'student' THEN COALESCE(student_no, nextval('student_no_seq')) ELSE student_no END,
			student_active = ($2 = 'student'),
			updated_at = NOW()
		WHERE id = $1 AND role = $3`,
		userID, string(next), string(old))
	if err != nil {
		return shared.StorageErr("set role", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AppendEntry inserts an audit row for an applied transition.
func (r *Repository) AppendEntry(ctx context.Context, q db.DBTX, entry Entry) error {
	meta := entry.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return shared.StorageErr("encode transition meta", err)
	}
	_, err = r.q(q).Exec(ctx, `
		INSERT INTO role_transitions (user_id, old_role, new_role, reason, meta)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.UserID, string(entry.OldRole), string(entry.NewRole), entry.Reason, metaJSON)
	if err != nil {
		return shared.StorageErr("append transition", err)
	}
	return nil
}
