package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/shared"
)

// RepositoryPort defines data access methods for users. Methods taking a
// db.DBTX compose into a caller-owned transaction.
type RepositoryPort interface {
	Get(ctx context.Context, q db.DBTX, id int64) (*User, error)
	GetByEmail(ctx context.Context, q db.DBTX, email string) (*User, error)
	Create(ctx context.Context, q db.DBTX, user User) (int64, error)
	Update(ctx context.Context, q db.DBTX, user User) error
	Delete(ctx context.Context, q db.DBTX, id int64) error
	List(ctx context.Context, q db.DBTX, page shared.Pagination) ([]User, int, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying pool for callers opening transactions.
func (r *Repository) Pool() *pgxpool.Pool { return r.pool }

func (r *Repository) q(q db.DBTX) db.DBTX {
	if q != nil {
		return q
	}
	return r.pool
}

const userColumns = `id, name, email, phone, password_hash, role, birth_date, student_no, student_active, specialty, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var (
		user      User
		role      string
		studentNo *int64
		active    bool
		specialty *string
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.PasswordHash,
		&role, &user.BirthDate, &studentNo, &active, &specialty, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.StorageErr("scan user", err)
	}
	user.Role = Role(role)
	if studentNo != nil {
		user.Student = &StudentDetail{EnrollmentNo: *studentNo, Active: active}
	}
	if specialty != nil {
		user.Teacher = &TeacherDetail{Specialty: *specialty}
	}
	return &user, nil
}

// Get loads a user by id.
func (r *Repository) Get(ctx context.Context, q db.DBTX, id int64) (*User, error) {
	row := r.q(q).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail loads a user by email.
func (r *Repository) GetByEmail(ctx context.Context, q db.DBTX, email string) (*User, error) {
	row := r.q(q).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	return scanUser(row)
}

// Create inserts a new user. Unique collisions on email or phone come back
// as validation errors.
func (r *Repository) Create(ctx context.Context, q db.DBTX, user User) (int64, error) {
	var specialty *string
	if user.Teacher != nil {
		specialty = &user.Teacher.Specialty
	}
	var id int64
	err := r.q(q).QueryRow(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role, birth_date, specialty)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		user.Name, strings.ToLower(user.Email), user.Phone, user.PasswordHash,
		string(user.Role), user.BirthDate, specialty,
	).Scan(&id)
	if err != nil {
		if field, ok := uniqueViolationField(err); ok {
			return 0, shared.NewValidationError(field, "já está em uso")
		}
		return 0, shared.StorageErr("create user", err)
	}
	return id, nil
}

// Update persists name, phone and birth date changes.
func (r *Repository) Update(ctx context.Context, q db.DBTX, user User) error {
	tag, err := r.q(q).Exec(ctx, `
		UPDATE users SET name = $2, phone = $3, birth_date = $4, updated_at = NOW()
		WHERE id = $1`,
		user.ID, user.Name, user.Phone, user.BirthDate)
	if err != nil {
		if field, ok := uniqueViolationField(err); ok {
			return shared.NewValidationError(field, "já está em uso")
		}
		return shared.StorageErr("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a user. A user still referenced by other rows, such as
// a teacher who owns classes, cannot be deleted.
func (r *Repository) Delete(ctx context.Context, q db.DBTX, id int64) error {
	tag, err := r.q(q).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: user has dependent records", shared.ErrConflict)
		}
		return shared.StorageErr("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns a page of users ordered by id, plus the total count.
func (r *Repository) List(ctx context.Context, q db.DBTX, page shared.Pagination) ([]User, int, error) {
	var total int
	if err := r.q(q).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, shared.StorageErr("count users", err)
	}
	rows, err := r.q(q).Query(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`,
		page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, shared.StorageErr("list users", err)
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.StorageErr("list users", err)
	}
	return result, total, nil
}

func uniqueViolationField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return "", false
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return "email", true
	case strings.Contains(pgErr.ConstraintName, "phone"):
		return "phone", true
	default:
		return pgErr.ConstraintName, true
	}
}
