package academy

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/shared"
)

// RepositoryPort defines data access methods for classes, enrollments and
// attendance. Methods taking a db.DBTX compose into a caller-owned
// transaction.
type RepositoryPort interface {
	CreateClass(ctx context.Context, q db.DBTX, class Class) (int64, error)
	GetClass(ctx context.Context, q db.DBTX, id int64) (*Class, error)
	ListClasses(ctx context.Context, q db.DBTX) ([]Class, error)

	CreateEnrollment(ctx context.Context, q db.DBTX, enrollment Enrollment) (int64, error)
	GetEnrollment(ctx context.Context, q db.DBTX, id int64) (*Enrollment, error)
	SetEnrollmentActive(ctx context.Context, q db.DBTX, id int64, active bool) error
	CountOtherActiveEnrollments(ctx context.Context, q db.DBTX, studentID, excludeID int64) (int, error)

	CreateAttendance(ctx context.Context, q db.DBTX, record Attendance) (int64, error)
	ListAttendanceByClass(ctx context.Context, q db.DBTX, classID int64) ([]Attendance, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) q(q db.DBTX) db.DBTX {
	if q != nil {
		return q
	}
	return r.pool
}

// CreateClass inserts a class.
func (r *Repository) CreateClass(ctx context.Context, q db.DBTX, class Class) (int64, error) {
	var id int64
	err := r.q(q).QueryRow(ctx, `
		INSERT INTO classes (name, specialty, teacher_id, capacity, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		class.Name, class.Specialty, class.TeacherID, class.Capacity, class.Active,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, shared.NewValidationError("name", "turma já existe")
		}
		return 0, shared.StorageErr("create class", err)
	}
	return id, nil
}

// GetClass loads a class by id.
func (r *Repository) GetClass(ctx context.Context, q db.DBTX, id int64) (*Class, error) {
	var class Class
	err := r.q(q).QueryRow(ctx, `
		SELECT id, name, specialty, teacher_id, capacity, active, created_at
		FROM classes WHERE id = $1`, id,
	).Scan(&class.ID, &class.Name, &class.Specialty, &class.TeacherID, &class.Capacity, &class.Active, &class.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.StorageErr("get class", err)
	}
	return &class, nil
}

// ListClasses returns all classes ordered by name.
func (r *Repository) ListClasses(ctx context.Context, q db.DBTX) ([]Class, error) {
	rows, err := r.q(q).Query(ctx, `
		SELECT id, name, specialty, teacher_id, capacity, active, created_at
		FROM classes ORDER BY name`)
	if err != nil {
		return nil, shared.StorageErr("list classes", err)
	}
	defer rows.Close()

	var classes []Class
	for rows.Next() {
		var class Class
		if err := rows.Scan(&class.ID, &class.Name, &class.Specialty, &class.TeacherID,
			&class.Capacity, &class.Active, &class.CreatedAt); err != nil {
			return nil, shared.StorageErr("scan class", err)
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageErr("list classes", err)
	}
	return classes, nil
}

// CreateEnrollment inserts an inactive enrollment. The unique
// (student_id, class_id) constraint rejects duplicates regardless of the
// active flag, also under concurrent creates.
func (r *Repository) CreateEnrollment(ctx context.Context, q db.DBTX, enrollment Enrollment) (int64, error) {
	var id int64
	err := r.q(q).QueryRow(ctx, `
		INSERT INTO enrollments (student_id, class_id, active)
		VALUES ($1, $2, $3)
		RETURNING id`,
		enrollment.StudentID, enrollment.ClassID, enrollment.Active,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, shared.NewValidationError("enrollment", "aluno já inscrito nesta turma")
		}
		return 0, shared.StorageErr("create enrollment", err)
	}
	return id, nil
}

// GetEnrollment loads an enrollment by id.
func (r *Repository) GetEnrollment(ctx context.Context, q db.DBTX, id int64) (*Enrollment, error) {
	var enrollment Enrollment
	err := r.q(q).QueryRow(ctx, `
		SELECT id, student_id, class_id, active, created_at
		FROM enrollments WHERE id = $1`, id,
	).Scan(&enrollment.ID, &enrollment.StudentID, &enrollment.ClassID, &enrollment.Active, &enrollment.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.StorageErr("get enrollment", err)
	}
	return &enrollment, nil
}

// SetEnrollmentActive flips the active flag.
func (r *Repository) SetEnrollmentActive(ctx context.Context, q db.DBTX, id int64, active bool) error {
	tag, err := r.q(q).Exec(ctx, `UPDATE enrollments SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return shared.StorageErr("set enrollment active", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountOtherActiveEnrollments counts the student's active enrollments
// excluding the given one. Callers must hold the user row lock so the
// count cannot race a concurrent cancellation.
func (r *Repository) CountOtherActiveEnrollments(ctx context.Context, q db.DBTX, studentID, excludeID int64) (int, error) {
	var count int
	err := r.q(q).QueryRow(ctx, `
		SELECT COUNT(*) FROM enrollments
		WHERE student_id = $1 AND id <> $2 AND active`,
		studentID, excludeID,
	).Scan(&count)
	if err != nil {
		return 0, shared.StorageErr("count active enrollments", err)
	}
	return count, nil
}

// CreateAttendance inserts a presence record.
func (r *Repository) CreateAttendance(ctx context.Context, q db.DBTX, record Attendance) (int64, error) {
	var id int64
	err := r.q(q).QueryRow(ctx, `
		INSERT INTO attendance (class_id, student_id, teacher_id, present, taken_on)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		record.ClassID, record.StudentID, record.TeacherID, record.Present, record.TakenOn,
	).Scan(&id)
	if err != nil {
		return 0, shared.StorageErr("create attendance", err)
	}
	return id, nil
}

// ListAttendanceByClass returns attendance for a class, newest first.
func (r *Repository) ListAttendanceByClass(ctx context.Context, q db.DBTX, classID int64) ([]Attendance, error) {
	rows, err := r.q(q).Query(ctx, `
		SELECT id, class_id, student_id, teacher_id, present, taken_on
		FROM attendance WHERE class_id = $1 ORDER BY taken_on DESC`, classID)
	if err != nil {
		return nil, shared.StorageErr("list attendance", err)
	}
	defer rows.Close()

	var records []Attendance
	for rows.Next() {
		var record Attendance
		if err := rows.Scan(&record.ID, &record.ClassID, &record.StudentID,
			&record.TeacherID, &record.Present, &record.TakenOn); err != nil {
			return nil, shared.StorageErr("scan attendance", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageErr("list attendance", err)
	}
	return records, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
