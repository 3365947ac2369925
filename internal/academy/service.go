package academy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arena-club/arena-club/internal/notify"
	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/roles"
	"github.com/arena-club/arena-club/internal/shared"
	"github.com/arena-club/arena-club/internal/users"
)

// UserDirectory is the slice of the identity store the manager needs.
type UserDirectory interface {
	Get(ctx context.Context, q db.DBTX, id int64) (*users.User, error)
}

// RoleLocker serializes role-sensitive sequences on the user row.
type RoleLocker interface {
	GetRoleForUpdate(ctx context.Context, q db.DBTX, userID int64) (users.Role, error)
}

// TransitionEngine applies role changes inside the caller's transaction.
type TransitionEngine interface {
	TransitionTx(ctx context.Context, q db.DBTX, req roles.Request) (roles.Result, error)
}

// Service manages classes, the enrollment lifecycle and attendance.
type Service struct {
	runner   db.TxRunner
	repo     RepositoryPort
	userRepo UserDirectory
	locker   RoleLocker
	engine   TransitionEngine
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(runner db.TxRunner, repo RepositoryPort, userRepo UserDirectory, locker RoleLocker, engine TransitionEngine, notifier notify.Notifier, logger *slog.Logger) *Service {
	return &Service{runner: runner, repo: repo, userRepo: userRepo, locker: locker, engine: engine, notifier: notifier, logger: logger}
}

// ClassInput is the payload for creating a class.
type ClassInput struct {
	Name      string
	Specialty string
	TeacherID int64
	Capacity  int
}

// CreateClass creates a class taught by an existing teacher.
func (s *Service) CreateClass(ctx context.Context, in ClassInput) (*Class, error) {
	teacher, err := s.userRepo.Get(ctx, nil, in.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("verify teacher: %w", err)
	}
	if teacher.Role != users.RoleTeacher {
		return nil, shared.NewValidationError("teacher_id", "utilizador não é professor")
	}
	capacity := in.Capacity
	if capacity <= 0 {
		capacity = 30
	}
	class := Class{
		Name:      strings.TrimSpace(in.Name),
		Specialty: strings.TrimSpace(in.Specialty),
		TeacherID: in.TeacherID,
		Capacity:  capacity,
		Active:    true,
	}
	id, err := s.repo.CreateClass(ctx, nil, class)
	if err != nil {
		return nil, err
	}
	return s.repo.GetClass(ctx, nil, id)
}

// GetClass loads a class.
func (s *Service) GetClass(ctx context.Context, id int64) (*Class, error) {
	return s.repo.GetClass(ctx, nil, id)
}

// ListClasses returns all classes.
func (s *Service) ListClasses(ctx context.Context) ([]Class, error) {
	return s.repo.ListClasses(ctx, nil)
}

// CreateEnrollment registers a student or client in a class. The
// enrollment starts inactive; confirmation activates it. A duplicate
// (student, class) pair is rejected regardless of its active flag.
func (s *Service) CreateEnrollment(ctx context.Context, studentID, classID int64) (*Enrollment, error) {
	var created *Enrollment
	err := s.runner.RunTx(ctx, func(q db.DBTX) error {
		student, err := s.userRepo.Get(ctx, q, studentID)
		if err != nil {
			return fmt.Errorf("verify student: %w", err)
		}
		if student.Role != users.RoleClient && student.Role != users.RoleStudent {
			return shared.NewValidationError("student_id", "apenas clientes e alunos podem inscrever-se")
		}
		class, err := s.repo.GetClass(ctx, q, classID)
		if err != nil {
			return fmt.Errorf("verify class: %w", err)
		}
		if !class.Active {
			return shared.NewValidationError("class_id", "turma inactiva")
		}
		id, err := s.repo.CreateEnrollment(ctx, q, Enrollment{StudentID: studentID, ClassID: classID, Active: false})
		if err != nil {
			return err
		}
		created, err = s.repo.GetEnrollment(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ConfirmEnrollment activates the enrollment and promotes the user to
// student when needed, both in one transaction. Confirming an already
// active enrollment is harmless.
func (s *Service) ConfirmEnrollment(ctx context.Context, id int64) (*Enrollment, error) {
	var (
		confirmed *Enrollment
		student   *users.User
		class     *Class
	)
	err := s.runner.RunTx(ctx, func(q db.DBTX) error {
		enrollment, err := s.repo.GetEnrollment(ctx, q, id)
		if err != nil {
			return err
		}
		// Lock the user row before touching the enrollment so concurrent
		// confirm/cancel calls for the same student serialize.
		role, err := s.locker.GetRoleForUpdate(ctx, q, enrollment.StudentID)
		if err != nil {
			return err
		}
		if err := s.repo.SetEnrollmentActive(ctx, q, id, true); err != nil {
			return err
		}
		if role != users.RoleStudent {
			_, err = s.engine.TransitionTx(ctx, q, roles.Request{
				UserID:  enrollment.StudentID,
				Trigger: roles.TriggerEnrollmentConfirmed,
				Reason:  "Inscrição confirmada",
				Meta:    map[string]any{"enrollment_id": enrollment.ID, "class_id": enrollment.ClassID},
			})
			if err != nil {
				return err
			}
		}
		if confirmed, err = s.repo.GetEnrollment(ctx, q, id); err != nil {
			return err
		}
		if student, err = s.userRepo.Get(ctx, q, enrollment.StudentID); err != nil {
			return err
		}
		class, err = s.repo.GetClass(ctx, q, enrollment.ClassID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil && student != nil && class != nil {
		s.notifier.Notify(ctx, notify.Email{
			To:      student.Email,
			Subject: "Inscrição confirmada",
			Body:    fmt.Sprintf("A sua inscrição na turma %s foi confirmada.", class.Name),
		})
	}
	return confirmed, nil
}

// CancelEnrollment deactivates the enrollment and, when it was the
// student's last active one, reverts the user to client. The user row is
// locked before the remaining-enrollments count so two concurrent
// cancellations cannot both skip the reversion.
func (s *Service) CancelEnrollment(ctx context.Context, id int64) (*Enrollment, error) {
	var cancelled *Enrollment
	err := s.runner.RunTx(ctx, func(q db.DBTX) error {
		enrollment, err := s.repo.GetEnrollment(ctx, q, id)
		if err != nil {
			return err
		}
		role, err := s.locker.GetRoleForUpdate(ctx, q, enrollment.StudentID)
		if err != nil {
			return err
		}
		if err := s.repo.SetEnrollmentActive(ctx, q, id, false); err != nil {
			return err
		}
		remaining, err := s.repo.CountOtherActiveEnrollments(ctx, q, enrollment.StudentID, id)
		if err != nil {
			return err
		}
		if remaining == 0 && role == users.RoleStudent {
			_, err = s.engine.TransitionTx(ctx, q, roles.Request{
				UserID:  enrollment.StudentID,
				Trigger: roles.TriggerEnrollmentCancelled,
				Reason:  "Cancelamento da última inscrição activa",
				Meta:    map[string]any{"enrollment_id": enrollment.ID, "class_id": enrollment.ClassID},
			})
			if err != nil {
				return err
			}
		}
		cancelled, err = s.repo.GetEnrollment(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// AttendanceInput is the payload for one presence record.
type AttendanceInput struct {
	ClassID   int64
	StudentID int64
	TeacherID int64
	Present   bool
	TakenOn   time.Time
}

// RecordAttendance stores a presence record for a class session.
func (s *Service) RecordAttendance(ctx context.Context, in AttendanceInput) (*Attendance, error) {
	if _, err := s.repo.GetClass(ctx, nil, in.ClassID); err != nil {
		return nil, fmt.Errorf("verify class: %w", err)
	}
	teacher, err := s.userRepo.Get(ctx, nil, in.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("verify teacher: %w", err)
	}
	if teacher.Role != users.RoleTeacher {
		return nil, shared.NewValidationError("teacher_id", "utilizador não é professor")
	}
	if _, err := s.userRepo.Get(ctx, nil, in.StudentID); err != nil {
		return nil, fmt.Errorf("verify student: %w", err)
	}
	takenOn := in.TakenOn
	if takenOn.IsZero() {
		takenOn = time.Now().UTC()
	}
	record := Attendance{
		ClassID:   in.ClassID,
		StudentID: in.StudentID,
		TeacherID: in.TeacherID,
		Present:   in.Present,
		TakenOn:   takenOn,
	}
	id, err := s.repo.CreateAttendance(ctx, nil, record)
	if err != nil {
		return nil, err
	}
	record.ID = id
	return &record, nil
}

// ListAttendance returns a class's attendance, newest first.
func (s *Service) ListAttendance(ctx context.Context, classID int64) ([]Attendance, error) {
	if _, err := s.repo.GetClass(ctx, nil, classID); err != nil {
		return nil, err
	}
	return s.repo.ListAttendanceByClass(ctx, nil, classID)
}
