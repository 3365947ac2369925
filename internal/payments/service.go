package payments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arena-club/arena-club/internal/notify"
	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/roles"
	"github.com/arena-club/arena-club/internal/shared"
	"github.com/arena-club/arena-club/internal/users"
)

// UserDirectory is the slice of the identity store the processor needs.
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

// Service processes payments. A registration fee settled by a client
// promotes the payer to student in the same transaction as the payment
// row.
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

// ProcessInput is the payload for settling one payment.
type ProcessInput struct {
	UserID  int64
	Service ServiceType
	Amount  float64
	Method  string
	Notes   string
}

// Process validates and stores a payment. Validation failures reject the
// request before anything is written.
func (s *Service) Process(ctx context.Context, in ProcessInput) (*Payment, error) {
	if !in.Service.Valid() {
		return nil, shared.NewValidationError("service_type", "tipo de serviço inválido")
	}
	if in.Amount <= 0 {
		return nil, shared.NewValidationError("amount", "montante deve ser positivo")
	}
	var (
		processed *Payment
		payer     *users.User
	)
	err := s.runner.RunTx(ctx, func(q db.DBTX) error {
		var err error
		if payer, err = s.userRepo.Get(ctx, q, in.UserID); err != nil {
			return fmt.Errorf("verify payer: %w", err)
		}
		payment := Payment{
			ReceiptNo: uuid.New(),
			UserID:    in.UserID,
			Service:   in.Service,
			Amount:    in.Amount,
			Method:    in.Method,
			Notes:     in.Notes,
			PaidAt:    time.Now().UTC(),
		}
		id, err := s.repo.Create(ctx, q, payment)
		if err != nil {
			return err
		}
		if in.Service == ServiceEnrollmentFee {
			role, err := s.locker.GetRoleForUpdate(ctx, q, in.UserID)
			if err != nil {
				return err
			}
			if role == users.RoleClient {
				_, err = s.engine.TransitionTx(ctx, q, roles.Request{
					UserID:  in.UserID,
					Trigger: roles.TriggerPaymentRegistration,
					Reason:  "Pagamento de matrícula",
					Meta:    map[string]any{"payment_id": id, "receipt_no": payment.ReceiptNo.String()},
				})
				if err != nil {
					return err
				}
			}
		}
		processed, err = s.repo.Get(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil && payer != nil {
		s.notifier.Notify(ctx, notify.Email{
			To:      payer.Email,
			Subject: "Pagamento registado",
			Body:    fmt.Sprintf("Recibo %s: %.2f CVE (%s).", processed.ReceiptNo, processed.Amount, processed.Service),
		})
	}
	return processed, nil
}

// Get loads a payment.
func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.Get(ctx, nil, id)
}

// ListByUser returns a user's payments, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Payment, error) {
	if _, err := s.userRepo.Get(ctx, nil, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, nil, userID)
}

// Recent returns the latest settled payments, capped at limit.
func (s *Service) Recent(ctx context.Context, limit int) ([]Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, nil, limit)
}
