package payments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/shared"
)

// RepositoryPort defines payment persistence. Methods taking a db.DBTX
// compose into a caller-owned transaction.
type RepositoryPort interface {
	Create(ctx context.Context, q db.DBTX, payment Payment) (int64, error)
	Get(ctx context.Context, q db.DBTX, id int64) (*Payment, error)
	ListByUser(ctx context.Context, q db.DBTX, userID int64) ([]Payment, error)
	ListRecent(ctx context.Context, q db.DBTX, limit int) ([]Payment, error)
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

const paymentColumns = `id, receipt_no, user_id, service_type, amount, method, COALESCE(notes, ''), paid_at`

// Create inserts a payment.
func (r *Repository) Create(ctx context.Context, q db.DBTX, payment Payment) (int64, error) {
	var id int64
	err := r.q(q).QueryRow(ctx, `
		INSERT INTO payments (receipt_no, user_id, service_type, amount, method, notes, paid_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		RETURNING id`,
		payment.ReceiptNo, payment.UserID, payment.Service, payment.Amount,
		payment.Method, payment.Notes, payment.PaidAt,
	).Scan(&id)
	if err != nil {
		return 0, shared.StorageErr("create payment", err)
	}
	return id, nil
}

// Get loads a payment by id.
func (r *Repository) Get(ctx context.Context, q db.DBTX, id int64) (*Payment, error) {
	row := r.q(q).QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.StorageErr("get payment", err)
	}
	return payment, nil
}

// ListByUser returns a user's payments, newest first.
func (r *Repository) ListByUser(ctx context.Context, q db.DBTX, userID int64) ([]Payment, error) {
	rows, err := r.q(q).Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE user_id = $1 ORDER BY paid_at DESC`, userID)
	if err != nil {
		return nil, shared.StorageErr("list payments", err)
	}
	return collectPayments(rows)
}

// ListRecent returns the most recently settled payments.
func (r *Repository) ListRecent(ctx context.Context, q db.DBTX, limit int) ([]Payment, error) {
	rows, err := r.q(q).Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		ORDER BY paid_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, shared.StorageErr("list payments", err)
	}
	return collectPayments(rows)
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var payment Payment
	err := row.Scan(&payment.ID, &payment.ReceiptNo, &payment.UserID, &payment.Service,
		&payment.Amount, &payment.Method, &payment.Notes, &payment.PaidAt)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func collectPayments(rows pgx.Rows) ([]Payment, error) {
	defer rows.Close()
	var payments []Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, shared.StorageErr("scan payment", err)
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageErr("list payments", err)
	}
	return payments, nil
}
