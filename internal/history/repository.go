package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arena-club/arena-club/internal/roles"
	"github.com/arena-club/arena-club/internal/shared"
)

// Event is one entry of a user's merged activity timeline.
type Event struct {
	Date        time.Time `json:"date"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Amount      *float64  `json:"amount,omitempty"`
}

const (
	KindPayment    = "payment"
	KindEnrollment = "enrollment"
	KindRoleChange = "role_change"
)

// RepositoryPort defines the read side of the history views.
type RepositoryPort interface {
	ListTransitions(ctx context.Context, userID int64) ([]roles.Entry, error)
	ListAllTransitions(ctx context.Context, page shared.Pagination) ([]roles.Entry, int, error)
	ListPaymentEvents(ctx context.Context, userID int64) ([]Event, error)
	ListEnrollmentEvents(ctx context.Context, userID int64) ([]Event, error)
}

// Repository provides PostgreSQL backed read queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListTransitions returns a user's role changes, newest first.
func (r *Repository) ListTransitions(ctx context.Context, userID int64) ([]roles.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, old_role, new_role, reason, meta, occurred_at
		FROM role_transitions
		WHERE user_id = $1 ORDER BY occurred_at DESC, id DESC`, userID)
	if err != nil {
		return nil, shared.StorageErr("list transitions", err)
	}
	defer rows.Close()

	var entries []roles.Entry
	for rows.Next() {
		var entry roles.Entry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.OldRole, &entry.NewRole,
			&entry.Reason, &entry.Meta, &entry.OccurredAt); err != nil {
			return nil, shared.StorageErr("scan transition", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageErr("list transitions", err)
	}
	return entries, nil
}

// ListAllTransitions returns one page of the audit log across all users,
// newest first, along with the total entry count.
func (r *Repository) ListAllTransitions(ctx context.Context, page shared.Pagination) ([]roles.Entry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM role_transitions`).Scan(&total); err != nil {
		return nil, 0, shared.StorageErr("count transitions", err)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, old_role, new_role, reason, meta, occurred_at
		FROM role_transitions
		ORDER BY occurred_at DESC, id DESC
		LIMIT $1 OFFSET $2`, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, shared.StorageErr("list transitions", err)
	}
	defer rows.Close()

	var entries []roles.Entry
	for rows.Next() {
		var entry roles.Entry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.OldRole, &entry.NewRole,
			&entry.Reason, &entry.Meta, &entry.OccurredAt); err != nil {
			return nil, 0, shared.StorageErr("scan transition", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.StorageErr("list transitions", err)
	}
	return entries, total, nil
}

// ListPaymentEvents returns a user's payments as timeline events.
func (r *Repository) ListPaymentEvents(ctx context.Context, userID int64) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT paid_at, service_type, amount, receipt_no::text
		FROM payments
		WHERE user_id = $1 ORDER BY paid_at DESC`, userID)
	if err != nil {
		return nil, shared.StorageErr("list payment events", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			paidAt  time.Time
			service string
			amount  float64
			receipt string
		)
		if err := rows.Scan(&paidAt, &service, &amount, &receipt); err != nil {
			return nil, shared.StorageErr("scan payment event", err)
		}
		events = append(events, Event{
			Date:        paidAt,
			Kind:        KindPayment,
			Description: fmt.Sprintf("Pagamento %s (recibo %s)", service, receipt),
			Amount:      &amount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageErr("list payment events", err)
	}
	return events, nil
}

// ListEnrollmentEvents returns a user's enrollments as timeline events.
func (r *Repository) ListEnrollmentEvents(ctx context.Context, userID int64) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.created_at, c.name, e.active
		FROM enrollments e
		JOIN classes c ON c.id = e.class_id
		WHERE e.student_id = $1 ORDER BY e.created_at DESC`, userID)
	if err != nil {
		return nil, shared.StorageErr("list enrollment events", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			createdAt time.Time
			className string
			active    bool
		)
		if err := rows.Scan(&createdAt, &className, &active); err != nil {
			return nil, shared.StorageErr("scan enrollment event", err)
		}
		state := "inactiva"
		if active {
			state = "activa"
		}
		events = append(events, Event{
			Date:        createdAt,
			Kind:        KindEnrollment,
			Description: fmt.Sprintf("Inscrição na turma %s (%s)", className, state),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageErr("list enrollment events", err)
	}
	return events, nil
}
