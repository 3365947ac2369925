package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arena-club/arena-club/internal/shared"
)

// RoleCount is one row of the users-per-role report.
type RoleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// ServiceRevenue is one row of the revenue-by-service report.
type ServiceRevenue struct {
	Service string  `json:"service_type"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
}

// ClassEnrollment is one row of the active-enrollments report.
type ClassEnrollment struct {
	ClassID int64  `json:"class_id"`
	Class   string `json:"class"`
	Active  int    `json:"active"`
}

// RepositoryPort defines the aggregate queries behind the reports.
type RepositoryPort interface {
	UsersPerRole(ctx context.Context) ([]RoleCount, error)
	RevenueByService(ctx context.Context, from, to time.Time) ([]ServiceRevenue, error)
	ActiveEnrollmentsPerClass(ctx context.Context) ([]ClassEnrollment, error)
}

// Repository provides PostgreSQL backed aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UsersPerRole counts users grouped by role.
func (r *Repository) UsersPerRole(ctx context.Context) ([]RoleCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT role::text, COUNT(*) FROM users GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, shared.StorageErr("users per role", err)
	}
	defer rows.Close()

	var counts []RoleCount
	for rows.Next() {
		var row RoleCount
		if err := rows.Scan(&row.Role, &row.Count); err != nil {
			return nil, shared.StorageErr("scan role count", err)
		}
		counts = append(counts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageErr("users per role", err)
	}
	return counts, nil
}

// RevenueByService sums settled payments per service type over a window.
func (r *Repository) RevenueByService(ctx context.Context, from, to time.Time) ([]ServiceRevenue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT service_type::text, COALESCE(SUM(amount), 0), COUNT(*)
		FROM payments
		WHERE paid_at >= $1 AND paid_at < $2
		GROUP BY service_type ORDER BY service_type`, from, to)
	if err != nil {
		return nil, shared.StorageErr("revenue by service", err)
	}
	defer rows.Close()

	var revenues []ServiceRevenue
	for rows.Next() {
		var row ServiceRevenue
		if err := rows.Scan(&row.Service, &row.Total, &row.Count); err != nil {
			return nil, shared.StorageErr("scan revenue", err)
		}
		revenues = append(revenues, row)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageErr("revenue by service", err)
	}
	return revenues, nil
}

// ActiveEnrollmentsPerClass counts active enrollments per class.
func (r *Repository) ActiveEnrollmentsPerClass(ctx context.Context) ([]ClassEnrollment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, COUNT(e.id) FILTER (WHERE e.active)
		FROM classes c
		LEFT JOIN enrollments e ON e.class_id = c.id
		GROUP BY c.id, c.name ORDER BY c.name`)
	if err != nil {
		return nil, shared.StorageErr("active enrollments per class", err)
	}
	defer rows.Close()

	var enrollments []ClassEnrollment
	for rows.Next() {
		var row ClassEnrollment
		if err := rows.Scan(&row.ClassID, &row.Class, &row.Active); err != nil {
			return nil, shared.StorageErr("scan class enrollment", err)
		}
		enrollments = append(enrollments, row)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageErr("active enrollments per class", err)
	}
	return enrollments, nil
}
