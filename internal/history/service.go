package history

import (
	"context"
	"fmt"
	"sort"

	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/roles"
	"github.com/arena-club/arena-club/internal/shared"
	"github.com/arena-club/arena-club/internal/users"
)

// UserDirectory is the slice of the identity store the service needs.
type UserDirectory interface {
	Get(ctx context.Context, q db.DBTX, id int64) (*users.User, error)
}

// Service assembles read-only views over a user's activity.
type Service struct {
	repo     RepositoryPort
	userRepo UserDirectory
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, userRepo UserDirectory) *Service {
	return &Service{repo: repo, userRepo: userRepo}
}

// Transitions returns a page of the audit log across all users.
func (s *Service) Transitions(ctx context.Context, page, perPage int) ([]roles.Entry, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	entries, total, err := s.repo.ListAllTransitions(ctx, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(page, perPage, total), nil
}

// TransitionsForUser returns the user's role changes, newest first.
func (s *Service) TransitionsForUser(ctx context.Context, userID int64) ([]roles.Entry, error) {
	if _, err := s.userRepo.Get(ctx, nil, userID); err != nil {
		return nil, err
	}
	return s.repo.ListTransitions(ctx, userID)
}

// ForUser merges the user's payments, enrollments and role changes into
// one timeline, newest first.
func (s *Service) ForUser(ctx context.Context, userID int64) ([]Event, error) {
	if _, err := s.userRepo.Get(ctx, nil, userID); err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPaymentEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.repo.ListEnrollmentEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	transitions, err := s.repo.ListTransitions(ctx, userID)
	if err != nil {
		return nil, err
	}
	timeline := make([]Event, 0, len(payments)+len(enrollments)+len(transitions))
	timeline = append(timeline, payments...)
	timeline = append(timeline, enrollments...)
	for _, entry := range transitions {
		timeline = append(timeline, Event{
			Date:        entry.OccurredAt,
			Kind:        KindRoleChange,
			Description: fmt.Sprintf("Mudança de perfil: %s → %s (%s)", entry.OldRole, entry.NewRole, entry.Reason),
		})
	}
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Date.After(timeline[j].Date)
	})
	return timeline, nil
}
