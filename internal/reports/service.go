package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arena-club/arena-club/internal/platform/cache"
)

const (
	usersPerRoleKey      = "reports:users_per_role"
	activeEnrollmentsKey = "reports:active_enrollments"
	revenueKeyFormat     = "reports:revenue:%s:%s"
)

// Service serves management reports, cached with a short TTL.
type Service struct {
	repo   RepositoryPort
	cache  *cache.Store
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, store *cache.Store, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: store, logger: logger}
}

// UsersPerRole reports how many users hold each role.
func (s *Service) UsersPerRole(ctx context.Context) ([]RoleCount, error) {
	var cached []RoleCount
	if hit, err := s.cache.Get(ctx, usersPerRoleKey, &cached); err == nil && hit {
		return cached, nil
	}
	counts, err := s.repo.UsersPerRole(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, usersPerRoleKey, counts)
	return counts, nil
}

// RevenueByService reports revenue per service type over [from, to).
func (s *Service) RevenueByService(ctx context.Context, from, to time.Time) ([]ServiceRevenue, error) {
	key := revenueKey(from, to)
	var cached []ServiceRevenue
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}
	revenues, err := s.repo.RevenueByService(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, revenues)
	return revenues, nil
}

// ActiveEnrollmentsPerClass reports active enrollment counts per class.
func (s *Service) ActiveEnrollmentsPerClass(ctx context.Context) ([]ClassEnrollment, error) {
	var cached []ClassEnrollment
	if hit, err := s.cache.Get(ctx, activeEnrollmentsKey, &cached); err == nil && hit {
		return cached, nil
	}
	enrollments, err := s.repo.ActiveEnrollmentsPerClass(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, activeEnrollmentsKey, enrollments)
	return enrollments, nil
}

// Warmup primes every report cache for the given revenue window.
func (s *Service) Warmup(ctx context.Context, from, to time.Time) error {
	if _, err := s.UsersPerRole(ctx); err != nil {
		return err
	}
	if _, err := s.RevenueByService(ctx, from, to); err != nil {
		return err
	}
	if _, err := s.ActiveEnrollmentsPerClass(ctx); err != nil {
		return err
	}
	return nil
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil && s.logger != nil {
		s.logger.Warn("report cache set failed", slog.String("key", key), slog.Any("error", err))
	}
}

func revenueKey(from, to time.Time) string {
	return fmt.Sprintf(revenueKeyFormat, from.Format("2006-01-02"), to.Format("2006-01-02"))
}
