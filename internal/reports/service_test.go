package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arena-club/arena-club/internal/platform/cache"
)

type countingRepo struct {
	roleCalls       int
	revenueCalls    int
	enrollmentCalls int
}

func (c *countingRepo) UsersPerRole(ctx context.Context) ([]RoleCount, error) {
	c.roleCalls++
	return []RoleCount{{Role: "client", Count: 12}, {Role: "student", Count: 5}}, nil
}

func (c *countingRepo) RevenueByService(ctx context.Context, from, to time.Time) ([]ServiceRevenue, error) {
	c.revenueCalls++
	return []ServiceRevenue{{Service: "mensalidade", Total: 4000, Count: 5}}, nil
}

func (c *countingRepo) ActiveEnrollmentsPerClass(ctx context.Context) ([]ClassEnrollment, error) {
	c.enrollmentCalls++
	return []ClassEnrollment{{ClassID: 1, Class: "Futebol A", Active: 8}}, nil
}

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return cache.NewStore(client, time.Minute)
}

func TestUsersPerRoleServedFromCache(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(repo, newTestStore(t), nil)
	ctx := context.Background()

	first, err := svc.UsersPerRole(ctx)
	require.NoError(t, err)
	second, err := svc.UsersPerRole(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.roleCalls, "second read must hit the cache")
}

func TestRevenueWindowsCacheSeparately(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(repo, newTestStore(t), nil)
	ctx := context.Background()

	from := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	_, err := svc.RevenueByService(ctx, from, to)
	require.NoError(t, err)
	_, err = svc.RevenueByService(ctx, from, to)
	require.NoError(t, err)
	_, err = svc.RevenueByService(ctx, from.AddDate(0, -1, 0), from)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.revenueCalls, "distinct windows must not share a cache entry")
}

func TestWarmupPrimesAllReports(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(repo, newTestStore(t), nil)
	ctx := context.Background()

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	require.NoError(t, svc.Warmup(ctx, from, to))

	_, err := svc.UsersPerRole(ctx)
	require.NoError(t, err)
	_, err = svc.ActiveEnrollmentsPerClass(ctx)
	require.NoError(t, err)
	_, err = svc.RevenueByService(ctx, from, to)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.roleCalls)
	assert.Equal(t, 1, repo.revenueCalls)
	assert.Equal(t, 1, repo.enrollmentCalls)
}

func TestReportsWorkWithoutCache(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.UsersPerRole(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, repo.roleCalls, "without a cache every read goes to the store")
}
