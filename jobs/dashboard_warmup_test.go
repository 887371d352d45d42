package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/linentrack/linentrack/internal/dashboard"
)

type stubStats struct {
	calls int
}

func (s *stubStats) CountLinens(context.Context) (int, error) {
	s.calls++
	return 42, nil
}

func (s *stubStats) CountPendingRequests(context.Context) (int, error) { return 0, nil }

func (s *stubStats) CountApprovedSince(context.Context, time.Time) (int, error) { return 0, nil }

func (s *stubStats) CountDamagedItems(context.Context) (int, error) { return 0, nil }

func (s *stubStats) CategoryCounts(context.Context) ([]dashboard.CategoryCount, error) {
	return nil, nil
}

func (s *stubStats) DailyActivity(context.Context, time.Time) ([]dashboard.ActivityCount, error) {
	return nil, nil
}

func (s *stubStats) MonthlyRequests(context.Context, time.Time) ([]dashboard.MonthCount, error) {
	return nil, nil
}

func (s *stubStats) MonthlyDamaged(context.Context, time.Time) ([]dashboard.MonthCount, error) {
	return nil, nil
}

func newWarmupJob(t *testing.T) (*DashboardWarmupJob, *stubStats) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &stubStats{}
	svc := dashboard.NewService(repo, dashboard.NewCache(client, time.Minute))
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewDashboardWarmupJob(svc, nil, metrics), repo
}

func TestDashboardWarmupPopulatesCache(t *testing.T) {
	job, repo := newWarmupJob(t)
	ctx := context.Background()

	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(ctx, task))
	require.Equal(t, 1, repo.calls)

	// Cached aggregates survive a second run without invalidation.
	require.NoError(t, job.Handle(ctx, task))
	require.Equal(t, 1, repo.calls)

	got, err := job.Dashboard.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 42, got.TotalLinens)
}

func TestDashboardWarmupInvalidateRecomputes(t *testing.T) {
	job, repo := newWarmupJob(t)
	ctx := context.Background()

	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(ctx, task))

	refresh, err := NewDashboardWarmupTask(DashboardWarmupPayload{Invalidate: true})
	require.NoError(t, err)
	require.NoError(t, job.Handle(ctx, refresh))
	require.Equal(t, 2, repo.calls)
}

func TestDashboardWarmupSkipsBadPayload(t *testing.T) {
	job, _ := newWarmupJob(t)

	err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
