package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/arena-club/arena-club/internal/jobs"
)

// TaskReportWarmup primes the report caches off-peak.
const TaskReportWarmup = "reports:warmup"

// ReportWarmer is the slice of the reports service the job needs.
type ReportWarmer interface {
	Warmup(ctx context.Context, from, to time.Time) error
}

type reportWarmupPayload struct {
	WindowDays int `json:"window_days"`
}

// NewReportWarmupTask builds the warmup task covering the last windowDays.
func NewReportWarmupTask(windowDays int) (*asynq.Task, error) {
	data, err := json.Marshal(reportWarmupPayload{WindowDays: windowDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// ReportWarmupJob handles TaskReportWarmup.
type ReportWarmupJob struct {
	warmer  ReportWarmer
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewReportWarmupJob builds ReportWarmupJob instance.
func NewReportWarmupJob(warmer ReportWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{warmer: warmer, logger: logger, metrics: metrics}
}

// Handle primes the report caches for the configured window.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload reportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	days := payload.WindowDays
	if days <= 0 {
		days = 30
	}
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	track := j.metrics.Track("report_warmup")
	err := j.warmer.Warmup(ctx, from, to)
	track.Done(err)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("report caches warmed", slog.Int("window_days", days))
	}
	return nil
}
