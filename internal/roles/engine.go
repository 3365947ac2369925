package roles

import (
	"context"
	"log/slog"

	"github.com/arena-club/arena-club/internal/platform/db"
)

// MetricsPort counts applied transitions.
type MetricsPort interface {
	ObserveRoleTransition(trigger string)
}

// Engine is the single authority applying role changes. Every change locks
// the user row, consults the transition table and appends the audit entry
// in the same transaction, so the role and its history can never diverge.
type Engine struct {
	runner  db.TxRunner
	repo    RepositoryPort
	logger  *slog.Logger
	metrics MetricsPort
}

// NewEngine builds Engine instance.
func NewEngine(runner db.TxRunner, repo RepositoryPort, logger *slog.Logger, metrics MetricsPort) *Engine {
	return &Engine{runner: runner, repo: repo, logger: logger, metrics: metrics}
}

// Transition applies a role change in its own transaction.
func (e *Engine) Transition(ctx context.Context, req Request) (Result, error) {
	var result Result
	err := e.runner.RunTx(ctx, func(q db.DBTX) error {
		var txErr error
		result, txErr = e.TransitionTx(ctx, q, req)
		return txErr
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// TransitionTx applies a role change on the caller's transaction, so an
// enrollment or payment mutation commits or rolls back together with the
// role change it causes.
func (e *Engine) TransitionTx(ctx context.Context, q db.DBTX, req Request) (Result, error) {
	current, err := e.repo.GetRoleForUpdate(ctx, q, req.UserID)
	if err != nil {
		return Result{}, err
	}

	next, err := Next(current, req.Trigger, req.Target)
	if err != nil {
		return Result{}, err
	}

	result := Result{OldRole: current, NewRole: next}
	if current == next {
		// No-op: keep the audit log meaningful by not recording it.
		return result, nil
	}

	if err := e.repo.SetRole(ctx, q, req.UserID, current, next); err != nil {
		return Result{}, err
	}
	if err := e.repo.AppendEntry(ctx, q, Entry{
		UserID:  req.UserID,
		OldRole: current,
		NewRole: next,
		Reason:  req.Reason,
		Meta:    req.Meta,
	}); err != nil {
		return Result{}, err
	}

	result.Changed = true
	if e.metrics != nil {
		e.metrics.ObserveRoleTransition(string(req.Trigger))
	}
	if e.logger != nil {
		e.logger.Info("role transition applied",
			slog.Int64("user_id", req.UserID),
			slog.String("trigger", string(req.Trigger)),
			slog.String("old_role", string(current)),
			slog.String("new_role", string(next)))
	}
	return result, nil
}
