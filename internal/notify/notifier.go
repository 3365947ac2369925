package notify

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/arena-club/arena-club/jobs"
)

// Email is one outgoing notification.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers notifications fire-and-forget: implementations must
// never fail the business operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, email Email)
}

// AsynqNotifier enqueues emails for the background worker. Enqueue failures
// are logged and dropped.
type AsynqNotifier struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewAsynqNotifier builds AsynqNotifier instance.
func NewAsynqNotifier(client *asynq.Client, logger *slog.Logger) *AsynqNotifier {
	return &AsynqNotifier{client: client, logger: logger}
}

// Notify enqueues the email task.
func (n *AsynqNotifier) Notify(ctx context.Context, email Email) {
	if n == nil || n.client == nil {
		return
	}
	task, err := jobs.NewSendEmailTask(jobs.SendEmailPayload{
		To:      email.To,
		Subject: email.Subject,
		Body:    email.Body,
	})
	if err != nil {
		n.log(email, err)
		return
	}
	if _, err := n.client.EnqueueContext(ctx, task, asynq.Queue(jobs.QueueDefault)); err != nil {
		n.log(email, err)
	}
}

func (n *AsynqNotifier) log(email Email, err error) {
	if n.logger != nil {
		n.logger.Warn("notification dropped",
			slog.String("to", email.To),
			slog.String("subject", email.Subject),
			slog.Any("error", err))
	}
}
