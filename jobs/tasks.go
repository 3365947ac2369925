package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/arena-club/arena-club/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// SMTPConfig points the mail handler at the outgoing relay.
type SMTPConfig struct {
	Host string
	Port int
	From string
}

// NewSendEmailHandler returns the handler processing TaskTypeSendEmail.
// Malformed payloads are dropped instead of retried.
func NewSendEmailHandler(cfg SMTPConfig, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
			cfg.From, payload.To, payload.Subject, payload.Body)

		track := metrics.Track("send_email")
		err := smtp.SendMail(addr, nil, cfg.From, []string{payload.To}, []byte(msg))
		track.Done(err)
		if err != nil {
			return fmt.Errorf("jobs: send mail to %s: %w", payload.To, err)
		}
		if logger != nil {
			logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
		}
		return nil
	}
}
