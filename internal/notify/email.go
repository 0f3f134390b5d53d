package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/baxromumarov/job-watcher/internal/config"
	"github.com/baxromumarov/job-watcher/internal/observability"
	"github.com/baxromumarov/job-watcher/internal/scraper"
)

// PreviewLimit is how many postings a change notification includes.
const PreviewLimit = 3

// Notifier delivers a change notification. Implementations never return
// delivery errors to the caller.
type Notifier interface {
	Notify(ctx context.Context, subject, body string)
}

type sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// EmailNotifier sends plain-text mail to a single recipient.
type EmailNotifier struct {
	cfg    config.EmailConfig
	sender sender
	logger *slog.Logger
}

func NewEmailNotifier(cfg config.EmailConfig, logger *slog.Logger) *EmailNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailNotifier{
		cfg:    cfg,
		sender: &smtpSender{cfg: cfg},
		logger: logger,
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, subject, body string) {
	if !n.cfg.Enabled {
		observability.IncNotification("disabled")
		n.logger.Info("email disabled, skipping", "subject", subject)
		return
	}

	msg, err := n.message(subject, body)
	if err == nil {
		err = n.sender.Send(ctx, msg)
	}
	if err != nil {
		observability.IncNotification("failed")
		observability.IncError(observability.ErrorNotify, "notifier")
		n.logger.Error("email failed", "subject", subject, "error", err)
		return
	}

	observability.IncNotification("sent")
	n.logger.Info("email sent", "subject", subject, "to", n.cfg.To)
}

func (n *EmailNotifier) message(subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(n.cfg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}

// smtpSender dials the relay over implicit TLS for every message.
type smtpSender struct {
	cfg config.EmailConfig
}

func (s *smtpSender) Send(ctx context.Context, msg *mail.Msg) error {
	c, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTimeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// Subject is the subject line for a change on siteURL.
func Subject(siteURL string) string {
	return "New Full Stack Jobs on " + siteURL
}

// Preview renders up to PreviewLimit postings as indented JSON.
func Preview(jobs []scraper.JobPosting) string {
	if len(jobs) > PreviewLimit {
		jobs = jobs[:PreviewLimit]
	}
	if jobs == nil {
		jobs = []scraper.JobPosting{}
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		data = []byte("[]")
	}
	return "New/updated remote Full Stack jobs:\n" + string(data) + "..."
}
