// Package mail delivers transactional e-mails over SMTP.
package mail

import (
	"context"
	"errors"
	"sync"

	"github.com/shopfront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrNoRecipient is returned when a message has no address to go to
var ErrNoRecipient = errors.New("mail: recipient is required")

// Mailer sends a plain-text message to one recipient
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns the SMTP mailer when a host is configured and the logging
// mailer otherwise
func New(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	if cfg.Host == "" {
		logger.Warn("Mail host not configured, e-mails will only be logged")
		return NewLoggingMailer(logger), nil
	}
	return NewSMTPMailer(cfg, logger)
}

// SentMessage is a message kept by the logging mailer
type SentMessage struct {
	To      string
	Subject string
	Body    string
}

// LoggingMailer writes messages to the log instead of sending them. It keeps
// the last messages so development setups can look them up.
type LoggingMailer struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []SentMessage
}

const loggingMailerHistory = 100

// NewLoggingMailer creates a new logging mailer
func NewLoggingMailer(logger *zap.Logger) *LoggingMailer {
	return &LoggingMailer{logger: logger}
}

var _ Mailer = (*LoggingMailer)(nil)

// Send logs the message
func (m *LoggingMailer) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return ErrNoRecipient
	}
	m.logger.Info("E-mail",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMessage{To: to, Subject: subject, Body: body})
	if len(m.sent) > loggingMailerHistory {
		m.sent = m.sent[len(m.sent)-loggingMailerHistory:]
	}
	return nil
}

// Sent returns a copy of the kept messages, oldest first
func (m *LoggingMailer) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
