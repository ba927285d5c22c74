package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopfront/backend/internal/infrastructure/config"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const defaultSMTPTimeout = 15 * time.Second

// SMTPMailer sends messages through an SMTP relay
type SMTPMailer struct {
	from    string
	options []gomail.Option
	host    string
	logger  *zap.Logger
}

// NewSMTPMailer validates the [mail] section and prepares client options
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if cfg.From == "" {
		return nil, fmt.Errorf("mail: from address is required")
	}
	policy, err := ParseTLSPolicy(cfg.TLS)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}

	opts := []gomail.Option{
		gomail.WithTLSPolicy(policy),
		gomail.WithTimeout(timeout),
	}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	return &SMTPMailer{
		from:    cfg.From,
		options: opts,
		host:    cfg.Host,
		logger:  logger,
	}, nil
}

var _ Mailer = (*SMTPMailer)(nil)

// ParseTLSPolicy maps the configured policy name
func ParseTLSPolicy(s string) (gomail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mandatory":
		return gomail.TLSMandatory, nil
	case "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "none":
		return gomail.NoTLS, nil
	}
	return gomail.TLSMandatory, fmt.Errorf("mail: unknown tls policy %q", s)
}

// Send dials the relay and delivers one message
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg, err := m.buildMessage(to, subject, body)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(m.host, m.options...)
	if err != nil {
		return fmt.Errorf("mail: failed to create client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("Failed to send e-mail",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("mail: failed to send to %s: %w", to, err)
	}

	m.logger.Debug("E-mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (m *SMTPMailer) buildMessage(to, subject, body string) (*gomail.Msg, error) {
	if to == "" {
		return nil, ErrNoRecipient
	}
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("mail: invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("mail: invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	return msg, nil
}
