// Package mail delivers transactional mail over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"portfolio_backend/internal/platform/config"
	"portfolio_backend/internal/shared/ratelimiter"
)

// ErrNotConfigured is returned by Send when no sender account is set.
var ErrNotConfigured = errors.New("mail: smtp sender not configured")

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPMailer sends plain-text mail through one SMTP account.
type SMTPMailer struct {
	client  sender
	from    string
	timeout time.Duration
	pacer   ratelimiter.Waiter
}

// NewSMTPMailer creates a mailer for cfg. Port 465 uses implicit TLS, other ports STARTTLS.
// An empty sender address yields a mailer whose Send always fails with ErrNotConfigured.
func NewSMTPMailer(cfg config.Mail) (*SMTPMailer, error) {
	m := &SMTPMailer{
		from:    cfg.From,
		timeout: cfg.Timeout,
		pacer:   ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute),
	}
	if cfg.From == "" {
		return m, nil
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.From),
		gomail.WithPassword(cfg.Password),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	m.client = client
	return m, nil
}

// Send delivers one plain-text message to to. The timeout covers both the wait
// for a pacing slot and the SMTP exchange.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.client == nil {
		return ErrNotConfigured
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	if m.pacer != nil {
		if err := m.pacer.Wait(ctx); err != nil {
			return fmt.Errorf("wait for mail slot: %w", err)
		}
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
