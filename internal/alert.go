package internal

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Notifier delivers an alert message.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// SMTPNotifier mails alerts. STARTTLS and authentication are used when a
// username is configured.
type SMTPNotifier struct {
	cfg AlertConfig
}

func NewSMTPNotifier(cfg AlertConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) Send(ctx context.Context, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return &TransportError{Transport: "smtp", Err: fmt.Errorf("set from: %w", err)}
	}
	if err := msg.To(n.cfg.To); err != nil {
		return &TransportError{Transport: "smtp", Err: fmt.Errorf("set to: %w", err)}
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(n.cfg.SMTPPort),
		mail.WithTimeout(n.cfg.Timeout),
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithTLSPolicy(mail.TLSMandatory),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(n.cfg.SMTPServer, opts...)
	if err != nil {
		return &TransportError{Transport: "smtp", Err: fmt.Errorf("create client: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return &TransportError{Transport: "smtp", Err: err}
	}
	return nil
}

// Alerter gates a Notifier behind the alert.enabled switch and swallows
// delivery failures after logging them.
type Alerter struct {
	enabled  bool
	notifier Notifier
	logger   Logger
}

func NewAlerter(enabled bool, notifier Notifier, logger Logger) *Alerter {
	if logger == nil {
		logger = NopLogger()
	}
	return &Alerter{enabled: enabled, notifier: notifier, logger: logger}
}

// Send reports whether the alert was delivered.
func (a *Alerter) Send(ctx context.Context, subject, body string) bool {
	if !a.enabled || a.notifier == nil {
		a.logger.Info("alert disabled, would send", "subject", subject)
		return false
	}
	if err := a.notifier.Send(ctx, subject, body); err != nil {
		a.logger.Error("failed to send alert", "subject", subject, "error", err)
		return false
	}
	a.logger.Info("alert sent", "subject", subject)
	return true
}
