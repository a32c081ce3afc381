package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

// Notifier delivers a message to a recipient address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// logNotifier only logs; used when no mail transport is configured. The body
// may carry a temporary password, so it is written at debug level only.
type logNotifier struct{}

// NewLogNotifier returns a Notifier that writes messages to the log.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Send(_ context.Context, to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).
		Msg("Email delivery not configured, message not sent")
	log.Debug().Str("to", to).Str("body", body).Msg("Undelivered message body")
	return nil
}

// SMTPNotifier sends plain-text mail over SMTP with mandatory TLS.
type SMTPNotifier struct {
	from string
	send func(ctx context.Context, msg *mail.Msg) error
}

// NewSMTPNotifier builds a notifier for host:port using PLAIN auth. Port 465
// uses implicit TLS, any other port STARTTLS. from defaults to user.
func NewSMTPNotifier(host string, port int, user, password, from string) (*SMTPNotifier, error) {
	if from == "" {
		from = user
	}
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating mail client for %s: %w", host, err)
	}
	send := func(ctx context.Context, msg *mail.Msg) error {
		return client.DialAndSendWithContext(ctx, msg)
	}
	return &SMTPNotifier{from: from, send: send}, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	msg, err := n.buildMessage(to, subject, body)
	if err != nil {
		return err
	}
	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	log.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

func (n *SMTPNotifier) buildMessage(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", n.from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
