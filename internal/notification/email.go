package notification

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/FanchonSora/V-Assistant/internal/logging"
)

// SMTPConfig holds the mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailNotifier delivers messages over SMTP.
type EmailNotifier struct {
	client *mail.Client
	from   string
	log    logging.Logger
}

// NewEmailNotifier builds an SMTP notifier from the given settings.
func NewEmailNotifier(cfg SMTPConfig, log logging.Logger) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &EmailNotifier{
		client: client,
		from:   cfg.From,
		log:    logging.OrNop(log),
	}, nil
}

func (n *EmailNotifier) Notify(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(n.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := n.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	n.log.Info("Sent reminder email to %s", msg.To)
	return nil
}
