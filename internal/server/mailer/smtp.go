package mailer

import (
	"context"
	"fmt"

	"github.com/avasilkov/keyvault/internal/server/config"
	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers jobs over an authenticated SMTP relay.
type SMTPSender struct {
	client *gomail.Client
	from   string
}

func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	client, err := gomail.NewClient(cfg.SMTPServer,
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.SMTPUsername),
		gomail.WithPassword(cfg.SMTPPassword),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTPSender{client: client, from: cfg.SMTPUsername}, nil
}

func (s *SMTPSender) Send(ctx context.Context, job Job) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat("Key Manager", s.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(job.Recipient); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(job.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, job.Body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
