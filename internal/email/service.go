package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/medihelp-api/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, email string, name string) error
	SendFamilyNotice(ctx context.Context, to string, fromName string, relation string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

// Sender delivers one message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPService struct {
	sender Sender
	from   string
}

// NewService returns an SMTP mailer, or Nop when no host is configured.
func NewService(cfg config.SMTPConfig) Service {
	if cfg.Host == "" {
		return Nop{}
	}
	return NewSMTPService(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

func NewSMTPService(sender Sender, from string) *SMTPService {
	return &SMTPService{sender: sender, from: from}
}

func (s *SMTPService) SendWelcome(ctx context.Context, email string, name string) error {
	return s.SendCustom(ctx, email, "Welcome to MediHelp",
		fmt.Sprintf("<p>Hi %s,</p><p>Your MediHelp account is ready.</p>", name))
}

func (s *SMTPService) SendFamilyNotice(ctx context.Context, to string, fromName string, relation string) error {
	return s.SendCustom(ctx, to, "You were added as a family member",
		fmt.Sprintf("<p>%s added you to their family list as <b>%s</b> on MediHelp.</p>", fromName, relation))
}

func (s *SMTPService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", content)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// Nop drops every message.
type Nop struct{}

func (Nop) SendWelcome(context.Context, string, string) error             { return nil }
func (Nop) SendFamilyNotice(context.Context, string, string, string) error { return nil }
func (Nop) SendCustom(context.Context, string, string, string) error       { return nil }
