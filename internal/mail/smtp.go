package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/spec-kit/job-board/internal/config"
)

// Sender delivers plain-text mail to a single recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends mail through a configured SMTP account.
type SMTPSender struct {
	cfg config.MailConfig
}

// NewSMTPSender constructs the sender.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers the message. The context is honored only up front; net/smtp
// has no cancellation support mid-session.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.From, to, subject, body)

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}
