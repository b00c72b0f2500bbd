package sendemail

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/fluxo-hq/fluxo/pkg/protocol"
)

const (
	gmailHost = "smtp.gmail.com"
	gmailPort = 587
)

// GmailMailer delivers messages over Gmail SMTP, authenticating with the
// sender address and an app password.
type GmailMailer struct{}

func NewGmailMailer() protocol.Mailer {
	return &GmailMailer{}
}

func (m *GmailMailer) Send(ctx context.Context, message protocol.MailMessage) error {
	msg := mail.NewMsg()

	if err := msg.From(message.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}

	if err := msg.To(message.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextPlain, message.Body)

	client, err := mail.NewClient(gmailHost,
		mail.WithPort(gmailPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(message.From),
		mail.WithPassword(message.AppPassword),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}
