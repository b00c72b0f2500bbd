package protocol

import "context"

// Mailer delivers a single message. The send-email node depends on this
// rather than a concrete SMTP client so tests can substitute a fake.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// MailMessage is one outbound email, already rendered.
type MailMessage struct {
	From        string
	AppPassword string
	To          string
	Subject     string
	Body        string
}
