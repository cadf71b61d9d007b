package interfaces

import "context"

// MailMessage is the transport-agnostic envelope handed to a Mailer.
type MailMessage struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// Mailer delivers messages using the transport configured in settings.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
