package ports

import "context"

// Mail is one outbound message.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers outbound mail. Only the password-reset flow uses it;
// delivery failures never affect request outcomes.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// MailEnqueuer hands mail to the background dispatcher without blocking the
// request path.
type MailEnqueuer interface {
	Enqueue(mail Mail)
}
