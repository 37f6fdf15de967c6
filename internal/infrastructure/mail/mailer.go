// Package mail provides the outbound mailer used by the password-reset
// flow. Actual SMTP delivery is out of scope for this service; the shipped
// implementation records the message so operators (and tests) can observe
// what would have been sent.
package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vicentemv/user-management-api/internal/core/ports"
)

// LogMailer writes outbound mail to the structured log instead of a wire.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, mail ports.Mail) error {
	m.log.Info().
		Str("to", mail.To).
		Str("subject", mail.Subject).
		Int("body_bytes", len(mail.Body)).
		Msg("outbound mail")
	return nil
}
