package auth

import "context"

// ResetEmail carries everything a transport needs to deliver a password
// reset link. The token never appears anywhere else outside storage.
type ResetEmail struct {
	To       string
	ResetURL string
	Token    string
}

// Mailer delivers password reset emails. The module never implements a
// transport; hosts plug in SMTP, an API client, or a queue.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email ResetEmail) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, email ResetEmail) error

// SendPasswordReset implements Mailer.
func (f MailerFunc) SendPasswordReset(ctx context.Context, email ResetEmail) error {
	if f == nil {
		return nil
	}
	return f(ctx, email)
}

type noopMailer struct{}

func (noopMailer) SendPasswordReset(context.Context, ResetEmail) error {
	return nil
}

func normalizeMailer(m Mailer) Mailer {
	if m == nil {
		return noopMailer{}
	}
	return m
}
