package ports

import "context"

// Mail mensaje saliente.
type Mail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer define el puerto de envío de correos (códigos de verificación y recuperación).
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}
