package ports

import "context"

// ErrorSink recibe los errores 5xx de la capa HTTP (p. ej. un webhook de Slack).
type ErrorSink interface {
	Write(ctx context.Context, message string) error
}

// NopErrorSink descarta los mensajes.
type NopErrorSink struct{}

func (NopErrorSink) Write(context.Context, string) error { return nil }
