package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/pkg/config"
)

func TestNew_SinHostUsaLog(t *testing.T) {
	_, ok := New(config.SMTPConfig{}, nil).(*LogMailer)
	assert.True(t, ok)

	_, ok = New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, nil).(*SMTPMailer)
	assert.True(t, ok)
}

func TestBuildMessage(t *testing.T) {
	gm := buildMessage("no-reply@albaranes.local", ports.Mail{
		To:      "ana@example.com",
		Subject: "Código de verificación",
		Text:    "Tu código es 123456",
		HTML:    "<p>Tu código es <b>123456</b></p>",
	})
	assert.Equal(t, []string{"ana@example.com"}, gm.GetHeader("To"))

	var buf bytes.Buffer
	_, err := gm.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "multipart/alternative")
}

func TestSMTPMailer_ContextoCancelado(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "127.0.0.1", Port: 1}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, ports.Mail{To: "a@b.c"}), context.Canceled)
}
