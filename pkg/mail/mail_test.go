package mail

import (
	"bytes"
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     *Message
		wantErr string
	}{
		{"alıcı yok", NewMessage().Subject("x").Text("y"), "alıcı"},
		{"konu yok", NewMessage().To("a@b.test", "").Text("y"), "konu"},
		{"gövde yok", NewMessage().To("a@b.test", "").Subject("x"), "gövde"},
		{"geçerli", NewMessage().To("a@b.test", "").Subject("x").HTML("<p>y</p>"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAddress_String(t *testing.T) {
	assert.Equal(t, "a@b.test", Address{Email: "a@b.test"}.String())
	assert.Equal(t, "Ayse <a@b.test>", Address{Email: "a@b.test", Name: "Ayse"}.String())
}

func TestSMTPMailer_BuildsMime(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{
		Host:      "localhost",
		Port:      1025,
		FromEmail: "noreply@ticketbox.test",
		FromName:  "TicketBox",
	}, log.New(io.Discard, "", 0))

	png := []byte{0x89, 'P', 'N', 'G'}
	msg := NewMessage().
		To("buyer@ticketbox.test", "Buyer").
		Subject("Your tickets").
		Text("Order 12 confirmed").
		Attach("ticket-1.png", "image/png", png)

	m, err := mailer.build(msg)
	require.NoError(t, err)

	buf, err := m.MimeBuf()
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "noreply@ticketbox.test")
	assert.Contains(t, out, "buyer@ticketbox.test")
	assert.Contains(t, out, "Your tickets")
	assert.Contains(t, out, "ticket-1.png")
	assert.Contains(t, out, "image/png")
}

func TestSMTPMailer_RejectsInvalidMessage(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 1025}, log.New(io.Discard, "", 0))
	err := mailer.Send(context.Background(), NewMessage().Subject("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geçersiz mesaj")
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	mailer := NewLogMailer(log.New(&buf, "", 0), "noreply@ticketbox.test", "TicketBox")

	msg := NewMessage().To("buyer@ticketbox.test", "").Subject("Hoş geldiniz").Text("merhaba")
	require.NoError(t, mailer.Send(context.Background(), msg))

	assert.Contains(t, buf.String(), "TicketBox <noreply@ticketbox.test>")
	assert.Contains(t, buf.String(), "Hoş geldiniz")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, mailer.Send(ctx, msg), context.Canceled)
}
