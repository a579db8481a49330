package mail

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strconv"

	"github.com/domodwyer/mailyak/v3"
)

// SMTPConfig, SMTP sunucu ayarları.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SMTPMailer, mesajları mailyak ile MIME'a çevirip SMTP üzerinden gönderir.
type SMTPMailer struct {
	config SMTPConfig
	logger *log.Logger
	auth   smtp.Auth
}

func NewSMTPMailer(config SMTPConfig, logger *log.Logger) *SMTPMailer {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return &SMTPMailer{config: config, logger: logger, auth: auth}
}

func (s *SMTPMailer) addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// build, Message'ı gönderime hazır mailyak zarfına çevirir.
func (s *SMTPMailer) build(msg *Message) (*mailyak.MailYak, error) {
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("geçersiz mesaj: %w", err)
	}

	m := mailyak.New(s.addr(), s.auth)

	from := msg.GetFrom()
	if from.Email == "" {
		from = Address{Email: s.config.FromEmail, Name: s.config.FromName}
	}
	m.From(from.Email)
	m.FromName(from.Name)

	to := make([]string, 0, len(msg.GetTo()))
	for _, addr := range msg.GetTo() {
		to = append(to, addr.Email)
	}
	m.To(to...)
	m.Subject(msg.GetSubject())

	if msg.GetText() != "" {
		m.Plain().Set(msg.GetText())
	}
	if msg.GetHTML() != "" {
		m.HTML().Set(msg.GetHTML())
	}
	for _, a := range msg.GetAttachments() {
		m.AttachWithMimeType(a.Name, bytes.NewReader(a.Data), a.ContentType)
	}
	return m, nil
}

func (s *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.build(msg)
	if err != nil {
		return err
	}

	if err := m.Send(); err != nil {
		s.logger.Printf("❌ SMTP gönderim hatası (%s): %v", msg.GetSubject(), err)
		return fmt.Errorf("mail gönderilemedi: %w", err)
	}

	s.logger.Printf("✅ Mail gönderildi: %s (%d alıcı)", msg.GetSubject(), len(msg.GetTo()))
	return nil
}
