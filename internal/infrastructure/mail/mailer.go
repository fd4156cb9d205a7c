// Package mail implementa ports.Mailer: SMTP vía gomail o solo log cuando no hay SMTP.
package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/raposo-pdv/pdv-api/internal/application/ports"
)

var (
	_ ports.Mailer = (*SMTPMailer)(nil)
	_ ports.Mailer = (*LogMailer)(nil)
)

// sender es lo que usa SMTPMailer de gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer envía por SMTP con STARTTLS cuando el servidor lo ofrece.
type SMTPMailer struct {
	dialer sender
	from   string
}

// NewSMTPMailer construye el mailer con las credenciales del servidor.
func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, user, password), from: from}
}

func buildMessage(from string, m ports.Mail) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)
	return msg
}

// Send abre la conexión, envía y cierra. gomail no acepta contexto: se corre en una goroutine
// y se abandona la espera si el contexto vence.
func (s *SMTPMailer) Send(ctx context.Context, m ports.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(s.from, m)
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

// LogMailer solo registra el email (desarrollo).
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer construye el mailer de log.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (l *LogMailer) Send(_ context.Context, m ports.Mail) error {
	l.log.Info().Str("to", m.To).Str("subject", m.Subject).Msg("email não enviado (SMTP não configurado)")
	l.log.Debug().Str("to", m.To).Str("html", m.HTML).Msg("conteúdo do email")
	return nil
}
