// Package smtpmail delivers contact form submissions as plain-text mail over SMTP.
package smtpmail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zachkp/devfolio/internal/contact"
)

// ErrNotConfigured is returned when credentials or the recipient are missing.
var ErrNotConfigured = errors.New("smtpmail: SMTP credentials not configured")

var tracer = otel.Tracer("github.com/Zachkp/devfolio/internal/smtpmail")

// Config is the SMTP account used to relay messages.
type Config struct {
	Host string
	Port string
	User string
	Pass string
	// To is where contact messages are delivered.
	To string
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender relays contact messages through an SMTP server.
type Sender struct {
	config   Config
	sendMail SendFunc
}

// New returns a Sender. A nil send uses smtp.SendMail.
func New(cfg Config, send SendFunc) (*Sender, error) {
	if cfg.User == "" || cfg.Pass == "" || cfg.To == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if send == nil {
		send = smtp.SendMail
	}
	return &Sender{config: cfg, sendMail: send}, nil
}

// Send implements contact.Sender. smtp.SendMail has no context support, so a
// cancelled ctx is only checked before dialing.
func (s *Sender) Send(ctx context.Context, form contact.Form) (contact.Receipt, error) {
	_, span := tracer.Start(ctx, "smtp.send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("smtp.host", s.config.Host))

	if err := ctx.Err(); err != nil {
		return contact.Receipt{}, err
	}

	msg := Compose(s.config.User, s.config.To, form)
	auth := smtp.PlainAuth("", s.config.User, s.config.Pass, s.config.Host)
	addr := net.JoinHostPort(s.config.Host, s.config.Port)

	if err := s.sendMail(addr, auth, s.config.User, []string{s.config.To}, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send mail failed")
		return contact.Receipt{}, fmt.Errorf("smtp send: %w", err)
	}
	return contact.Receipt{Status: 250, Text: "OK"}, nil
}

// Compose builds the plain-text RFC 822 message for form. Only the header
// values are rewritten; the body carries the fields as entered.
func Compose(from, to string, form contact.Form) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s", headerSafe(form.Name))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, form.Name, form.Email, form.Message)

	return []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"Reply-To: " + headerSafe(form.Email) + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")
}

// headerSafe drops line breaks so visitor input cannot inject headers.
func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
