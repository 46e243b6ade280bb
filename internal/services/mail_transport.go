package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/projeto-integrador-integra/integra-backend/internal/config"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MailMessage is a rendered email ready for delivery.
type MailMessage struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// MailTransport delivers rendered messages.
type MailTransport interface {
	Send(ctx context.Context, msg *MailMessage) error
}

// NewMailTransport picks the transport named by cfg.Provider, falling back to
// logging when the provider is not fully configured.
func NewMailTransport(cfg *config.MailConfig) MailTransport {
	switch cfg.Provider {
	case "sendgrid":
		if cfg.SendGridAPIKey != "" {
			return NewSendGridTransport(cfg)
		}
		logger.Warn().Msg("[Email] sendgrid selected without API key, logging emails instead")
	case "smtp":
		if cfg.SMTPHost != "" {
			return NewSMTPTransport(cfg)
		}
		logger.Warn().Msg("[Email] smtp selected without host, logging emails instead")
	}
	return LogTransport{}
}

// LogTransport only logs messages. Used in development.
type LogTransport struct{}

func (LogTransport) Send(ctx context.Context, msg *MailMessage) error {
	logger.Ctx(ctx).Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("[Email] Delivery skipped (log transport)")
	return nil
}

type SendGridTransport struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridTransport(cfg *config.MailConfig) *SendGridTransport {
	return &SendGridTransport{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.From),
	}
}

func (t *SendGridTransport) Send(ctx context.Context, msg *MailMessage) error {
	message := mail.NewSingleEmail(t.from, msg.Subject, mail.NewEmail(msg.ToName, msg.To), msg.Text, msg.HTML)

	resp, err := t.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

func NewSMTPTransport(cfg *config.MailConfig) *SMTPTransport {
	return &SMTPTransport{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

// Send uses implicit TLS on port 465 and STARTTLS-capable plain SMTP otherwise.
func (t *SMTPTransport) Send(ctx context.Context, msg *MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from := t.from
	if from == "" {
		from = t.username
	}

	addr := fmt.Sprintf("%s:%d", t.host, t.port)

	var auth smtp.Auth
	if t.username != "" && t.password != "" {
		auth = smtp.PlainAuth("", t.username, t.password, t.host)
	}

	body := buildMIMEMessage(fmt.Sprintf("%s <%s>", t.fromName, from), msg)
	if t.port == 465 {
		return t.sendTLS(addr, auth, from, msg.To, body)
	}
	return smtp.SendMail(addr, auth, from, []string{msg.To}, []byte(body))
}

func (t *SMTPTransport) sendTLS(addr string, auth smtp.Auth, from, to, message string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: t.host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildMIMEMessage(from string, msg *MailMessage) string {
	headers := []struct{ key, value string }{
		{"From", from},
		{"To", msg.To},
		{"Subject", msg.Subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var sb strings.Builder
	for _, h := range headers {
		sb.WriteString(h.key + ": " + h.value + "\r\n")
	}
	sb.WriteString("\r\n")
	sb.WriteString(msg.HTML)
	return sb.String()
}
