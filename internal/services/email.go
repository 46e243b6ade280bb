package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
)

//go:embed templates/*.html
var emailTemplates embed.FS

// Mailer sends the product emails.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, to, name string) error
	SendCompletedGroupEmail(ctx context.Context, to, name, projectID, projectName string) error
}

// EmailService renders the embedded templates and hands them to a transport.
type EmailService struct {
	transport MailTransport
	appURL    string
	templates *template.Template
}

var _ Mailer = (*EmailService)(nil)

func NewEmailService(transport MailTransport, appURL string) *EmailService {
	return &EmailService{
		transport: transport,
		appURL:    strings.TrimRight(appURL, "/"),
		templates: template.Must(template.ParseFS(emailTemplates, "templates/*.html")),
	}
}

type emailData struct {
	Name        string
	ProjectName string
	URL         string
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	return s.send(ctx, to, "welcome.html", "Bem-vindo(a) à Integra", emailData{
		Name: firstName(name),
		URL:  s.appURL,
	})
}

func (s *EmailService) SendCompletedGroupEmail(ctx context.Context, to, name, projectID, projectName string) error {
	return s.send(ctx, to, "group_formed.html", fmt.Sprintf("Grupo completo: %s", projectName), emailData{
		Name:        firstName(name),
		ProjectName: projectName,
		URL:         s.appURL + "/projects/" + projectID,
	})
}

// Process is the TaskProcessor that delivers queued email tasks.
func (s *EmailService) Process(ctx context.Context, task *EmailTask) error {
	switch task.Kind {
	case EmailKindWelcome:
		return s.SendWelcomeEmail(ctx, task.To, task.Name)
	case EmailKindGroupFormed:
		return s.SendCompletedGroupEmail(ctx, task.To, task.Name, task.ProjectID, task.ProjectName)
	}
	return fmt.Errorf("unknown email kind %q", task.Kind)
}

func (s *EmailService) send(ctx context.Context, to, tmpl, subject string, data emailData) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}

	err := s.transport.Send(ctx, &MailMessage{
		To:      to,
		ToName:  data.Name,
		Subject: subject,
		HTML:    buf.String(),
		Text:    subject,
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("to", to).Str("template", tmpl).Msg("[Email] Failed to send email")
		return err
	}
	logger.Ctx(ctx).Info().Str("to", to).Str("template", tmpl).Msg("[Email] Sent")
	return nil
}

func firstName(name string) string {
	u := models.User{Name: name}
	return u.FirstName()
}
