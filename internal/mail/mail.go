// Package mail renders and sends the CRM's transactional email.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/amoylab/nextcrm/internal/common/config"
	"go.uber.org/zap"
)

// Template names
const (
	TemplateLeadCreated = "lead_created"
	TemplateLeadLost    = "lead_lost"
	TemplateUserWelcome = "user_welcome"
)

var subjects = map[string]string{
	TemplateLeadCreated: "New lead: {{ .Lead.Name }}",
	TemplateLeadLost:    "Lead lost: {{ .Lead.Name }}",
	TemplateUserWelcome: "Your NextCRM account",
}

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// Recipient is the addressee of one email
type Recipient struct {
	Email string
	Name  string
}

// Message is a fully rendered email
type Message struct {
	To      Recipient
	Subject string
	HTML    string
	Text    string
}

// Sender delivers rendered messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer renders named templates and hands them to a Sender
type Mailer struct {
	sender  Sender
	appURL  string
	html    *htmltemplate.Template
	text    *texttemplate.Template
	subject *texttemplate.Template
}

// New returns a Mailer that sends through SendGrid when an API key is
// configured, and logs messages otherwise.
func New(cfg config.EmailConfig, logger *zap.Logger) (*Mailer, error) {
	var sender Sender
	if cfg.SendGridAPIKey != "" {
		sender = NewSendGridSender(cfg.SendGridAPIKey, cfg.FromEmail, cfg.FromName)
		logger.Info("email service initialized with SendGrid")
	} else {
		sender = NewConsoleSender(logger)
		logger.Warn("email service in console-only mode, set email.sendgrid_api_key to send mail")
	}
	return NewWithSender(sender, cfg.AppURL)
}

// NewWithSender parses the embedded templates around an arbitrary Sender
func NewWithSender(sender Sender, appURL string) (*Mailer, error) {
	html, err := htmltemplate.New("mail").Funcs(sprig.FuncMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html templates: %w", err)
	}
	text, err := texttemplate.New("mail").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}
	subject := texttemplate.New("subject").Funcs(sprig.TxtFuncMap())
	for name, s := range subjects {
		if _, err := subject.New(name).Parse(s); err != nil {
			return nil, fmt.Errorf("failed to parse subject of %s: %w", name, err)
		}
	}
	return &Mailer{
		sender:  sender,
		appURL:  strings.TrimRight(appURL, "/"),
		html:    html,
		text:    text,
		subject: subject,
	}, nil
}

// Render executes the named template for one recipient. data is exposed to
// the template alongside RecipientName and AppURL.
func (m *Mailer) Render(name string, to Recipient, data map[string]any) (Message, error) {
	vars := make(map[string]any, len(data)+2)
	for k, v := range data {
		vars[k] = v
	}
	vars["RecipientName"] = to.Name
	vars["AppURL"] = m.appURL

	var subject, html, text bytes.Buffer
	if err := m.subject.ExecuteTemplate(&subject, name, vars); err != nil {
		return Message{}, fmt.Errorf("failed to render subject of %s: %w", name, err)
	}
	if err := m.html.ExecuteTemplate(&html, name+".html", vars); err != nil {
		return Message{}, fmt.Errorf("failed to render %s.html: %w", name, err)
	}
	if err := m.text.ExecuteTemplate(&text, name+".txt", vars); err != nil {
		return Message{}, fmt.Errorf("failed to render %s.txt: %w", name, err)
	}
	return Message{
		To:      to,
		Subject: strings.TrimSpace(subject.String()),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// Send renders the named template and delivers it
func (m *Mailer) Send(ctx context.Context, name string, to Recipient, data map[string]any) error {
	if to.Email == "" {
		return fmt.Errorf("mail: %s has no recipient address", name)
	}
	msg, err := m.Render(name, to, data)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, msg)
}
