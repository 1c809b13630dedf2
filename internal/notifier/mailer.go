package notifier

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/agendamaconica/calendar-api/internal/config"
	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// Notifier sends a rendered notification to a list of recipients.
// Implementations do not retry; callers decide whether a failure matters.
type Notifier interface {
	Send(subject, templateName string, data map[string]any, recipients []string) error
}

// SMTPNotifier renders an embedded HTML template and delivers it over SMTP
// with a stripped plain-text part as fallback.
type SMTPNotifier struct {
	dialer    *gomail.Dialer
	from      string
	templates *template.Template
	stripper  *bluemonday.Policy
}

func NewSMTPNotifier(cfg *config.Config) (*SMTPNotifier, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host not configured")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("sender address not configured")
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}

	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	dialer.SSL = cfg.SMTPPort == 465

	return &SMTPNotifier{
		dialer:    dialer,
		from:      cfg.FromEmail,
		templates: tmpl,
		stripper:  bluemonday.StrictPolicy(),
	}, nil
}

func (n *SMTPNotifier) Send(subject, templateName string, data map[string]any, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients for %q", subject)
	}

	var buf bytes.Buffer
	if err := n.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return fmt.Errorf("failed to render template %s: %w", templateName, err)
	}
	htmlBody := buf.String()
	plainBody := stripTags(n.stripper, htmlBody)

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %q: %w", subject, err)
	}
	return nil
}

func stripTags(p *bluemonday.Policy, htmlBody string) string {
	plain := p.Sanitize(htmlBody)
	plain = strings.ReplaceAll(plain, "&amp;", "&")
	plain = strings.ReplaceAll(plain, "&lt;", "<")
	plain = strings.ReplaceAll(plain, "&gt;", ">")
	plain = strings.ReplaceAll(plain, "&#34;", `"`)
	plain = strings.ReplaceAll(plain, "&#39;", "'")

	lines := strings.Split(plain, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
