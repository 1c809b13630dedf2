package notifier

import (
	"bytes"
	"html/template"
	"strings"
	"testing"

	"github.com/agendamaconica/calendar-api/internal/config"
	"github.com/microcosm-cc/bluemonday"
)

func TestNewSMTPNotifier(t *testing.T) {
	t.Run("MissingHost", func(t *testing.T) {
		_, err := NewSMTPNotifier(&config.Config{FromEmail: "noreply@example.com"})
		if err == nil {
			t.Fatal("expected error without SMTP host")
		}
	})

	t.Run("MissingSender", func(t *testing.T) {
		_, err := NewSMTPNotifier(&config.Config{SMTPHost: "smtp.example.com"})
		if err == nil {
			t.Fatal("expected error without sender address")
		}
	})

	t.Run("ParsesTemplates", func(t *testing.T) {
		n, err := NewSMTPNotifier(&config.Config{
			SMTPHost:  "smtp.example.com",
			SMTPPort:  465,
			FromEmail: "noreply@example.com",
		})
		if err != nil {
			t.Fatalf("NewSMTPNotifier returned error: %v", err)
		}
		if n.templates.Lookup("user_request_approval.html") == nil {
			t.Error("expected embedded templates to be parsed")
		}
	})
}

func TestTemplatesRender(t *testing.T) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}

	cases := []struct {
		name string
		data map[string]any
		want string
	}{
		{"user_request_approval.html", map[string]any{
			"Name": "Carlos", "Username": "carlos@example.com",
			"Password": "s3cr3tpassw0", "LoginURL": "https://sistema.example.com",
		}, "s3cr3tpassw0"},
		{"event_created.html", map[string]any{
			"Title": "Sessão Magna", "StartTime": "10/09/2026 20:00",
			"EndTime": "10/09/2026 22:00", "Address": "Rua A",
			"CalendarURL": "https://calendar.google.com",
		}, "Sessão Magna"},
		{"calendar_error.html", map[string]any{
			"Operation": "Criação de Evento", "EventTitle": "Sessão",
			"ErrorMessage": "calendar API returned 403",
		}, "calendar API returned 403"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tmpl.ExecuteTemplate(&buf, tc.name, tc.data); err != nil {
				t.Fatalf("failed to render: %v", err)
			}
			if !strings.Contains(buf.String(), tc.want) {
				t.Errorf("expected rendered output to contain %q", tc.want)
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	p := bluemonday.StrictPolicy()

	html := "<html><body>\n  <h1>Olá, João &amp; Maria</h1>\n  <p>Sua senha é <b>abc123</b>.</p>\n</body></html>"
	plain := stripTags(p, html)

	if strings.Contains(plain, "<") {
		t.Errorf("expected tags removed, got %q", plain)
	}
	if !strings.Contains(plain, "João & Maria") {
		t.Errorf("expected entities unescaped, got %q", plain)
	}
	if !strings.Contains(plain, "Sua senha é abc123.") {
		t.Errorf("expected text preserved, got %q", plain)
	}
	if strings.Contains(plain, "  ") && strings.HasPrefix(plain, " ") {
		t.Errorf("expected lines trimmed, got %q", plain)
	}
}
