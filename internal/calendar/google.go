package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/agendamaconica/calendar-api/internal/config"
	"github.com/agendamaconica/calendar-api/internal/models"
	"github.com/agendamaconica/calendar-api/internal/notifier"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	GoogleAuthEndpoint  = "https://accounts.google.com/o/oauth2/auth"
	GoogleTokenEndpoint = "https://oauth2.googleapis.com/token"
	CalendarScope       = "https://www.googleapis.com/auth/calendar"

	defaultBaseURL = "https://www.googleapis.com/calendar/v3"

	// All event times are expressed in the lodge's time zone.
	timeZone = "America/Sao_Paulo"
)

// Entry is the wire representation of a calendar event.
type Entry struct {
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       EntryTime `json:"start"`
	End         EntryTime `json:"end"`
}

type EntryTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type listResponse struct {
	Items []Entry `json:"items"`
}

// Service talks to the Google Calendar REST API on behalf of the configured
// calendar. Failures are reported to the admin email and the alert channel
// before being returned to the caller.
type Service struct {
	client     *http.Client
	baseURL    string
	calendarID string
	db         *gorm.DB
	notifier   notifier.Notifier
	alerter    notifier.Alerter
}

// NewService loads the OAuth2 token from disk, refreshing it once if it is
// expired but refreshable, and persists the refreshed token back.
func NewService(cfg *config.Config, db *gorm.DB, n notifier.Notifier, alerter notifier.Alerter) (*Service, error) {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, fmt.Errorf("google client credentials not configured")
	}

	raw, err := os.ReadFile(cfg.GoogleTokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Scopes:       []string{CalendarScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  GoogleAuthEndpoint,
			TokenURL: GoogleTokenEndpoint,
		},
	}

	source := oauthConfig.TokenSource(context.Background(), &token)
	current, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if current.AccessToken != token.AccessToken {
		if data, err := json.Marshal(current); err == nil {
			if err := os.WriteFile(cfg.GoogleTokenPath, data, 0o600); err != nil {
				log.Printf("Failed to persist refreshed token: %v", err)
			}
		}
	}

	return &Service{
		client:     oauth2.NewClient(context.Background(), source),
		baseURL:    defaultBaseURL,
		calendarID: cfg.GoogleCalendarID,
		db:         db,
		notifier:   n,
		alerter:    alerter,
	}, nil
}

func entryFromEvent(event *models.Event) Entry {
	summary := event.Title
	if event.Lodge != nil {
		summary = fmt.Sprintf("LOJA %s - %s", event.Lodge.Name, event.Title)
	}
	return Entry{
		Summary:     summary,
		Description: event.Description,
		Location:    event.Address,
		Start:       EntryTime{DateTime: event.StartTime.Format("2006-01-02T15:04:05-07:00"), TimeZone: timeZone},
		End:         EntryTime{DateTime: event.EndTime.Format("2006-01-02T15:04:05-07:00"), TimeZone: timeZone},
	}
}

// CreateEvent inserts the event and returns the Google Calendar event ID.
func (s *Service) CreateEvent(ctx context.Context, event *models.Event) (string, error) {
	var created Entry
	err := s.do(ctx, http.MethodPost, s.eventsURL(""), entryFromEvent(event), &created)
	if err != nil {
		s.reportError(event, "Criação de Evento", err)
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	return created.ID, nil
}

// UpdateEvent rewrites the calendar entry identified by the event's Google ID.
func (s *Service) UpdateEvent(ctx context.Context, event *models.Event) error {
	err := s.do(ctx, http.MethodPut, s.eventsURL(event.GoogleEventID), entryFromEvent(event), nil)
	if err != nil {
		s.reportError(event, "Atualização de Evento", err)
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	return nil
}

// DeleteEvent removes the calendar entry identified by the event's Google ID.
func (s *Service) DeleteEvent(ctx context.Context, event *models.Event) error {
	err := s.do(ctx, http.MethodDelete, s.eventsURL(event.GoogleEventID), nil, nil)
	if err != nil {
		s.reportError(event, "Exclusão de Evento", err)
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

// GetLastEvent returns the most recent calendar entry, or nil if the calendar
// is empty.
func (s *Service) GetLastEvent(ctx context.Context) (*Entry, error) {
	var list listResponse
	if err := s.do(ctx, http.MethodGet, s.eventsURL(""), nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	if len(list.Items) == 0 {
		return nil, nil
	}
	return &list.Items[0], nil
}

func (s *Service) eventsURL(eventID string) string {
	u := s.baseURL + "/calendars/" + url.PathEscape(s.calendarID) + "/events"
	if eventID != "" {
		u += "/" + url.PathEscape(eventID)
	}
	return u
}

func (s *Service) do(ctx context.Context, method, rawURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("calendar API returned %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (s *Service) reportError(event *models.Event, operation string, cause error) {
	if s.alerter != nil {
		if err := s.alerter.Alert(fmt.Sprintf("%s falhou: %v", operation, cause)); err != nil {
			log.Printf("Failed to send discord alert for calendar error: %v", err)
		}
	}

	if s.notifier == nil || s.db == nil {
		return
	}
	var setup models.Setup
	if err := s.db.First(&setup, models.SetupID).Error; err != nil || setup.AdminEmail == "" {
		return
	}

	data := map[string]any{
		"Operation":    operation,
		"ErrorMessage": cause.Error(),
	}
	if event != nil {
		data["EventTitle"] = event.Title
	}
	if err := s.notifier.Send("Erro no Google Calendar - "+operation, "calendar_error.html", data, []string{setup.AdminEmail}); err != nil {
		log.Printf("Failed to send calendar error notification: %v", err)
	}
}
