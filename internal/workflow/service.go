package workflow

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/agendamaconica/calendar-api/internal/calendar"
	"github.com/agendamaconica/calendar-api/internal/models"
	"github.com/agendamaconica/calendar-api/internal/notifier"
	"gorm.io/gorm"
)

var (
	// ErrAlreadyApproved is returned when a compare-and-swap on the approval
	// flag finds the request already approved.
	ErrAlreadyApproved = errors.New("request already approved")
	// ErrNotConfigured is returned when the setup row has not been created yet.
	ErrNotConfigured = errors.New("system setup is not configured")
)

type Status int

const (
	StatusSucceeded Status = iota
	StatusSucceededWithWarnings
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSucceededWithWarnings:
		return "succeeded_with_warnings"
	default:
		return "failed"
	}
}

// Result reports what an approval actually did. Side-effect failures show up
// as warnings instead of log lines the caller cannot see.
type Result struct {
	Status   Status
	UserID   uint
	LodgeID  uint
	Warnings []string
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
	if r.Status == StatusSucceeded {
		r.Status = StatusSucceededWithWarnings
	}
}

// CalendarService is the slice of the calendar adapter the workflow needs.
type CalendarService interface {
	CreateEvent(ctx context.Context, event *models.Event) (string, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, event *models.Event) error
	GetLastEvent(ctx context.Context) (*calendar.Entry, error)
}

// Service drives the derived writes and notifications that used to hang off
// model saves: approving a request provisions entities, creating or updating
// an event syncs the external calendar. Every external call is best effort;
// the primary row is already committed before Service methods run.
type Service struct {
	db       *gorm.DB
	notifier notifier.Notifier
	calendar CalendarService
	alerter  notifier.Alerter
}

func NewService(db *gorm.DB, n notifier.Notifier, cal CalendarService, alerter notifier.Alerter) *Service {
	return &Service{db: db, notifier: n, calendar: cal, alerter: alerter}
}

func (s *Service) setup() (*models.Setup, error) {
	var setup models.Setup
	if err := s.db.First(&setup, models.SetupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}
	return &setup, nil
}

func (s *Service) send(subject, templateName string, data map[string]any, recipients []string) error {
	if s.notifier == nil {
		return errors.New("mail transport not configured")
	}
	return s.notifier.Send(subject, templateName, data, recipients)
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomPassword(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = passwordCharset[int(b)%len(passwordCharset)]
	}
	return string(buf), nil
}
