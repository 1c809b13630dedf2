package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/agendamaconica/calendar-api/internal/auth"
	"github.com/agendamaconica/calendar-api/internal/calendar"
	"github.com/agendamaconica/calendar-api/internal/config"
	"github.com/agendamaconica/calendar-api/internal/models"
	"github.com/agendamaconica/calendar-api/internal/workflow"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type sentMail struct {
	Subject    string
	Template   string
	Data       map[string]any
	Recipients []string
}

type fakeNotifier struct {
	sent []sentMail
}

func (f *fakeNotifier) Send(subject, templateName string, data map[string]any, recipients []string) error {
	f.sent = append(f.sent, sentMail{Subject: subject, Template: templateName, Data: data, Recipients: recipients})
	return nil
}

type fakeCalendar struct {
	createCalls int
	updateCalls int
	deleteCalls int
	nextID      string
	failCreate  bool
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, event *models.Event) (string, error) {
	f.createCalls++
	if f.failCreate {
		return "", errors.New("calendar down")
	}
	return f.nextID, nil
}

func (f *fakeCalendar) UpdateEvent(ctx context.Context, event *models.Event) error {
	f.updateCalls++
	return nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, event *models.Event) error {
	f.deleteCalls++
	return nil
}

func (f *fakeCalendar) GetLastEvent(ctx context.Context) (*calendar.Entry, error) {
	return nil, nil
}

type testEnv struct {
	db       *gorm.DB
	mailer   *fakeNotifier
	cal      *fakeCalendar
	auth     *auth.AuthHandler
	workflow *workflow.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.UserLodge{}, &models.Lodge{}, &models.Profession{},
		&models.Event{}, &models.StoreRequest{}, &models.CancelEventRequest{},
		&models.UserRequest{}, &models.Setup{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{JWTSecret: "test-secret"}
	mailer := &fakeNotifier{}
	cal := &fakeCalendar{nextID: "google-event-1"}
	return &testEnv{
		db:       db,
		mailer:   mailer,
		cal:      cal,
		auth:     auth.NewAuthHandler(cfg, db),
		workflow: workflow.NewService(db, mailer, cal, nil),
	}
}

func (e *testEnv) createSetup(t *testing.T) {
	t.Helper()
	setup := models.Setup{
		URL:         "https://sistema.example.com",
		CalendarURL: "https://calendar.google.com/calendar/u/0",
		AdminEmail:  "admin@example.com",
	}
	setup.ID = models.SetupID
	if err := e.db.Create(&setup).Error; err != nil {
		t.Fatalf("failed to create setup: %v", err)
	}
}

func (e *testEnv) createUser(t *testing.T, username string, privileged bool) models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Privileged:   privileged,
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (e *testEnv) cookieFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := e.auth.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "auth_token=" + token
}

func (e *testEnv) joinLodge(t *testing.T, user models.User, lodge models.Lodge) {
	t.Helper()
	if err := e.db.Create(&models.UserLodge{UserID: user.ID, LodgeID: lodge.ID}).Error; err != nil {
		t.Fatalf("failed to create membership: %v", err)
	}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected status %d error, got nil", status)
	}
	var statusErr huma.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected huma status error, got %v", err)
	}
	if statusErr.GetStatus() != status {
		t.Fatalf("expected status %d, got %d (%v)", status, statusErr.GetStatus(), err)
	}
}
