package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/agendamaconica/calendar-api/internal/models"
)

func TestHandleCreateEvent(t *testing.T) {
	env := newTestEnv(t)
	env.createSetup(t)
	handler := NewEventHandler(env.db, env.workflow, env.auth)

	member := env.createUser(t, "fulano", false)
	lodge := models.Lodge{Name: "HARMONIA", City: "São Paulo", Number: "123"}
	env.db.Create(&lodge)
	env.joinLodge(t, member, lodge)
	cookie := env.cookieFor(t, member)

	input := &CreateEventInput{}
	input.Cookie = cookie
	input.Body.Title = "Sessão Magna"
	input.Body.StartTime = time.Date(2026, 9, 10, 20, 0, 0, 0, time.UTC)
	input.Body.EndTime = time.Date(2026, 9, 10, 22, 0, 0, 0, time.UTC)
	input.Body.Address = "Rua das Acácias, 33"
	input.Body.LodgeID = lodge.ID

	res, err := handler.HandleCreateEvent(context.Background(), input)
	if err != nil {
		t.Fatalf("HandleCreateEvent returned error: %v", err)
	}
	if res.Body.Status != "succeeded" {
		t.Errorf("expected succeeded, got %s (warnings %v)", res.Body.Status, res.Body.Warnings)
	}
	if res.Body.Event.GoogleEventID != "google-event-1" {
		t.Errorf("expected synced google id in response, got %q", res.Body.Event.GoogleEventID)
	}
	if env.cal.createCalls != 1 {
		t.Errorf("expected 1 calendar create, got %d", env.cal.createCalls)
	}

	var stored models.Event
	env.db.First(&stored, res.Body.Event.ID)
	if stored.UserID != member.ID {
		t.Errorf("expected owner %d, got %d", member.ID, stored.UserID)
	}
	if stored.GoogleEventID != "google-event-1" {
		t.Errorf("expected google id persisted, got %q", stored.GoogleEventID)
	}
}

func TestHandleCreateEvent_Rejections(t *testing.T) {
	env := newTestEnv(t)
	handler := NewEventHandler(env.db, env.workflow, env.auth)

	member := env.createUser(t, "fulano", false)
	lodge := models.Lodge{Name: "HARMONIA", City: "São Paulo"}
	env.db.Create(&lodge)
	cookie := env.cookieFor(t, member)

	base := func() *CreateEventInput {
		input := &CreateEventInput{}
		input.Cookie = cookie
		input.Body.Title = "Sessão"
		input.Body.StartTime = time.Date(2026, 9, 10, 20, 0, 0, 0, time.UTC)
		input.Body.EndTime = time.Date(2026, 9, 10, 22, 0, 0, 0, time.UTC)
		input.Body.Address = "Rua A"
		input.Body.LodgeID = lodge.ID
		return input
	}

	t.Run("StartAfterEnd", func(t *testing.T) {
		input := base()
		input.Body.StartTime, input.Body.EndTime = input.Body.EndTime, input.Body.StartTime
		_, err := handler.HandleCreateEvent(context.Background(), input)
		assertStatus(t, err, 400)
	})

	t.Run("NotAMember", func(t *testing.T) {
		_, err := handler.HandleCreateEvent(context.Background(), base())
		assertStatus(t, err, 403)
	})

	t.Run("UnknownLodge", func(t *testing.T) {
		input := base()
		input.Body.LodgeID = 9999
		_, err := handler.HandleCreateEvent(context.Background(), input)
		assertStatus(t, err, 404)
	})

	t.Run("OperatorSkipsMembership", func(t *testing.T) {
		operator := env.createUser(t, "admin", true)
		input := base()
		input.Cookie = env.cookieFor(t, operator)
		if _, err := handler.HandleCreateEvent(context.Background(), input); err != nil {
			t.Fatalf("expected operator to create without membership, got %v", err)
		}
	})
}

func TestHandleUpdateEvent(t *testing.T) {
	env := newTestEnv(t)
	env.createSetup(t)
	handler := NewEventHandler(env.db, env.workflow, env.auth)

	member := env.createUser(t, "fulano", false)
	lodge := models.Lodge{Name: "HARMONIA", City: "São Paulo"}
	env.db.Create(&lodge)
	env.joinLodge(t, member, lodge)
	cookie := env.cookieFor(t, member)

	event := models.Event{
		UserID:        member.ID,
		LodgeID:       &lodge.ID,
		Title:         "Sessão Magna",
		StartTime:     time.Date(2026, 9, 10, 20, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2026, 9, 10, 22, 0, 0, 0, time.UTC),
		Address:       "Rua A",
		GoogleEventID: "google-event-1",
	}
	env.db.Create(&event)

	t.Run("TitleChangePushesUpdate", func(t *testing.T) {
		title := "Sessão Magna de Aniversário"
		input := &UpdateEventInput{ID: event.ID}
		input.Cookie = cookie
		input.Body.Title = &title

		res, err := handler.HandleUpdateEvent(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleUpdateEvent returned error: %v", err)
		}
		if res.Body.Event.Title != title {
			t.Errorf("expected updated title, got %q", res.Body.Event.Title)
		}
		if env.cal.updateCalls != 1 {
			t.Errorf("expected 1 calendar update, got %d", env.cal.updateCalls)
		}
	})

	t.Run("InvertedTimesRejected", func(t *testing.T) {
		start := time.Date(2026, 9, 10, 23, 0, 0, 0, time.UTC)
		input := &UpdateEventInput{ID: event.ID}
		input.Cookie = cookie
		input.Body.StartTime = &start
		_, err := handler.HandleUpdateEvent(context.Background(), input)
		assertStatus(t, err, 400)
	})

	t.Run("CancellationDeletesOnce", func(t *testing.T) {
		cancelled := true
		input := &UpdateEventInput{ID: event.ID}
		input.Cookie = cookie
		input.Body.IsCancelled = &cancelled

		res, err := handler.HandleUpdateEvent(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleUpdateEvent returned error: %v", err)
		}
		if !res.Body.Event.IsCancelled {
			t.Error("expected event to be cancelled")
		}
		if env.cal.deleteCalls != 1 {
			t.Errorf("expected 1 calendar delete, got %d", env.cal.deleteCalls)
		}
	})

	t.Run("CancelledEventIsReadOnly", func(t *testing.T) {
		title := "outro título"
		input := &UpdateEventInput{ID: event.ID}
		input.Cookie = cookie
		input.Body.Title = &title
		_, err := handler.HandleUpdateEvent(context.Background(), input)
		assertStatus(t, err, 403)

		// A second cancellation attempt is also rejected, so the calendar
		// entry cannot be deleted twice.
		cancelled := true
		input = &UpdateEventInput{ID: event.ID}
		input.Cookie = cookie
		input.Body.IsCancelled = &cancelled
		_, err = handler.HandleUpdateEvent(context.Background(), input)
		assertStatus(t, err, 403)
		if env.cal.deleteCalls != 1 {
			t.Errorf("expected delete count to stay at 1, got %d", env.cal.deleteCalls)
		}
	})
}

func TestHandleListEvents_Visibility(t *testing.T) {
	env := newTestEnv(t)
	handler := NewEventHandler(env.db, env.workflow, env.auth)

	alice := env.createUser(t, "alice", false)
	bob := env.createUser(t, "bob", false)
	operator := env.createUser(t, "admin", true)

	env.db.Create(&models.Event{UserID: alice.ID, Title: "Evento da Alice"})
	env.db.Create(&models.Event{UserID: bob.ID, Title: "Evento do Bob"})

	list := func(cookie string) []EventResponse {
		input := &ListEventsInput{}
		input.Cookie = cookie
		res, err := handler.HandleListEvents(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleListEvents returned error: %v", err)
		}
		return res.Body
	}

	if events := list(env.cookieFor(t, alice)); len(events) != 1 || events[0].Title != "Evento da Alice" {
		t.Errorf("expected alice to see only her event, got %+v", events)
	}
	if events := list(env.cookieFor(t, operator)); len(events) != 2 {
		t.Errorf("expected operator to see all events, got %d", len(events))
	}

	t.Run("OthersEventNotFound", func(t *testing.T) {
		var bobEvent models.Event
		env.db.Where("user_id = ?", bob.ID).First(&bobEvent)

		input := &GetEventInput{ID: bobEvent.ID}
		input.Cookie = env.cookieFor(t, alice)
		_, err := handler.HandleGetEvent(context.Background(), input)
		assertStatus(t, err, 404)
	})
}
