package handlers

import (
	"context"
	"testing"

	"github.com/agendamaconica/calendar-api/internal/models"
)

func TestHandleListLodges(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAdminHandler(env.db, env.auth)

	member := env.createUser(t, "fulano", false)
	cookie := env.cookieFor(t, member)

	harmonia := models.Lodge{Name: "HARMONIA", City: "São Paulo", Number: "1"}
	env.db.Create(&harmonia)
	env.db.Create(&models.Lodge{Name: "ACACIA", City: "Santos", Number: "2"})
	env.joinLodge(t, member, harmonia)

	t.Run("All", func(t *testing.T) {
		input := &ListLodgesInput{}
		input.Cookie = cookie
		res, err := handler.HandleListLodges(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleListLodges returned error: %v", err)
		}
		if len(res.Body) != 2 {
			t.Errorf("expected 2 lodges, got %d", len(res.Body))
		}
	})

	t.Run("ByCity", func(t *testing.T) {
		input := &ListLodgesInput{City: "Santos"}
		input.Cookie = cookie
		res, err := handler.HandleListLodges(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleListLodges returned error: %v", err)
		}
		if len(res.Body) != 1 || res.Body[0].Name != "ACACIA" {
			t.Errorf("expected only ACACIA, got %+v", res.Body)
		}
	})

	t.Run("Mine", func(t *testing.T) {
		input := &ListLodgesInput{Mine: true}
		input.Cookie = cookie
		res, err := handler.HandleListLodges(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleListLodges returned error: %v", err)
		}
		if len(res.Body) != 1 || res.Body[0].Name != "HARMONIA" {
			t.Errorf("expected only membership lodge, got %+v", res.Body)
		}
	})
}

func TestHandleCreateLodge(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAdminHandler(env.db, env.auth)

	member := env.createUser(t, "fulano", false)
	operator := env.createUser(t, "admin", true)

	t.Run("MemberForbidden", func(t *testing.T) {
		input := &CreateLodgeInput{}
		input.Cookie = env.cookieFor(t, member)
		input.Body.Name = "Harmonia"
		input.Body.City = "São Paulo"
		_, err := handler.HandleCreateLodge(context.Background(), input)
		assertStatus(t, err, 403)
	})

	t.Run("OperatorCreates", func(t *testing.T) {
		input := &CreateLodgeInput{}
		input.Cookie = env.cookieFor(t, operator)
		input.Body.Name = "Harmonia"
		input.Body.City = "São Paulo"
		res, err := handler.HandleCreateLodge(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleCreateLodge returned error: %v", err)
		}
		if res.Body.Name != "HARMONIA" {
			t.Errorf("expected uppercased lodge name, got %q", res.Body.Name)
		}
	})

	t.Run("UnknownCity", func(t *testing.T) {
		input := &CreateLodgeInput{}
		input.Cookie = env.cookieFor(t, operator)
		input.Body.Name = "Outra"
		input.Body.City = "Atlântida"
		_, err := handler.HandleCreateLodge(context.Background(), input)
		assertStatus(t, err, 422)
	})
}

func TestProfessions(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAdminHandler(env.db, env.auth)
	operator := env.createUser(t, "admin", true)

	create := &CreateProfessionInput{}
	create.Cookie = env.cookieFor(t, operator)
	create.Body.Name = "Advogado"
	res, err := handler.HandleCreateProfession(context.Background(), create)
	if err != nil {
		t.Fatalf("HandleCreateProfession returned error: %v", err)
	}
	if !res.Body.IsActive {
		t.Error("expected new profession to be active")
	}

	toggle := &SetProfessionActiveInput{ID: res.Body.ID}
	toggle.Cookie = env.cookieFor(t, operator)
	toggle.Body.IsActive = false
	if _, err := handler.HandleSetProfessionActive(context.Background(), toggle); err != nil {
		t.Fatalf("HandleSetProfessionActive returned error: %v", err)
	}

	// The public listing hides inactive entries unless asked for all.
	list, err := handler.HandleListProfessions(context.Background(), &ListProfessionsInput{})
	if err != nil {
		t.Fatalf("HandleListProfessions returned error: %v", err)
	}
	if len(list.Body) != 0 {
		t.Errorf("expected inactive profession hidden, got %+v", list.Body)
	}
	list, err = handler.HandleListProfessions(context.Background(), &ListProfessionsInput{All: true})
	if err != nil {
		t.Fatalf("HandleListProfessions returned error: %v", err)
	}
	if len(list.Body) != 1 {
		t.Errorf("expected inactive profession with all=true, got %+v", list.Body)
	}
}

func TestSetup(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAdminHandler(env.db, env.auth)
	operator := env.createUser(t, "admin", true)
	cookie := env.cookieFor(t, operator)

	t.Run("NotConfigured", func(t *testing.T) {
		input := &GetSetupInput{}
		input.Cookie = cookie
		_, err := handler.HandleGetSetup(context.Background(), input)
		assertStatus(t, err, 404)
	})

	t.Run("UpsertIsSingleRow", func(t *testing.T) {
		put := &PutSetupInput{}
		put.Cookie = cookie
		put.Body.URL = "https://sistema.example.com"
		put.Body.CalendarURL = "https://calendar.google.com/calendar/u/0"
		put.Body.AdminEmail = "admin@example.com"
		if _, err := handler.HandlePutSetup(context.Background(), put); err != nil {
			t.Fatalf("HandlePutSetup returned error: %v", err)
		}

		put.Body.AdminEmail = "outro@example.com"
		if _, err := handler.HandlePutSetup(context.Background(), put); err != nil {
			t.Fatalf("second HandlePutSetup returned error: %v", err)
		}

		var count int64
		env.db.Model(&models.Setup{}).Count(&count)
		if count != 1 {
			t.Errorf("expected a single setup row, got %d", count)
		}

		get := &GetSetupInput{}
		get.Cookie = cookie
		res, err := handler.HandleGetSetup(context.Background(), get)
		if err != nil {
			t.Fatalf("HandleGetSetup returned error: %v", err)
		}
		if res.Body.AdminEmail != "outro@example.com" {
			t.Errorf("expected latest admin email, got %q", res.Body.AdminEmail)
		}
	})
}

func TestHandleListBrothers(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAdminHandler(env.db, env.auth)

	member := env.createUser(t, "joao", false)
	env.db.Model(&member).Updates(map[string]any{"first_name": "João", "last_name": "Souza"})
	env.createUser(t, "admin", true)

	lodge := models.Lodge{Name: "HARMONIA", City: "São Paulo"}
	env.db.Create(&lodge)
	env.joinLodge(t, member, lodge)

	input := &ListBrothersInput{}
	input.Cookie = env.cookieFor(t, member)
	res, err := handler.HandleListBrothers(context.Background(), input)
	if err != nil {
		t.Fatalf("HandleListBrothers returned error: %v", err)
	}
	if len(res.Body) != 1 {
		t.Fatalf("expected privileged accounts left out, got %d entries", len(res.Body))
	}
	if res.Body[0].FullName != "João Souza" {
		t.Errorf("unexpected full name %q", res.Body[0].FullName)
	}
	if res.Body[0].Lodges != "HARMONIA" {
		t.Errorf("expected lodge names joined, got %q", res.Body[0].Lodges)
	}
}
