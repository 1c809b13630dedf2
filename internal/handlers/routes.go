package handlers

import (
	"net/http"

	"github.com/agendamaconica/calendar-api/internal/auth"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(
	r *chi.Mux,
	authHandler *auth.AuthHandler,
	publicHandler *PublicHandler,
	requestHandler *RequestHandler,
	eventHandler *EventHandler,
	adminHandler *AdminHandler,
) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Agenda Maçônica API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	huma.Post(api, "/auth/login", authHandler.HandleLogin)
	huma.Post(api, "/requests/membership", publicHandler.HandleSubmitMembershipRequest)
	huma.Get(api, "/professions", adminHandler.HandleListProfessions)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authHandler.JWTMiddleware)

		withAuth := func(o *huma.Operation) {
			o.Security = []map[string][]string{{"cookieAuth": {}}}
		}

		huma.Get(api, "/me", authHandler.HandleMe, withAuth)

		huma.Post(api, "/store-requests", requestHandler.HandleCreateStoreRequest, withAuth)
		huma.Get(api, "/store-requests", requestHandler.HandleListStoreRequests, withAuth)
		huma.Get(api, "/store-requests/{id}", requestHandler.HandleGetStoreRequest, withAuth)
		huma.Put(api, "/store-requests/{id}", requestHandler.HandleUpdateStoreRequest, withAuth)
		huma.Post(api, "/store-requests/{id}/approve", requestHandler.HandleApproveStoreRequest, withAuth)
		huma.Delete(api, "/store-requests/{id}", requestHandler.HandleDeleteStoreRequest, withAuth)

		huma.Get(api, "/user-requests", requestHandler.HandleListUserRequests, withAuth)
		huma.Get(api, "/user-requests/{id}", requestHandler.HandleGetUserRequest, withAuth)
		huma.Post(api, "/user-requests/{id}/approve", requestHandler.HandleApproveUserRequest, withAuth)
		huma.Delete(api, "/user-requests/{id}", requestHandler.HandleDeleteUserRequest, withAuth)

		huma.Post(api, "/cancel-requests", requestHandler.HandleCreateCancelRequest, withAuth)
		huma.Get(api, "/cancel-requests", requestHandler.HandleListCancelRequests, withAuth)
		huma.Get(api, "/cancel-requests/{id}", requestHandler.HandleGetCancelRequest, withAuth)
		huma.Post(api, "/cancel-requests/{id}/review", requestHandler.HandleReviewCancelRequest, withAuth)

		// Events are soft-cancelled through PUT; no DELETE route exists.
		huma.Post(api, "/events", eventHandler.HandleCreateEvent, withAuth)
		huma.Get(api, "/events", eventHandler.HandleListEvents, withAuth)
		huma.Get(api, "/events/{id}", eventHandler.HandleGetEvent, withAuth)
		huma.Put(api, "/events/{id}", eventHandler.HandleUpdateEvent, withAuth)

		huma.Get(api, "/lodges", adminHandler.HandleListLodges, withAuth)
		huma.Post(api, "/lodges", adminHandler.HandleCreateLodge, withAuth)
		huma.Put(api, "/lodges/{id}", adminHandler.HandleUpdateLodge, withAuth)

		huma.Post(api, "/professions", adminHandler.HandleCreateProfession, withAuth)
		huma.Put(api, "/professions/{id}/active", adminHandler.HandleSetProfessionActive, withAuth)

		huma.Get(api, "/setup", adminHandler.HandleGetSetup, withAuth)
		huma.Put(api, "/setup", adminHandler.HandlePutSetup, withAuth)

		huma.Get(api, "/brothers", adminHandler.HandleListBrothers, withAuth)
	})
}
