package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/agendamaconica/calendar-api/internal/auth"
	"github.com/agendamaconica/calendar-api/internal/calendar"
	"github.com/agendamaconica/calendar-api/internal/config"
	"github.com/agendamaconica/calendar-api/internal/database"
	"github.com/agendamaconica/calendar-api/internal/handlers"
	"github.com/agendamaconica/calendar-api/internal/notifier"
	"github.com/agendamaconica/calendar-api/internal/scheduler"
	"github.com/agendamaconica/calendar-api/internal/workflow"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Outbound integrations are optional; the server runs degraded without
	// them and the workflow reports the gaps as warnings.
	var mailer notifier.Notifier
	smtpNotifier, err := notifier.NewSMTPNotifier(cfg)
	if err != nil {
		log.Printf("Mail notifier not initialized: %v", err)
	} else {
		mailer = smtpNotifier
	}

	var alerter notifier.Alerter
	discordAlerter, err := notifier.NewDiscordAlerter(cfg)
	if err != nil {
		log.Printf("Discord alerter not initialized: %v", err)
	} else {
		alerter = discordAlerter
	}

	var calendarService workflow.CalendarService
	googleCalendar, err := calendar.NewService(cfg, db, mailer, alerter)
	if err != nil {
		log.Printf("Calendar service not initialized: %v", err)
	} else {
		calendarService = googleCalendar
	}

	wf := workflow.NewService(db, mailer, calendarService, alerter)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	publicHandler := handlers.NewPublicHandler(db, wf)
	requestHandler := handlers.NewRequestHandler(db, wf, authHandler)
	eventHandler := handlers.NewEventHandler(db, wf, authHandler)
	adminHandler := handlers.NewAdminHandler(db, authHandler)

	// Periodic calendar check
	if calendarService != nil && cfg.CalendarCheckCron != "" {
		sched := scheduler.New(wf)
		if err := sched.Start(cfg.CalendarCheckCron); err != nil {
			log.Printf("Failed to start calendar check: %v", err)
		}
		defer sched.Stop()
	}

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, authHandler, publicHandler, requestHandler, eventHandler, adminHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
