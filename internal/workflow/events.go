package workflow

import (
	"context"
	"log"

	"github.com/agendamaconica/calendar-api/internal/models"
)

const fallbackCalendarURL = "https://calendar.google.com/calendar"

// EventCreated syncs a freshly persisted event to the external calendar and
// mails the owner. On adapter failure the event simply stays without a Google
// ID; the record itself is already committed.
func (s *Service) EventCreated(ctx context.Context, event *models.Event) (Result, error) {
	var res Result

	if s.calendar == nil {
		res.warn("calendar not configured; event %d not synced", event.ID)
		return res, nil
	}

	googleID, err := s.calendar.CreateEvent(ctx, event)
	if err != nil {
		log.Printf("Error syncing event %d (%s) with Google Calendar: %v", event.ID, event.Title, err)
		res.warn("calendar sync failed: %v", err)
		return res, nil
	}

	// Targeted column update so model hooks do not fire again.
	if err := s.db.Model(&models.Event{}).Where("id = ?", event.ID).
		Update("google_event_id", googleID).Error; err != nil {
		res.warn("failed to persist google event id: %v", err)
		return res, nil
	}
	event.GoogleEventID = googleID

	calendarURL := fallbackCalendarURL
	if setup, err := s.setup(); err == nil && setup.CalendarURL != "" {
		calendarURL = setup.CalendarURL
	}

	var owner models.User
	if err := s.db.First(&owner, event.UserID).Error; err != nil {
		res.warn("owner of event %d not found: %v", event.ID, err)
		return res, nil
	}

	err = s.send("Evento Criado com Sucesso", "event_created.html", map[string]any{
		"Title":       event.Title,
		"StartTime":   event.StartTime.Format("02/01/2006 15:04"),
		"EndTime":     event.EndTime.Format("02/01/2006 15:04"),
		"Address":     event.Address,
		"CalendarURL": calendarURL,
	}, []string{owner.Email})
	if err != nil {
		log.Printf("Error sending event creation notification for event %d (%s): %v", event.ID, event.Title, err)
		res.warn("creation email not sent: %v", err)
	}

	return res, nil
}

// EventUpdated reacts to a persisted event update: a cancellation deletes the
// calendar entry and mails the owner, any other change pushes an update when
// the event has a Google ID, and an event that was never synced is left alone.
func (s *Service) EventUpdated(ctx context.Context, event *models.Event) (Result, error) {
	var res Result

	if event.IsCancelled {
		if s.calendar == nil {
			res.warn("calendar not configured; event %d not removed", event.ID)
			return res, nil
		}
		if err := s.calendar.DeleteEvent(ctx, event); err != nil {
			log.Printf("Error deleting event %d (%s) from Google Calendar: %v", event.ID, event.Title, err)
			res.warn("calendar delete failed: %v", err)
			return res, nil
		}

		var owner models.User
		if err := s.db.First(&owner, event.UserID).Error; err != nil {
			res.warn("owner of event %d not found: %v", event.ID, err)
			return res, nil
		}
		err := s.send("Evento Cancelado", "event_cancelled.html", map[string]any{
			"Title": event.Title,
		}, []string{owner.Email})
		if err != nil {
			log.Printf("Error sending event cancellation notification for event %d (%s): %v", event.ID, event.Title, err)
			res.warn("cancellation email not sent: %v", err)
		}
		return res, nil
	}

	// Never created upstream, nothing to update.
	if event.GoogleEventID == "" {
		return res, nil
	}

	if s.calendar == nil {
		res.warn("calendar not configured; event %d not updated", event.ID)
		return res, nil
	}
	if err := s.calendar.UpdateEvent(ctx, event); err != nil {
		log.Printf("Error updating event %d (%s) in Google Calendar: %v", event.ID, event.Title, err)
		res.warn("calendar update failed: %v", err)
	}
	return res, nil
}
