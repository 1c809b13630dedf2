package workflow

import (
	"context"
	"errors"
	"log"
)

// CheckLastEvent fetches the most recent calendar entry and logs its summary.
// Adapter errors are mailed to the admin and pushed to the alert channel.
func (s *Service) CheckLastEvent(ctx context.Context) error {
	if s.calendar == nil {
		return errors.New("calendar not configured")
	}

	entry, err := s.calendar.GetLastEvent(ctx)
	if err != nil {
		log.Printf("Error checking last calendar event: %v", err)
		if s.alerter != nil {
			if alertErr := s.alerter.Alert("Verificação do calendário falhou: " + err.Error()); alertErr != nil {
				log.Printf("Error sending check alert: %v", alertErr)
			}
		}
		if setup, setupErr := s.setup(); setupErr == nil && setup.AdminEmail != "" {
			mailErr := s.send("Error checking last event", "calendar_error.html", map[string]any{
				"Operation":    "Last event check",
				"ErrorMessage": err.Error(),
			}, []string{setup.AdminEmail})
			if mailErr != nil {
				log.Printf("Error sending check error notification: %v", mailErr)
			}
		}
		return err
	}

	if entry == nil {
		log.Printf("No events found in the calendar")
		return nil
	}
	log.Printf("Last event found: %s (start %s)", entry.Summary, entry.Start.DateTime)
	return nil
}
