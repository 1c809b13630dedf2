package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	gorm.Model
	UserID      uint `json:"user_id"`
	User        User
	LodgeID     *uint `json:"lodge_id"`
	Lodge       *Lodge
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Address     string    `json:"address"`
	// Filled in after the event has been created in Google Calendar.
	GoogleEventID string `json:"google_event_id"`
	IsCancelled   bool   `json:"is_cancelled"`
}
