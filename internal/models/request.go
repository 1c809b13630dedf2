package models

import (
	"strings"

	"gorm.io/gorm"
)

// StoreRequest asks for a new lodge to be registered. Approving one creates
// the lodge and mails the requester.
type StoreRequest struct {
	gorm.Model
	UserID   uint `json:"user_id"`
	User     User
	Name     string `json:"name"`
	City     string `json:"city"`
	Number   string `json:"number"`
	Approved bool   `json:"approved"`
}

func (r *StoreRequest) BeforeSave(tx *gorm.DB) error {
	r.Name = strings.ToUpper(r.Name)
	return nil
}

// CancelEventRequest asks an operator to cancel an event. Reviewing it does
// not cancel the event itself; that stays an explicit event update.
type CancelEventRequest struct {
	gorm.Model
	UserID   uint `json:"user_id"`
	User     User
	EventID  uint `json:"event_id"`
	Event    Event
	Reason   string `json:"reason"`
	Reviewed bool   `json:"reviewed"`
}

// UserRequest is a self-service membership application. Approving one
// provisions a user account, its lodge membership, and mails credentials.
type UserRequest struct {
	gorm.Model
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ProfessionID *uint  `json:"profession_id"`
	Profession   *Profession
	Message      string `json:"message"`
	LodgeName    string `json:"lodge_name"`
	LodgeNumber  string `json:"lodge_number"`
	Approved     bool   `json:"approved"`
}
