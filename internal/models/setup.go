package models

import (
	"gorm.io/gorm"
)

// SetupID is the fixed primary key of the single configuration row.
const SetupID = 1

// Setup holds the operator-editable configuration consulted by the
// notification and calendar paths. Exactly one row exists, upserted through
// the admin surface.
type Setup struct {
	gorm.Model
	URL         string `json:"url"`
	CalendarURL string `json:"calendar_url"`
	AdminEmail  string `json:"admin_email"`
}
