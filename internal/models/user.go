package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex" json:"username"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone"`
	ProfessionID *uint  `json:"profession_id"`
	Profession   *Profession
	// Privileged users see every record and may approve requests.
	Privileged bool `json:"privileged"`
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserLodge joins a user to a lodge. Duplicates are permitted on purpose;
// the source system never enforced uniqueness here.
type UserLodge struct {
	gorm.Model
	UserID  uint `json:"user_id"`
	User    User
	LodgeID uint `json:"lodge_id"`
	Lodge   Lodge
}
