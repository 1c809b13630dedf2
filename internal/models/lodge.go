package models

import (
	"strings"

	"gorm.io/gorm"
)

// Cities a lodge can be registered in.
var Cities = []string{
	"São Paulo",
	"Guarulhos",
	"Campinas",
	"Osasco",
	"Santos",
	"Sorocaba",
	"Ribeirão Preto",
}

func ValidCity(city string) bool {
	for _, c := range Cities {
		if c == city {
			return true
		}
	}
	return false
}

type Lodge struct {
	gorm.Model
	Name   string `json:"name"`
	City   string `json:"city"`
	Number string `json:"number"`
}

// BeforeSave normalizes the lodge name to uppercase on every write.
func (l *Lodge) BeforeSave(tx *gorm.DB) error {
	l.Name = strings.ToUpper(l.Name)
	return nil
}

type Profession struct {
	gorm.Model
	Name     string `json:"name"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}
