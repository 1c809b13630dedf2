package database

import (
	"log"

	"github.com/agendamaconica/calendar-api/internal/config"
	"github.com/agendamaconica/calendar-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.UserLodge{},
		&models.Lodge{},
		&models.Profession{},
		&models.Event{},
		&models.StoreRequest{},
		&models.CancelEventRequest{},
		&models.UserRequest{},
		&models.Setup{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}
