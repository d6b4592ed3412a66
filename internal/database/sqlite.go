package database

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

var DB *gorm.DB

// Initialize opens the scrape history database and makes it available through GetDB.
func Initialize(dbPath string) error {
	db, err := Open(dbPath)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to dbPath and brings the schema up to date.
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connected successfully")

	if err := db.AutoMigrate(&models.ScrapeRun{}); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}
