package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

// MarkInterruptedRuns closes out runs whose scraper died before recording a result.
// Call it from the scraper only, before it starts new runs: the server shares the
// database and must not touch a run another process is still writing.
func MarkInterruptedRuns(db *gorm.DB) error {
	result := db.Model(&models.ScrapeRun{}).
		Where("status = ?", models.ScrapeStatusRunning).
		Updates(map[string]any{
			"status": models.ScrapeStatusInterrupted,
			"error":  "process exited before the run finished",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Marked %d unfinished scrape runs as interrupted", result.RowsAffected)
	}
	return nil
}
