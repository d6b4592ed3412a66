package models

import (
	"time"
)

type ScrapeStatus string

const (
	ScrapeStatusRunning     ScrapeStatus = "running"
	ScrapeStatusCompleted   ScrapeStatus = "completed"
	ScrapeStatusFailed      ScrapeStatus = "failed"
	ScrapeStatusInterrupted ScrapeStatus = "interrupted"
)

// ScrapeRun records one pass of the set scraper over a single set.
type ScrapeRun struct {
	ID         string       `json:"id" gorm:"primaryKey"`
	Region     string       `json:"region" gorm:"not null;index"`
	SetCode    string       `json:"set_code" gorm:"not null;index"`
	Status     ScrapeStatus `json:"status" gorm:"not null;default:'running'"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	Skipped    int          `json:"skipped"` // already persisted, not re-fetched
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt *time.Time   `json:"finished_at"`
}
