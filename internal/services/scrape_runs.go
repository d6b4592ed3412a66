package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

const DefaultScrapeRunLimit = 50

// ScrapeRunService records scraper runs so progress survives restarts and can be
// inspected from the API.
type ScrapeRunService struct {
	db *gorm.DB
}

func NewScrapeRunService(db *gorm.DB) *ScrapeRunService {
	return &ScrapeRunService{db: db}
}

// Start records a new running scrape of one set.
func (s *ScrapeRunService) Start(region, setCode string) (*models.ScrapeRun, error) {
	run := &models.ScrapeRun{
		ID:        uuid.New().String(),
		Region:    region,
		SetCode:   strings.ToUpper(setCode),
		Status:    models.ScrapeStatusRunning,
		StartedAt: time.Now(),
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to record scrape run: %w", err)
	}
	return run, nil
}

// Finish stores the outcome of a run. A nil result with a non-nil error marks the run failed.
func (s *ScrapeRunService) Finish(run *models.ScrapeRun, result *ScrapeSetResult, scrapeErr error) error {
	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.ScrapeStatusCompleted
	if result != nil {
		run.Succeeded = result.Succeeded
		run.Skipped = result.Skipped
		run.Failed = result.Failed
	}
	if scrapeErr != nil {
		run.Status = models.ScrapeStatusFailed
		if errors.Is(scrapeErr, context.Canceled) || errors.Is(scrapeErr, context.DeadlineExceeded) {
			run.Status = models.ScrapeStatusInterrupted
		}
		run.Error = scrapeErr.Error()
	}
	if err := s.db.Save(run).Error; err != nil {
		return fmt.Errorf("failed to update scrape run %s: %w", run.ID, err)
	}
	return nil
}

// Track records scrape as one run of setCode. A nil service just runs scrape.
// Failures to write the history are logged and never fail the scrape.
func (s *ScrapeRunService) Track(region, setCode string, scrape func() (*ScrapeSetResult, error)) (*ScrapeSetResult, error) {
	if s == nil {
		return scrape()
	}
	run, err := s.Start(region, setCode)
	if err != nil {
		log.Printf("Warning: %v", err)
		return scrape()
	}
	result, scrapeErr := scrape()
	if err := s.Finish(run, result, scrapeErr); err != nil {
		log.Printf("Warning: %v", err)
	}
	return result, scrapeErr
}

// Recent returns the latest runs, newest first.
func (s *ScrapeRunService) Recent(limit int) ([]models.ScrapeRun, error) {
	if limit <= 0 {
		limit = DefaultScrapeRunLimit
	}
	var runs []models.ScrapeRun
	if err := s.db.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
