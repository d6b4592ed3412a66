package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

// LocalDataService serves the combined set files written by the scraper. Sets are keyed by
// the code printed on cards (e.g. "TWM"). Records may lack a number field.
type LocalDataService struct {
	store  *CardStore
	region string
}

func NewLocalDataService(dataDir, region string) *LocalDataService {
	if region == "" {
		region = "en"
	}
	return &LocalDataService{store: NewCardStore(dataDir), region: region}
}

func (s *LocalDataService) Name() string {
	return "local"
}

// FetchSet reads <dataDir>/int/<region>/<SET>.json. A missing file is reported as a
// FetchError wrapping fs.ErrNotExist.
func (s *LocalDataService) FetchSet(ctx context.Context, setCode string) ([]models.CardRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.store.SetPath(s.region, setCode)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), URL: path, Err: err}
	}
	var cards []models.CardRecord
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cards, nil
}
