package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

const pokemonTCGDataBaseURL = "https://raw.githubusercontent.com/PokemonTCG/pokemon-tcg-data/master"

// CardSource provides full card arrays for a set. Implementations must be safe for
// concurrent use.
type CardSource interface {
	// Name identifies the source in cache keys, metrics and errors.
	Name() string
	FetchSet(ctx context.Context, id string) ([]models.CardRecord, error)
}

// PokemonTCGDataService reads the static pokemon-tcg-data JSON documents. Sets are keyed by
// canonical set id (e.g. "sv6"), not by the code printed on cards.
type PokemonTCGDataService struct {
	client  *http.Client
	baseURL string
}

func NewPokemonTCGDataService(baseURL string) *PokemonTCGDataService {
	if baseURL == "" {
		baseURL = pokemonTCGDataBaseURL
	}
	return &PokemonTCGDataService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *PokemonTCGDataService) Name() string {
	return "api"
}

// FetchSet downloads every card of a set.
func (s *PokemonTCGDataService) FetchSet(ctx context.Context, setID string) ([]models.CardRecord, error) {
	var cards []models.CardRecord
	if err := s.getJSON(ctx, fmt.Sprintf("%s/cards/en/%s.json", s.baseURL, setID), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// FetchSetIndex downloads the list of all English sets.
func (s *PokemonTCGDataService) FetchSetIndex(ctx context.Context) ([]models.SetSummary, error) {
	var sets []models.SetSummary
	if err := s.getJSON(ctx, s.baseURL+"/sets/en.json", &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (s *PokemonTCGDataService) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &FetchError{Source: s.Name(), URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Source: s.Name(), URL: reqURL, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", reqURL, err)
	}
	return nil
}
