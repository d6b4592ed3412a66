package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

var cardFileNumberRe = regexp.MustCompile(`_(\d+)\.json$`)

// CardStore persists scraped cards on disk.
//
//	<root>/inprogress/int/<region>/<SET>/<SET>_<n>.json   one file per scraped card
//	<root>/int/<region>/<SET>.json                        combined set, read by LocalDataService
type CardStore struct {
	root string
}

// NewCardStore creates a store rooted at dir. The directory is created lazily on first write.
func NewCardStore(dir string) *CardStore {
	return &CardStore{root: dir}
}

// GetRoot returns the store's root directory
func (s *CardStore) GetRoot() string {
	return s.root
}

func (s *CardStore) setDir(region, setCode string) string {
	return filepath.Join(s.root, "inprogress", "int", region, setCode)
}

// CardPath is the per-card file for one card number.
func (s *CardStore) CardPath(region, setCode, number string) string {
	return filepath.Join(s.setDir(region, setCode), fmt.Sprintf("%s_%s.json", setCode, number))
}

// SetPath is the combined file for a whole set.
func (s *CardStore) SetPath(region, setCode string) string {
	return filepath.Join(s.root, "int", region, setCode+".json")
}

// Exists reports whether a card has already been persisted.
func (s *CardStore) Exists(region, setCode, number string) bool {
	info, err := os.Stat(s.CardPath(region, setCode, number))
	return err == nil && !info.IsDir()
}

// Save writes one card as indented JSON.
func (s *CardStore) Save(region, setCode, number string, card models.CardRecord) error {
	dir := s.setDir(region, setCode)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create set directory: %w", err)
	}
	data, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode card: %w", err)
	}
	if err := os.WriteFile(s.CardPath(region, setCode, number), data, 0644); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// Load reads a previously persisted card.
func (s *CardStore) Load(region, setCode, number string) (*models.CardRecord, error) {
	data, err := os.ReadFile(s.CardPath(region, setCode, number))
	if err != nil {
		return nil, err
	}
	var card models.CardRecord
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("failed to parse card file: %w", err)
	}
	return &card, nil
}

// Combine merges every per-card file of a set, ordered by card number, into the set file.
// Unreadable card files are skipped with a warning. Returns the number of cards written.
func (s *CardStore) Combine(region, setCode string) (int, error) {
	dir := s.setDir(region, setCode)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read set directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no card files found in %s", dir)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return cardFileNumber(files[i]) < cardFileNumber(files[j])
	})

	cards := make([]models.CardRecord, 0, len(files))
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("Warning: failed to read %s: %v", name, err)
			continue
		}
		var card models.CardRecord
		if err := json.Unmarshal(data, &card); err != nil {
			log.Printf("Warning: failed to parse %s: %v", name, err)
			continue
		}
		cards = append(cards, card)
	}

	out := s.SetPath(region, setCode)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode set: %w", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write set file: %w", err)
	}
	return len(cards), nil
}

// ListInProgressSets returns the set codes that have per-card files for a region.
func (s *CardStore) ListInProgressSets(region string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "inprogress", "int", region))
	if err != nil {
		return nil, err
	}
	var sets []string
	for _, e := range entries {
		if e.IsDir() {
			sets = append(sets, e.Name())
		}
	}
	sort.Strings(sets)
	return sets, nil
}

func cardFileNumber(name string) int {
	m := cardFileNumberRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
