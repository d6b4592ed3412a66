package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

// SetCodeIndex maps the code printed on cards ("TWM") to the primary source's set id ("sv6").
type SetCodeIndex struct {
	mu    sync.RWMutex
	codes map[string]string
	sets  []models.SetSummary
}

func NewSetCodeIndex() *SetCodeIndex {
	return &SetCodeIndex{codes: make(map[string]string)}
}

// Load fetches the set list once. On failure the index is left empty so every lookup
// misses and resolution goes straight to the local source.
func (idx *SetCodeIndex) Load(ctx context.Context, source *PokemonTCGDataService) error {
	sets, err := source.FetchSetIndex(ctx)
	if err != nil {
		idx.Replace(nil)
		return fmt.Errorf("failed to load set index: %w", err)
	}
	idx.Replace(sets)
	log.Printf("Loaded %d set codes from %s", idx.Len(), source.Name())
	return nil
}

// Replace swaps the index contents. Sets without a ptcgoCode are kept in Sets but are
// not addressable by code.
func (idx *SetCodeIndex) Replace(sets []models.SetSummary) {
	codes := make(map[string]string, len(sets))
	for _, set := range sets {
		if set.PtcgoCode != "" {
			codes[strings.ToUpper(set.PtcgoCode)] = set.ID
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.codes = codes
	idx.sets = sets
}

// Lookup returns the set id for a printed code, case-insensitively.
func (idx *SetCodeIndex) Lookup(code string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.codes[strings.ToUpper(code)]
	return id, ok
}

func (idx *SetCodeIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.codes)
}

// Codes returns every known printed code, sorted.
func (idx *SetCodeIndex) Codes() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	codes := make([]string, 0, len(idx.codes))
	for code := range idx.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Sets returns the sets that carry a printed code, ordered by code.
func (idx *SetCodeIndex) Sets() []models.SetSummary {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]models.SetSummary, 0, len(idx.codes))
	for _, set := range idx.sets {
		if set.PtcgoCode != "" {
			out = append(out, set)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToUpper(out[i].PtcgoCode) < strings.ToUpper(out[j].PtcgoCode)
	})
	return out
}
