package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

const DefaultResolveConcurrency = 8

// DeckService turns a pasted decklist into the card records to render.
type DeckService struct {
	resolver    *CardResolver
	index       *SetCodeIndex
	concurrency int
}

func NewDeckService(resolver *CardResolver, index *SetCodeIndex, concurrency int) *DeckService {
	if concurrency <= 0 {
		concurrency = DefaultResolveConcurrency
	}
	return &DeckService{
		resolver:    resolver,
		index:       index,
		concurrency: concurrency,
	}
}

type resolveOutcome struct {
	card *models.CardRecord
	err  error
}

// ResolveDecklist resolves every parseable line of the request. A card that fails to
// resolve is reported in Errors and does not affect the others; each resolved card is
// repeated Count times, in decklist order.
func (s *DeckService) ResolveDecklist(ctx context.Context, req models.DecklistRequest) (*models.DecklistResult, error) {
	refs := ParseDecklist(req.Decklist)
	if len(refs) == 0 {
		return nil, ErrEmptyDecklist
	}

	result := &models.DecklistResult{Cards: []models.ResolvedCard{}}
	targets := make([]models.CardReference, len(refs))
	for i, ref := range refs {
		targets[i] = ref
		replacement := strings.TrimSpace(req.Replacements[ref.Key()])
		if replacement == "" {
			continue
		}
		if setCode, number, ok := ParseReplacement(replacement); ok {
			targets[i].SetCode = setCode
			targets[i].CardNumber = number
		} else {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Warning: Invalid replacement format %q for %s", replacement, ref.Key()))
		}
	}

	// Each distinct printing is resolved once however many lines or copies name it.
	outcomes := make(map[string]*resolveOutcome)
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, target := range targets {
		if _, ok := outcomes[target.Key()]; ok {
			continue
		}
		out := &resolveOutcome{}
		outcomes[target.Key()] = out
		g.Go(func() error {
			out.card, out.err = s.resolve(ctx, target)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reported := make(map[string]bool)
	for i, target := range targets {
		out := outcomes[target.Key()]
		if out.err != nil {
			if !reported[target.Key()] {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to load %s: %v", target.Key(), out.err))
				reported[target.Key()] = true
			}
			continue
		}
		if req.HideBasicEnergy && out.card.IsBasicEnergy() {
			continue
		}
		for range refs[i].Count {
			result.Cards = append(result.Cards, models.ResolvedCard{CardRecord: *out.card, SetCode: target.SetCode})
		}
	}

	result.Decklist = rewriteDecklist(refs, targets)
	return result, nil
}

// ResolveCard resolves a single printing by its printed set code.
func (s *DeckService) ResolveCard(ctx context.Context, setCode, number string) (*models.CardRecord, error) {
	return s.resolve(ctx, models.CardReference{SetCode: strings.ToUpper(setCode), CardNumber: number})
}

func (s *DeckService) resolve(ctx context.Context, ref models.CardReference) (*models.CardRecord, error) {
	primaryKey, _ := s.index.Lookup(ref.SetCode)
	return s.resolver.Resolve(ctx, primaryKey, ref.CardNumber, ref.SetCode)
}

// rewriteDecklist prints one line per distinct original printing with its replacement applied.
func rewriteDecklist(refs, targets []models.CardReference) string {
	seen := make(map[string]bool)
	var lines []string
	for i, ref := range refs {
		if seen[ref.Key()] {
			continue
		}
		seen[ref.Key()] = true
		line := ref
		line.SetCode = targets[i].SetCode
		line.CardNumber = targets[i].CardNumber
		lines = append(lines, FormatDecklistLine(line))
	}
	return strings.Join(lines, "\n")
}
