package services

import (
	"context"
	"regexp"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alchemistake/pokeproxy/backend/internal/metrics"
	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

// CardResolver finds a card by set and number across a primary and a fallback source.
// Every set it touches is fetched whole, once, and kept for the resolver's lifetime.
type CardResolver struct {
	primary  CardSource
	fallback CardSource

	mu    sync.RWMutex
	cache map[string][]models.CardRecord // "<source>:<id>" -> full set
	group singleflight.Group
}

// NewCardResolver creates a resolver. Either source may be nil.
func NewCardResolver(primary, fallback CardSource) *CardResolver {
	return &CardResolver{
		primary:  primary,
		fallback: fallback,
		cache:    make(map[string][]models.CardRecord),
	}
}

// Resolve returns the card numbered cardNumber. primaryKey is a primary-source set id,
// fallbackKey a fallback-source set code; either may be empty. Primary failures of any
// kind fall through to the fallback, which matches by number and then by position.
func (r *CardResolver) Resolve(ctx context.Context, primaryKey, cardNumber, fallbackKey string) (*models.CardRecord, error) {
	if primaryKey == "" && fallbackKey == "" {
		metrics.CardResolutionsTotal.WithLabelValues("no_source").Inc()
		return nil, ErrNoDataSource
	}

	if primaryKey != "" && r.primary != nil {
		cards, err := r.loadSet(ctx, r.primary, primaryKey)
		if err == nil {
			if card := findByNumber(cards, cardNumber); card != nil {
				metrics.CardResolutionsTotal.WithLabelValues("primary").Inc()
				return card, nil
			}
		}
	}

	if fallbackKey != "" && r.fallback != nil {
		cards, err := r.loadSet(ctx, r.fallback, fallbackKey)
		if err == nil {
			if card := findByNumber(cards, cardNumber); card != nil {
				metrics.CardResolutionsTotal.WithLabelValues("fallback").Inc()
				return card, nil
			}
			if card := findByPosition(cards, cardNumber); card != nil {
				metrics.CardResolutionsTotal.WithLabelValues("positional").Inc()
				return card, nil
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	metrics.CardResolutionsTotal.WithLabelValues("not_found").Inc()
	return nil, &CardNotFoundError{PrimaryKey: primaryKey, FallbackKey: fallbackKey, Number: cardNumber}
}

// loadSet returns the cached set or fetches it. Concurrent callers for the same key share
// one fetch. Failures are not cached.
func (r *CardResolver) loadSet(ctx context.Context, source CardSource, id string) ([]models.CardRecord, error) {
	key := source.Name() + ":" + id
	if cards, ok := r.cached(key); ok {
		metrics.ResolverCacheHits.WithLabelValues(source.Name()).Inc()
		return cards, nil
	}
	metrics.ResolverCacheMisses.WithLabelValues(source.Name()).Inc()

	// The shared fetch outlives any single caller's cancellation.
	fetchCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		// A fetch for this key may have finished between the cache check and DoChan.
		if cards, ok := r.cached(key); ok {
			return cards, nil
		}

		start := time.Now()
		cards, err := source.FetchSet(fetchCtx, id)
		metrics.SourceFetchDuration.WithLabelValues(source.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.SourceFetchesTotal.WithLabelValues(source.Name(), "error").Inc()
			return nil, err
		}
		metrics.SourceFetchesTotal.WithLabelValues(source.Name(), "success").Inc()

		r.mu.Lock()
		r.cache[key] = cards
		r.mu.Unlock()
		return cards, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.CardRecord), nil
	}
}

func (r *CardResolver) cached(key string) ([]models.CardRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cards, ok := r.cache[key]
	return cards, ok
}

// CachedSets reports how many sets are held in memory.
func (r *CardResolver) CachedSets() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// findByNumber matches the number field as a string, so "95" does not match "095".
func findByNumber(cards []models.CardRecord, number string) *models.CardRecord {
	for i := range cards {
		if cards[i].Number == number {
			card := cards[i]
			return &card
		}
	}
	return nil
}

var leadingDigitsRe = regexp.MustCompile(`^\d+`)

// findByPosition treats the set as ordered from card 1 and fills in the number. Only the
// leading digits count, so variant "95a" sits at position 95.
func findByPosition(cards []models.CardRecord, number string) *models.CardRecord {
	n, err := strconv.Atoi(leadingDigitsRe.FindString(number))
	if err != nil || n < 1 || n > len(cards) {
		return nil
	}
	card := cards[n-1]
	card.Number = number
	return &card
}
