package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/alchemistake/pokeproxy/backend/internal/metrics"
	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

const (
	limitlessBaseURL        = "https://limitlesstcg.com"
	limitlessDefaultTimeout = 30 * time.Second

	// A set is assumed to be numbered contiguously from 1; this many misses in a row
	// means the scraper has run past its last card.
	maxConsecutiveMisses = 3

	DefaultScrapeInterval = 5 * time.Millisecond
)

// LimitlessService scrapes card pages from the Limitless TCG card database.
type LimitlessService struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// ScrapeSetResult summarizes one pass over a set.
type ScrapeSetResult struct {
	Region    string
	SetCode   string
	Cards     []models.CardRecord // cards fetched during this pass, ascending by number
	Succeeded int
	Skipped   int // already persisted, not re-fetched
	Failed    int
}

// ScrapeRegionResult summarizes a discover-and-scrape pass over a whole region.
type ScrapeRegionResult struct {
	Region    string
	SetCodes  []string
	Succeeded int
	Failed    int
}

// NewLimitlessService creates a scraper against baseURL (empty = limitlesstcg.com).
// interval is the minimum spacing between page requests; <= 0 disables the delay.
func NewLimitlessService(baseURL string, interval time.Duration) *LimitlessService {
	if baseURL == "" {
		baseURL = limitlessBaseURL
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &LimitlessService{
		client: &http.Client{
			Timeout: limitlessDefaultTimeout,
		},
		baseURL: baseURL,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (s *LimitlessService) cardURL(region, setCode, number string) string {
	if region == "" || region == "en" {
		return fmt.Sprintf("%s/cards/%s/%s", s.baseURL, setCode, number)
	}
	return fmt.Sprintf("%s/cards/%s/%s/%s", s.baseURL, region, setCode, number)
}

// fetchDocument downloads and parses a page. A 404 status maps to ErrCardPageNotFound.
func (s *LimitlessService) fetchDocument(ctx context.Context, reqURL string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: "limitless", URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrCardPageNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: "limitless", URL: reqURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", reqURL, err)
	}
	return doc, nil
}

// ScrapeCard fetches one card page and returns the normalized record.
func (s *LimitlessService) ScrapeCard(ctx context.Context, region, setCode, number string) (*models.CardRecord, error) {
	doc, err := s.fetchDocument(ctx, s.cardURL(region, setCode, number))
	if err != nil {
		return nil, err
	}
	scraped, err := ExtractCard(doc)
	if err != nil {
		return nil, err
	}
	card := NormalizeScrapedCard(scraped)
	card.Number = number
	return &card, nil
}

// DiscoverSets lists every set code linked from a region's card index page.
func (s *LimitlessService) DiscoverSets(ctx context.Context, region string) ([]string, error) {
	reqURL := fmt.Sprintf("%s/cards/%s", s.baseURL, region)
	doc, err := s.fetchDocument(ctx, reqURL)
	if err != nil {
		if errors.Is(err, ErrCardPageNotFound) {
			return nil, &FetchError{Source: "limitless", URL: reqURL, StatusCode: http.StatusNotFound}
		}
		return nil, err
	}

	setLinkRe := regexp.MustCompile(`^/cards/` + regexp.QuoteMeta(region) + `/([A-Z0-9]{1,4})$`)
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if m := setLinkRe.FindStringSubmatch(href); m != nil {
			seen[m[1]] = struct{}{}
		}
	})

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

// ScrapeSet walks card numbers 1, 2, 3, ... until maxConsecutiveMisses numbers in a row
// fail. When store is non-nil, scraped cards are persisted and already persisted numbers are
// skipped without a request, so an interrupted scrape can be resumed.
func (s *LimitlessService) ScrapeSet(ctx context.Context, region, setCode string, store *CardStore) (*ScrapeSetResult, error) {
	start := time.Now()
	defer func() {
		metrics.ScrapeSetDuration.Observe(time.Since(start).Seconds())
	}()

	result := &ScrapeSetResult{Region: region, SetCode: setCode}
	consecutiveMisses := 0

	for n := 1; consecutiveMisses < maxConsecutiveMisses; n++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		number := strconv.Itoa(n)

		if store != nil && store.Exists(region, setCode, number) {
			result.Skipped++
			consecutiveMisses = 0
			metrics.ScrapedCardsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		card, err := s.ScrapeCard(ctx, region, setCode, number)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failed++
			consecutiveMisses++
			if errors.Is(err, ErrCardPageNotFound) {
				log.Printf("%s/%s: not found", setCode, number)
				metrics.ScrapedCardsTotal.WithLabelValues("not_found").Inc()
			} else {
				log.Printf("Warning: failed to scrape card %s/%s: %v", setCode, number, err)
				metrics.ScrapedCardsTotal.WithLabelValues("failed").Inc()
			}
			continue
		}

		log.Printf("%s/%s: %s", setCode, number, card.Name)
		result.Cards = append(result.Cards, *card)
		if store != nil {
			if err := store.Save(region, setCode, number, *card); err != nil {
				log.Printf("Warning: failed to persist %s/%s: %v", setCode, number, err)
			}
		}
		result.Succeeded++
		consecutiveMisses = 0
		metrics.ScrapedCardsTotal.WithLabelValues("success").Inc()
	}

	log.Printf("Scraping %s complete: %d successful, %d already saved, %d failed",
		setCode, result.Succeeded, result.Skipped, result.Failed)
	return result, nil
}

// ScrapeRegion discovers every set of a region and scrapes each one in turn. A set that
// fails does not stop the others. runs may be nil.
func (s *LimitlessService) ScrapeRegion(ctx context.Context, region string, store *CardStore, runs *ScrapeRunService) (*ScrapeRegionResult, error) {
	codes, err := s.DiscoverSets(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to discover %s sets: %w", region, err)
	}
	log.Printf("Found %d %s set codes to scrape", len(codes), region)

	result := &ScrapeRegionResult{Region: region, SetCodes: codes}
	for i, code := range codes {
		log.Printf("[%d/%d] Scraping %s", i+1, len(codes), code)
		_, err := runs.Track(region, code, func() (*ScrapeSetResult, error) {
			return s.ScrapeSet(ctx, region, code, store)
		})
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Printf("Warning: failed to scrape %s: %v", code, err)
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	return result, nil
}
