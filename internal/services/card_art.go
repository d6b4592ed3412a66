package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/alchemistake/pokeproxy/backend/internal/metrics"
)

const (
	DefaultCardArtCacheSize = 64
	cardArtTimeout          = 30 * time.Second
	maxCardArtBytes         = 5 * 1024 * 1024
)

// CardArt is a downloaded card image.
type CardArt struct {
	Data        []byte
	ContentType string
}

// CardArtCache proxies card images and keeps the most recently used ones in memory.
type CardArtCache struct {
	client *http.Client
	cache  *lru.Cache[string, *CardArt] // image URL -> art
	group  singleflight.Group
}

func NewCardArtCache(size int) (*CardArtCache, error) {
	if size <= 0 {
		size = DefaultCardArtCacheSize
	}
	cache, err := lru.New[string, *CardArt](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create card art cache: %w", err)
	}
	log.Printf("Card art cache: %d entries", size)
	return &CardArtCache{
		client: &http.Client{Timeout: cardArtTimeout},
		cache:  cache,
	}, nil
}

// Get returns the image at imageURL, downloading it on a cache miss.
func (c *CardArtCache) Get(ctx context.Context, imageURL string) (*CardArt, error) {
	if art, ok := c.cache.Get(imageURL); ok {
		metrics.CardArtCacheHits.Inc()
		return art, nil
	}
	metrics.CardArtCacheMisses.Inc()

	// The shared download outlives any single caller's cancellation.
	downloadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(imageURL, func() (any, error) {
		if art, ok := c.cache.Get(imageURL); ok {
			return art, nil
		}
		art, err := c.download(downloadCtx, imageURL)
		if err != nil {
			return nil, err
		}
		c.cache.Add(imageURL, art)
		return art, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*CardArt), nil
	}
}

// Len reports the number of cached images.
func (c *CardArtCache) Len() int {
	return c.cache.Len()
}

func (c *CardArtCache) download(ctx context.Context, imageURL string) (*CardArt, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: "art", URL: imageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: "art", URL: imageURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCardArtBytes))
	if err != nil {
		return nil, &FetchError{Source: "art", URL: imageURL, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &CardArt{Data: data, ContentType: contentType}, nil
}
