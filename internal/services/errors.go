package services

import (
	"errors"
	"fmt"
)

var (
	// ErrCardPageNotFound is returned by the extractor when the scraped page is a 404 page.
	// SetScraper treats it as the end-of-set signal rather than a hard failure.
	ErrCardPageNotFound = errors.New("card not found (404)")

	// ErrNoDataSource means the caller supplied neither a primary nor a fallback key.
	ErrNoDataSource = errors.New("no data source available for card")

	ErrEmptyDecklist = errors.New(`no valid cards found in decklist. Format: "Munkidori TWM 95" or "4 Munkidori TWM 95"`)
)

// ParseError is returned for a decklist line that matches none of the accepted formats.
type ParseError struct {
	Line string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized decklist line %q", e.Line)
}

// FetchError is a transport-level failure reaching a data source.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: failed to fetch %s: %v", e.Source, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %s returned status %d", e.Source, e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CardNotFoundError means neither source had the requested card number.
type CardNotFoundError struct {
	PrimaryKey  string
	FallbackKey string
	Number      string
}

func (e *CardNotFoundError) Error() string {
	switch {
	case e.PrimaryKey != "" && e.FallbackKey != "":
		return fmt.Sprintf("card number %s not found in set %s or local set %s", e.Number, e.PrimaryKey, e.FallbackKey)
	case e.PrimaryKey != "":
		return fmt.Sprintf("card number %s not found in set %s", e.Number, e.PrimaryKey)
	default:
		return fmt.Sprintf("card number %s not found in local set %s", e.Number, e.FallbackKey)
	}
}
