package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

// A legal deck holds 60 cards, so no single line can ask for more.
const maxCardCount = 60

// Decklist line formats, tried in order:
//
//	1 CEC/44
//	1 CEC 44
//	4 Sinistcha ex TWM 23   (count optional)
var (
	slashLineRe   = regexp.MustCompile(`^(\d+)\s+([A-Za-z]{2,})/(\d+[a-z]?)$`)
	codeOnlyRe    = regexp.MustCompile(`^(\d+)\s+([A-Z]{2,})\s+(\d+[a-z]?)$`)
	namedLineRe   = regexp.MustCompile(`^(?:(\d+)\s+)?(.+?)\s+([A-Za-z]{2,})\s+(\d+[a-z]?)$`)
	replacementRe = regexp.MustCompile(`(?i)([A-Z]+)[\s/]*(\d+[a-z]?)`)
)

// ParseDecklistLine parses a single decklist line. It returns nil for blank lines,
// comments and anything it does not recognize; callers skip those lines.
func ParseDecklistLine(line string) *models.CardReference {
	ref, err := parseDecklistLine(line)
	if err != nil {
		return nil
	}
	return ref
}

// parseDecklistLine returns (nil, nil) for lines that are intentionally empty and a
// *ParseError for lines that look like content but match no format.
func parseDecklistLine(line string) (*models.CardReference, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	var countStr, name, setCode, number string
	if m := slashLineRe.FindStringSubmatch(trimmed); m != nil {
		countStr, setCode, number = m[1], m[2], m[3]
	} else if m := codeOnlyRe.FindStringSubmatch(trimmed); m != nil {
		countStr, setCode, number = m[1], m[2], m[3]
	} else if m := namedLineRe.FindStringSubmatch(trimmed); m != nil {
		countStr, name, setCode, number = m[1], m[2], m[3], m[4]
	} else {
		return nil, &ParseError{Line: trimmed}
	}

	count := 1
	if countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil || n <= 0 || n > maxCardCount {
			return nil, &ParseError{Line: trimmed}
		}
		count = n
	}

	return &models.CardReference{
		Count:      count,
		Name:       strings.TrimSpace(name),
		SetCode:    strings.ToUpper(setCode),
		CardNumber: number,
	}, nil
}

// ParseDecklist parses every line of a decklist, dropping lines that do not parse.
func ParseDecklist(text string) []models.CardReference {
	lines := strings.Split(text, "\n")
	refs := make([]models.CardReference, 0, len(lines))
	for _, line := range lines {
		if ref := ParseDecklistLine(line); ref != nil {
			refs = append(refs, *ref)
		}
	}
	return refs
}

// ParseReplacement reads a user-supplied replacement printing such as "SFA 72",
// "SFA/72" or "SFA72".
func ParseReplacement(s string) (setCode, number string, ok bool) {
	m := replacementRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", false
	}
	return strings.ToUpper(m[1]), m[2], true
}

// FormatDecklistLine renders a reference back into the "4 Name SET NUM" form.
func FormatDecklistLine(ref models.CardReference) string {
	if ref.Name == "" {
		return fmt.Sprintf("%d %s %s", ref.Count, ref.SetCode, ref.CardNumber)
	}
	return fmt.Sprintf("%d %s %s %s", ref.Count, ref.Name, ref.SetCode, ref.CardNumber)
}
