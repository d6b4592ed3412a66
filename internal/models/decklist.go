package models

// CardReference is one parsed decklist line.
type CardReference struct {
	Count      int    `json:"count"`
	Name       string `json:"name"`
	SetCode    string `json:"set_code"`
	CardNumber string `json:"card_number"`
}

// Key identifies the printing independent of count and name, e.g. "TWM/95".
func (r CardReference) Key() string {
	return r.SetCode + "/" + r.CardNumber
}

// ResolvedCard is a card returned for rendering along with the reference it came from.
type ResolvedCard struct {
	CardRecord
	SetCode string `json:"_setCode"`
}

type DecklistRequest struct {
	Decklist        string            `json:"decklist" binding:"required"`
	Replacements    map[string]string `json:"replacements"` // "SET/NUM" -> "SFA 72"
	HideBasicEnergy bool              `json:"hide_basic_energy"`
}

type DecklistResult struct {
	Cards    []ResolvedCard `json:"cards"`
	Errors   []string       `json:"errors,omitempty"`
	Decklist string         `json:"decklist"` // rewritten with replacements applied
}

// SetSummary is one entry of the primary source's set index.
type SetSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Series      string `json:"series"`
	PtcgoCode   string `json:"ptcgoCode"`
	ReleaseDate string `json:"releaseDate"`
	Total       int    `json:"total"`
}
