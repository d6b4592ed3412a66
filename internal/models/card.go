package models

type Supertype string

const (
	SupertypePokemon Supertype = "Pokémon"
	SupertypeTrainer Supertype = "Trainer"
	SupertypeEnergy  Supertype = "Energy"
)

// CardRecord is the canonical card shape shared by every data source. Field names follow
// the pokemon-tcg-data JSON files so those files decode into it directly.
type CardRecord struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Supertype   Supertype       `json:"supertype"`
	Subtypes    []string        `json:"subtypes"`
	HP          string          `json:"hp,omitempty"`
	Types       []string        `json:"types,omitempty"`
	EvolvesFrom string          `json:"evolvesFrom,omitempty"`
	EvolvesTo   []string        `json:"evolvesTo,omitempty"`
	Rules       []string        `json:"rules,omitempty"`
	Abilities   []Ability       `json:"abilities,omitempty"`
	Attacks     []Attack        `json:"attacks,omitempty"`
	Weaknesses  []TypedModifier `json:"weaknesses,omitempty"`
	Resistances []TypedModifier `json:"resistances,omitempty"`
	RetreatCost []string        `json:"retreatCost,omitempty"`
	Number      string          `json:"number,omitempty"`
	Artist      string          `json:"artist,omitempty"`
	Rarity      string          `json:"rarity,omitempty"`
	FlavorText  string          `json:"flavorText,omitempty"`
	Images      *CardImages     `json:"images,omitempty"`
}

type Ability struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Type string `json:"type"` // always "Ability" for scraped cards
}

type Attack struct {
	Name   string   `json:"name"`
	Cost   []string `json:"cost"`
	Damage string   `json:"damage"`
	Text   string   `json:"text"`
}

// TypedModifier is a weakness or resistance entry, e.g. {Fire ×2}.
type TypedModifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type CardImages struct {
	Small string `json:"small,omitempty"`
	Large string `json:"large,omitempty"`
}

// LargeImageURL returns the art URL used for rendering, or "" when the record has none.
func (c *CardRecord) LargeImageURL() string {
	if c.Images == nil {
		return ""
	}
	return c.Images.Large
}

// IsBasicEnergy reports whether the card is a basic energy, which decklists often omit
// from printing.
func (c *CardRecord) IsBasicEnergy() bool {
	if c.Supertype != SupertypeEnergy {
		return false
	}
	for _, s := range c.Subtypes {
		if s == "Basic" {
			return true
		}
	}
	return false
}
