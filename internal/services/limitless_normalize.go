package services

import (
	"strconv"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

// NormalizeScrapedCard maps an extracted page into the CardRecord schema used by the
// pokemon-tcg-data files. Empty collections are left nil so they are omitted from JSON.
func NormalizeScrapedCard(sc *ScrapedCard) models.CardRecord {
	card := models.CardRecord{
		Name:        sc.Name,
		Supertype:   sc.Supertype,
		Subtypes:    sc.Subtypes,
		EvolvesFrom: sc.EvolvesFrom,
	}
	if card.Supertype == "" {
		card.Supertype = models.SupertypePokemon
	}
	if card.Subtypes == nil {
		card.Subtypes = []string{}
	}

	if sc.HP > 0 {
		card.HP = strconv.Itoa(sc.HP)
	}
	if sc.Type != "" {
		card.Types = []string{sc.Type}
	}
	if len(sc.Abilities) > 0 {
		card.Abilities = sc.Abilities
	}
	if len(sc.Attacks) > 0 {
		card.Attacks = sc.Attacks
	}
	if len(sc.Weaknesses) > 0 {
		card.Weaknesses = sc.Weaknesses
	}
	if len(sc.Resistances) > 0 {
		card.Resistances = sc.Resistances
	}
	if len(sc.RetreatCost) > 0 {
		card.RetreatCost = sc.RetreatCost
	}
	if len(sc.Rules) > 0 {
		card.Rules = sc.Rules
	}
	if sc.ImageURL != "" {
		card.Images = &models.CardImages{Large: sc.ImageURL}
	}

	return card
}
