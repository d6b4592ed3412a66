package services

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

const munkidoriPage = `<!DOCTYPE html>
<html>
<head><title>Munkidori - Twilight Masquerade (TWM) #95 - Limitless</title></head>
<body>
<img class="card shadow" src="https://cdn.example.com/tpci/TWM/TWM_095_R_EN_LG.png">
<div class="card-text">
<p class="card-text-title">
Munkidori
- Darkness - 110 HP
</p>
<p class="card-text-type">Pokémon - Basic</p>
<div class="card-text-ability">
<p class="card-text-ability-info">Ability:</p>
Adrena-Power
<p class="card-text-ability-effect">Once during your turn, if this Pokémon has any [D] Energy attached, you may move up to 3 damage counters from 1 of your Pokémon to 1 of your opponent's Pokémon.</p>
</div>
<div class="card-text-attack">
<p class="card-text-attack-info">
<span class="ptcg-symbol">DCC</span>
Dirty Headbutt 190
</p>
<p class="card-text-attack-effect">During your next turn, this Pokémon can't use Dirty Headbutt.</p>
</div>
<div class="card-text-wrr">
Weakness: Fighting<br>
Resistance: none<br>
Retreat: 1
</div>
<div class="card-text-artist">Illustrated by Jerky</div>
</div>
</body>
</html>`

const dusknoirPage = `<html>
<head><title>Dusclops - Shrouded Fable (SFA) #19 - Limitless</title></head>
<body>
<p class="card-text-title">
Dusclops
- Psychic - 90 HP
</p>
<p class="card-text-type">Pokémon - Stage 1 - Evolves from <a href="/cards?q=name:Duskull">Duskull</a></p>
<div class="card-text-attack">
<p class="card-text-attack-info">
<span class="ptcg-symbol">P</span>
Will-O-Wisp 50
</p>
</div>
<div class="card-text-wrr">
Weakness: Darkness<br>
Resistance: Fighting<br>
Retreat: 2
</div>
</body>
</html>`

const ionoPage = `<html>
<head><title>Iono - Paldea Evolved (PAL) #185 - Limitless</title></head>
<body>
<p class="card-text-title">Iono</p>
<p class="card-text-type">Trainer - Supporter</p>
<div class="card-text-section">
Buy singles on TCGplayer for the best prices today
Each player shuffles their hand and puts it on the bottom of their deck. If either player put any cards on the bottom of their deck in this way, each player draws a card for each of their remaining Prize cards.
</div>
<div class="card-text-artist">Illustrated by kirisAki</div>
</body>
</html>`

const jetEnergyPage = `<html>
<head><title>Jet Energy - Paldea Evolved (PAL) #190 - Limitless</title></head>
<body>
<p class="card-text-title">Jet Energy</p>
<p class="card-text-type">Energy - Special Energy</p>
<div class="card-text-section">
As long as this card is attached to a Pokémon, it provides [C] Energy.
When you attach this card from your hand to 1 of your Benched Pokémon, switch that Pokémon with your Active Pokémon.
</div>
<div class="card-text-artist">Illustrated by 5ban Graphics</div>
</body>
</html>`

const notFoundPage = `<html>
<head><title>Page not found - Limitless</title></head>
<body><p>The page you requested does not exist.</p></body>
</html>`

func TestParseCardPage_Pokemon(t *testing.T) {
	card, err := ParseCardPage(strings.NewReader(munkidoriPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if card.Name != "Munkidori" {
		t.Errorf("Name = %q, want Munkidori", card.Name)
	}
	if card.Supertype != models.SupertypePokemon {
		t.Errorf("Supertype = %q, want Pokémon", card.Supertype)
	}
	if !reflect.DeepEqual(card.Subtypes, []string{"Basic"}) {
		t.Errorf("Subtypes = %v, want [Basic]", card.Subtypes)
	}
	if card.HP != 110 || card.Type != "Darkness" {
		t.Errorf("Type/HP = %q/%d, want Darkness/110", card.Type, card.HP)
	}
	if card.EvolvesFrom != "" {
		t.Errorf("EvolvesFrom = %q, want empty for a Basic", card.EvolvesFrom)
	}

	if len(card.Abilities) != 1 {
		t.Fatalf("expected 1 ability, got %+v", card.Abilities)
	}
	ability := card.Abilities[0]
	if ability.Name != "Adrena-Power" || ability.Type != "Ability" {
		t.Errorf("unexpected ability: %+v", ability)
	}
	if !strings.Contains(ability.Text, "has any Darkness Energy attached") {
		t.Errorf("ability text should have decoded energy symbols, got %q", ability.Text)
	}

	if len(card.Attacks) != 1 {
		t.Fatalf("expected 1 attack, got %+v", card.Attacks)
	}
	attack := card.Attacks[0]
	if attack.Name != "Dirty Headbutt" || attack.Damage != "190" {
		t.Errorf("unexpected attack: %+v", attack)
	}
	if !reflect.DeepEqual(attack.Cost, []string{"Darkness", "Colorless", "Colorless"}) {
		t.Errorf("attack cost = %v", attack.Cost)
	}
	if attack.Text != "During your next turn, this Pokémon can't use Dirty Headbutt." {
		t.Errorf("attack text = %q", attack.Text)
	}

	if !reflect.DeepEqual(card.Weaknesses, []models.TypedModifier{{Type: "Fighting", Value: "×2"}}) {
		t.Errorf("Weaknesses = %+v", card.Weaknesses)
	}
	if card.Resistances != nil {
		t.Errorf("Resistances = %+v, want none", card.Resistances)
	}
	if !reflect.DeepEqual(card.RetreatCost, []string{"Colorless"}) {
		t.Errorf("RetreatCost = %v", card.RetreatCost)
	}
	if card.Rules != nil {
		t.Errorf("Pokémon should have no rules, got %v", card.Rules)
	}
	if card.ImageURL != "https://cdn.example.com/tpci/TWM/TWM_095_R_EN_LG.png" {
		t.Errorf("ImageURL = %q", card.ImageURL)
	}
}

func TestParseCardPage_StageOne(t *testing.T) {
	card, err := ParseCardPage(strings.NewReader(dusknoirPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(card.Subtypes, []string{"Stage 1"}) {
		t.Errorf("Subtypes = %v, want [Stage 1]", card.Subtypes)
	}
	if card.EvolvesFrom != "Duskull" {
		t.Errorf("EvolvesFrom = %q, want Duskull", card.EvolvesFrom)
	}
	if len(card.Attacks) != 1 || card.Attacks[0].Name != "Will-O-Wisp" || card.Attacks[0].Damage != "50" {
		t.Errorf("unexpected attacks: %+v", card.Attacks)
	}
	if card.Attacks[0].Text != "" {
		t.Errorf("attack without effect text should have empty text, got %q", card.Attacks[0].Text)
	}
	if !reflect.DeepEqual(card.Resistances, []models.TypedModifier{{Type: "Fighting", Value: "-30"}}) {
		t.Errorf("Resistances = %+v", card.Resistances)
	}
	if len(card.RetreatCost) != 2 {
		t.Errorf("RetreatCost = %v, want 2 Colorless", card.RetreatCost)
	}
}

func TestParseCardPage_Trainer(t *testing.T) {
	card, err := ParseCardPage(strings.NewReader(ionoPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.Supertype != models.SupertypeTrainer {
		t.Errorf("Supertype = %q, want Trainer", card.Supertype)
	}
	if !reflect.DeepEqual(card.Subtypes, []string{"Supporter"}) {
		t.Errorf("Subtypes = %v, want [Supporter]", card.Subtypes)
	}
	if card.HP != 0 || card.Type != "" {
		t.Errorf("trainer should have no type or HP, got %q/%d", card.Type, card.HP)
	}
	if len(card.Rules) != 2 {
		t.Fatalf("expected card text plus supporter rule, got %v", card.Rules)
	}
	if !strings.HasPrefix(card.Rules[0], "Each player shuffles their hand") {
		t.Errorf("Rules[0] = %q", card.Rules[0])
	}
	if card.Rules[1] != "You may play only 1 Supporter card during your turn." {
		t.Errorf("Rules[1] = %q", card.Rules[1])
	}
}

func TestParseCardPage_SpecialEnergy(t *testing.T) {
	card, err := ParseCardPage(strings.NewReader(jetEnergyPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.Name != "Jet Energy" {
		t.Errorf("Name = %q", card.Name)
	}
	if card.Supertype != models.SupertypeEnergy {
		t.Errorf("Supertype = %q, want Energy", card.Supertype)
	}
	if !reflect.DeepEqual(card.Subtypes, []string{"Special"}) {
		t.Errorf("Subtypes = %v, want [Special]", card.Subtypes)
	}
	want := []string{"As long as this card is attached to a Pokémon, it provides Colorless Energy."}
	if !reflect.DeepEqual(card.Rules, want) {
		t.Errorf("Rules = %v, want %v", card.Rules, want)
	}
}

func TestParseCardPage_NotFound(t *testing.T) {
	_, err := ParseCardPage(strings.NewReader(notFoundPage))
	if !errors.Is(err, ErrCardPageNotFound) {
		t.Errorf("expected ErrCardPageNotFound, got %v", err)
	}
}

func TestIsNotFoundTitle(t *testing.T) {
	tests := []struct {
		title    string
		expected bool
	}{
		{"Page not found - Limitless", true},
		{"404 - Limitless", true},
		{"Munkidori - Twilight Masquerade (TWM) #95 - Limitless", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isNotFoundTitle(tt.title); got != tt.expected {
			t.Errorf("isNotFoundTitle(%q) = %v, want %v", tt.title, got, tt.expected)
		}
	}
}

func TestExtractCardName(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Munkidori - Twilight Masquerade (TWM) #95 - Limitless", "Munkidori"},
		{"Sinistcha ex - Twilight Masquerade", "Sinistcha ex"},
		{"NoHyphen", "NoHyphen"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extractCardName(tt.title); got != tt.expected {
			t.Errorf("extractCardName(%q) = %q, want %q", tt.title, got, tt.expected)
		}
	}
}

func TestExtractTypeAndHP(t *testing.T) {
	tests := []struct {
		header string
		typ    string
		hp     int
	}{
		{"Munkidori - Darkness - 110 HP", "Darkness", 110},
		{"Charizard ex -Fire- 330 HP", "Fire", 330},
		{"Iono", "", 0},
	}
	for _, tt := range tests {
		typ, hp := extractTypeAndHP(tt.header)
		if typ != tt.typ || hp != tt.hp {
			t.Errorf("extractTypeAndHP(%q) = %q, %d; want %q, %d", tt.header, typ, hp, tt.typ, tt.hp)
		}
	}
}

func TestDetectSupertypeAndSubtypes(t *testing.T) {
	tests := []struct {
		stage     string
		supertype models.Supertype
		subtype   string
	}{
		{"Pokémon - Basic", models.SupertypePokemon, "Basic"},
		{"Pokémon - Stage 2 - Evolves from Kirlia", models.SupertypePokemon, "Stage 2"},
		{"Trainer - Item", models.SupertypeTrainer, "Item"},
		{"Trainer - Stadium", models.SupertypeTrainer, "Stadium"},
		{"Energy - Basic Energy", models.SupertypeEnergy, "Basic"},
		{"Energy - Special Energy", models.SupertypeEnergy, "Special"},
		{"", models.SupertypePokemon, ""},
	}
	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			supertype := detectSupertype(tt.stage)
			if supertype != tt.supertype {
				t.Errorf("detectSupertype(%q) = %q, want %q", tt.stage, supertype, tt.supertype)
			}
			var subtype string
			switch supertype {
			case models.SupertypePokemon:
				subtype = detectStageSubtype(tt.stage)
			case models.SupertypeTrainer:
				subtype = detectTrainerSubtype(tt.stage)
			case models.SupertypeEnergy:
				subtype = detectEnergySubtype(tt.stage)
			}
			if subtype != tt.subtype {
				t.Errorf("subtype for %q = %q, want %q", tt.stage, subtype, tt.subtype)
			}
		})
	}
}

func TestSpecialFormTags(t *testing.T) {
	tests := []struct {
		name     string
		expected []string
	}{
		{"Munkidori", nil},
		{"Sinistcha ex", []string{"ex"}},
		{"Mega Lucario ex", []string{"MEGA", "ex"}},
		{"M Rayquaza EX", []string{"MEGA", "EX"}},
		{"Pikachu & Zekrom-GX", []string{"GX"}},
		{"Lugia V", []string{"V"}},
		{"Charizard VMAX", []string{"V", "VMAX"}},
		{"Arceus VSTAR", []string{"V", "VSTAR"}},
		// Substring matching is not exclusive; a word starting with V also tags V.
		{"Iron Valiant ex", []string{"ex", "V"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := specialFormTags(tt.name); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("specialFormTags(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestLooksLikeRuleText(t *testing.T) {
	tests := []struct {
		line     string
		expected bool
	}{
		{"Search your deck for a Pokémon and put it into your hand.", true},
		{"lowercase start is not card text at all", false},
		{"Too short", false},
		{"Compare prices on Cardmarket and elsewhere", false},
		{"Regulation Mark G and other legal details", false},
		{"A" + strings.Repeat("a", 299), false},
	}
	for _, tt := range tests {
		if got := looksLikeRuleText(tt.line); got != tt.expected {
			t.Errorf("looksLikeRuleText(%q) = %v, want %v", tt.line, got, tt.expected)
		}
	}
}

func TestExtractRules_StopsAtIllustrator(t *testing.T) {
	lines := []string{
		"Trainer - Item",
		"Illustrated by Somebody",
		"Search your deck for a Pokémon and put it into your hand.",
	}
	rules := extractRules(lines, []string{"Item"})
	want := []string{"You may play any number of Item cards during your turn."}
	if !reflect.DeepEqual(rules, want) {
		t.Errorf("extractRules = %v, want %v", rules, want)
	}
}

func TestExtractRetreatCost(t *testing.T) {
	if got := extractRetreatCost("Weakness: Fire Retreat: 3"); !reflect.DeepEqual(got, []string{"Colorless", "Colorless", "Colorless"}) {
		t.Errorf("extractRetreatCost = %v", got)
	}
	if got := extractRetreatCost("no retreat here"); got != nil {
		t.Errorf("expected nil retreat cost, got %v", got)
	}
	if got := extractRetreatCost("Retreat: 0"); len(got) != 0 {
		t.Errorf("expected empty retreat cost, got %v", got)
	}

	tests := []struct {
		name string
		text string
		want int
	}{
		{"largest accepted", "Retreat: 10", 10},
		{"just over the limit", "Retreat: 11", 0},
		{"oversized", "Retreat: 99999999999999", 0},
		{"overflows int", "Retreat: 99999999999999999999999", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractRetreatCost(tt.text); len(got) != tt.want {
				t.Errorf("extractRetreatCost(%q) has %d entries, want %d", tt.text, len(got), tt.want)
			}
		})
	}
}

func TestParseCardPage_OversizedRetreatIsIgnored(t *testing.T) {
	page := strings.Replace(munkidoriPage, "Retreat: 1", "Retreat: 99999999999999", 1)
	if page == munkidoriPage {
		t.Fatal("fixture no longer contains a retreat line")
	}
	card, err := ParseCardPage(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseCardPage failed: %v", err)
	}
	if card.RetreatCost != nil {
		t.Errorf("RetreatCost = %v, want nil", card.RetreatCost)
	}
	if card.Name != "Munkidori" {
		t.Errorf("other fields should still be extracted, got name %q", card.Name)
	}
}
