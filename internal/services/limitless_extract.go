package services

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
)

const (
	weaknessValue   = "×2"
	resistanceValue = "-30"

	// Lookahead windows (in lines) when collecting ability and attack text.
	abilityTextWindow = 15
	attackTextWindow  = 20

	// No printed card retreats for more than this; anything larger is page noise.
	maxRetreatCost = 10

	evolvesFromSelector = `a[href*="/cards?q=name:"]`
	cardImageSelector   = "img.card"
)

var (
	cardNameRe   = regexp.MustCompile(`^([^-]+)`)
	typeHPRe     = regexp.MustCompile(`-\s*([A-Za-z]+)\s*-\s*(\d+)\s*HP`)
	attackLineRe = regexp.MustCompile(`^([A-Z][A-Za-z\s'\-]+?)(?:\s+(\d+[×+]?))?\s*$`)
	weaknessRe   = regexp.MustCompile(`Weakness:\s*([A-Za-z]+)`)
	resistanceRe = regexp.MustCompile(`Resistance:\s*([A-Za-z]+)`)
	retreatRe    = regexp.MustCompile(`Retreat:\s*(\d+)`)
)

// Subtype line markers that precede the rule text on trainer and energy pages.
var ruleSubtypeMarkers = []string{"Item", "Supporter", "Stadium", "Tool", "Special"}

// Lines containing any of these are site chrome, never card text.
var ruleTextDenylist = []string{
	"TCGplayer",
	"Cardmarket",
	"Database",
	"Regulation Mark",
	"Calculator",
	"Deck Builder",
}

var subtypeRules = map[string]string{
	"Item":      "You may play any number of Item cards during your turn.",
	"Supporter": "You may play only 1 Supporter card during your turn.",
	"Stadium":   "You may play only 1 Stadium card during your turn. Put it next to the Active Spot, and discard it if another Stadium comes into play. A Stadium with the same name can't be played.",
}

// ScrapedCard is what the extractor can recover from a Limitless card page before it is
// normalized into a CardRecord.
type ScrapedCard struct {
	Name        string
	Supertype   models.Supertype
	Subtypes    []string
	HP          int // 0 when the page shows none
	Type        string
	EvolvesFrom string
	Abilities   []models.Ability
	Attacks     []models.Attack
	Weaknesses  []models.TypedModifier
	Resistances []models.TypedModifier
	RetreatCost []string
	Rules       []string
	ImageURL    string
}

// ParseCardPage parses raw card page HTML and extracts the card from it.
func ParseCardPage(r io.Reader) (*ScrapedCard, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse card page: %w", err)
	}
	return ExtractCard(doc)
}

// ExtractCard applies the page heuristics to a parsed card page. Each field is best effort:
// a rule that does not match leaves its field empty. Only a not-found page is an error.
func ExtractCard(doc *goquery.Document) (*ScrapedCard, error) {
	title := doc.Find("title").Text()
	if isNotFoundTitle(title) {
		return nil, ErrCardPageNotFound
	}

	card := &ScrapedCard{
		Name:     extractCardName(title),
		Subtypes: []string{},
	}

	paragraphs := doc.Find("p")
	card.Type, card.HP = extractTypeAndHP(paragraphs.Eq(0).Text())

	stage := paragraphs.Eq(1)
	stageText := stage.Text()
	card.Supertype = detectSupertype(stageText)

	switch card.Supertype {
	case models.SupertypePokemon:
		if subtype := detectStageSubtype(stageText); subtype != "" {
			card.Subtypes = append(card.Subtypes, subtype)
			if subtype != "Basic" {
				card.EvolvesFrom = strings.TrimSpace(stage.Find(evolvesFromSelector).First().Text())
			}
		}
		card.Subtypes = append(card.Subtypes, specialFormTags(card.Name)...)
	case models.SupertypeTrainer:
		if subtype := detectTrainerSubtype(stageText); subtype != "" {
			card.Subtypes = append(card.Subtypes, subtype)
		}
	case models.SupertypeEnergy:
		if subtype := detectEnergySubtype(stageText); subtype != "" {
			card.Subtypes = append(card.Subtypes, subtype)
		}
	}

	bodyText := doc.Find("body").Text()
	lines := strings.Split(bodyText, "\n")

	card.Abilities = extractAbilities(lines)
	card.Attacks = extractAttacks(lines)
	if card.Supertype == models.SupertypeTrainer || card.Supertype == models.SupertypeEnergy {
		card.Rules = extractRules(lines, card.Subtypes)
	}

	pageText := strings.Join(strings.Fields(bodyText), " ")
	card.Weaknesses = extractWeakness(pageText)
	card.Resistances = extractResistance(pageText)
	card.RetreatCost = extractRetreatCost(pageText)

	if src, ok := doc.Find(cardImageSelector).First().Attr("src"); ok {
		card.ImageURL = src
	}

	return card, nil
}

func isNotFoundTitle(title string) bool {
	return strings.Contains(title, "Page not found") || strings.Contains(title, "404")
}

// extractCardName takes the part of the page title before the first hyphen.
func extractCardName(title string) string {
	m := cardNameRe.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractTypeAndHP reads "- Darkness - 110 HP" from the card header.
func extractTypeAndHP(header string) (string, int) {
	m := typeHPRe.FindStringSubmatch(header)
	if m == nil {
		return "", 0
	}
	hp, err := strconv.Atoi(m[2])
	if err != nil {
		return m[1], 0
	}
	return m[1], hp
}

func detectSupertype(stageText string) models.Supertype {
	switch {
	case strings.Contains(stageText, "Pokémon"):
		return models.SupertypePokemon
	case strings.Contains(stageText, "Trainer"):
		return models.SupertypeTrainer
	case strings.Contains(stageText, "Energy"):
		return models.SupertypeEnergy
	default:
		return models.SupertypePokemon
	}
}

func detectStageSubtype(stageText string) string {
	return firstContained(stageText, "Basic", "Stage 1", "Stage 2")
}

func detectTrainerSubtype(stageText string) string {
	return firstContained(stageText, "Item", "Supporter", "Stadium", "Tool")
}

func detectEnergySubtype(stageText string) string {
	return firstContained(stageText, "Special", "Basic")
}

func firstContained(text string, candidates ...string) string {
	for _, c := range candidates {
		if strings.Contains(text, c) {
			return c
		}
	}
	return ""
}

// specialFormTags derives rule-box tags from a Pokémon's name. Tags are not exclusive and
// their order matters: MEGA first, then ex, EX, GX, V, VMAX, VSTAR. "Charizard VMAX"
// therefore yields both V and VMAX.
func specialFormTags(name string) []string {
	var tags []string
	if strings.Contains(name, "Mega ") || strings.Contains(name, "M ") {
		tags = append(tags, "MEGA")
	}
	if strings.Contains(name, " ex") {
		tags = append(tags, "ex")
	}
	if strings.Contains(name, "EX") {
		tags = append(tags, "EX")
	}
	if strings.Contains(name, "GX") {
		tags = append(tags, "GX")
	}
	if strings.Contains(name, " V") {
		tags = append(tags, "V")
	}
	if strings.Contains(name, "VMAX") {
		tags = append(tags, "VMAX")
	}
	if strings.Contains(name, "VSTAR") {
		tags = append(tags, "VSTAR")
	}
	return tags
}

// extractAbilities finds "Ability:" marker lines; the next line is the ability name and the
// following non-blank lines, up to the next marker, cost line or weakness line, its text.
func extractAbilities(lines []string) []models.Ability {
	var abilities []models.Ability
	for i := range lines {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "Ability:") {
			continue
		}
		if i+1 >= len(lines) {
			continue
		}
		name := strings.TrimSpace(lines[i+1])
		if name == "" {
			continue
		}

		var text []string
		for j := i + 2; j < min(i+abilityTextWindow, len(lines)); j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				continue
			}
			if strings.Contains(next, "Ability:") ||
				isEnergyCostLine(next) ||
				strings.Contains(next, "Weakness:") ||
				strings.Contains(next, "Resistance:") {
				break
			}
			text = append(text, next)
		}

		abilities = append(abilities, models.Ability{
			Name: name,
			Text: DecodeInlineSymbols(strings.Join(text, " ")),
			Type: "Ability",
		})
	}
	return abilities
}

// extractAttacks treats every line made only of energy letters as an attack cost; the
// following line carries the attack name and optional damage.
func extractAttacks(lines []string) []models.Attack {
	var attacks []models.Attack
	for i := range lines {
		line := strings.TrimSpace(lines[i])
		if !isEnergyCostLine(line) {
			continue
		}
		var header string
		if i+1 < len(lines) {
			header = strings.TrimSpace(lines[i+1])
		}
		m := attackLineRe.FindStringSubmatch(header)
		if m == nil {
			continue
		}

		var text []string
		for j := i + 2; j < min(i+attackTextWindow, len(lines)); j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				continue
			}
			if strings.Contains(next, "Weakness:") ||
				strings.Contains(next, "Resistance:") ||
				strings.Contains(next, "Retreat:") {
				break
			}
			if isEnergyCostLine(next) && j > i+2 {
				break
			}
			text = append(text, next)
		}

		attack := models.Attack{
			Name:   strings.TrimSpace(m[1]),
			Cost:   ParseCostLetters(line),
			Damage: m[2],
		}
		if joined := strings.Join(text, " "); utf8.RuneCountInString(joined) > 5 {
			attack.Text = DecodeInlineSymbols(joined)
		}
		attacks = append(attacks, attack)
	}
	return attacks
}

// extractRules returns the first prose line after the subtype marker, followed by the
// standard rule sentence for the card's subtype.
func extractRules(lines []string, subtypes []string) []string {
	var rules []string

	foundSubtype := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if isRuleSubtypeMarker(line) {
			foundSubtype = true
			continue
		}
		if !foundSubtype || line == "" {
			continue
		}
		if strings.Contains(line, "Illustrated by") {
			break
		}
		if looksLikeRuleText(line) {
			rules = append(rules, DecodeInlineSymbols(line))
			break
		}
	}

	for _, subtype := range []string{"Item", "Supporter", "Stadium"} {
		if containsString(subtypes, subtype) {
			rules = append(rules, subtypeRules[subtype])
			break
		}
	}
	return rules
}

func isRuleSubtypeMarker(line string) bool {
	for _, marker := range ruleSubtypeMarkers {
		if line == marker || strings.Contains(line, "- "+marker) {
			return true
		}
	}
	return false
}

func looksLikeRuleText(line string) bool {
	if line == "" || line[0] < 'A' || line[0] > 'Z' {
		return false
	}
	n := utf8.RuneCountInString(line)
	if n < 20 || n >= 300 {
		return false
	}
	for _, deny := range ruleTextDenylist {
		if strings.Contains(line, deny) {
			return false
		}
	}
	return true
}

func extractWeakness(pageText string) []models.TypedModifier {
	return extractModifier(weaknessRe, pageText, weaknessValue)
}

func extractResistance(pageText string) []models.TypedModifier {
	return extractModifier(resistanceRe, pageText, resistanceValue)
}

func extractModifier(re *regexp.Regexp, pageText, value string) []models.TypedModifier {
	m := re.FindStringSubmatch(pageText)
	if m == nil || m[1] == "none" || m[1] == "None" {
		return nil
	}
	return []models.TypedModifier{{Type: m[1], Value: value}}
}

func extractRetreatCost(pageText string) []string {
	m := retreatRe.FindStringSubmatch(pageText)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > maxRetreatCost {
		return nil
	}
	cost := make([]string, n)
	for i := range cost {
		cost[i] = "Colorless"
	}
	return cost
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
