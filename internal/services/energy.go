package services

import (
	"regexp"
	"strings"
)

// energyTypes maps the single-letter energy codes used by card databases to type names.
var energyTypes = map[rune]string{
	'G': "Grass",
	'R': "Fire",
	'W': "Water",
	'L': "Lightning",
	'P': "Psychic",
	'F': "Fighting",
	'D': "Darkness",
	'M': "Metal",
	'C': "Colorless",
	'N': "Dragon",
	'Y': "Fairy",
}

var (
	inlineEnergyRe = regexp.MustCompile(`\[([GRWLPFDMCNY])\]`)
	energyCostRe   = regexp.MustCompile(`^[GRWLPFDMCNY]+$`)
)

// DecodeInlineSymbols replaces bracketed energy codes such as "[G]" with their type name.
func DecodeInlineSymbols(text string) string {
	if text == "" || !strings.Contains(text, "[") {
		return text
	}
	return inlineEnergyRe.ReplaceAllStringFunc(text, func(m string) string {
		if name, ok := energyTypes[rune(m[1])]; ok {
			return name
		}
		return m
	})
}

// ParseCostLetters maps every character of a cost string to a type name.
// Unknown characters count as Colorless, so the result always has one entry per rune.
func ParseCostLetters(code string) []string {
	code = strings.TrimSpace(code)
	if code == "" {
		return []string{}
	}
	cost := make([]string, 0, len(code))
	for _, r := range code {
		name, ok := energyTypes[r]
		if !ok {
			name = "Colorless"
		}
		cost = append(cost, name)
	}
	return cost
}

// EnergyLetter is the reverse of the code table: "Fire" -> "R".
func EnergyLetter(typeName string) (string, bool) {
	for letter, name := range energyTypes {
		if strings.EqualFold(name, typeName) {
			return string(letter), true
		}
	}
	return "", false
}

func isEnergyCostLine(line string) bool {
	return energyCostRe.MatchString(line)
}
