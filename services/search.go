package services

import (
	"sort"
	"strings"

	"lablinc/models"

	"github.com/fiam/gounidecode/unidecode"
	"github.com/schollz/closestmatch"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

func normalizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ToLower(unidecode.Unidecode(input))
	return input
}

func createMatcher(keywords []string) *closestmatch.ClosestMatch {
	return closestmatch.New(keywords, []int{2, 3})
}

// calculateSimilarity returns 1 for identical strings and approaches 0 as
// the edit distance grows.
func calculateSimilarity(a, b string) float64 {
	distance := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

func uniqueValues(instruments []models.Instrument, field func(models.Instrument) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, inst := range instruments {
		v := normalizeInput(field(inst))
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

type scoredInstrument struct {
	instrument models.Instrument
	score      int
}

// rankInstruments scores instruments against a free-text query and drops
// those that do not match at all. Higher scores come first.
func rankInstruments(query string, instruments []models.Instrument) []models.Instrument {
	q := normalizeInput(query)
	if q == "" {
		return instruments
	}

	var categoryMatch, cityMatch string
	if categories := uniqueValues(instruments, func(i models.Instrument) string { return i.Category }); len(categories) > 0 {
		categoryMatch = createMatcher(categories).Closest(q)
	}
	if cities := uniqueValues(instruments, func(i models.Instrument) string { return i.City }); len(cities) > 0 {
		cityMatch = createMatcher(cities).Closest(q)
	}
	words := strings.Fields(q)

	var scored []scoredInstrument
	for _, inst := range instruments {
		score := 0
		name := normalizeInput(inst.Name)
		if strings.Contains(name, q) {
			score += 30
		}
		for _, w := range words {
			for _, part := range strings.Fields(name) {
				if calculateSimilarity(w, part) >= 0.75 {
					score += 10
					break
				}
			}
		}
		category := normalizeInput(inst.Category)
		if category != "" && (strings.Contains(q, category) || (categoryMatch == category && calculateSimilarity(q, category) >= 0.6)) {
			score += 15
		}
		city := normalizeInput(inst.City)
		if city != "" && (strings.Contains(q, city) || (cityMatch == city && calculateSimilarity(q, city) >= 0.6)) {
			score += 10
		}
		if m := normalizeInput(inst.Manufacturer); m != "" && strings.Contains(q, m) {
			score += 5
		}
		if score > 0 {
			scored = append(scored, scoredInstrument{instrument: inst, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	out := make([]models.Instrument, len(scored))
	for i, s := range scored {
		out[i] = s.instrument
	}
	return out
}
