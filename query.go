package poster

import (
	"fmt"
	"strings"
)

// stopWords are excluded when distilling a search query from the event
// name. Mixed Spanish/English because that is what the event names are.
var stopWords = map[string]struct{}{
	"networking":   {},
	"event":        {},
	"evento":       {},
	"professional": {},
	"the":          {},
	"a":            {},
	"an":           {},
	"in":           {},
	"at":           {},
	"on":           {},
	"with":         {},
	"de":           {},
	"en":           {},
	"el":           {},
	"la":           {},
}

// EnhanceQuery distills a background search query from the event name by
// keeping its meaningful words. When nothing meaningful remains the full
// name is used as-is.
func EnhanceQuery(eventName string) string {
	var meaningful []string
	for _, word := range strings.Fields(eventName) {
		if _, ok := stopWords[strings.ToLower(word)]; ok {
			continue
		}
		meaningful = append(meaningful, strings.ToLower(word))
	}
	if len(meaningful) == 0 {
		return strings.TrimSpace(eventName)
	}
	return strings.Join(meaningful, " ")
}

// Variant identifies one poster of a batch: its position, the background
// query it searches for and the result page it draws from.
type Variant struct {
	Index int
	Query string
	Page  int
}

// PlanVariants lays out the candidate variants for a batch. With explicit
// keywords the same query walks successive result pages for visual variety;
// without them a small set of varied query shapes around the event name and
// venue is used, all on page one.
func PlanVariants(rec EventRecord, candidates int) []Variant {
	var variants []Variant
	if rec.BackgroundQuery != "" {
		for page := 1; page <= candidates; page++ {
			variants = append(variants, Variant{Index: page - 1, Query: rec.BackgroundQuery, Page: page})
		}
		return variants
	}
	base := EnhanceQuery(rec.FirstTitleLine())
	queries := []string{
		base,
		"celebration " + base,
		"event venue " + rec.Venue,
		"event decoration",
		"party " + rec.Venue,
	}
	for i, q := range queries {
		if i >= candidates {
			break
		}
		variants = append(variants, Variant{Index: i, Query: q, Page: 1})
	}
	for len(variants) < candidates {
		variants = append(variants, Variant{
			Index: len(variants),
			Query: fmt.Sprintf("%s %d", base, len(variants)),
			Page:  1,
		})
	}
	return variants
}
