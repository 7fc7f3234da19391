package resolver

import (
	"strings"

	"github.com/UnknownOlympus/locus/internal/models"
	"golang.org/x/text/unicode/norm"
)

// CountryName is appended to the last, broadest cascade query.
const CountryName = "Brasil"

// CascadeStep is one geocoder query of the postal-code fallback chain.
type CascadeStep struct {
	Number  int                  // 1-based position in the chain
	Query   string               // free-text query sent to the geocoder
	Tier    models.PrecisionTier // tier assigned when this step wins
	Skipped bool                 // anchor component missing or query already attempted
}

type cascadeRule struct {
	tier   models.PrecisionTier
	anchor func(models.NormalizedAddress) string
	parts  func(models.NormalizedAddress) []string
}

func street(a models.NormalizedAddress) string { return a.Street }
func city(a models.NormalizedAddress) string   { return a.City }

// cascadeRules lists the queries from most to least specific. Order matters.
var cascadeRules = []cascadeRule{
	{
		tier:   models.TierStreet,
		anchor: street,
		parts: func(a models.NormalizedAddress) []string {
			return []string{a.Street, a.Neighborhood, a.City, a.State, a.FormattedPostalCode()}
		},
	},
	{
		tier:   models.TierStreet,
		anchor: street,
		parts: func(a models.NormalizedAddress) []string {
			return []string{a.Street, a.Neighborhood, a.City, a.State}
		},
	},
	{
		tier:   models.TierNeighborhood,
		anchor: street,
		parts: func(a models.NormalizedAddress) []string {
			return []string{a.Street, a.City, a.State}
		},
	},
	{
		tier:   models.TierCity,
		anchor: city,
		parts: func(a models.NormalizedAddress) []string {
			return []string{a.City, a.State}
		},
	},
	{
		tier:   models.TierCity,
		anchor: city,
		parts: func(a models.NormalizedAddress) []string {
			return []string{a.City, a.State, CountryName}
		},
	},
}

// BuildCascade expands a structured address into the five fallback queries.
// Steps 1-3 need a street and steps 4-5 a city; a step missing its anchor, or repeating
// an earlier query verbatim, is marked as skipped because it cannot produce a new answer.
func BuildCascade(address models.NormalizedAddress) []CascadeStep {
	steps := make([]CascadeStep, 0, len(cascadeRules))
	seen := make(map[string]bool, len(cascadeRules))

	for idx, rule := range cascadeRules {
		step := CascadeStep{Number: idx + 1, Tier: rule.tier}
		step.Query = joinParts(rule.parts(address))

		if strings.TrimSpace(rule.anchor(address)) == "" || step.Query == "" || seen[step.Query] {
			step.Skipped = true
		} else {
			seen[step.Query] = true
		}

		steps = append(steps, step)
	}

	return steps
}

// joinParts drops empty components and NFC-normalizes the rest, so that registries returning
// decomposed accents produce the same query text.
func joinParts(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = norm.NFC.String(strings.TrimSpace(part)); part != "" {
			kept = append(kept, part)
		}
	}

	return strings.Join(kept, ", ")
}
