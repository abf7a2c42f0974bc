package selection

import (
	"fmt"
	"sort"
	"strings"
)

// Overrides maps a lowercased term to its directive, "ban" or "demote".
type Overrides map[string]string

// BannedTerms returns the terms flagged "ban", sorted for determinism.
func (o Overrides) BannedTerms() []string {
	return o.terms("ban")
}

// DemotedTerms returns the terms flagged "demote", sorted for determinism.
func (o Overrides) DemotedTerms() []string {
	return o.terms("demote")
}

func (o Overrides) terms(directive string) []string {
	var out []string
	for term, d := range o {
		if d == directive {
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}

// BuildUserPreferences renders the ranked topic and keyword weights plus the
// banned and demoted term lists into the preference block embedded in the
// selection prompt. Weights sort descending, ties broken by name so the
// output is stable across runs.
func BuildUserPreferences(topics, keywords map[string]int, overrides Overrides, demoteFactor float64) string {
	var b strings.Builder

	if len(topics) > 0 {
		b.WriteString("User topics (ranked 1-5 in importance, 5 is most important):\n")
		writeRanked(&b, topics)
	}
	if len(keywords) > 0 {
		b.WriteString("\nHeadline keywords (ranked 1-5 in importance, 5 is most important):\n")
		writeRanked(&b, keywords)
	}
	if banned := overrides.BannedTerms(); len(banned) > 0 {
		b.WriteString("\nBanned terms (must not appear in topics or headlines):\n")
		for _, term := range banned {
			fmt.Fprintf(&b, "- %s\n", term)
		}
	}
	if demoted := overrides.DemotedTerms(); len(demoted) > 0 {
		fmt.Fprintf(&b, "\nDemoted terms (consider headlines with these terms %g times less important to the user, all else equal):\n", demoteFactor)
		for _, term := range demoted {
			fmt.Fprintf(&b, "- %s\n", term)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeRanked(b *strings.Builder, weights map[string]int) {
	type entry struct {
		name   string
		weight int
	}
	ranked := make([]entry, 0, len(weights))
	for name, weight := range weights {
		ranked = append(ranked, entry{name, weight})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].name < ranked[j].name
	})
	for _, e := range ranked {
		fmt.Fprintf(b, "- %s: %d\n", e.name, e.weight)
	}
}
