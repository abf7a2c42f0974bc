// Package candidates filters freshly fetched items against history and
// banned terms and prepares the per-run candidate set for selection.
package candidates

import (
	"strings"

	"github.com/brayvid/news-site/internal/core"
	"github.com/brayvid/news-site/internal/history"
	"github.com/brayvid/news-site/internal/logger"
	"github.com/brayvid/news-site/internal/normalize"
)

// Aggregator builds a CandidateSet from raw fetched items. Threshold is the
// Jaccard duplicate threshold applied against history; banned terms arrive in
// their raw form and are normalized once at construction.
type Aggregator struct {
	store       *history.Store
	threshold   float64
	bannedTerms []string
}

// NewAggregator returns an aggregator over the given history store. The
// banned list is normalized up front; terms that normalize to nothing are
// dropped.
func NewAggregator(store *history.Store, threshold float64, banned []string) *Aggregator {
	normalized := make([]string, 0, len(banned))
	for _, term := range banned {
		if norm := normalize.Normalize(term); norm != "" {
			normalized = append(normalized, norm)
		}
	}
	return &Aggregator{store: store, threshold: threshold, bannedTerms: normalized}
}

// ContainsBannedTerm reports whether the normalized text contains any
// normalized banned term as a substring. Deliberately not word-boundary
// aware: a banned term matches anywhere inside the normalized text.
func (a *Aggregator) ContainsBannedTerm(text string) bool {
	if text == "" {
		return false
	}
	norm := normalize.Normalize(text)
	for _, term := range a.bannedTerms {
		if strings.Contains(norm, term) {
			return true
		}
	}
	return false
}

// Aggregate walks topics in the given order and keeps, per topic, the fetched
// items that are neither historical duplicates nor banned. Survivor titles go
// to the topic's candidate list; the full article registers in the cross-topic
// lookup under its normalized title, first writer wins. Topics with zero
// survivors are omitted entirely. The fixed topic order makes the
// first-writer-wins rule deterministic run to run.
func (a *Aggregator) Aggregate(topics []string, fetched map[string][]core.Article) core.CandidateSet {
	set := core.CandidateSet{
		Headlines: make(map[string][]string),
		Lookup:    make(map[string]core.Article),
	}

	for _, topic := range topics {
		var survivors []string
		for _, article := range fetched[topic] {
			if a.store.IsDuplicate(article.Title, a.threshold) {
				logger.Debug("Skipping historical duplicate", "topic", topic, "title", article.Title)
				continue
			}
			if a.ContainsBannedTerm(article.Title) {
				logger.Debug("Skipping banned headline", "topic", topic, "title", article.Title)
				continue
			}

			survivors = append(survivors, article.Title)
			norm := normalize.Normalize(article.Title)
			if _, exists := set.Lookup[norm]; !exists {
				article.NormalizedTitle = norm
				set.Lookup[norm] = article
			}
		}

		if len(survivors) > 0 {
			set.Topics = append(set.Topics, topic)
			set.Headlines[topic] = survivors
		}
	}

	return set
}
