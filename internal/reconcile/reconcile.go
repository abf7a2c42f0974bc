// Package reconcile maps the model's selected headline strings back to the
// fetched articles they refer to. Models paraphrase, retitle, and trim, so
// resolution runs normalized-exact first and falls back to substring
// containment over the not-yet-claimed candidates.
package reconcile

import (
	"sort"
	"strings"

	"github.com/brayvid/news-site/internal/core"
	"github.com/brayvid/news-site/internal/logger"
	"github.com/brayvid/news-site/internal/normalize"
)

// Resolve turns a parsed selection into concrete articles, preserving the
// selection's topic order. Each topic's headline list is capped at
// maxPerTopic before resolution, so an over-long list cannot claim articles
// a later topic would have matched. A candidate article resolves at most
// once across the whole digest; topics left with no resolved articles are
// dropped.
func Resolve(sel core.Selection, set core.CandidateSet, maxPerTopic int) []core.TopicArticles {
	claimed := make(map[string]struct{})
	var out []core.TopicArticles

	for _, topic := range sel.Topics {
		headlines := sel.Headlines[topic]
		if len(headlines) > maxPerTopic {
			logger.Warn("Model returned more headlines than allowed, truncating",
				"topic", topic, "returned", len(headlines), "max", maxPerTopic)
			headlines = headlines[:maxPerTopic]
		}

		var articles []core.Article
		for _, headline := range headlines {
			norm := normalize.Normalize(headline)
			if norm == "" {
				continue
			}
			if _, taken := claimed[norm]; taken {
				logger.Debug("Skipping already-claimed headline", "topic", topic, "headline", headline)
				continue
			}

			article, matchedNorm, ok := lookup(norm, set.Lookup, claimed)
			if !ok {
				logger.Warn("Selected headline matched no candidate article", "topic", topic, "headline", headline)
				continue
			}

			claimed[norm] = struct{}{}
			claimed[matchedNorm] = struct{}{}
			articles = append(articles, article)
		}

		if len(articles) > 0 {
			out = append(out, core.TopicArticles{Topic: topic, Articles: articles})
		}
	}

	return out
}

// lookup resolves a normalized headline against the candidate lookup table.
// An exact key hit wins; otherwise the first unclaimed candidate whose
// normalized title contains, or is contained by, the headline is taken.
// Returns the matched candidate's own normalized title so the caller can
// mark it claimed under both spellings.
func lookup(norm string, candidates map[string]core.Article, claimed map[string]struct{}) (core.Article, string, bool) {
	if article, ok := candidates[norm]; ok {
		if _, taken := claimed[norm]; !taken {
			return article, norm, true
		}
	}

	// Sorted scan keeps the fallback deterministic when several candidates
	// would match.
	keys := make([]string, 0, len(candidates))
	for candidateNorm := range candidates {
		keys = append(keys, candidateNorm)
	}
	sort.Strings(keys)
	for _, candidateNorm := range keys {
		if _, taken := claimed[candidateNorm]; taken {
			continue
		}
		if strings.Contains(candidateNorm, norm) || strings.Contains(norm, candidateNorm) {
			logger.Debug("Resolved headline by substring fallback", "headline_norm", norm, "candidate_norm", candidateNorm)
			return candidates[candidateNorm], candidateNorm, true
		}
	}

	return core.Article{}, "", false
}
