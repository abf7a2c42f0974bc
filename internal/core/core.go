package core

import "strings"

// Article represents a single fetched news item. Articles are immutable once
// fetched; NormalizedTitle is derived during aggregation and never persisted.
type Article struct {
	Title           string `json:"title"`   // Headline as published
	Link            string `json:"link"`    // Canonical article URL
	PubDate         string `json:"pubDate"` // RFC-2822-like publish date string
	NormalizedTitle string `json:"-"`       // Token signature used for matching
}

// HistoryEntry is the persisted record of an article already shown to the
// user. Owned exclusively by the history store.
type HistoryEntry struct {
	Title   string `json:"title"`
	PubDate string `json:"pubDate"`
}

// History maps a topic key to the ordered entries previously shown under that
// topic. No two entries in the same topic share a normalized title; the
// invariant is enforced at append time, not retroactively.
type History map[string][]HistoryEntry

// CandidateSet is the per-run output of aggregation: the headlines offered to
// the selection model per topic, plus a cross-topic lookup from normalized
// title back to the full article record.
type CandidateSet struct {
	Topics    []string            // Topic processing order, fixed for determinism
	Headlines map[string][]string // Topic -> candidate headlines
	Lookup    map[string]Article  // Normalized title -> article, first writer wins
}

// IsEmpty reports whether no topic survived aggregation.
func (c CandidateSet) IsEmpty() bool {
	return len(c.Headlines) == 0
}

// Selection is the model's parsed output: topic name -> chosen headline
// strings, unvalidated against the candidate set until reconciliation.
type Selection struct {
	Topics    []string            // Topic order as returned by the model
	Headlines map[string][]string // Topic -> selected headline strings
}

// IsEmpty reports whether the model selected nothing this run.
func (s Selection) IsEmpty() bool {
	return len(s.Headlines) == 0
}

// TopicArticles pairs a topic name with its resolved articles. Slices of
// TopicArticles carry digest ordering, which Go maps cannot.
type TopicArticles struct {
	Topic    string
	Articles []Article
}

// TopicKey converts a topic name to its history storage key.
func TopicKey(topic string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(topic)), " ", "_")
}
