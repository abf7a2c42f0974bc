// Package history owns the persisted record of previously shown articles and
// the cross-run duplicate check built on it.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/araddon/dateparse"

	"github.com/brayvid/news-site/internal/core"
	"github.com/brayvid/news-site/internal/logger"
	"github.com/brayvid/news-site/internal/normalize"
)

// Store holds the history loaded at process start. It is read-once at
// startup and written once by Commit at the end of a run; runs are assumed
// non-overlapping, so no file locking is needed.
type Store struct {
	path    string
	entries core.History
}

// Load reads the history file at path. A missing or corrupt file is logged
// and treated as an empty history, never a fatal condition.
func Load(path string) *Store {
	store := &Store{path: path, entries: core.History{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to read history file, starting empty", "path", path, "error", err.Error())
		}
		return store
	}

	if err := json.Unmarshal(data, &store.entries); err != nil {
		logger.Warn("History file is invalid, starting empty", "path", path, "error", err.Error())
		store.entries = core.History{}
	}
	return store
}

// Entries exposes the current history mapping. Callers must treat it as
// read-only; Commit is the only mutation path.
func (s *Store) Entries() core.History {
	return s.entries
}

// Jaccard returns |a∩b| / |a∪b| over two token sets. Symmetric; zero when
// either set is empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// IsDuplicate reports whether title's normalized token set matches any stored
// entry across ALL topics with Jaccard similarity at or above threshold. The
// check is intentionally global: a story shown under one topic suppresses it
// everywhere. A title that normalizes to nothing is never a duplicate.
func (s *Store) IsDuplicate(title string, threshold float64) bool {
	candidate := normalize.TokenSet(title)
	if len(candidate) == 0 {
		return false
	}

	for _, topicEntries := range s.entries {
		for _, past := range topicEntries {
			pastSet := normalize.TokenSet(past.Title)
			if len(pastSet) == 0 {
				continue
			}
			if sim := Jaccard(candidate, pastSet); sim >= threshold {
				logger.Debug("Duplicate title in history", "title", title, "match", past.Title, "similarity", sim)
				return true
			}
		}
	}
	return false
}

// Commit appends the newly shown articles, prunes entries older than the
// retention window, and rewrites the history file. The append dedup is
// topic-scoped by normalized title, deliberately weaker than IsDuplicate's
// cross-topic check. Entries whose pubDate fails to parse survive pruning.
// Topics left empty after pruning are removed entirely.
func (s *Store) Commit(selected []core.TopicArticles, retentionDays int, now time.Time) error {
	for _, topic := range selected {
		key := core.TopicKey(topic.Topic)

		seen := make(map[string]struct{}, len(s.entries[key]))
		for _, entry := range s.entries[key] {
			seen[normalize.Normalize(entry.Title)] = struct{}{}
		}

		for _, article := range topic.Articles {
			norm := normalize.Normalize(article.Title)
			if _, ok := seen[norm]; ok {
				continue
			}
			s.entries[key] = append(s.entries[key], core.HistoryEntry{
				Title:   article.Title,
				PubDate: article.PubDate,
			})
			seen[norm] = struct{}{}
		}
	}

	s.prune(retentionDays, now)
	return s.save()
}

func (s *Store) prune(retentionDays int, now time.Time) {
	cutoff := now.UTC().AddDate(0, 0, -retentionDays)

	for key, topicEntries := range s.entries {
		kept := topicEntries[:0]
		for _, entry := range topicEntries {
			if entry.PubDate == "" {
				logger.Warn("History entry missing pubDate, keeping", "topic", key, "title", entry.Title)
				kept = append(kept, entry)
				continue
			}
			published, err := dateparse.ParseAny(entry.PubDate)
			if err != nil {
				logger.Warn("Unparseable history pubDate, keeping entry", "topic", key, "title", entry.Title, "pubDate", entry.PubDate)
				kept = append(kept, entry)
				continue
			}
			if !published.UTC().Before(cutoff) {
				kept = append(kept, entry)
			}
		}
		if len(kept) == 0 {
			logger.Info("Removing empty topic from history after pruning", "topic", key)
			delete(s.entries, key)
			continue
		}
		s.entries[key] = kept
	}
}

// save rewrites the whole history file atomically via a temp file rename.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp history file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}
