// Package digest orders the resolved topics for presentation and persists
// the machine-readable snapshot of each run.
package digest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/araddon/dateparse"

	"github.com/brayvid/news-site/internal/core"
	"github.com/brayvid/news-site/internal/logger"
)

// Sequence orders topics so the one whose lead article is freshest comes
// first. A topic whose lead date fails to parse sorts to the end; ties keep
// the incoming order. The input slice is not modified.
func Sequence(topics []core.TopicArticles) []core.TopicArticles {
	out := make([]core.TopicArticles, len(topics))
	copy(out, topics)

	sort.SliceStable(out, func(i, j int) bool {
		return leadTime(out[i]).After(leadTime(out[j]))
	})
	return out
}

func leadTime(t core.TopicArticles) time.Time {
	if len(t.Articles) == 0 {
		return time.Time{}
	}
	parsed, err := dateparse.ParseAny(t.Articles[0].PubDate)
	if err != nil {
		logger.Debug("Unparseable lead article date", "topic", t.Topic, "pub_date", t.Articles[0].PubDate)
		return time.Time{}
	}
	return parsed
}

// topicSnapshot is the per-topic payload in the snapshot file.
type topicSnapshot struct {
	Articles      []core.Article `json:"articles"`
	LastUpdatedTS string         `json:"last_updated_ts"`
}

// Snapshot is the full content of a run, keyed by topic but serialized in
// digest order rather than Go's map order.
type Snapshot struct {
	Topics    []core.TopicArticles
	Timestamp time.Time
}

// NewSnapshot captures the sequenced topics with a shared update timestamp.
func NewSnapshot(topics []core.TopicArticles, now time.Time) Snapshot {
	return Snapshot{Topics: topics, Timestamp: now}
}

// MarshalJSON writes the topics as an object whose keys appear in digest
// order. An empty snapshot serializes as {}. The timestamp always
// serializes in UTC no matter what location it carries; display timezones
// are a rendering concern only.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	ts := s.Timestamp.UTC().Format(time.RFC3339)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, topic := range s.Topics {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(topic.Topic)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(topicSnapshot{Articles: topic.Articles, LastUpdatedTS: ts})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteFile overwrites path with the snapshot. Every run replaces the
// previous snapshot wholesale; a run with no selected topics writes {} so
// downstream consumers see an explicitly empty digest rather than a stale
// one.
func (s Snapshot) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	logger.Info("Wrote digest snapshot", "path", path, "topics", len(s.Topics))
	return nil
}
