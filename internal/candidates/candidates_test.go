package candidates

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/brayvid/news-site/internal/core"
	"github.com/brayvid/news-site/internal/history"
)

func emptyStore(t *testing.T) *history.Store {
	t.Helper()
	return history.Load(filepath.Join(t.TempDir(), "history.json"))
}

func storeWith(t *testing.T, topic string, titles ...string) *history.Store {
	t.Helper()
	store := emptyStore(t)
	articles := make([]core.Article, len(titles))
	for i, title := range titles {
		articles[i] = core.Article{Title: title, PubDate: time.Now().UTC().Format(time.RFC1123Z)}
	}
	if err := store.Commit([]core.TopicArticles{{Topic: topic, Articles: articles}}, 7, time.Now()); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestAggregateKeepsFreshArticles(t *testing.T) {
	agg := NewAggregator(emptyStore(t), 0.4, nil)
	fetched := map[string][]core.Article{
		"Technology": {
			{Title: "Quantum startup raises record round", Link: "https://example.com/a"},
			{Title: "New chip architecture announced", Link: "https://example.com/b"},
		},
	}

	set := agg.Aggregate([]string{"Technology"}, fetched)
	if len(set.Headlines["Technology"]) != 2 {
		t.Fatalf("Expected 2 candidates, got %v", set.Headlines)
	}
	if len(set.Lookup) != 2 {
		t.Errorf("Expected 2 lookup entries, got %d", len(set.Lookup))
	}
}

func TestAggregateFiltersHistoricalDuplicates(t *testing.T) {
	store := storeWith(t, "Economy", "Fed raises interest rates amid inflation fears")
	agg := NewAggregator(store, 0.4, nil)

	fetched := map[string][]core.Article{
		// High overlap with the stored entry, offered under another topic.
		"Markets": {{Title: "Fed raises interest rates as inflation fears grow"}},
	}
	set := agg.Aggregate([]string{"Markets"}, fetched)
	if !set.IsEmpty() {
		t.Errorf("Expected historical duplicate to be filtered, got %v", set.Headlines)
	}
}

func TestAggregateFiltersBannedTermsCaseInsensitive(t *testing.T) {
	agg := NewAggregator(emptyStore(t), 0.4, []string{"crypto"})
	fetched := map[string][]core.Article{
		"Finance": {
			{Title: "Crypto exchange collapses overnight"},
			{Title: "CRYPTO scams on the rise"},
			{Title: "Treasury yields tick higher"},
		},
	}

	set := agg.Aggregate([]string{"Finance"}, fetched)
	got := set.Headlines["Finance"]
	if len(got) != 1 || got[0] != "Treasury yields tick higher" {
		t.Errorf("Expected only the non-banned headline, got %v", got)
	}
}

func TestAggregateOmitsEmptyTopics(t *testing.T) {
	agg := NewAggregator(emptyStore(t), 0.4, []string{"gossip"})
	fetched := map[string][]core.Article{
		"Celebrity": {{Title: "Latest gossip roundup"}},
		"Science":   {{Title: "Fusion milestone reached"}},
	}

	set := agg.Aggregate([]string{"Celebrity", "Science"}, fetched)
	if _, ok := set.Headlines["Celebrity"]; ok {
		t.Error("Topic with zero survivors must be omitted")
	}
	if len(set.Topics) != 1 || set.Topics[0] != "Science" {
		t.Errorf("Expected only Science to survive, got %v", set.Topics)
	}
	for _, headlines := range set.Headlines {
		if len(headlines) == 0 {
			t.Error("Aggregate must never return a topic with an empty candidate list")
		}
	}
}

func TestAggregateFirstWriterWinsLookup(t *testing.T) {
	agg := NewAggregator(emptyStore(t), 0.4, nil)
	shared := "Global summit ends with joint statement"
	fetched := map[string][]core.Article{
		"World":    {{Title: shared, Link: "https://example.com/world"}},
		"Politics": {{Title: shared, Link: "https://example.com/politics"}},
	}

	set := agg.Aggregate([]string{"World", "Politics"}, fetched)

	// Both topics keep the headline for the model...
	if len(set.Headlines["World"]) != 1 || len(set.Headlines["Politics"]) != 1 {
		t.Fatalf("Expected headline under both topics, got %v", set.Headlines)
	}
	// ...but the lookup holds the first writer's record only.
	if len(set.Lookup) != 1 {
		t.Fatalf("Expected one lookup entry, got %d", len(set.Lookup))
	}
	for _, article := range set.Lookup {
		if article.Link != "https://example.com/world" {
			t.Errorf("Expected first topic's article to win, got %q", article.Link)
		}
	}
}
