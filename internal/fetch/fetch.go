// Package fetch pulls candidate articles from Google News RSS, one query per
// topic.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/brayvid/news-site/internal/core"
	"github.com/brayvid/news-site/internal/logger"
)

const searchURL = "https://news.google.com/rss/search?q=%s"

// Fetcher retrieves recent articles per topic. MaxAge bounds article
// freshness; items older than the window are discarded at fetch time so the
// rest of the pipeline only ever sees current news.
type Fetcher struct {
	parser   *gofeed.Parser
	baseURL  string
	maxAge   time.Duration
	perTopic int
}

// NewFetcher returns a fetcher capping each topic at perTopic articles no
// older than maxAge.
func NewFetcher(maxAge time.Duration, perTopic int) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = "Mozilla/5.0 (compatible; newsdigest/1.0)"
	return &Fetcher{parser: parser, baseURL: searchURL, maxAge: maxAge, perTopic: perTopic}
}

// Topic fetches the freshest items for a single topic. Items missing a
// title, link, or parseable publish date are skipped, as are items outside
// the freshness window. The raw publish date string is preserved verbatim in
// the returned articles.
func (f *Fetcher) Topic(ctx context.Context, topic string) ([]core.Article, error) {
	feedURL := fmt.Sprintf(f.baseURL, url.QueryEscape(topic))
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed for topic %q: %w", topic, err)
	}

	cutoff := time.Now().Add(-f.maxAge)
	var out []core.Article
	for _, item := range feed.Items {
		if len(out) >= f.perTopic {
			break
		}
		if item.Title == "" || item.Link == "" || item.PublishedParsed == nil {
			logger.Debug("Skipping incomplete feed item", "topic", topic, "title", item.Title)
			continue
		}
		if item.PublishedParsed.Before(cutoff) {
			continue
		}
		out = append(out, core.Article{
			Title:   item.Title,
			Link:    item.Link,
			PubDate: item.Published,
		})
	}

	logger.Info("Fetched topic feed", "topic", topic, "kept", len(out), "total", len(feed.Items))
	return out, nil
}

// All fetches every topic in order. A failed topic contributes an empty list
// and a log entry rather than failing the run; one dead feed should not
// sink the digest.
func (f *Fetcher) All(ctx context.Context, topics []string) map[string][]core.Article {
	out := make(map[string][]core.Article, len(topics))
	for _, topic := range topics {
		articles, err := f.Topic(ctx, topic)
		if err != nil {
			logger.Error("Topic fetch failed, continuing without it", err, "topic", topic)
			out[topic] = nil
			continue
		}
		out[topic] = articles
	}
	return out
}
