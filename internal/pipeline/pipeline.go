// Package pipeline orchestrates the end-to-end digest run: preference
// loading, feed fetching, candidate aggregation, model selection,
// reconciliation, output, and history commit.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/brayvid/news-site/internal/candidates"
	"github.com/brayvid/news-site/internal/config"
	"github.com/brayvid/news-site/internal/core"
	"github.com/brayvid/news-site/internal/digest"
	"github.com/brayvid/news-site/internal/fetch"
	"github.com/brayvid/news-site/internal/history"
	"github.com/brayvid/news-site/internal/logger"
	"github.com/brayvid/news-site/internal/publish"
	"github.com/brayvid/news-site/internal/reconcile"
	"github.com/brayvid/news-site/internal/render"
	"github.com/brayvid/news-site/internal/selection"
)

// Pipeline runs one digest generation cycle per Run call.
type Pipeline struct {
	cfg *config.Config
}

// New returns a pipeline over the given local configuration.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Run executes a single digest cycle. It returns an error only for failures
// that make the run meaningless (unreachable preference sheets, unusable
// history path, no Gemini client); degraded stages inside the run log and
// continue.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.New().String()
	log := logger.Get().With("run_id", runID)
	log.Info("Starting digest run")

	client := &http.Client{Timeout: p.cfg.SheetTimeout()}
	sheets := p.cfg.Sheets

	tunables, err := config.LoadTunables(ctx, client, sheets.ConfigURL)
	if err != nil {
		return fmt.Errorf("cannot run without config sheet: %w", err)
	}
	topicWeights, err := config.LoadWeights(ctx, client, sheets.TopicsURL)
	if err != nil {
		return fmt.Errorf("cannot run without topics sheet: %w", err)
	}
	if len(topicWeights) == 0 {
		return fmt.Errorf("topics sheet is empty, nothing to fetch")
	}

	keywordWeights, err := config.LoadWeights(ctx, client, sheets.KeywordsURL)
	if err != nil {
		return fmt.Errorf("cannot run without keywords sheet: %w", err)
	}
	rawOverrides, err := config.LoadOverrides(ctx, client, sheets.OverridesURL)
	if err != nil {
		return fmt.Errorf("cannot run without overrides sheet: %w", err)
	}
	overrides := selection.Overrides(rawOverrides)

	topics := orderTopics(topicWeights)
	log.Info("Loaded preferences", "topics", len(topics), "keywords", len(keywordWeights), "overrides", len(overrides))

	store := history.Load(p.cfg.Paths.HistoryFile)

	fetcher := fetch.NewFetcher(time.Duration(tunables.MaxArticleHours)*time.Hour, tunables.ArticlesPerTopicFeed)
	fetched := fetcher.All(ctx, topics)

	aggregator := candidates.NewAggregator(store, tunables.MatchThreshold, overrides.BannedTerms())
	set := aggregator.Aggregate(topics, fetched)

	now := time.Now()
	loc := tunables.Location()

	var sequenced []core.TopicArticles
	if set.IsEmpty() {
		log.Warn("No candidates survived filtering, publishing an empty digest")
	} else {
		orchestrator, err := selection.NewOrchestrator(ctx, p.cfg.AI.Gemini.APIKey, tunables.GeminiModel,
			tunables.MaxTopics, tunables.MaxArticlesPerTopic)
		if err != nil {
			return fmt.Errorf("cannot run without a Gemini client: %w", err)
		}

		prefs := selection.BuildUserPreferences(topicWeights, keywordWeights, overrides, tunables.DemoteFactor)

		selectCtx, cancel := context.WithTimeout(ctx, p.cfg.GeminiTimeout())
		sel := orchestrator.Select(selectCtx, set, prefs)
		cancel()

		sel = selection.Truncate(sel, tunables.MaxTopics)
		resolved := reconcile.Resolve(sel, set, tunables.MaxArticlesPerTopic)
		sequenced = digest.Sequence(resolved)
	}

	snapshot := digest.NewSnapshot(sequenced, now.UTC())
	if err := snapshot.WriteFile(p.cfg.Paths.ContentFile); err != nil {
		log.Error("Failed to write content snapshot", "error", err.Error())
	}
	if err := render.WriteDigestHTML(sequenced, p.cfg.Paths.DigestFile, loc, now); err != nil {
		log.Error("Failed to write digest HTML", "error", err.Error())
	}

	// History commits even on an empty run so retention pruning still
	// happens.
	if err := store.Commit(sequenced, tunables.HistoryRetentionDays, now); err != nil {
		log.Error("Failed to update history", "error", err.Error())
	}

	if tunables.EnableGitPush {
		err := publish.Push(publish.Options{
			RepoDir:     ".",
			Files:       []string{p.cfg.Paths.HistoryFile, p.cfg.Paths.ContentFile, p.cfg.Paths.DigestFile},
			AuthorName:  tunables.GitUserName,
			AuthorEmail: tunables.GitUserEmail,
			Location:    loc,
		})
		if err != nil {
			log.Error("Publish failed", "error", err.Error())
		}
	} else {
		log.Info("Git push disabled, artifacts left on disk")
	}

	log.Info("Digest run complete", "topics", len(sequenced))
	return nil
}

// orderTopics fixes the topic processing order: weight descending, name
// ascending. Fetching, aggregation, and the first-writer-wins candidate
// lookup all follow this order, which keeps runs reproducible.
func orderTopics(weights map[string]int) []string {
	topics := make([]string, 0, len(weights))
	for name := range weights {
		topics = append(topics, name)
	}
	sort.Slice(topics, func(i, j int) bool {
		if weights[topics[i]] != weights[topics[j]] {
			return weights[topics[i]] > weights[topics[j]]
		}
		return topics[i] < topics[j]
	})
	return topics
}
