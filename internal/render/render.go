// Package render writes the human-readable digest.html fragment.
package render

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/araddon/dateparse"

	"github.com/brayvid/news-site/internal/core"
	"github.com/brayvid/news-site/internal/logger"
)

// digestTemplate renders the topics as h3 sections of linked headlines plus
// a hidden last-updated footer. The output is a fragment meant to be
// embedded in the site shell, not a standalone page.
var digestTemplate = template.Must(template.New("digest").Parse(
	`{{range .Topics}}<h3>{{.Topic}}</h3>
{{range .Articles}}<p><a href="{{.Link}}" target="_blank">{{.Title}}</a><br><small>{{.Date}}</small></p>
{{end}}{{end}}<div class='timestamp' id='last-updated' style='display: none;'>Last updated: {{.LastUpdated}}</div>
`))

type articleView struct {
	Title string
	Link  string
	Date  string
}

type topicView struct {
	Topic    string
	Articles []articleView
}

type digestView struct {
	Topics      []topicView
	LastUpdated string
}

// WriteDigestHTML renders the sequenced topics to path with dates shown in
// the user's timezone. An empty digest writes nothing at all, so the
// previously published page stays up rather than being replaced by a blank
// one.
func WriteDigestHTML(topics []core.TopicArticles, path string, loc *time.Location, now time.Time) error {
	if len(topics) == 0 {
		logger.Info("Digest is empty, leaving existing digest HTML untouched", "path", path)
		return nil
	}

	view := digestView{
		LastUpdated: now.In(loc).Format("Monday, 02 January 2006 03:04 PM MST"),
	}
	for _, t := range topics {
		tv := topicView{Topic: t.Topic}
		for _, a := range t.Articles {
			tv.Articles = append(tv.Articles, articleView{
				Title: a.Title,
				Link:  a.Link,
				Date:  formatPubDate(a, loc),
			})
		}
		view.Topics = append(view.Topics, tv)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create digest directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create digest file: %w", err)
	}
	defer file.Close()

	if err := digestTemplate.Execute(file, view); err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}
	logger.Info("Wrote digest HTML", "path", path, "topics", len(topics))
	return nil
}

func formatPubDate(a core.Article, loc *time.Location) string {
	parsed, err := dateparse.ParseAny(a.PubDate)
	if err != nil {
		logger.Warn("Could not parse article date", "title", a.Title, "pub_date", a.PubDate)
		return "Date unavailable"
	}
	return parsed.In(loc).Format("Mon, 02 Jan 2006 03:04 PM MST")
}
