package reconcile

import (
	"testing"

	"github.com/brayvid/news-site/internal/core"
	"github.com/brayvid/news-site/internal/normalize"
)

func lookupFor(articles ...core.Article) map[string]core.Article {
	out := make(map[string]core.Article, len(articles))
	for _, a := range articles {
		norm := normalize.Normalize(a.Title)
		a.NormalizedTitle = norm
		out[norm] = a
	}
	return out
}

func TestResolveExactMatch(t *testing.T) {
	article := core.Article{Title: "Central bank holds interest rates steady", Link: "https://example.com/rates"}
	set := core.CandidateSet{Lookup: lookupFor(article)}
	sel := core.Selection{
		Topics:    []string{"Economy"},
		Headlines: map[string][]string{"Economy": {"Central Bank Holds Interest Rates Steady"}},
	}

	got := Resolve(sel, set, 5)

	if len(got) != 1 || len(got[0].Articles) != 1 {
		t.Fatalf("Resolve = %+v, want one topic with one article", got)
	}
	if got[0].Articles[0].Link != article.Link {
		t.Errorf("resolved link = %q, want %q", got[0].Articles[0].Link, article.Link)
	}
}

func TestResolveSubstringFallback(t *testing.T) {
	article := core.Article{Title: "Storm knocks out power across coastal towns overnight", Link: "https://example.com/storm"}
	set := core.CandidateSet{Lookup: lookupFor(article)}
	sel := core.Selection{
		Topics:    []string{"Weather"},
		Headlines: map[string][]string{"Weather": {"Storm knocks out power across coastal towns"}},
	}

	got := Resolve(sel, set, 5)

	if len(got) != 1 || len(got[0].Articles) != 1 {
		t.Fatalf("expected the shortened headline to resolve via containment, got %+v", got)
	}
	if got[0].Articles[0].Link != article.Link {
		t.Errorf("resolved link = %q, want %q", got[0].Articles[0].Link, article.Link)
	}
}

func TestResolveClaimsArticleOnce(t *testing.T) {
	article := core.Article{Title: "Parliament passes budget bill", Link: "https://example.com/budget"}
	set := core.CandidateSet{Lookup: lookupFor(article)}
	sel := core.Selection{
		Topics: []string{"Politics", "Economy"},
		Headlines: map[string][]string{
			"Politics": {"Parliament passes budget bill"},
			"Economy":  {"Parliament passes budget bill"},
		},
	}

	got := Resolve(sel, set, 5)

	if len(got) != 1 || got[0].Topic != "Politics" {
		t.Fatalf("expected only the first topic to claim the article, got %+v", got)
	}
}

func TestResolveTruncatesBeforeMatching(t *testing.T) {
	first := core.Article{Title: "Rover drills first rock sample", Link: "https://example.com/rover"}
	second := core.Article{Title: "Satellite constellation completes launch", Link: "https://example.com/sat"}
	set := core.CandidateSet{Lookup: lookupFor(first, second)}
	sel := core.Selection{
		Topics: []string{"Space"},
		Headlines: map[string][]string{
			"Space": {"Rover drills first rock sample", "Satellite constellation completes launch"},
		},
	}

	got := Resolve(sel, set, 1)

	if len(got) != 1 || len(got[0].Articles) != 1 {
		t.Fatalf("expected truncation to one article, got %+v", got)
	}
	if got[0].Articles[0].Link != first.Link {
		t.Errorf("kept article = %q, want the first listed headline", got[0].Articles[0].Link)
	}
}

func TestResolveDropsUnmatchedAndEmptyTopics(t *testing.T) {
	article := core.Article{Title: "Museum reopens after renovation", Link: "https://example.com/museum"}
	set := core.CandidateSet{Lookup: lookupFor(article)}
	sel := core.Selection{
		Topics: []string{"Culture", "Sports"},
		Headlines: map[string][]string{
			"Culture": {"Museum reopens after renovation", "Entirely fabricated headline nobody fetched"},
			"Sports":  {"Another invented result"},
		},
	}

	got := Resolve(sel, set, 5)

	if len(got) != 1 || got[0].Topic != "Culture" {
		t.Fatalf("expected only Culture to survive, got %+v", got)
	}
	if len(got[0].Articles) != 1 {
		t.Errorf("fabricated headline should have been dropped, got %+v", got[0].Articles)
	}
}

func TestResolveSkipsEmptyNormalizedHeadline(t *testing.T) {
	set := core.CandidateSet{Lookup: lookupFor(core.Article{Title: "Real headline", Link: "https://example.com/real"})}
	sel := core.Selection{
		Topics:    []string{"Misc"},
		Headlines: map[string][]string{"Misc": {"!!! ???"}},
	}

	if got := Resolve(sel, set, 5); len(got) != 0 {
		t.Errorf("punctuation-only headline should resolve to nothing, got %+v", got)
	}
}
