package selection

import (
	"reflect"
	"strings"
	"testing"

	"github.com/brayvid/news-site/internal/core"
)

func TestEntriesToSelection(t *testing.T) {
	raw := []any{
		map[string]any{
			"topic_name": "Technology",
			"headlines":  []any{"Chipmaker unveils new fab", "Cloud outage hits banks"},
		},
		map[string]any{
			"topic_name": " Climate ",
			"headlines":  []any{"Heatwave breaks records"},
		},
	}

	sel := entriesToSelection(raw)

	wantTopics := []string{"Technology", "Climate"}
	if !reflect.DeepEqual(sel.Topics, wantTopics) {
		t.Errorf("Topics = %v, want %v", sel.Topics, wantTopics)
	}
	if got := sel.Headlines["Climate"]; len(got) != 1 || got[0] != "Heatwave breaks records" {
		t.Errorf("Climate headlines = %v, want the single trimmed-topic headline", got)
	}
}

func TestEntriesToSelectionMergesRepeatedTopics(t *testing.T) {
	raw := []any{
		map[string]any{"topic_name": "Science", "headlines": []any{"Probe reaches orbit", "Telescope spots comet"}},
		map[string]any{"topic_name": "Science", "headlines": []any{"Telescope spots comet", "Lab grows new alloy"}},
	}

	sel := entriesToSelection(raw)

	if len(sel.Topics) != 1 {
		t.Fatalf("expected one merged topic, got %v", sel.Topics)
	}
	want := []string{"Probe reaches orbit", "Telescope spots comet", "Lab grows new alloy"}
	if !reflect.DeepEqual(sel.Headlines["Science"], want) {
		t.Errorf("merged headlines = %v, want %v", sel.Headlines["Science"], want)
	}
}

func TestEntriesToSelectionDropsInvalidEntries(t *testing.T) {
	raw := []any{
		"not an object",
		map[string]any{"topic_name": "", "headlines": []any{"orphan headline"}},
		map[string]any{"topic_name": "Empty", "headlines": []any{}},
		map[string]any{"topic_name": "Kept", "headlines": []any{"the one survivor"}},
	}

	sel := entriesToSelection(raw)

	if !reflect.DeepEqual(sel.Topics, []string{"Kept"}) {
		t.Errorf("Topics = %v, want only the valid entry", sel.Topics)
	}
}

func TestEntriesToSelectionNotAList(t *testing.T) {
	if sel := entriesToSelection(map[string]any{"topic_name": "x"}); !sel.IsEmpty() {
		t.Errorf("expected empty selection for non-list input, got %+v", sel)
	}
	if sel := entriesToSelection(nil); !sel.IsEmpty() {
		t.Errorf("expected empty selection for nil input, got %+v", sel)
	}
}

func TestStringSlice(t *testing.T) {
	if got := stringSlice([]any{"a", 7, "b"}); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("stringSlice dropped the wrong members: %v", got)
	}
	if got := stringSlice([]string{"x"}); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("stringSlice([]string) = %v", got)
	}
	if got := stringSlice("scalar"); got != nil {
		t.Errorf("expected nil for scalar input, got %v", got)
	}
}

func TestTruncateKeepsModelOrder(t *testing.T) {
	sel := core.Selection{
		Topics: []string{"First", "Second", "Third"},
		Headlines: map[string][]string{
			"First":  {"f1"},
			"Second": {"s1"},
			"Third":  {"t1"},
		},
	}

	got := Truncate(sel, 2)

	if !reflect.DeepEqual(got.Topics, []string{"First", "Second"}) {
		t.Errorf("Topics = %v, want the first two in model order", got.Topics)
	}
	if _, ok := got.Headlines["Third"]; ok {
		t.Error("truncated topic should not retain headlines")
	}
}

func TestTruncateUnderLimitUnchanged(t *testing.T) {
	sel := core.Selection{
		Topics:    []string{"Only"},
		Headlines: map[string][]string{"Only": {"h"}},
	}
	if got := Truncate(sel, 5); !reflect.DeepEqual(got, sel) {
		t.Errorf("Truncate altered a selection under the cap: %+v", got)
	}
}

func TestBuildPromptEmbedsCandidatesAndPreferences(t *testing.T) {
	set := core.CandidateSet{
		Topics: []string{"Energy"},
		Headlines: map[string][]string{
			"Energy": {"Grid operator adds storage"},
		},
	}

	prompt := buildPrompt(set, "User topics:\n- Energy: 5", 7, 3)

	for _, want := range []string{
		"Grid operator adds storage",
		"- Energy: 5",
		"up to 7 topics",
		"up to 3 headlines",
		ToolName,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestDigestToolSchema(t *testing.T) {
	tool := digestTool(7, 4)

	if len(tool.FunctionDeclarations) != 1 {
		t.Fatalf("expected one function declaration, got %d", len(tool.FunctionDeclarations))
	}
	decl := tool.FunctionDeclarations[0]
	if decl.Name != ToolName {
		t.Errorf("tool name = %q, want %q", decl.Name, ToolName)
	}
	entries, ok := decl.Parameters.Properties["selected_digest_entries"]
	if !ok {
		t.Fatal("schema missing selected_digest_entries")
	}
	item := entries.Items
	if item == nil {
		t.Fatal("selected_digest_entries has no item schema")
	}
	for _, field := range []string{"topic_name", "headlines"} {
		if _, ok := item.Properties[field]; !ok {
			t.Errorf("entry schema missing %q", field)
		}
	}
}

func TestBuildUserPreferencesOrdering(t *testing.T) {
	topics := map[string]int{"Science": 3, "Business": 5, "Arts": 3}
	keywords := map[string]int{"election": 4}
	overrides := Overrides{"gossip": "ban", "rumor": "demote", "ipo": "ban"}

	out := BuildUserPreferences(topics, keywords, overrides, 0.5)

	wantOrder := []string{
		"- Business: 5",
		"- Arts: 3",
		"- Science: 3",
		"- election: 4",
		"- gossip",
		"- ipo",
		"0.5 times less important",
		"- rumor",
	}
	last := -1
	for _, want := range wantOrder {
		idx := strings.Index(out, want)
		if idx < 0 {
			t.Fatalf("preferences missing %q in:\n%s", want, out)
		}
		if idx < last {
			t.Errorf("%q appeared out of order", want)
		}
		last = idx
	}
}

func TestBuildUserPreferencesEmptySections(t *testing.T) {
	out := BuildUserPreferences(nil, nil, nil, 0.5)
	if out != "" {
		t.Errorf("expected empty preferences for empty inputs, got %q", out)
	}
}
