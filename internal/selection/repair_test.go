package selection

import "testing"

func TestParseLooseJSONStrict(t *testing.T) {
	obj := ParseLooseJSON(`{"selected_digest_entries": [{"topic_name": "Tech", "headlines": ["a"]}]}`)
	if obj == nil {
		t.Fatal("Expected strict JSON to parse")
	}
	if _, ok := obj["selected_digest_entries"]; !ok {
		t.Error("Expected selected_digest_entries key")
	}
}

func TestParseLooseJSONCodeFence(t *testing.T) {
	raw := "```json\n{\"selected_digest_entries\": [{\"topic_name\": \"Tech\", \"headlines\": [\"a\"]}]}\n```"
	obj := ParseLooseJSON(raw)
	if obj == nil {
		t.Fatal("Expected fenced JSON to parse after stripping")
	}
	if _, ok := obj["selected_digest_entries"]; !ok {
		t.Error("Expected selected_digest_entries key after fence stripping")
	}
}

func TestParseLooseJSONBareFence(t *testing.T) {
	raw := "```\n{\"key\": 1}\n```"
	if obj := ParseLooseJSON(raw); obj == nil {
		t.Error("Expected JSON in an unlabeled fence to parse")
	}
}

func TestParseLooseJSONSmartQuotesAndTrailingCommas(t *testing.T) {
	raw := "{“key”: [“value”,]}"
	obj := ParseLooseJSON(raw)
	if obj == nil {
		t.Fatal("Expected smart-quoted JSON with trailing comma to parse")
	}
	values, ok := obj["key"].([]any)
	if !ok || len(values) != 1 || values[0] != "value" {
		t.Errorf("Unexpected parsed value: %v", obj["key"])
	}
}

func TestParseLooseJSONPythonLiterals(t *testing.T) {
	obj := ParseLooseJSON(`{"flag": True, "other": False, "missing": None}`)
	if obj == nil {
		t.Fatal("Expected Python literals to be normalized")
	}
	if obj["flag"] != true || obj["other"] != false || obj["missing"] != nil {
		t.Errorf("Unexpected values: %v", obj)
	}
}

func TestParseLooseJSONBareKeysAndSingleQuotes(t *testing.T) {
	obj := ParseLooseJSON(`{topic_name: 'Technology', headlines: ['first story']}`)
	if obj == nil {
		t.Fatal("Expected bare keys and single quotes to be repaired")
	}
	if obj["topic_name"] != "Technology" {
		t.Errorf("Expected repaired topic_name, got %v", obj["topic_name"])
	}
	headlines, ok := obj["headlines"].([]any)
	if !ok || len(headlines) != 1 || headlines[0] != "first story" {
		t.Errorf("Expected repaired single-quoted list member, got %v", obj["headlines"])
	}
}

func TestParseLooseJSONPythonRepr(t *testing.T) {
	raw := `{'selected_digest_entries': [{'topic_name': 'Technology', 'headlines': ['First story', 'Second story']}]}`
	obj := ParseLooseJSON(raw)
	if obj == nil {
		t.Fatal("Expected a fully single-quoted payload to be repaired")
	}
	entries, ok := obj["selected_digest_entries"].([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("Unexpected entries: %v", obj["selected_digest_entries"])
	}
	entry, ok := entries[0].(map[string]any)
	if !ok || entry["topic_name"] != "Technology" {
		t.Fatalf("Unexpected entry: %v", entries[0])
	}
	headlines, ok := entry["headlines"].([]any)
	if !ok || len(headlines) != 2 || headlines[0] != "First story" || headlines[1] != "Second story" {
		t.Errorf("Unexpected headlines: %v", entry["headlines"])
	}
}

func TestParseLooseJSONGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json at all", "[1, 2, 3]", "```\n```"} {
		if obj := ParseLooseJSON(raw); obj != nil {
			t.Errorf("Expected nil for %q, got %v", raw, obj)
		}
	}
}
