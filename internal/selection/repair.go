package selection

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/brayvid/news-site/internal/logger"
)

// Model text output is unreliable JSON: fenced, smart-quoted, Python-flavored
// or sloppily keyed. ParseLooseJSON runs an ordered chain of total parse
// attempts, each building on the previous cleanup, and returns the first
// object that parses. Total failure yields nil, logged, never an error.
var (
	fenceOpen          = regexp.MustCompile("^```(?:json)?\\s*")
	fenceClose         = regexp.MustCompile("\\s*```$")
	trailingComma      = regexp.MustCompile(`,\s*([\]}])`)
	bareKey            = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	singleQuotedKey    = regexp.MustCompile(`([{,]\s*)'([^']*)'\s*:`)
	singleQuotedValue  = regexp.MustCompile(`:\s*'([^']*)'`)
	singleQuotedMember = regexp.MustCompile(`([\[,]\s*)'([^']*)'`)
)

// ParseLooseJSON recovers a JSON object from raw model text. Stages, first
// success wins: strict parse; Markdown fence stripping; smart-quote and
// trailing-comma and Python-literal normalization; requoting of bare keys
// and of single-quoted keys, values, and list members. Returns nil when
// nothing parses to an object.
func ParseLooseJSON(raw string) map[string]any {
	text := strings.TrimSpace(raw)
	if text == "" {
		logger.Warn("ParseLooseJSON received empty text")
		return nil
	}

	if obj, ok := tryParseObject(text); ok {
		return obj
	}

	text = strings.TrimSpace(fenceClose.ReplaceAllString(fenceOpen.ReplaceAllString(text, ""), ""))
	if text == "" {
		logger.Warn("Model text was empty after stripping code fences")
		return nil
	}
	if obj, ok := tryParseObject(text); ok {
		return obj
	}

	text = normalizeLiterals(text)
	if obj, ok := tryParseObject(text); ok {
		return obj
	}

	// Requote order matters: keys first, then values, then list members.
	// A fully single-quoted Python-repr object passes through all three.
	text = bareKey.ReplaceAllString(text, `$1"$2":`)
	text = singleQuotedKey.ReplaceAllString(text, `$1"$2":`)
	text = singleQuotedValue.ReplaceAllString(text, `: "$1"`)
	text = singleQuotedMember.ReplaceAllString(text, `$1"$2"`)
	if obj, ok := tryParseObject(text); ok {
		return obj
	}

	snippet := raw
	if len(snippet) > 500 {
		snippet = snippet[:500]
	}
	logger.Error("All JSON repair stages failed", nil, "text", snippet)
	return nil
}

// tryParseObject is a total strict parse: success only when the text is a
// JSON object.
func tryParseObject(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// normalizeLiterals rewrites the usual model slip-ups: typographic quotes,
// trailing commas before a closing bracket, and Python booleans/None.
func normalizeLiterals(text string) string {
	replacer := strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
		"True", "true", "False", "false", "None", "null",
	)
	text = replacer.Replace(text)
	return trailingComma.ReplaceAllString(text, "$1")
}
