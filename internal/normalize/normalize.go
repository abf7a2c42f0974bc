// Package normalize canonicalizes free text into a comparable token
// signature. Two texts that normalize identically are treated as the same
// story for deduplication purposes; that is an accepted lexical
// approximation, not a semantic guarantee.
package normalize

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Normalize lowercases text, extracts word tokens, applies a stemming
// reduction followed by a lemmatization reduction per token, and rejoins the
// tokens with single spaces. Pure and deterministic. The stem+lemma
// composition is stable at the token level only; callers must not assume
// string-level idempotence.
func Normalize(text string) string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return ""
	}
	reduced := make([]string, len(words))
	for i, w := range words {
		reduced[i] = lemmaReduce(english.Stem(w, true))
	}
	return strings.Join(reduced, " ")
}

// Tokens returns the normalized form of text split into individual tokens,
// preserving order. Returns nil when nothing survives normalization.
func Tokens(text string) []string {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}
	return strings.Fields(norm)
}

// TokenSet returns the normalized tokens of text as a set.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokens(text)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// lemmaReduce collapses possessives and residual plural forms left after
// stemming. A dictionary-free stand-in for a full lemmatizer; good enough for
// headline-scale token matching.
func lemmaReduce(w string) string {
	w = strings.TrimSuffix(w, "'s")
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return strings.TrimSuffix(w, "s")
	}
	return w
}
