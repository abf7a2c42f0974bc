// Package selection builds the curation prompt, issues the single Gemini
// call, and parses the model's structured selection back into a plain
// topic -> headlines mapping through an ordered fallback chain.
package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/brayvid/news-site/internal/core"
	"github.com/brayvid/news-site/internal/logger"
)

// ToolName is the function the model is instructed to call.
const ToolName = "format_digest_selection"

// Orchestrator owns the Gemini client and the selection limits that shape
// both the tool schema and the prompt. One Select call per run, no retries;
// every failure degrades to an empty selection.
type Orchestrator struct {
	client      *genai.Client
	model       string
	maxTopics   int
	maxPerTopic int
}

// NewOrchestrator creates the Gemini-backed selector. The API key is
// required; a missing key is a startup failure, not a per-run one.
func NewOrchestrator(ctx context.Context, apiKey, model string, maxTopics, maxPerTopic int) (*Orchestrator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Orchestrator{
		client:      client,
		model:       model,
		maxTopics:   maxTopics,
		maxPerTopic: maxPerTopic,
	}, nil
}

// digestTool declares the selection function. The caps are descriptive: the
// schema asks the model to respect them, enforcement happens caller-side.
func digestTool(maxTopics, maxPerTopic int) *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name: ToolName,
			Description: fmt.Sprintf(
				"Formats the selected news topics and headlines for the user's digest. "+
					"You must select up to %d of the most important topics. "+
					"For each selected topic, return up to %d most important headlines. "+
					"The output should be structured as a list of objects, where each object contains a "+
					"'topic_name' and a list of 'headlines' corresponding to that topic.",
				maxTopics, maxPerTopic),
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"selected_digest_entries": {
						Type: genai.TypeArray,
						Description: fmt.Sprintf(
							"A list of selected news topics. Each entry should be an object containing a "+
								"'topic_name' (string) and 'headlines' (a list of strings). Select up to %d "+
								"topics, and for each topic, select up to %d of the most relevant headlines.",
							maxTopics, maxPerTopic),
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"topic_name": {
									Type:        genai.TypeString,
									Description: "The name of the news topic (e.g., 'Technology', 'Climate Change').",
								},
								"headlines": {
									Type:        genai.TypeArray,
									Items:       &genai.Schema{Type: genai.TypeString},
									Description: "The most important headline strings for this topic.",
								},
							},
							Required: []string{"topic_name", "headlines"},
						},
					},
				},
				Required: []string{"selected_digest_entries"},
			},
		}},
	}
}

// buildPrompt assembles the curation instructions: editorial rules, user
// preferences, and the full candidate set as topic -> [headline] JSON with
// topics in sorted order.
func buildPrompt(set core.CandidateSet, userPreferences string, maxTopics, maxPerTopic int) string {
	candidateJSON, err := json.MarshalIndent(set.Headlines, "", "  ")
	if err != nil {
		candidateJSON = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("You are an expert news curator. Your task is to meticulously select and deduplicate " +
		"the most relevant news topics and headlines for a user's news digest. You will be given user " +
		"preferences and a list of candidate articles. Your goal is to produce a concise, high-quality " +
		"digest adhering to strict criteria.\n\n")
	fmt.Fprintf(&b, "User Preferences:\n%s\n\n", userPreferences)
	fmt.Fprintf(&b, "Available Topics and Headlines (candidate articles):\n%s\n\n", candidateJSON)
	b.WriteString("Core Selection and Prioritization Logic:\n" +
		"1. **Topic Importance (User-Defined):** Identify topics that align with the user's preferences and " +
		"assigned importance weights (1=lowest, 5=highest). This is the primary driver for topic selection.\n" +
		"2. **Headline Newsworthiness & Relevance:** Within those topics, select headlines that are genuinely " +
		"newsworthy, factual, objective, and deeply informative.\n" +
		"3. **Recency:** For developing stories with multiple updates, prefer the latest headline that provides " +
		"the most comprehensive information.\n\n")
	b.WriteString("Strict Filtering Criteria:\n\n")
	fmt.Fprintf(&b, "* **Output Limits:** Select up to %d topics; for each selected topic, choose up to %d headlines.\n", maxTopics, maxPerTopic)
	b.WriteString("* **Aggressive Deduplication:** If multiple headlines cover the exact same core event or " +
		"substantively similar information, even under different candidate topics, select ONLY ONE - the most " +
		"comprehensive, authoritative, or recent version.\n" +
		"* **Banned/Demoted Content:** Strictly REJECT any headlines containing terms flagged as 'banned'. " +
		"Strongly deprioritize headlines with 'demote' terms; select them only when no other suitable headline " +
		"exists for a critical user topic.\n" +
		"* **Commercial Content:** REJECT advertisements, investment solicitation for specific securities, and " +
		"product promotion that is not itself newsworthy.\n" +
		"* **Content Quality & Style:** PRIORITIZE content-rich, factual, neutrally-toned reporting. AVOID " +
		"sensationalism, clickbait, celebrity fluff, opinion pieces, question headlines, and listicles. Keep a " +
		"healthy diversity of subjects; do not let one event dominate the digest.\n\n")
	fmt.Fprintf(&b, "Based on all the above, provide your selections using the '%s' tool.", ToolName)
	return b.String()
}

// Select sends the candidate set to the model and parses its response into a
// Selection. Any failure - network, malformed call, safety refusal,
// unparseable text - returns an empty Selection; this is a normal degraded
// outcome, never an error the caller must handle.
func (o *Orchestrator) Select(ctx context.Context, set core.CandidateSet, userPreferences string) core.Selection {
	prompt := buildPrompt(set, userPreferences, o.maxTopics, o.maxPerTopic)

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{digestTool(o.maxTopics, o.maxPerTopic)},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{ToolName},
			},
		},
	}

	logger.Info("Sending selection request to Gemini", "model", o.model, "topics", len(set.Headlines))
	resp, err := o.client.Models.GenerateContent(ctx, o.model, contents, config)
	if err != nil {
		logger.Error("Gemini selection call failed", err)
		return core.Selection{}
	}

	return parseResponse(resp)
}

// parseResponse walks the fallback chain: structured tool invocation first,
// then lenient free-text JSON recovery, otherwise empty.
func parseResponse(resp *genai.GenerateContentResponse) core.Selection {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		logger.Warn("Gemini returned no candidates")
		return core.Selection{}
	}
	candidate := resp.Candidates[0]

	var call *genai.FunctionCall
	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			call = part.FunctionCall
			break
		}
	}

	if call == nil && candidate.FinishReason == genai.FinishReasonMalformedFunctionCall {
		logger.Error("Gemini signalled a malformed function call with no usable payload", nil)
		return core.Selection{}
	}

	if call != nil {
		if call.Name != ToolName {
			logger.Warn("Gemini called an unexpected tool", "tool", call.Name)
			return core.Selection{}
		}
		return entriesToSelection(call.Args["selected_digest_entries"])
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		logger.Warn("Gemini returned neither a tool call nor text content", "finish_reason", candidate.FinishReason)
		return core.Selection{}
	}

	logger.Warn("Gemini skipped the tool, attempting to parse text response")
	parsed := ParseLooseJSON(text)
	if parsed == nil {
		return core.Selection{}
	}
	return entriesToSelection(parsed["selected_digest_entries"])
}

// entriesToSelection canonicalizes the ad hoc shapes a tool-call or repaired
// JSON payload may arrive in. Entries missing a topic name or headlines are
// dropped, repeated topic names merge, and headlines dedup within a topic.
// The rest of the pipeline only ever sees this canonical form.
func entriesToSelection(raw any) core.Selection {
	list, ok := raw.([]any)
	if !ok {
		logger.Warn("selected_digest_entries is missing or not a list")
		return core.Selection{}
	}

	sel := core.Selection{Headlines: make(map[string][]string)}
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			logger.Warn("Skipping non-object digest entry")
			continue
		}
		name, _ := entry["topic_name"].(string)
		name = strings.TrimSpace(name)
		headlines := stringSlice(entry["headlines"])
		if name == "" || len(headlines) == 0 {
			logger.Warn("Skipping digest entry without topic name or headlines", "topic", name)
			continue
		}

		if _, exists := sel.Headlines[name]; !exists {
			sel.Topics = append(sel.Topics, name)
		}
		sel.Headlines[name] = dedupStrings(append(sel.Headlines[name], headlines...))
	}

	if len(sel.Headlines) == 0 {
		return core.Selection{}
	}
	return sel
}

// stringSlice flattens the possible wrapper shapes of a headline list into a
// plain []string, dropping non-string members.
func stringSlice(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, member := range v {
			if s, ok := member.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func dedupStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Truncate enforces the topic cap on a parsed selection, keeping the model's
// return order. Per-topic headline caps are enforced later, in
// reconciliation.
func Truncate(sel core.Selection, maxTopics int) core.Selection {
	if len(sel.Topics) <= maxTopics {
		return sel
	}
	logger.Warn("Model returned more topics than allowed, truncating", "returned", len(sel.Topics), "max", maxTopics)

	kept := core.Selection{Headlines: make(map[string][]string, maxTopics)}
	kept.Topics = sel.Topics[:maxTopics]
	for _, topic := range kept.Topics {
		kept.Headlines[topic] = sel.Headlines[topic]
	}
	return kept
}
