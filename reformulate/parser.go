// Package reformulate proposes alternative phrasings of a query, caches
// those proposals, and filters out near-duplicate variants.
package reformulate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// stripMarkdownCodeBlock removes a Markdown code fence (```json ... ``` or
// plain ``` ... ```) wrapping an LLM response, if present. Modeled on the
// teacher's chat.stripMarkdownCodeBlock: LLMs asked for raw JSON routinely
// wrap it in a fence anyway.
func stripMarkdownCodeBlock(input string) string {
	trimmed := strings.TrimSpace(input)

	if len(trimmed) < 6 {
		return trimmed
	}

	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}

	newlineIdx := strings.Index(trimmed, "\n")
	if newlineIdx == -1 {
		return strings.TrimSpace(trimmed[3 : len(trimmed)-3])
	}

	content := trimmed[newlineIdx+1 : len(trimmed)-3]
	return strings.TrimSpace(content)
}

// queryListSchema is the JSON shape the reformulator instructs the model
// to return: a flat list of reformulated query strings.
type queryListSchema struct {
	Queries []string `json:"queries"`
}

const reformulationInstructions = `[OUTPUT FORMAT]
JSON only - RFC8259 compliant

[RESTRICTIONS]
• No explanations or commentary
• No markdown formatting or code blocks
• No backticks or ` + "```json```" + ` wrappers

[JSON SCHEMA]
{"queries": ["alternative phrasing 1", "alternative phrasing 2", ...]}

[EXPECTED OUTPUT]
Raw JSON object matching the schema above.`

// parseQueryList strips any Markdown fence and unmarshals the model's
// response into a slice of reformulated query strings.
func parseQueryList(rawLLMOutput string) ([]string, error) {
	clean := stripMarkdownCodeBlock(rawLLMOutput)
	var parsed queryListSchema
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, errors.Join(err, fmt.Errorf("reformulate: failed to parse JSON content: %s (original input: %s)", clean, rawLLMOutput))
	}
	return parsed.Queries, nil
}
