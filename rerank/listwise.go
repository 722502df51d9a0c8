// Package rerank scores proposed batches of pool candidates against the
// query, the step that moves items from IN_FLIGHT to RERANKED or DROPPED.
package rerank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ragtune-ai/ragtune"
	"github.com/ragtune-ai/ragtune/pool"
)

var _ ragtune.Reranker = (*ListwiseLLMReranker)(nil)

type listwiseScore struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

type listwiseResponse struct {
	Scores []listwiseScore `json:"scores"`
}

const listwiseInstructions = `[OUTPUT FORMAT]
JSON only - RFC8259 compliant

[RESTRICTIONS]
• No explanations or commentary
• No markdown formatting or code blocks
• Score every doc_id given, once each, on a 0.0-1.0 relevance scale

[JSON SCHEMA]
{"scores": [{"doc_id": "...", "score": 0.0}, ...]}

[EXPECTED OUTPUT]
Raw JSON object matching the schema above.`

// ListwiseLLMReranker asks a chat model to score a whole batch of
// candidates against the query in one call, the "listwise" rerank
// strategy. Documents the model's response omits are left unscored, so
// the pool drops them per Reranker's documented contract.
type ListwiseLLMReranker struct {
	client *openai.Client
	model  string
}

// NewListwiseLLMReranker returns a reranker using the OpenAI chat
// completions API.
func NewListwiseLLMReranker(apiKey string, model string) *ListwiseLLMReranker {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &ListwiseLLMReranker{client: &client, model: model}
}

func buildListwisePrompt(items []pool.ItemView, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nCandidates:\n", query)
	for _, it := range items {
		fmt.Fprintf(&b, "- doc_id: %s\n  content: %s\n", it.DocID, it.Content)
	}
	return b.String()
}

func (r *ListwiseLLMReranker) Rerank(ctx context.Context, items []pool.ItemView, strategy string, rc *ragtune.Context) (map[string]float64, error) {
	if len(items) == 0 {
		return map[string]float64{}, nil
	}

	completion, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(listwiseInstructions),
			openai.UserMessage(buildListwisePrompt(items, rc.Query)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rerank: chat completion request: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("rerank: chat completion returned no choices")
	}

	clean := strings.TrimSpace(completion.Choices[0].Message.Content)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var parsed listwiseResponse
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("rerank: failed to parse scores JSON: %w (raw: %s)", err, clean)
	}

	scores := make(map[string]float64, len(parsed.Scores))
	for _, s := range parsed.Scores {
		scores[s.DocID] = s.Score
	}
	return scores, nil
}
