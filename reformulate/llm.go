package reformulate

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ragtune-ai/ragtune"
)

var _ ragtune.Reformulator = (*LLMReformulator)(nil)

// LLMReformulator asks a chat model for alternative phrasings of the
// query carried by the Context, modeled on the teacher's openaiv2.Api
// chat-completion wrapper. The model is instructed to reply with a raw
// JSON object (see reformulationInstructions) rather than free text.
type LLMReformulator struct {
	client *openai.Client
	model  string
	// MaxVariants caps how many of the model's proposed queries are
	// returned; zero means no cap.
	MaxVariants int
}

// NewLLMReformulator returns a reformulator using the OpenAI chat
// completions API via the given model name (e.g. openai.ChatModelGPT4o).
func NewLLMReformulator(apiKey string, model string, maxVariants int) *LLMReformulator {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &LLMReformulator{client: &client, model: model, MaxVariants: maxVariants}
}

func (r *LLMReformulator) Generate(ctx context.Context, rc *ragtune.Context) ([]string, error) {
	if rc == nil {
		return nil, errors.New("reformulate: context is nil")
	}

	completion, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(reformulationInstructions),
			openai.UserMessage(rc.Query),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("reformulate: chat completion request: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("reformulate: chat completion returned no choices")
	}

	queries, err := parseQueryList(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	queries = CleanVariants(rc.Query, queries)
	if r.MaxVariants > 0 && len(queries) > r.MaxVariants {
		queries = queries[:r.MaxVariants]
	}
	return queries, nil
}
