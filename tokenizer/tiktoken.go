// Package tokenizer estimates token counts for text content, the unit the
// "tokens" budget resource and the Assembler's token-bounded selection are
// both denominated in.
package tokenizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TextEstimator estimates the number of tokens in a piece of text.
type TextEstimator interface {
	EstimateText(ctx context.Context, text string) (int, error)
}

var _ TextEstimator = (*TikTokenEstimator)(nil)

// TikTokenEstimator wraps a cached tiktoken-go encoding. Encodings are
// expensive to build, so one is built once per distinct encoding name and
// reused across requests.
type TikTokenEstimator struct {
	encodingName string

	once     sync.Once
	encoding *tiktoken.Tiktoken
	buildErr error
}

// NewTikTokenEstimator returns an estimator for the named tiktoken
// encoding (e.g. "cl100k_base"). The encoding is lazily built on first use.
func NewTikTokenEstimator(encodingName string) *TikTokenEstimator {
	return &TikTokenEstimator{encodingName: encodingName}
}

// NewCL100KEstimator is a convenience constructor for the encoding used by
// the OpenAI chat models this repo's LLM-backed reference adapters target.
func NewCL100KEstimator() *TikTokenEstimator {
	return NewTikTokenEstimator(tiktoken.MODEL_CL100K_BASE)
}

func (e *TikTokenEstimator) ensure() error {
	e.once.Do(func() {
		e.encoding, e.buildErr = tiktoken.GetEncoding(e.encodingName)
		if e.buildErr != nil {
			e.buildErr = fmt.Errorf("tokenizer: loading encoding %q: %w", e.encodingName, e.buildErr)
		}
	})
	return e.buildErr
}

// EstimateText returns the token count tiktoken assigns to text.
func (e *TikTokenEstimator) EstimateText(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := e.ensure(); err != nil {
		return 0, err
	}
	return len(e.encoding.Encode(text, nil, nil)), nil
}
