package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/egorsmkv/kulyk-go/internal/engine"
	"github.com/egorsmkv/kulyk-go/pkg/types"
)

// generate runs the tokenize -> prefill -> autoregressive loop for one
// request against a borrowed context. Cancellation is observed between
// decode steps, not just before and after the loop, so a dropped request
// stops burning CPU after at most one more token.
func generate(ctx context.Context, model engine.Model, ectx engine.Context, prompt string, maxNewTokens int) (types.TranslationResult, error) {
	start := time.Now()

	tokens, err := model.Tokenize(prompt)
	if err != nil {
		return types.TranslationResult{}, tokenizeError{cause: err}
	}
	capacity := ectx.Capacity()
	// The KV cache must fit the whole prompt plus at least one generated
	// token; oversized prompts fail instead of being silently truncated.
	if len(tokens) >= capacity {
		return types.TranslationResult{}, capacityError{promptTokens: len(tokens), capacity: capacity}
	}
	remaining := capacity - len(tokens)
	if maxNewTokens <= 0 || maxNewTokens > remaining {
		maxNewTokens = remaining
	}

	if err := ectx.Prefill(ctx, prompt, tokens); err != nil {
		return types.TranslationResult{}, fmt.Errorf("prefill: %w", err)
	}

	generated := make([]engine.Token, 0, maxNewTokens)
	truncated := false
	for {
		if err := ctx.Err(); err != nil {
			return types.TranslationResult{}, err
		}
		if len(generated) >= maxNewTokens || ectx.Len() >= capacity {
			truncated = true
			break
		}
		tok, eog, err := ectx.Next(ctx)
		if err != nil {
			return types.TranslationResult{}, fmt.Errorf("decode: %w", err)
		}
		if eog {
			break
		}
		generated = append(generated, tok)
	}

	text, err := model.Detokenize(generated)
	if err != nil {
		return types.TranslationResult{}, fmt.Errorf("detokenize: %w", err)
	}
	return types.TranslationResult{
		Text:            strings.TrimSpace(text),
		TokensGenerated: len(generated),
		Truncated:       truncated,
		Duration:        time.Since(start),
	}, nil
}
