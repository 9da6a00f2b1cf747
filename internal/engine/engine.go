// Package engine defines the capability boundary to the native inference
// runtime. The server core only ever talks to these interfaces; the real
// llama.cpp binding lives behind the 'llama' build tag so default builds
// stay CGO-free.
package engine

import "context"

// Token is one vocabulary entry produced by tokenization or sampling.
// Piece carries the token's text fragment when the backend exposes it at
// sampling time.
type Token struct {
	ID    int32
	Piece string
}

// ModelOptions configure model loading and the contexts created from it.
type ModelOptions struct {
	// ContextSize is the KV cache capacity in tokens (prompt + output).
	ContextSize int
	// Threads used for single-token decode steps.
	Threads int
	// ThreadsBatch used for batch (prefill) decode. Zero falls back to
	// Threads.
	ThreadsBatch int
	// GPULayers offloaded to the GPU. Zero keeps everything on CPU.
	GPULayers int
	// Seed for the sampler chain.
	Seed int
}

// Engine loads models. Implementations must be safe for concurrent use.
type Engine interface {
	LoadModel(path string, opts ModelOptions) (Model, error)
}

// Model is a loaded set of weights. Read-only and safe to share across
// contexts and goroutines.
type Model interface {
	Tokenize(text string) ([]Token, error)
	Detokenize(tokens []Token) (string, error)
	// NewContext creates a fresh decoding context bound to this model.
	// Contexts are NOT safe for concurrent use; callers must serialize.
	NewContext() (Context, error)
	Close() error
}

// Context is mutable decoding state (KV cache plus current position).
// Exactly one goroutine may drive a context at a time.
type Context interface {
	// Prefill decodes the full prompt in one batch, seeding the cache.
	Prefill(ctx context.Context, prompt string, tokens []Token) error
	// Next decodes one step and greedily selects the following token.
	// eog is true when the model produced an end-of-sequence signal;
	// the returned token is then meaningless.
	Next(ctx context.Context) (tok Token, eog bool, err error)
	// Len is the current occupied length in tokens (prompt + generated).
	Len() int
	// Capacity is the maximum number of tokens the context can hold.
	Capacity() int
	// Reset clears all decode state so the context can serve a new
	// request with no trace of the previous one.
	Reset() error
	Close() error
}
