package translator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/egorsmkv/kulyk-go/internal/engine"
	"github.com/egorsmkv/kulyk-go/pkg/types"
)

// fakeEngine is a deterministic in-memory engine. Generation echoes the
// decoded prompt back one word per token, so output content is a pure
// function of everything the context has seen since its last reset:
// any state bleeding between requests shows up directly in the output.
type fakeEngine struct {
	// failPaths makes LoadModel fail for specific model paths.
	failPaths map[string]error
	// stepDelay slows each Next call to make contention observable.
	stepDelay time.Duration
	// capacity overrides ModelOptions.ContextSize when non-zero.
	capacity int

	mu     sync.Mutex
	loaded []string
}

func (f *fakeEngine) LoadModel(path string, opts engine.ModelOptions) (engine.Model, error) {
	if err := f.failPaths[path]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.loaded = append(f.loaded, path)
	f.mu.Unlock()
	capacity := opts.ContextSize
	if f.capacity > 0 {
		capacity = f.capacity
	}
	return &fakeModel{eng: f, capacity: capacity}, nil
}

type fakeModel struct {
	eng      *fakeEngine
	capacity int

	mu       sync.Mutex
	contexts []*fakeContext
}

func (m *fakeModel) Tokenize(text string) ([]engine.Token, error) {
	words := strings.Fields(text)
	toks := make([]engine.Token, 0, len(words))
	for i, w := range words {
		toks = append(toks, engine.Token{ID: int32(i), Piece: w})
	}
	return toks, nil
}

func (m *fakeModel) Detokenize(tokens []engine.Token) (string, error) {
	pieces := make([]string, 0, len(tokens))
	for _, t := range tokens {
		pieces = append(pieces, t.Piece)
	}
	return strings.Join(pieces, " "), nil
}

func (m *fakeModel) NewContext() (engine.Context, error) {
	c := &fakeContext{model: m}
	m.mu.Lock()
	m.contexts = append(m.contexts, c)
	m.mu.Unlock()
	return c, nil
}

func (m *fakeModel) Close() error { return nil }

// fakeContext keeps every decoded token in history until Reset, imitating
// a KV cache. Prefill schedules the echo of the full history, so a missed
// reset leaks the previous request's words into the next output.
type fakeContext struct {
	model *fakeModel

	history  []engine.Token
	pending  []engine.Token
	resets   int
	prefills int
}

func (c *fakeContext) Prefill(ctx context.Context, prompt string, tokens []engine.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.prefills++
	c.history = append(c.history, tokens...)
	c.pending = append([]engine.Token(nil), c.history...)
	return nil
}

func (c *fakeContext) Next(ctx context.Context) (engine.Token, bool, error) {
	if d := c.model.eng.stepDelay; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return engine.Token{}, false, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return engine.Token{}, false, err
	}
	if len(c.pending) == 0 {
		return engine.Token{}, true, nil
	}
	tok := c.pending[0]
	c.pending = c.pending[1:]
	c.history = append(c.history, tok)
	return tok, false, nil
}

func (c *fakeContext) Len() int      { return len(c.history) }
func (c *fakeContext) Capacity() int { return c.model.capacity }

func (c *fakeContext) Reset() error {
	c.resets++
	c.history = nil
	c.pending = nil
	return nil
}

func (c *fakeContext) Close() error { return nil }

// expectedEcho is what a correctly reset context produces for the given
// request: the rendered prompt echoed back word by word.
func expectedEcho(d types.Direction, text string) string {
	return strings.Join(strings.Fields(fillPrompt(d, text)), " ")
}
