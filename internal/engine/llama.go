//go:build llama

package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

type llamaEngine struct{}

// New returns the go-llama.cpp backed engine.
func New() Engine { return llamaEngine{} }

func (llamaEngine) LoadModel(path string, opts ModelOptions) (Model, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(zn(opts.ContextSize, 2048)),
	}
	if opts.GPULayers > 0 {
		mo = append(mo, llama.SetGPULayers(opts.GPULayers))
	}
	l, err := llama.New(path, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaModel{l: l, opts: opts}, nil
}

// llamaModel owns the loaded weights. The binding's token callback is
// registered per model, so generation runs are serialized on mu even when
// more than one context exists for the model.
type llamaModel struct {
	mu   sync.Mutex
	l    *llama.LLama
	opts ModelOptions
}

func (m *llamaModel) Tokenize(text string) ([]Token, error) {
	n, ids, err := m.l.TokenizeString(text)
	if err != nil {
		return nil, err
	}
	toks := make([]Token, 0, n)
	for _, id := range ids {
		toks = append(toks, Token{ID: id})
	}
	return toks, nil
}

// Detokenize concatenates the text pieces captured at sampling time.
func (m *llamaModel) Detokenize(tokens []Token) (string, error) {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Piece)
	}
	return b.String(), nil
}

func (m *llamaModel) NewContext() (Context, error) {
	return &llamaContext{m: m, capacity: zn(m.opts.ContextSize, 2048)}, nil
}

func (m *llamaModel) Close() error {
	if m.l != nil {
		m.l.Free()
		m.l = nil
	}
	return nil
}

// llamaContext bridges the binding's callback-based streaming into the
// pull-based Context interface: Prefill starts a Predict run whose token
// callback feeds a channel, and Next pops one piece per call.
type llamaContext struct {
	m        *llamaModel
	capacity int
	length   int
	pieces   chan Token
	done     chan error
	cancel   context.CancelFunc
}

func (c *llamaContext) Prefill(ctx context.Context, prompt string, tokens []Token) error {
	if c.pieces != nil {
		return errors.New("context already prefilled; Reset first")
	}
	c.length = len(tokens)
	c.pieces = make(chan Token, 8)
	c.done = make(chan error, 1)
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.run(runCtx, prompt)
	return nil
}

func (c *llamaContext) run(ctx context.Context, prompt string) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	defer close(c.pieces)
	c.m.l.SetTokenCallback(func(piece string) bool {
		select {
		case c.pieces <- Token{Piece: piece}:
			return true
		case <-ctx.Done():
			return false
		}
	})
	po := []llama.PredictOption{
		// The binding has no separate batch thread count, so Threads
		// covers both prefill and decode; ThreadsBatch is ignored here.
		llama.SetThreads(zn(c.m.opts.Threads, 1)),
		llama.SetTokens(c.capacity - c.length),
		// Greedy selection for reproducible translations.
		llama.SetTopK(1),
		llama.SetTemperature(0),
	}
	if c.m.opts.Seed != 0 {
		po = append(po, llama.SetSeed(c.m.opts.Seed))
	}
	_, err := c.m.l.Predict(prompt, po...)
	if err != nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	c.done <- err
}

func (c *llamaContext) Next(ctx context.Context) (Token, bool, error) {
	if c.pieces == nil {
		return Token{}, false, errors.New("context not prefilled")
	}
	select {
	case t, ok := <-c.pieces:
		if !ok {
			if err := <-c.done; err != nil {
				return Token{}, false, err
			}
			return Token{}, true, nil
		}
		c.length++
		return t, false, nil
	case <-ctx.Done():
		return Token{}, false, ctx.Err()
	}
}

func (c *llamaContext) Len() int      { return c.length }
func (c *llamaContext) Capacity() int { return c.capacity }

func (c *llamaContext) Reset() error {
	if c.cancel != nil {
		c.cancel()
		// Drain until close so the Predict goroutine can observe the
		// stop and exit; its final error is irrelevant here.
		for range c.pieces {
		}
		c.cancel = nil
	}
	c.pieces = nil
	c.done = nil
	c.length = 0
	return nil
}

func (c *llamaContext) Close() error { return c.Reset() }

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
