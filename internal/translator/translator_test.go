package translator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/egorsmkv/kulyk-go/pkg/types"
)

func newTestTranslator(t *testing.T, eng *fakeEngine, mutate func(*Config)) *Translator {
	t.Helper()
	cfg := Config{
		Models: []ModelConfig{
			{Direction: types.DirectionUKEN, Path: "uk-en.gguf"},
			{Direction: types.DirectionENUK, Path: "en-uk.gguf"},
		},
		ContextSize: 1024,
		Logger:      zerolog.Nop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	tr, err := New(eng, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func (t *Translator) testContexts(d types.Direction) []*fakeContext {
	m := t.dirs[d].model.(*fakeModel)
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*fakeContext(nil), m.contexts...)
}

func TestTranslate_Basic(t *testing.T) {
	tr := newTestTranslator(t, &fakeEngine{}, nil)
	res, err := tr.Translate(context.Background(), types.DirectionUKEN, "Привіт", 0)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text == "" {
		t.Fatalf("expected non-empty translation")
	}
	if res.Truncated {
		t.Fatalf("expected natural stop, got truncated")
	}
	if res.TokensGenerated == 0 {
		t.Fatalf("expected generated tokens")
	}
	if want := expectedEcho(types.DirectionUKEN, "Привіт"); res.Text != want {
		t.Fatalf("output mismatch:\n got %q\nwant %q", res.Text, want)
	}
}

func TestTranslate_UnsupportedDirection(t *testing.T) {
	tr := newTestTranslator(t, &fakeEngine{}, nil)
	_, err := tr.Translate(context.Background(), types.Direction("fr-en"), "Bonjour", 0)
	if err == nil || !IsUnsupportedDirection(err) {
		t.Fatalf("expected unsupported direction error, got %v", err)
	}
	// Pool untouched: no context was ever prefilled or reset.
	for _, d := range types.Directions() {
		for _, c := range tr.testContexts(d) {
			if c.prefills != 0 || c.resets != 0 {
				t.Fatalf("pool for %s was touched (prefills=%d resets=%d)", d, c.prefills, c.resets)
			}
		}
	}
}

func TestTranslate_EmptyInput(t *testing.T) {
	tr := newTestTranslator(t, &fakeEngine{}, nil)
	res, err := tr.Translate(context.Background(), types.DirectionUKEN, "   ", 0)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "" || res.Truncated || res.TokensGenerated != 0 {
		t.Fatalf("expected empty untruncated result, got %+v", res)
	}
	for _, c := range tr.testContexts(types.DirectionUKEN) {
		if c.prefills != 0 {
			t.Fatalf("empty input must not reach the model")
		}
	}
}

func TestTranslate_Truncation(t *testing.T) {
	tr := newTestTranslator(t, &fakeEngine{}, nil)
	res, err := tr.Translate(context.Background(), types.DirectionENUK, "one two three four five", 3)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !res.Truncated {
		t.Fatalf("expected truncated result")
	}
	if res.TokensGenerated != 3 {
		t.Fatalf("expected exactly 3 tokens, got %d", res.TokensGenerated)
	}
}

func TestTranslate_CapacityExceeded(t *testing.T) {
	// Capacity exactly equal to the prompt's token count leaves no room
	// for even one generated token and must fail, not silently truncate.
	input := strings.Repeat("слово ", 12)
	promptTokens := len(strings.Fields(fillPrompt(types.DirectionUKEN, input)))
	eng := &fakeEngine{capacity: promptTokens}
	tr := newTestTranslator(t, eng, nil)
	_, err := tr.Translate(context.Background(), types.DirectionUKEN, input, 1)
	if err == nil || !IsCapacityExceeded(err) {
		t.Fatalf("expected capacity error, got %v", err)
	}
}

func TestTranslate_DegradedDirection(t *testing.T) {
	eng := &fakeEngine{failPaths: map[string]error{"en-uk.gguf": os.ErrNotExist}}
	tr := newTestTranslator(t, eng, func(c *Config) { c.AllowDegraded = true })

	if _, err := tr.Translate(context.Background(), types.DirectionENUK, "hello", 0); err == nil || !IsDirectionUnavailable(err) {
		t.Fatalf("expected direction unavailable, got %v", err)
	}
	// The healthy direction keeps serving.
	if _, err := tr.Translate(context.Background(), types.DirectionUKEN, "Привіт", 0); err != nil {
		t.Fatalf("healthy direction failed: %v", err)
	}
	if !tr.Ready() {
		t.Fatalf("expected ready with one healthy direction")
	}
}

func TestNew_LoadFailureIsFatalByDefault(t *testing.T) {
	eng := &fakeEngine{failPaths: map[string]error{"en-uk.gguf": os.ErrNotExist}}
	cfg := Config{
		Models: []ModelConfig{
			{Direction: types.DirectionUKEN, Path: "uk-en.gguf"},
			{Direction: types.DirectionENUK, Path: "en-uk.gguf"},
		},
		Logger: zerolog.Nop(),
	}
	_, err := New(eng, cfg)
	if err == nil || !IsModelLoadFailure(err) {
		t.Fatalf("expected model load failure, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestTranslate_NoCrossRequestBleed(t *testing.T) {
	tr := newTestTranslator(t, &fakeEngine{}, nil)
	first, err := tr.Translate(context.Background(), types.DirectionUKEN, "перший запит", 0)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if !strings.Contains(first.Text, "перший") {
		t.Fatalf("first output missing own input: %q", first.Text)
	}
	second, err := tr.Translate(context.Background(), types.DirectionUKEN, "другий", 0)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if strings.Contains(second.Text, "перший") {
		t.Fatalf("second output leaked first request's content: %q", second.Text)
	}
	if want := expectedEcho(types.DirectionUKEN, "другий"); second.Text != want {
		t.Fatalf("second output mismatch:\n got %q\nwant %q", second.Text, want)
	}
}

func TestTranslate_ConcurrentRequests(t *testing.T) {
	const n = 8
	eng := &fakeEngine{stepDelay: time.Millisecond}
	tr := newTestTranslator(t, eng, func(c *Config) { c.PoolSize = 2 })

	var wg sync.WaitGroup
	errs := make([]error, n)
	texts := make([]string, n)
	results := make([]types.TranslationResult, n)
	for i := 0; i < n; i++ {
		texts[i] = fmt.Sprintf("речення номер %d", i)
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = tr.Translate(context.Background(), types.DirectionUKEN, texts[i], 0)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("request %d failed: %v", i, errs[i])
		}
		if want := expectedEcho(types.DirectionUKEN, texts[i]); results[i].Text != want {
			t.Fatalf("request %d got cross-contaminated output:\n got %q\nwant %q", i, results[i].Text, want)
		}
		if results[i].Truncated {
			t.Fatalf("request %d unexpectedly truncated", i)
		}
	}
	if inUse := tr.dirs[types.DirectionUKEN].pool.inUse(); inUse != 0 {
		t.Fatalf("expected all contexts returned, %d still in use", inUse)
	}
}

func TestTranslate_CancellationReleasesContext(t *testing.T) {
	eng := &fakeEngine{stepDelay: 5 * time.Millisecond}
	tr := newTestTranslator(t, eng, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(12 * time.Millisecond)
		cancel()
	}()
	_, err := tr.Translate(ctx, types.DirectionUKEN, "довгий текст для перекладу який не завершиться", 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The context must be back in the pool and reset for the next caller.
	eng.stepDelay = 0
	res, err := tr.Translate(context.Background(), types.DirectionUKEN, "новий", 0)
	if err != nil {
		t.Fatalf("follow-up: %v", err)
	}
	if want := expectedEcho(types.DirectionUKEN, "новий"); res.Text != want {
		t.Fatalf("follow-up observed stale state:\n got %q\nwant %q", res.Text, want)
	}
}

func TestTranslate_TooBusy(t *testing.T) {
	eng := &fakeEngine{stepDelay: 10 * time.Millisecond}
	tr := newTestTranslator(t, eng, func(c *Config) { c.MaxWait = 20 * time.Millisecond })

	release := make(chan struct{})
	go func() {
		defer close(release)
		_, _ = tr.Translate(context.Background(), types.DirectionUKEN, strings.Repeat("слово ", 30), 0)
	}()
	time.Sleep(5 * time.Millisecond) // let the first request take the context

	_, err := tr.Translate(context.Background(), types.DirectionUKEN, "друге", 0)
	if err == nil || !IsTooBusy(err) {
		t.Fatalf("expected too busy, got %v", err)
	}
	<-release
}

func TestStatus(t *testing.T) {
	eng := &fakeEngine{failPaths: map[string]error{"en-uk.gguf": os.ErrNotExist}}
	tr := newTestTranslator(t, eng, func(c *Config) { c.AllowDegraded = true })
	if _, err := tr.Translate(context.Background(), types.DirectionUKEN, "Привіт", 0); err != nil {
		t.Fatalf("Translate: %v", err)
	}

	st := tr.Status()
	if len(st.Directions) != 2 {
		t.Fatalf("expected 2 directions, got %d", len(st.Directions))
	}
	byDir := map[string]types.DirectionStatus{}
	for _, d := range st.Directions {
		byDir[d.Direction] = d
	}
	uken := byDir["uk-en"]
	if !uken.Available || uken.Served != 1 || uken.PoolSize != 1 || uken.InUse != 0 {
		t.Fatalf("unexpected uk-en status: %+v", uken)
	}
	enuk := byDir["en-uk"]
	if enuk.Available || enuk.Error == "" {
		t.Fatalf("expected en-uk unavailable with error, got %+v", enuk)
	}
}
