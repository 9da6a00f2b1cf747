// Package translator implements the concurrent translation pipeline: two
// direction-specific models loaded once at startup, a fixed pool of
// decoding contexts per direction with exclusive checkout, and the
// generation loop that turns input text into a translation.
package translator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/egorsmkv/kulyk-go/internal/engine"
	"github.com/egorsmkv/kulyk-go/pkg/types"
)

// Translator dispatches translation requests onto per-direction pools.
// Safe for concurrent use; all mutable state is behind the pools and
// atomic counters.
type Translator struct {
	cfg       Config
	dirs      map[types.Direction]*directionEntry
	startTime time.Time
}

// New loads both direction models and builds their context pools. With
// Config.AllowDegraded unset, any load failure is fatal; otherwise the
// failed direction stays configured but rejects requests.
func New(eng engine.Engine, cfg Config) (*Translator, error) {
	cfg = cfg.withDefaults()
	dirs, err := loadDirections(eng, cfg)
	if err != nil {
		return nil, err
	}
	return &Translator{cfg: cfg, dirs: dirs, startTime: time.Now()}, nil
}

// Translate runs one request end to end: validate direction, check out a
// context, generate, release. The release is deferred so no error path
// can leak a context out of the pool.
func (t *Translator) Translate(ctx context.Context, dir types.Direction, text string, maxNewTokens int) (types.TranslationResult, error) {
	if !dir.Valid() {
		return types.TranslationResult{}, unsupportedDirectionError{direction: dir.String()}
	}
	entry, ok := t.dirs[dir]
	if !ok {
		return types.TranslationResult{}, ErrDirectionUnavailable(dir.String(), "not configured")
	}
	if !entry.available() {
		return types.TranslationResult{}, ErrDirectionUnavailable(dir.String(), entry.loadErr)
	}

	// Empty input never needs the model; answer without touching the pool.
	if strings.TrimSpace(text) == "" {
		return types.TranslationResult{}, nil
	}

	if maxNewTokens <= 0 {
		maxNewTokens = t.cfg.MaxNewTokens
	}

	waitStart := time.Now()
	lease, err := entry.pool.acquire(ctx, t.cfg.MaxWait)
	if err != nil {
		if IsTooBusy(err) {
			translationsTotal.WithLabelValues(dir.String(), "busy").Inc()
		}
		return types.TranslationResult{}, err
	}
	defer lease.Release()
	queueWait.WithLabelValues(dir.String()).Observe(time.Since(waitStart).Seconds())

	prompt := fillPrompt(dir, text)
	res, err := generate(ctx, entry.model, lease.Context(), prompt, maxNewTokens)
	if err != nil {
		translationsTotal.WithLabelValues(dir.String(), outcomeLabel(err)).Inc()
		t.cfg.Logger.Error().Err(err).Str("direction", dir.String()).Msg("translation failed")
		return types.TranslationResult{}, err
	}

	entry.served.Add(1)
	entry.lastUsed.Store(time.Now().Unix())
	translationsTotal.WithLabelValues(dir.String(), "ok").Inc()
	tokensGeneratedTotal.WithLabelValues(dir.String()).Add(float64(res.TokensGenerated))
	generateDuration.WithLabelValues(dir.String()).Observe(res.Duration.Seconds())
	t.cfg.Logger.Debug().Str("direction", dir.String()).
		Int("tokens", res.TokensGenerated).Bool("truncated", res.Truncated).
		Dur("dur", res.Duration).Msg("translation done")
	return res, nil
}

func outcomeLabel(err error) string {
	switch {
	case IsCapacityExceeded(err):
		return "capacity"
	case IsTokenizeFailure(err):
		return "tokenize"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// Ready reports whether at least one direction can serve requests.
func (t *Translator) Ready() bool {
	for _, e := range t.dirs {
		if e.available() {
			return true
		}
	}
	return false
}

// Close releases all pools and models. Callers must have stopped issuing
// Translate calls first.
func (t *Translator) Close() error {
	closeEntries(t.dirs)
	return nil
}
