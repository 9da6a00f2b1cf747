package translator

import (
	"fmt"
	"sync/atomic"

	"github.com/egorsmkv/kulyk-go/internal/engine"
	"github.com/egorsmkv/kulyk-go/pkg/types"
)

// directionEntry holds everything the server owns for one direction: the
// loaded weights (immutable after startup), the context pool, and serving
// counters. When loadErr is non-empty the direction is configured but not
// serving.
type directionEntry struct {
	direction types.Direction
	path      string
	model     engine.Model
	loadErr   string
	pool      *contextPool

	served   atomic.Uint64
	lastUsed atomic.Int64 // unix seconds, 0 = never
}

func (e *directionEntry) available() bool {
	return e != nil && e.model != nil && e.loadErr == ""
}

// loadDirections loads the configured model for every direction and builds
// its context pool. A load failure aborts startup unless cfg.AllowDegraded
// is set, in which case the direction is recorded as unavailable and the
// remaining ones keep serving.
func loadDirections(eng engine.Engine, cfg Config) (map[types.Direction]*directionEntry, error) {
	entries := make(map[types.Direction]*directionEntry, len(cfg.Models))
	for _, mc := range cfg.Models {
		if !mc.Direction.Valid() {
			return nil, fmt.Errorf("configured model has unknown direction %q", mc.Direction)
		}
		if _, dup := entries[mc.Direction]; dup {
			return nil, fmt.Errorf("direction %s configured twice", mc.Direction)
		}
		entry := &directionEntry{direction: mc.Direction, path: mc.Path}
		entries[mc.Direction] = entry

		opts := engine.ModelOptions{
			ContextSize:  cfg.ContextSize,
			Threads:      cfg.Threads,
			ThreadsBatch: cfg.ThreadsBatch,
			GPULayers:    cfg.GPULayers,
			Seed:         cfg.Seed,
		}
		model, err := eng.LoadModel(mc.Path, opts)
		if err != nil {
			loadErr := modelLoadError{direction: mc.Direction.String(), path: mc.Path, cause: err}
			if !cfg.AllowDegraded {
				closeEntries(entries)
				return nil, loadErr
			}
			cfg.Logger.Error().Err(loadErr).Str("direction", mc.Direction.String()).
				Msg("model load failed, direction marked unavailable")
			entry.loadErr = loadErr.Error()
			continue
		}
		pool, err := newContextPool(mc.Direction, model, cfg.PoolSize)
		if err != nil {
			_ = model.Close()
			closeEntries(entries)
			return nil, fmt.Errorf("context pool for %s: %w", mc.Direction, err)
		}
		entry.model = model
		entry.pool = pool
		cfg.Logger.Info().Str("direction", mc.Direction.String()).Str("path", mc.Path).
			Int("pool_size", cfg.PoolSize).Int("ctx_size", cfg.ContextSize).
			Msg("model loaded")
	}
	return entries, nil
}

func closeEntries(entries map[types.Direction]*directionEntry) {
	for _, e := range entries {
		if e.pool != nil {
			e.pool.close()
		}
		if e.model != nil {
			_ = e.model.Close()
		}
	}
}
