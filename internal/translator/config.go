package translator

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/egorsmkv/kulyk-go/pkg/types"
)

// Defaults applied when corresponding Config fields are unset. Context size
// and seed match the reference deployment.
const (
	defaultContextSize = 2048
	defaultPoolSize    = 1
	defaultMaxWait     = 30 * time.Second
	defaultSeed        = 1234
)

// ModelConfig names the weights file serving one direction.
type ModelConfig struct {
	Direction types.Direction
	Path      string
}

// Config encapsulates all tunables for Translator construction.
type Config struct {
	// Models to load, one per direction. Both directions are expected;
	// a missing entry leaves the direction unavailable.
	Models []ModelConfig
	// ContextSize is the per-context token capacity (prompt + output).
	ContextSize int
	// Threads for single-token decode; ThreadsBatch for prompt prefill
	// (falls back to Threads when zero).
	Threads      int
	ThreadsBatch int
	// GPULayers offloaded to the GPU, zero for CPU-only.
	GPULayers int
	// Seed for the sampler chain.
	Seed int
	// PoolSize is the number of decoding contexts per direction. It is
	// the single concurrency knob: contexts trade memory for parallel
	// throughput.
	PoolSize int
	// MaxNewTokens caps generation when the request does not. Zero means
	// "up to remaining context capacity".
	MaxNewTokens int
	// MaxWait bounds how long a request waits for a free context before
	// being rejected as too busy.
	MaxWait time.Duration
	// AllowDegraded keeps the server up when one direction's model fails
	// to load; requests for it are rejected with a typed error.
	AllowDegraded bool

	Logger zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.ContextSize <= 0 {
		c.ContextSize = defaultContextSize
	}
	if c.PoolSize <= 0 {
		c.PoolSize = defaultPoolSize
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	if c.Seed == 0 {
		c.Seed = defaultSeed
	}
	if c.ThreadsBatch <= 0 {
		c.ThreadsBatch = c.Threads
	}
	return c
}
