package config

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"shufflerd/internal/shuffler"
)

// Defaults for the daemon surface. Remaining scheduler defaults live in the
// shuffler package and are applied there for zero values.
const (
	DefaultAddr            = ":8080"
	DefaultLogLevel        = "info"
	DefaultDisplayFPS      = 24
	DefaultFlipInterval    = 0.175
	DefaultQueueLength     = 9
	DefaultInsertionCount  = 5
	DefaultGenerator       = "dummy"
	DefaultGeminiAPIKeyEnv = "GEMINI_API_KEY"
	DefaultSource          = "pattern"
	DefaultSourceHold      = 2.0
	DefaultPatternPeriod   = 4.0
)

// DefaultPrompts is the prompt bank used when none is configured.
var DefaultPrompts = []string{
	"Surrealistic painting by J. C. Leyendecker",
	"Oil painting by Vincent van Gogh",
	"Ukiyo-e woodblock print by Hokusai",
	"Watercolor illustration, soft pastel palette",
}

// WithDefaults fills every unset daemon field. The reveal interval defaults
// to one queue length of flips.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.DisplayFPS <= 0 {
		c.DisplayFPS = DefaultDisplayFPS
	}
	if c.FlipInterval <= 0 {
		c.FlipInterval = DefaultFlipInterval
	}
	if c.RevealInterval <= 0 {
		c.RevealInterval = c.FlipInterval * DefaultQueueLength
	}
	if c.InsertionCount == 0 {
		c.InsertionCount = DefaultInsertionCount
	}
	if len(c.Prompts) == 0 {
		c.Prompts = append([]string(nil), DefaultPrompts...)
	}
	if c.Generator == "" {
		c.Generator = DefaultGenerator
	}
	if c.GeminiAPIKeyEnv == "" {
		c.GeminiAPIKeyEnv = DefaultGeminiAPIKeyEnv
	}
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.SourceHold <= 0 {
		c.SourceHold = DefaultSourceHold
	}
	if c.PatternPeriod <= 0 {
		c.PatternPeriod = DefaultPatternPeriod
	}
	return c
}

// Validate checks a defaulted config.
func (c Config) Validate() error {
	if c.FlipInterval <= 0 || c.RevealInterval <= 0 {
		return fmt.Errorf("flip_interval and reveal_interval must be positive")
	}
	if c.InsertionCount < 1 {
		return fmt.Errorf("insertion_count must be at least 1, got %d", c.InsertionCount)
	}
	if c.PoolSize != 0 && c.PoolSize < 2 {
		return fmt.Errorf("pool_size must be at least 2, got %d", c.PoolSize)
	}
	if c.PromptIndex < 0 || c.PromptIndex >= len(c.Prompts) {
		return fmt.Errorf("prompt_index %d out of range (%d prompts)", c.PromptIndex, len(c.Prompts))
	}
	if c.DummyMaxLatency < c.DummyMinLatency {
		return fmt.Errorf("dummy_max_latency below dummy_min_latency")
	}
	switch c.Admission {
	case "", string(shuffler.AdmitThreshold), string(shuffler.AdmitDrained):
	default:
		return fmt.Errorf("admission must be threshold or drained, got %q", c.Admission)
	}
	switch c.SeedPolicy {
	case "", string(shuffler.SeedFixed), string(shuffler.SeedRandom):
	default:
		return fmt.Errorf("seed_policy must be fixed or random, got %q", c.SeedPolicy)
	}
	switch c.Generator {
	case "dummy", "gemini", "none":
	default:
		return fmt.Errorf("generator must be dummy, gemini or none, got %q", c.Generator)
	}
	switch c.Source {
	case "pattern":
	case "dir":
		if c.SourceDir == "" {
			return fmt.Errorf("source_dir is required for source=dir")
		}
	default:
		return fmt.Errorf("source must be pattern or dir, got %q", c.Source)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Seconds converts a seconds value to a duration.
func Seconds(s float64) time.Duration { return time.Duration(math.Round(s * float64(time.Second))) }

// Pipeline maps the file config onto the scheduler config.
func (c Config) Pipeline(log zerolog.Logger) shuffler.Config {
	sc := shuffler.Config{
		Width:              c.Width,
		Height:             c.Height,
		FlipInterval:       Seconds(c.FlipInterval),
		RevealInterval:     Seconds(c.RevealInterval),
		InsertionCount:     c.InsertionCount,
		PoolSize:           c.PoolSize,
		Admission:          shuffler.AdmissionPolicy(c.Admission),
		AdmissionThreshold: c.AdmissionThreshold,
		LiftScale:          c.LiftScale,
		Prompts:            c.Prompts,
		SeedPolicy:         shuffler.SeedPolicy(c.SeedPolicy),
		Params: shuffler.Params{
			Strength:  c.Strength,
			StepCount: c.StepCount,
			Guidance:  c.Guidance,
			Seed:      c.Seed,
		},
		Logger: log,
	}
	if c.PromptIndex >= 0 && c.PromptIndex < len(c.Prompts) {
		sc.Params.Prompt = c.Prompts[c.PromptIndex]
	}
	return sc
}
