package shuffler

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// AdmissionPolicy decides when the coordinator may start the next generation.
type AdmissionPolicy string

const (
	// AdmitThreshold starts once enough flip cycles passed since the last start.
	AdmitThreshold AdmissionPolicy = "threshold"
	// AdmitDrained starts once the stock queue drained since the last start.
	AdmitDrained AdmissionPolicy = "drained"
)

// SeedPolicy decides how each generation seed is chosen.
type SeedPolicy string

const (
	SeedFixed  SeedPolicy = "fixed"
	SeedRandom SeedPolicy = "random"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultWidth          = 640
	defaultHeight         = 384
	defaultFlipInterval   = 175 * time.Millisecond
	defaultRevealInterval = 1500 * time.Millisecond
	defaultInsertionCount = 5
	defaultLiftScale      = 1.0
	defaultPrompt         = "Surrealistic painting by J. C. Leyendecker"
	defaultStrength       = 0.5
	defaultStepCount      = 7
	defaultGuidance       = 1.25
	defaultSeed           = 1
)

// Config encapsulates all tunables for Pipeline construction. Scheduling
// fields are immutable once the pipeline is built.
type Config struct {
	Width  int
	Height int

	FlipInterval   time.Duration
	RevealInterval time.Duration
	InsertionCount int
	// PoolSize is the number of free-queue buffers; the pool also holds one
	// buffer per display slot on top of this.
	PoolSize int

	Admission          AdmissionPolicy
	AdmissionThreshold int
	LiftScale          float64

	// Prompts is the bank SelectPrompt indexes into.
	Prompts    []string
	Params     Params
	SeedPolicy SeedPolicy

	Logger zerolog.Logger
}

// Defaulted returns the config New would use for c.
func (c Config) Defaulted() Config { return c.withDefaults() }

// withDefaults returns a copy with every unset field filled in.
func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	if c.FlipInterval <= 0 {
		c.FlipInterval = defaultFlipInterval
	}
	if c.RevealInterval <= 0 {
		c.RevealInterval = defaultRevealInterval
	}
	if c.InsertionCount <= 0 {
		c.InsertionCount = defaultInsertionCount
	}
	ratio := int(math.Ceil(float64(c.RevealInterval) / float64(c.FlipInterval)))
	if c.PoolSize <= 0 {
		c.PoolSize = ratio + 1
	}
	if c.Admission == "" {
		c.Admission = AdmitThreshold
	}
	if c.AdmissionThreshold <= 0 {
		c.AdmissionThreshold = ratio
	}
	if c.LiftScale == 0 {
		c.LiftScale = defaultLiftScale
	}
	if c.SeedPolicy == "" {
		c.SeedPolicy = SeedRandom
	}
	if c.Params.Prompt == "" {
		if len(c.Prompts) > 0 {
			c.Params.Prompt = c.Prompts[0]
		} else {
			c.Params.Prompt = defaultPrompt
		}
	}
	if c.Params.Strength <= 0 {
		c.Params.Strength = defaultStrength
	}
	if c.Params.StepCount <= 0 {
		c.Params.StepCount = defaultStepCount
	}
	if c.Params.Guidance <= 0 {
		c.Params.Guidance = defaultGuidance
	}
	if c.Params.Seed == 0 {
		c.Params.Seed = defaultSeed
	}
	return c
}

// Validate checks a defaulted config.
func (c Config) Validate() error {
	if c.PoolSize < 2 {
		return fmt.Errorf("pool size must be at least 2, got %d", c.PoolSize)
	}
	if c.FlipInterval <= 0 || c.RevealInterval <= 0 {
		return fmt.Errorf("flip and reveal intervals must be positive")
	}
	switch c.Admission {
	case AdmitThreshold, AdmitDrained:
	default:
		return fmt.Errorf("unknown admission policy %q", c.Admission)
	}
	switch c.SeedPolicy {
	case SeedFixed, SeedRandom:
	default:
		return fmt.Errorf("unknown seed policy %q", c.SeedPolicy)
	}
	return nil
}

// TotalBuffers is the number of buffers the pool owns: display slots plus
// the free-queue allotment.
func (c Config) TotalBuffers() int { return slotCount + c.PoolSize }
