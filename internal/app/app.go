// Package app assembles a pipeline and its collaborators from a daemon
// config. Both the HTTP daemon and the viewer start from Build.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"shufflerd/internal/config"
	"shufflerd/internal/generate"
	"shufflerd/internal/present"
	"shufflerd/internal/render"
	"shufflerd/internal/shuffler"
	"shufflerd/internal/source"
)

// recentEvents bounds the in-memory event history.
const recentEvents = 256

// App is an initialized pipeline with everything it draws with.
type App struct {
	Config     config.Config
	Pipeline   *shuffler.Pipeline
	Compositor *render.Compositor
	Bus        *shuffler.Broadcaster
	Recent     *shuffler.MemoryPublisher

	log zerolog.Logger
}

// Build validates cfg, constructs the collaborators and initializes the
// pipeline. cfg must already carry defaults.
func Build(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc := cfg.Pipeline(log).Defaulted()

	copier, err := render.NewScaleCopier(cfg.ScaleKernel)
	if err != nil {
		return nil, err
	}
	src, err := NewSource(cfg, sc.Width, sc.Height, log)
	if err != nil {
		return nil, err
	}
	gen, err := NewGenerator(ctx, cfg, copier, log)
	if err != nil {
		return nil, err
	}

	p, err := shuffler.New(sc, shuffler.Collaborators{Source: src, Generator: gen, Copier: copier})
	if err != nil {
		return nil, err
	}
	a := &App{
		Config:     cfg,
		Pipeline:   p,
		Compositor: render.NewCompositor(sc.Width, sc.Height),
		Bus:        shuffler.NewBroadcaster(),
		Recent:     shuffler.NewBoundedPublisher(recentEvents),
		log:        log,
	}
	p.SetEventPublisher(shuffler.MultiPublisher{a.Recent, a.Bus})
	if err := p.Initialize(); err != nil {
		return nil, err
	}
	return a, nil
}

// NewSource picks the source named by cfg.Source.
func NewSource(cfg config.Config, w, h int, log zerolog.Logger) (shuffler.Source, error) {
	switch cfg.Source {
	case "dir":
		s, err := source.NewSlideshow(cfg.SourceDir, config.Seconds(cfg.SourceHold), log)
		if err != nil {
			return nil, fmt.Errorf("source dir %s: %w", cfg.SourceDir, err)
		}
		log.Info().Int("images", s.Len()).Str("dir", cfg.SourceDir).Msg("slideshow source")
		return s, nil
	case "pattern", "":
		return source.NewPattern(w, h, config.Seconds(cfg.PatternPeriod), uint64(cfg.Seed)), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// NewGenerator picks the generator named by cfg.Generator. "none" returns a
// nil generator: the pipeline then only shuffles source frames.
func NewGenerator(ctx context.Context, cfg config.Config, copier shuffler.Copier, log zerolog.Logger) (shuffler.Generator, error) {
	switch cfg.Generator {
	case "dummy", "":
		d, err := generate.NewDummy(generate.DummyConfig{
			MinLatency: config.Seconds(cfg.DummyMinLatency),
			MaxLatency: config.Seconds(cfg.DummyMaxLatency),
			Seed:       uint64(cfg.Seed),
			Copier:     copier,
			Logger:     log,
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	case "gemini":
		g, err := generate.NewGemini(ctx, generate.GeminiConfig{
			Model:  cfg.GeminiModel,
			APIKey: os.Getenv(cfg.GeminiAPIKeyEnv),
			Copier: copier,
			Logger: log,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set %s)", err, cfg.GeminiAPIKeyEnv)
		}
		return g, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown generator %q", cfg.Generator)
	}
}

// Presenter returns a ticker that advances the clock and composites into
// the app's compositor at the configured display rate.
func (a *App) Presenter() *present.Ticker {
	return present.NewTicker(a.Config.DisplayFPS, a.Pipeline, a.Compositor.Compose, a.log)
}

// Run drives the pipeline loop plus any extra tasks until ctx is done or
// one of them fails, then shuts the pipeline down.
func (a *App) Run(ctx context.Context, tasks ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Pipeline.Run(gctx) })
	for _, task := range tasks {
		g.Go(func() error { return task(gctx) })
	}
	err := g.Wait()
	a.Pipeline.Shutdown()
	return err
}
