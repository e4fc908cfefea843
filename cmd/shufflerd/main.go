package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"shufflerd/internal/app"
	"shufflerd/internal/config"
	"shufflerd/internal/httpapi"
)

type options struct {
	configPath  string
	console     bool
	addr        string
	logLevel    string
	generator   string
	source      string
	sourceDir   string
	width       int
	height      int
	fps         int
	corsOrigins string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "shufflerd:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{
		configPath: os.Getenv("SHUFFLERD_CONFIG"),
		addr:       envOr("SHUFFLERD_ADDR", config.DefaultAddr),
		logLevel:   envOr("SHUFFLERD_LOG_LEVEL", config.DefaultLogLevel),
	}
	root := &cobra.Command{
		Use:           "shufflerd",
		Short:         "Frame shuffling pipeline daemon with an HTTP control API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, newLogger(cfg.LogLevel, opts.console))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", opts.configPath, "Config file (.yaml, .json or .toml; defaults SHUFFLERD_CONFIG)")
	pf.StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level: debug|info|warn|error (defaults SHUFFLERD_LOG_LEVEL or info)")
	pf.BoolVar(&opts.console, "log-console", false, "Human-readable console logs instead of JSON")
	pf.StringVar(&opts.generator, "generator", "", "Generator: dummy|gemini|none")
	pf.StringVar(&opts.source, "source", "", "Source: pattern|dir")
	pf.StringVar(&opts.sourceDir, "source-dir", "", "Directory of images for source=dir")
	pf.IntVar(&opts.width, "width", 0, "Frame width in pixels")
	pf.IntVar(&opts.height, "height", 0, "Frame height in pixels")
	pf.IntVar(&opts.fps, "display-fps", 0, "Presentation ticks per second")

	root.Flags().StringVar(&opts.addr, "addr", opts.addr, "HTTP listen address, e.g. :8080 (defaults SHUFFLERD_ADDR)")
	root.Flags().StringVar(&opts.corsOrigins, "cors-origins", "", "Comma-separated CORS origins; empty disables CORS")

	root.AddCommand(&cobra.Command{
		Use:   "print-config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	})
	return root
}

// loadConfig reads the config file, applies flags that were set explicitly,
// fills defaults and validates.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		c, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	// Env-derived defaults only win over an empty file value.
	if changed("addr") || cfg.Addr == "" {
		cfg.Addr = opts.addr
	}
	if changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = opts.logLevel
	}
	if changed("generator") {
		cfg.Generator = opts.generator
	}
	if changed("source") {
		cfg.Source = opts.source
	}
	if changed("source-dir") {
		cfg.SourceDir = opts.sourceDir
		if !changed("source") {
			cfg.Source = "dir"
		}
	}
	if changed("width") {
		cfg.Width = opts.width
	}
	if changed("height") {
		cfg.Height = opts.height
	}
	if changed("display-fps") {
		cfg.DisplayFPS = opts.fps
	}
	if changed("cors-origins") {
		cfg.CORSOrigins = splitCSV(opts.corsOrigins)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(level string, console bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	var l zerolog.Logger
	if console {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		l = zerolog.New(os.Stderr)
	}
	return l.Level(lvl).With().Timestamp().Str("service", "shufflerd").Logger()
}

func serve(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	httpapi.SetLogger(log)
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins, []string{"GET", "PUT", "POST", "OPTIONS"}, []string{"Content-Type"})
	}

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	svc := httpapi.NewPipelineService(a.Pipeline, a.Compositor, a.Bus)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	listen := func(ctx context.Context) error {
		// Streams end when the group stops, not only on signals.
		httpapi.SetBaseContext(ctx)
		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.Addr).Str("generator", cfg.Generator).Str("source", cfg.Source).Msg("shufflerd listening")
			errCh <- srv.ListenAndServe()
		}()
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("http server: %w", err)
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("graceful shutdown error")
		}
		return nil
	}

	err = a.Run(ctx, a.Presenter().Run, listen)
	log.Info().Int("released", a.Pipeline.Released()).Msg("shufflerd stopped")
	return err
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
