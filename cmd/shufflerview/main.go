// Command shufflerview runs the frame shuffling pipeline in a desktop
// window. Digit keys select prompts, P lists them, F1 toggles the status
// overlay and Esc quits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"shufflerd/internal/app"
	"shufflerd/internal/config"
)

func main() {
	var (
		configPath = os.Getenv("SHUFFLERD_CONFIG")
		scale      int
		fullscreen bool
	)
	root := &cobra.Command{
		Use:           "shufflerview",
		Short:         "Show the frame shuffling pipeline in a window",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(configPath)
			if err != nil {
				return err
			}
			return view(cmd.Context(), cfg, scale, fullscreen)
		},
	}
	root.Flags().StringVar(&configPath, "config", configPath, "Config file (.yaml, .json or .toml; defaults SHUFFLERD_CONFIG)")
	root.Flags().IntVar(&scale, "scale", 2, "Window scale factor")
	root.Flags().BoolVar(&fullscreen, "fullscreen", false, "Start fullscreen")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "shufflerview:", err)
		os.Exit(1)
	}
}

func view(ctx context.Context, cfg config.Config, scale int, fullscreen bool) error {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).With().Timestamp().Logger()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	g := newGame(a.Pipeline, a.Compositor, log)
	ctx, cancel := context.WithCancel(ctx)
	runErr := make(chan error, 1)
	// The window owns the main thread; it ticks and draws instead of a
	// presenter. Closing either side ends the other.
	go func() {
		err := a.Run(ctx)
		g.quit.Store(true)
		runErr <- err
	}()

	if scale < 1 {
		scale = 1
	}
	ebiten.SetWindowSize(g.w*scale, g.h*scale)
	ebiten.SetWindowTitle("shufflerview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetFullscreen(fullscreen)
	ebiten.SetTPS(cfg.DisplayFPS)

	gameErr := ebiten.RunGame(g)
	cancel()
	if err := <-runErr; err != nil {
		return err
	}
	return gameErr
}
