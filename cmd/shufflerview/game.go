package main

import (
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"shufflerd/internal/render"
	"shufflerd/internal/shuffler"
	"shufflerd/internal/viewer"
	"shufflerd/pkg/types"
)

var digitKeys = [viewer.MaxHotkeys]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// game presents a pipeline in an ebiten window. Update advances the
// animation clock; Draw composites the current view.
type game struct {
	p   *shuffler.Pipeline
	c   *render.Compositor
	log zerolog.Logger

	w, h  int
	frame *ebiten.Image
	pix   []byte
	last  time.Time

	overlay bool
	menu    bool
	quit    atomic.Bool
}

func newGame(p *shuffler.Pipeline, c *render.Compositor, log zerolog.Logger) *game {
	b := c.Bounds()
	return &game{
		p:       p,
		c:       c,
		log:     log,
		w:       b.Dx(),
		h:       b.Dy(),
		pix:     make([]byte, 4*b.Dx()*b.Dy()),
		overlay: true,
	}
}

func (g *game) Update() error {
	if g.quit.Load() || ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.overlay = !g.overlay
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.menu = !g.menu
	}
	for i, k := range digitKeys {
		if !inpututil.IsKeyJustPressed(k) {
			continue
		}
		if err := g.p.SelectPrompt(i); err != nil {
			g.log.Debug().Err(err).Int("index", i).Msg("prompt hotkey ignored")
		} else {
			g.log.Info().Str("prompt", g.p.Params().Prompt).Msg("prompt selected")
		}
	}

	now := time.Now()
	if !g.last.IsZero() {
		g.p.Tick(now.Sub(g.last))
	}
	g.last = now
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.frame == nil {
		g.frame = ebiten.NewImage(g.w, g.h)
	}
	if g.p.Render(g.c.Compose) {
		g.c.CopyPixels(g.pix)
		g.frame.WritePixels(g.pix)
	}
	screen.DrawImage(g.frame, nil)
	if g.overlay {
		ebitenutil.DebugPrint(screen, viewer.StatusLines(g.p.Status(), ebiten.ActualFPS()))
	}
	if g.menu {
		ebitenutil.DebugPrintAt(screen, viewer.PromptMenu(g.prompts()), 8, g.h/2)
	}
}

func (g *game) prompts() types.PromptsResponse {
	return types.PromptsResponse{Prompts: g.p.Prompts(), Current: g.p.Params().Prompt}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h
}
