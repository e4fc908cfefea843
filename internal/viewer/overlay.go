// Package viewer holds the window-independent parts of the desktop viewer:
// the status overlay text and the prompt hotkey mapping.
package viewer

import (
	"fmt"
	"strings"

	"shufflerd/pkg/types"
)

// MaxHotkeys is how many prompts the digit keys 1-9 can select.
const MaxHotkeys = 9

// StatusLines formats the overlay shown on top of the frame.
func StatusLines(s types.StatusResponse, fps float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  fps %.0f  cycle %d\n", s.State, fps, s.Cycles)
	fmt.Fprintf(&b, "flip %.2f  reveal %.2fs", s.FlipProgress, s.RevealProgress)
	if s.RevealVisible {
		b.WriteString(" (visible)")
	}
	b.WriteByte('\n')
	c := s.Buffers
	fmt.Fprintf(&b, "buffers free %d stock %d slots %d gen %d fill %d / %d\n", c.Free, c.Stock, c.Slots, c.InFlight, c.Refilling, c.Total)
	g := s.Generation
	fmt.Fprintf(&b, "gen started %d done %d failed %d", g.Started, g.Completed, g.Failed)
	if g.InFlight {
		b.WriteString(" *")
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "prompt: %s", Truncate(s.Params.Prompt, 48))
	if s.LastError != "" {
		fmt.Fprintf(&b, "\nerror: %s", Truncate(s.LastError, 60))
	}
	return b.String()
}

// PromptMenu lists the prompts reachable by hotkey, marking the current one.
func PromptMenu(p types.PromptsResponse) string {
	var b strings.Builder
	for i, prompt := range p.Prompts {
		if i >= MaxHotkeys {
			break
		}
		mark := ' '
		if prompt == p.Current {
			mark = '>'
		}
		fmt.Fprintf(&b, "%c%d %s\n", mark, i+1, Truncate(prompt, 56))
	}
	return b.String()
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
