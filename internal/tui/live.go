package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/cellbody/internal/solver"
	"github.com/san-kum/cellbody/internal/viz"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer streams the overlay of a world to a terminal after each step,
// at most frameRate times a second. It is a solver.Observer.
type LiveRenderer struct {
	out       io.Writer
	world     *solver.World
	overlay   viz.Overlay
	frameRate int
	lastFrame time.Time
	// Clear prefixes each frame with an ANSI clear; off for plain logs.
	Clear bool
}

func NewLiveRenderer(out io.Writer, world *solver.World, overlay viz.Overlay, frameRate int) *LiveRenderer {
	return &LiveRenderer{
		out:       out,
		world:     world,
		overlay:   overlay,
		frameRate: frameRate,
		Clear:     true,
	}
}

func (r *LiveRenderer) OnStep(rep *solver.Report) {
	if r.frameRate > 0 {
		if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
		r.lastFrame = time.Now()
	}
	r.render(rep)
}

func (r *LiveRenderer) render(rep *solver.Report) {
	var b strings.Builder
	if r.Clear {
		b.WriteString(clearScreen)
	}
	fmt.Fprintf(&b, "  step %d  owned %d  lost %d  collisions %d  impulses %d  %v\n",
		rep.Step, rep.OwnedAfter, rep.Lost(), rep.Collisions, rep.Impulses, rep.Elapsed.Round(time.Microsecond))
	b.WriteString(r.overlay.Render(r.world.Snapshot()))
	io.WriteString(r.out, b.String())
}

func (r *LiveRenderer) Start() {
	if r.Clear {
		io.WriteString(r.out, hideCursor)
	}
}

func (r *LiveRenderer) Stop() {
	if r.Clear {
		io.WriteString(r.out, showCursor)
	}
}
