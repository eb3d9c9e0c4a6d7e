// Package view renders a running interpreter's canvas into a
// non-scrolling terminal UI, repainting on a timer while the interpreter executes on its
// own goroutine.
package view

import (
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Richard7412/dbn-3/canvas"
	"github.com/Richard7412/dbn-3/vm"
)

// ramp is a dark-to-light character gradient used to approximate
// grayscale in a character cell.
const ramp = " .:-=+*#%@"

// Viewer is a live terminal view of one interpreter's canvas.
type Viewer struct {
	App        *tview.Application
	CanvasView *tview.TextView

	interpreter *vm.Interpreter
	refresh     time.Duration
	done        chan struct{}
}

// New builds a Viewer over in, repainting every refresh.
func New(in *vm.Interpreter, refresh time.Duration, showBorder bool) *Viewer {
	canvasView := tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(false).
		SetWrap(false)
	canvasView.SetBorder(showBorder).SetTitle(" DBN Canvas ")

	v := &Viewer{
		App:         tview.NewApplication(),
		CanvasView:  canvasView,
		interpreter: in,
		refresh:     refresh,
		done:        make(chan struct{}),
	}

	v.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEscape:
			v.interpreter.Terminate()
			v.App.Stop()
			return nil
		}
		return event
	})

	v.App.SetRoot(canvasView, true)
	return v
}

// Run starts the repaint loop and blocks until the embedded tview
// application exits (Ctrl-C, Esc, or Stop called from elsewhere).
func (v *Viewer) Run() error {
	ticker := time.NewTicker(v.refresh)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-v.done:
				return
			case <-ticker.C:
				v.repaint()
			}
		}
	}()
	defer close(v.done)
	return v.App.Run()
}

// Stop halts the repaint loop and the embedded application.
func (v *Viewer) Stop() {
	v.App.Stop()
}

func (v *Viewer) repaint() {
	pixels := v.interpreter.Snapshot()
	text := render(pixels)
	v.App.QueueUpdateDraw(func() {
		v.CanvasView.SetText(text)
	})
}

// render renders a raster snapshot as a grid of ramp characters, one per
// pixel, each row on its own line.
func render(pixels [canvas.Size * canvas.Size]byte) string {
	var b strings.Builder
	for ry := 0; ry < canvas.Size; ry++ {
		for rx := 0; rx < canvas.Size; rx++ {
			v := pixels[ry*canvas.Size+rx]
			idx := int(v) * (len(ramp) - 1) / 255
			b.WriteByte(ramp[idx])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
