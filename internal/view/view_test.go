package view

import (
	"strings"
	"testing"

	"github.com/Richard7412/dbn-3/canvas"
)

func TestRenderProducesOneLinePerRow(t *testing.T) {
	c := canvas.New()
	text := render(c.Snapshot())
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != canvas.Size {
		t.Fatalf("got %d lines, want %d", len(lines), canvas.Size)
	}
	for _, line := range lines {
		if len(line) != canvas.Size {
			t.Fatalf("line length %d, want %d", len(line), canvas.Size)
		}
	}
}

func TestRenderBlackAndWhiteUseOppositeEndsOfRamp(t *testing.T) {
	c := canvas.New()
	c.Fill(100) // DBN white -> raster 0 (black) under the inverted scale
	black := render(c.Snapshot())

	c.Fill(0) // DBN black -> raster 255 (white)
	white := render(c.Snapshot())

	if black[0] == white[0] {
		t.Errorf("expected distinct ramp characters for opposite fills, both rendered %q", string(black[0]))
	}
}
