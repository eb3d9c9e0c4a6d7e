// Package imagewriter renders a canvas to the uncompressed bitmap file the
// CLI's run subcommand produces.
package imagewriter

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/jsummers/gobmp"

	"github.com/Richard7412/dbn-3/canvas"
)

// WriteBMP encodes a canvas snapshot as a grayscale BMP file at path. Pixel
// (0,0) of the file is DBN (0, 100), the upper-left corner of the canvas.
func WriteBMP(path string, pixels [canvas.Size * canvas.Size]byte) error {
	img := image.NewGray(image.Rect(0, 0, canvas.Size, canvas.Size))
	for ry := 0; ry < canvas.Size; ry++ {
		for rx := 0; rx < canvas.Size; rx++ {
			img.SetGray(rx, ry, color.Gray{Y: pixels[ry*canvas.Size+rx]})
		}
	}

	f, err := os.Create(path) // #nosec G304 -- user-specified output path
	if err != nil {
		return fmt.Errorf("failed to create bitmap file: %w", err)
	}
	defer f.Close()

	if err := gobmp.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode bitmap: %w", err)
	}
	return nil
}
