// Package export writes one-shot snapshots of a rendered surface.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
)

var ErrEmpty = errors.New("nothing to export")

// PNG encodes img losslessly, keeping erased pixels transparent.
func PNG(w io.Writer, img image.Image) error {
	if img.Bounds().Empty() {
		return ErrEmpty
	}
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
