package export

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions describes the document written by PDF.
type PDFOptions struct {
	Title string
	// DPR is the ratio of image pixels to CSS pixels. The page is sized so
	// one CSS pixel is 0.75pt. Zero means 1.
	DPR float64
}

// pointsPerPx converts CSS pixels to PDF points.
const pointsPerPx = 0.75

// PDF writes a single-page document holding img at its natural size. The
// image is embedded as PNG so transparency from the eraser survives.
func PDF(w io.Writer, img image.Image, opts PDFOptions) error {
	b := img.Bounds()
	if b.Empty() {
		return ErrEmpty
	}
	dpr := opts.DPR
	if !(dpr >= 1) {
		dpr = 1
	}
	pw := float64(b.Dx()) / dpr * pointsPerPx
	ph := float64(b.Dy()) / dpr * pointsPerPx

	var buf bytes.Buffer
	if err := PNG(&buf, img); err != nil {
		return err
	}

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.SetCreator("freehand", true)
	if opts.Title != "" {
		p.SetTitle(opts.Title, true)
	}
	p.AddPage()

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("frame", opt, &buf)
	p.ImageOptions("frame", 0, 0, pw, ph, false, opt, 0, "")

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
