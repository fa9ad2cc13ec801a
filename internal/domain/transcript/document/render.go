package document

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gen2brain/go-fitz"
)

// DefaultDPI keeps small transcript fonts legible to vision models
const DefaultDPI = 150

// PageImage is one rasterized page
type PageImage struct {
	Number int
	MIME   string
	Data   []byte
}

// PageRenderer rasterizes PDF pages to PNG using MuPDF
type PageRenderer struct {
	dpi    float64
	logger *slog.Logger
}

// NewPageRenderer creates a renderer. A non-positive dpi falls back to DefaultDPI.
func NewPageRenderer(dpi float64, logger *slog.Logger) *PageRenderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PageRenderer{dpi: dpi, logger: logger}
}

// RenderPages renders every page in order
func (r *PageRenderer) RenderPages(data []byte) ([]PageImage, error) {
	if len(data) == 0 {
		return nil, decodeErr("open pdf", errors.New("empty content"))
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, decodeErr("open pdf", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return nil, decodeErr("open pdf", errNoPages)
	}

	images := make([]PageImage, 0, n)
	for i := 0; i < n; i++ {
		png, err := doc.ImagePNG(i, r.dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		images = append(images, PageImage{Number: i + 1, MIME: "image/png", Data: png})
	}

	r.logger.Debug("rendered pages", "pages", n, "dpi", r.dpi)
	return images, nil
}
