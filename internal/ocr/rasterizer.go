package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrRasterizerNotCompiled is returned when a rasterizer was requested that
// this binary was built without.
var ErrRasterizerNotCompiled = errors.New("pdf rasterizer not compiled in; rebuild with the matching build tag")

// DocumentInfo describes a PDF before rasterization.
type DocumentInfo struct {
	Pages int
}

// RasterOptions selects the page range and resolution. Pages are 1-based
// and inclusive.
type RasterOptions struct {
	DPI       int
	FirstPage int
	LastPage  int
}

func (o RasterOptions) validate() error {
	if o.DPI <= 0 {
		return fmt.Errorf("invalid dpi %d", o.DPI)
	}
	if o.FirstPage < 1 || o.LastPage < o.FirstPage {
		return fmt.Errorf("invalid page range %d-%d", o.FirstPage, o.LastPage)
	}
	return nil
}

// PageImage is one rasterized page on disk.
type PageImage struct {
	Number int
	Path   string
}

// Pages holds rasterized pages in page order. Cleanup removes them.
type Pages struct {
	Images []PageImage
	dir    string
}

// Cleanup removes the temporary directory holding the page images.
func (p *Pages) Cleanup() error {
	if p == nil || p.dir == "" {
		return nil
	}
	dir := p.dir
	p.dir = ""
	return os.RemoveAll(dir)
}

// Rasterizer converts PDF pages to images the engine can read.
// Info failures distinguish a missing tool (domain.KindMissingTool) from an
// unreadable document (domain.KindInvalidDocument).
type Rasterizer interface {
	Name() string
	Info(ctx context.Context, pdfPath string) (DocumentInfo, error)
	Rasterize(ctx context.Context, pdfPath string, opts RasterOptions) (*Pages, error)
}

// NewRasterizer builds the rasterizer named by the configuration.
func NewRasterizer(name, popplerPath string) (Rasterizer, error) {
	switch name {
	case "", "poppler":
		return NewPoppler(popplerPath), nil
	case "mupdf":
		return NewMuPDF()
	default:
		return nil, fmt.Errorf("unknown pdf rasterizer %q", name)
	}
}
