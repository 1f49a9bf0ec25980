//go:build mupdf

package ocr

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"

	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/domain"
)

// MuPDF rasterizes PDFs in-process with go-fitz. It needs no external
// binaries but requires the "mupdf" build tag.
type MuPDF struct{}

// NewMuPDF returns the go-fitz backed rasterizer.
func NewMuPDF() (Rasterizer, error) {
	return &MuPDF{}, nil
}

func (m *MuPDF) Name() string { return "mupdf" }

func (m *MuPDF) Info(_ context.Context, pdfPath string) (DocumentInfo, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return DocumentInfo{}, domain.InvalidDocumentError(msgInvalidPDF, err)
	}
	defer doc.Close()
	return DocumentInfo{Pages: doc.NumPage()}, nil
}

func (m *MuPDF) Rasterize(ctx context.Context, pdfPath string, opts RasterOptions) (*Pages, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, domain.InvalidDocumentError(msgInvalidPDF, err)
	}
	defer doc.Close()

	dir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("create page dir: %w", err)
	}
	pages := &Pages{dir: dir}

	last := min(opts.LastPage, doc.NumPage())
	for n := opts.FirstPage; n <= last; n++ {
		if err := ctx.Err(); err != nil {
			pages.Cleanup()
			return nil, err
		}

		img, err := doc.ImageDPI(n-1, float64(opts.DPI))
		if err != nil {
			pages.Cleanup()
			return nil, domain.ProcessingError(msgPDFFailed, fmt.Errorf("render page %d: %w", n, err))
		}

		path := filepath.Join(dir, fmt.Sprintf("page-%03d.png", n))
		f, err := os.Create(path)
		if err != nil {
			pages.Cleanup()
			return nil, fmt.Errorf("create page %d: %w", n, err)
		}
		err = png.Encode(f, img)
		f.Close()
		if err != nil {
			pages.Cleanup()
			return nil, fmt.Errorf("encode page %d: %w", n, err)
		}
		pages.Images = append(pages.Images, PageImage{Number: n, Path: path})
	}
	return pages, nil
}
