package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/domain"
)

var pdfinfoPages = regexp.MustCompile(`(?m)^Pages:\s+(\d+)`)

// Poppler rasterizes PDFs with pdfinfo and pdftoppm.
type Poppler struct {
	// Dir holds the poppler binaries. Empty means look them up on PATH.
	Dir        string
	runner     Runner
	countPages func(path string) (int, error)
}

// NewPoppler returns a Poppler rasterizer using binaries from dir.
func NewPoppler(dir string) *Poppler {
	return &Poppler{Dir: dir, runner: execRunner{}, countPages: CountPages}
}

func (p *Poppler) Name() string { return "poppler" }

func (p *Poppler) bin(name string) string {
	if p.Dir == "" {
		return name
	}
	return filepath.Join(p.Dir, name)
}

// Info reads the page count with pdfinfo. When pdfinfo is missing the count
// comes from the pure-Go parser instead.
func (p *Poppler) Info(ctx context.Context, pdfPath string) (DocumentInfo, error) {
	out, err := p.runner.Run(ctx, p.bin("pdfinfo"), pdfPath)
	if err != nil {
		if !isMissingBinary(err) {
			return DocumentInfo{}, domain.InvalidDocumentError(msgInvalidPDF, err)
		}
		n, cerr := p.countPages(pdfPath)
		if cerr != nil {
			return DocumentInfo{}, domain.InvalidDocumentError(msgInvalidPDF, cerr)
		}
		return DocumentInfo{Pages: n}, nil
	}

	m := pdfinfoPages.FindSubmatch(out)
	if m == nil {
		return DocumentInfo{}, domain.InvalidDocumentError(msgInvalidPDF, fmt.Errorf("pdfinfo reported no page count"))
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return DocumentInfo{}, domain.InvalidDocumentError(msgInvalidPDF, err)
	}
	return DocumentInfo{Pages: n}, nil
}

// Rasterize renders the requested pages to PNG files in a temp directory.
func (p *Poppler) Rasterize(ctx context.Context, pdfPath string, opts RasterOptions) (*Pages, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("create page dir: %w", err)
	}
	pages := &Pages{dir: dir}
	prefix := filepath.Join(dir, "page")

	args := []string{
		"-png",
		"-r", strconv.Itoa(opts.DPI),
		"-f", strconv.Itoa(opts.FirstPage),
		"-l", strconv.Itoa(opts.LastPage),
		pdfPath, prefix,
	}
	if _, err := p.runner.Run(ctx, p.bin("pdftoppm"), args...); err != nil {
		pages.Cleanup()
		if isMissingBinary(err) {
			return nil, domain.MissingToolError(msgPopplerMissing, err)
		}
		return nil, domain.ProcessingError(msgPDFFailed, err)
	}

	images, err := collectPageImages(prefix)
	if err != nil {
		pages.Cleanup()
		return nil, domain.ProcessingError(msgPDFFailed, err)
	}
	pages.Images = images
	return pages, nil
}

// collectPageImages finds "<prefix>-N.png" files (pdftoppm zero-pads N) and
// returns them in page order.
func collectPageImages(prefix string) ([]PageImage, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	base := filepath.Base(prefix) + "-"

	images := make([]PageImage, 0, len(matches))
	for _, path := range matches {
		num := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), base), ".png")
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		images = append(images, PageImage{Number: n, Path: path})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Number < images[j].Number })
	return images, nil
}
