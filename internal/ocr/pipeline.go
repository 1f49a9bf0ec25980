package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/domain"
)

// FileKind is the processing strategy chosen from a file's extension.
type FileKind int

const (
	KindUnsupported FileKind = iota
	KindImage
	KindPDF
)

func (k FileKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	default:
		return "unsupported"
	}
}

// Classify resolves the strategy for path.
func Classify(path string) FileKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return KindPDF
	case ".jpg", ".jpeg", ".png":
		return KindImage
	default:
		return KindUnsupported
	}
}

// Source is a stored file handed to the pipeline. Name is the caller-facing
// file name used in placeholder text; it defaults to the base of Path.
type Source struct {
	Path string
	Name string
}

func (s Source) displayName() string {
	if s.Name != "" {
		return filepath.Base(s.Name)
	}
	return filepath.Base(s.Path)
}

// SkippedPage records a PDF page that failed recognition.
type SkippedPage struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

// Outcome is the only result of Pipeline.Process. A successful outcome has
// an empty Error; a failed one has an empty Text.
type Outcome struct {
	Success bool             `json:"success"`
	Text    string           `json:"text"`
	Error   string           `json:"error,omitempty"`
	Kind    domain.ErrorKind `json:"-"`
	// Degraded marks placeholder text produced while the engine is unavailable.
	Degraded bool          `json:"degraded"`
	Pages    int           `json:"pages,omitempty"`
	Skipped  []SkippedPage `json:"skipped,omitempty"`
}

func failure(err error) Outcome {
	return Outcome{
		Success: false,
		Error:   domain.MessageOf(err, msgOCRFailed),
		Kind:    domain.KindOf(err),
	}
}

// Options configures a Pipeline.
type Options struct {
	DefaultLanguage string
	Timeout         time.Duration
	MaxPages        int
	DPI             int
	// DemoFallback returns placeholder text when the engine is unavailable.
	// When false an unavailable engine is a MissingTool failure.
	DemoFallback bool
	// MaxImagePixels rejects images whose declared width*height exceeds it
	// before any pixel data is decoded.
	MaxImagePixels int64
}

// DefaultMaxImagePixels matches the point at which Pillow refuses to open
// an image as a decompression bomb.
const DefaultMaxImagePixels int64 = 2 * 89_478_485

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		DefaultLanguage: "eng",
		Timeout:         30 * time.Second,
		MaxPages:        10,
		DPI:             300,
		DemoFallback:    true,
		MaxImagePixels:  DefaultMaxImagePixels,
	}
}

// extraction is what a strategy hands back before normalization.
type extraction struct {
	text     string
	degraded bool
	pages    int
	skipped  []SkippedPage
}

type extractor interface {
	extract(ctx context.Context, src Source, lang string) (extraction, error)
}

// Pipeline routes a stored file to the image or PDF strategy and turns the
// result into an Outcome.
type Pipeline struct {
	engine     Engine
	rasterizer Rasterizer
	avail      *Availability
	opts       Options
	logger     zerolog.Logger
	extractors map[FileKind]extractor
}

// NewPipeline wires the adapters together. avail decides between real
// recognition and placeholder output.
func NewPipeline(engine Engine, rasterizer Rasterizer, avail *Availability, opts Options, logger zerolog.Logger) *Pipeline {
	def := DefaultOptions()
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = def.DefaultLanguage
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = def.MaxPages
	}
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	if opts.MaxImagePixels <= 0 {
		opts.MaxImagePixels = def.MaxImagePixels
	}

	p := &Pipeline{
		engine:     engine,
		rasterizer: rasterizer,
		avail:      avail,
		opts:       opts,
		logger:     logger.With().Str("component", "ocr").Logger(),
	}
	p.extractors = map[FileKind]extractor{
		KindImage: imageExtractor{p},
		KindPDF:   pdfExtractor{p},
	}
	return p
}

// EngineState reports the cached availability without probing.
func (p *Pipeline) EngineState() State {
	return p.avail.State()
}

// Process extracts text from the file at src.Path. It never panics and
// never returns an error; every failure is folded into the Outcome.
// External tools run to completion or timeout even if ctx is cancelled.
func (p *Pipeline) Process(ctx context.Context, src Source, language string) (out Outcome) {
	start := time.Now()
	log := p.logger.With().Str("file", filepath.Base(src.Path)).Str("language", language).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("ocr processing panic")
			out = failure(domain.UnexpectedError(msgOCRFailed, fmt.Errorf("panic: %v", r)))
		}
	}()

	ctx = context.WithoutCancel(ctx)
	if language == "" {
		language = p.opts.DefaultLanguage
	}

	info, err := os.Stat(src.Path)
	if err != nil || info.IsDir() {
		return failure(domain.NotFoundError(msgFileNotFound, err))
	}

	kind := Classify(src.Path)
	ex, ok := p.extractors[kind]
	if !ok {
		ext := strings.ToLower(filepath.Ext(src.Path))
		return failure(domain.UnsupportedTypeError(fmt.Sprintf("Unsupported file type: %s", ext), nil))
	}

	res, err := ex.extract(ctx, src, language)
	if err != nil {
		log.Error().Err(err).Str("kind", kind.String()).Msg("ocr processing error")
		return failure(err)
	}

	log.Info().
		Str("kind", kind.String()).
		Bool("degraded", res.degraded).
		Int("pages", res.pages).
		Int("skipped", len(res.skipped)).
		Dur("took", time.Since(start)).
		Msg("ocr processing finished")

	return Outcome{
		Success:  true,
		Text:     Normalize(res.text),
		Degraded: res.degraded,
		Pages:    res.pages,
		Skipped:  res.skipped,
	}
}

// Languages lists the engine's installed languages. An unavailable engine
// yields a fixed demonstration list; a failing one yields just "eng".
func (p *Pipeline) Languages(ctx context.Context) []string {
	if !p.avail.Check(ctx) {
		return []string{"eng", "spa", "fra", "deu"}
	}
	langs, err := p.engine.Languages(ctx)
	if err != nil || len(langs) == 0 {
		p.logger.Error().Err(err).Msg("error getting available languages")
		return []string{"eng"}
	}
	return langs
}

// realEngine reports whether recognition should hit the engine. With demo
// fallback disabled an unavailable engine is an error.
func (p *Pipeline) realEngine(ctx context.Context) (bool, error) {
	if p.avail.Check(ctx) {
		return true, nil
	}
	if !p.opts.DemoFallback {
		return false, domain.MissingToolError(msgTesseractMissing, nil)
	}
	return false, nil
}

func (p *Pipeline) recognizeOptions(lang string) RecognizeOptions {
	return RecognizeOptions{
		Language:    lang,
		PageSegMode: PSMSingleBlock,
		EngineMode:  OEMDefault,
		Timeout:     p.opts.Timeout,
	}
}

type imageExtractor struct{ p *Pipeline }

func (e imageExtractor) extract(ctx context.Context, src Source, lang string) (extraction, error) {
	prepared, release, err := prepareImage(src.Path, e.p.opts.MaxImagePixels)
	if err != nil {
		return extraction{}, err
	}
	defer release()

	real, err := e.p.realEngine(ctx)
	if err != nil {
		return extraction{}, err
	}
	if !real {
		return extraction{text: placeholderImageText(src.displayName()), degraded: true, pages: 1}, nil
	}

	text, err := e.p.engine.Recognize(ctx, prepared, e.p.recognizeOptions(lang))
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return extraction{}, err
		}
		return extraction{}, domain.ProcessingError(msgImageFailed+": "+msgPageFailed, err)
	}
	return extraction{text: text, pages: 1}, nil
}

type pdfExtractor struct{ p *Pipeline }

func (e pdfExtractor) extract(ctx context.Context, src Source, lang string) (extraction, error) {
	real, err := e.p.realEngine(ctx)
	if err != nil {
		return extraction{}, err
	}
	if !real {
		return extraction{text: placeholderPDFText(src.displayName()), degraded: true}, nil
	}

	info, err := e.p.rasterizer.Info(ctx, src.Path)
	if err != nil {
		return extraction{}, err
	}
	last := min(info.Pages, e.p.opts.MaxPages)
	if last < 1 {
		return extraction{}, nil
	}

	pages, err := e.p.rasterizer.Rasterize(ctx, src.Path, RasterOptions{
		DPI:       e.p.opts.DPI,
		FirstPage: 1,
		LastPage:  last,
	})
	if err != nil {
		return extraction{}, err
	}
	defer func() {
		if err := pages.Cleanup(); err != nil {
			e.p.logger.Warn().Err(err).Msg("failed to remove rasterized pages")
		}
	}()

	fold := e.p.foldPages(ctx, pages.Images, lang)
	return extraction{
		text:    strings.Join(fold.texts, "\n\n"),
		pages:   len(pages.Images),
		skipped: fold.skipped,
	}, nil
}

// pageFold accumulates per-page results of a PDF.
type pageFold struct {
	texts   []string
	skipped []SkippedPage
}

// foldPages recognizes each page independently. A failing page is recorded
// and skipped; blank pages contribute nothing.
func (p *Pipeline) foldPages(ctx context.Context, images []PageImage, lang string) pageFold {
	var fold pageFold
	opts := p.recognizeOptions(lang)

	for _, img := range images {
		text, err := p.engine.Recognize(ctx, img.Path, opts)
		if err != nil {
			p.logger.Warn().Err(err).Int("page", img.Number).Msg("error processing pdf page")
			fold.skipped = append(fold.skipped, SkippedPage{
				Page:   img.Number,
				Reason: domain.MessageOf(err, msgPageFailed),
			})
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fold.texts = append(fold.texts, fmt.Sprintf("--- Page %d ---\n%s", img.Number, text))
	}
	return fold
}
