package ocr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Tesseract page segmentation and engine modes used for full-page documents.
const (
	PSMSingleBlock = 6 // assume a single uniform block of text
	OEMDefault     = 3 // whatever engine mode is available
)

// ErrEngineNotCompiled is returned when an engine was requested that this
// binary was built without.
var ErrEngineNotCompiled = errors.New("ocr engine not compiled in; rebuild with the matching build tag")

// RecognizeOptions controls a single recognition call.
type RecognizeOptions struct {
	Language    string
	PageSegMode int
	EngineMode  int
	Timeout     time.Duration
}

// Engine wraps an OCR implementation.
type Engine interface {
	Name() string
	// Probe runs a cheap version check.
	Probe(ctx context.Context) error
	Recognize(ctx context.Context, imagePath string, opts RecognizeOptions) (string, error)
	Languages(ctx context.Context) ([]string, error)
}

// NewEngine builds the engine named by the configuration.
func NewEngine(name, tesseractCmd string, timeout time.Duration) (Engine, error) {
	switch name {
	case "", "tesseract":
		return NewTesseract(tesseractCmd, timeout), nil
	case "gosseract":
		return NewGosseract()
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", name)
	}
}

var languagePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_/]*(\+[A-Za-z][A-Za-z0-9_/]*)*$`)

// ValidLanguage reports whether lang looks like a Tesseract language argument
// such as "eng", "chi_sim" or "eng+fra".
func ValidLanguage(lang string) bool {
	return len(lang) <= 64 && languagePattern.MatchString(lang)
}
