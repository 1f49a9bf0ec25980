//go:build !gosseract

package ocr

// NewGosseract reports ErrEngineNotCompiled. Build with -tags gosseract
// (and libtesseract installed) to enable the in-process engine.
func NewGosseract() (Engine, error) {
	return nil, ErrEngineNotCompiled
}
