//go:build !mupdf

package ocr

// NewMuPDF reports ErrRasterizerNotCompiled. Build with -tags mupdf to
// enable the go-fitz rasterizer.
func NewMuPDF() (Rasterizer, error) {
	return nil, ErrRasterizerNotCompiled
}
