package ocr

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// CountPages returns the number of pages in a PDF using a pure-Go parser.
// The parser panics on some malformed files, so panics become errors.
func CountPages(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	return r.NumPage(), nil
}
