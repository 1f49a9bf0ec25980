//go:build gosseract

package ocr

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract runs Tesseract in-process through libtesseract. It requires the
// "gosseract" build tag and the tesseract development headers.
// Recognitions that outlive their timeout still count against the
// NumCPU worker limit until libtesseract returns.
type Gosseract struct {
	clientFactory func() *gosseract.Client
	workers       *boundedWorker
}

// NewGosseract constructs the libtesseract-backed engine.
func NewGosseract() (Engine, error) {
	return &Gosseract{
		clientFactory: gosseract.NewClient,
		workers:       newBoundedWorker(runtime.NumCPU()),
	}, nil
}

func (g *Gosseract) Name() string { return "gosseract" }

func (g *Gosseract) Probe(context.Context) error {
	if v := gosseract.Version(); v == "" {
		return errors.New("libtesseract reported no version")
	}
	return nil
}

func (g *Gosseract) Recognize(ctx context.Context, imagePath string, opts RecognizeOptions) (string, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	text, err := g.workers.do(ctx, func() (string, error) {
		return g.recognize(imagePath, opts)
	})
	if err != nil && ctx.Err() != nil {
		return "", fmt.Errorf("gosseract: %w", err)
	}
	return text, err
}

func (g *Gosseract) recognize(imagePath string, opts RecognizeOptions) (string, error) {
	c := g.clientFactory()
	defer c.Close()

	if opts.Language != "" {
		if err := c.SetLanguage(strings.Split(opts.Language, "+")...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	psm := opts.PageSegMode
	if psm == 0 {
		psm = PSMSingleBlock
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (g *Gosseract) Languages(context.Context) ([]string, error) {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return langs, nil
}
