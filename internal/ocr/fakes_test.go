package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

type runCall struct {
	Name string
	Args []string
}

// fakeRunner answers commands by binary base name.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []runCall
	handler func(ctx context.Context, name string, args []string) ([]byte, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{Name: name, Args: args})
	f.mu.Unlock()
	if f.handler == nil {
		return nil, nil
	}
	return f.handler(ctx, filepath.Base(name), args)
}

func (f *fakeRunner) Calls() []runCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runCall(nil), f.calls...)
}

func missing(name string) error {
	return fmt.Errorf("%s: %w", name, exec.ErrNotFound)
}

// fakeEngine recognizes images by path via a lookup function.
type fakeEngine struct {
	mu        sync.Mutex
	seen      []string
	recognize func(path string) (string, error)
	langs     []string
	langsErr  error
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Probe(ctx context.Context) error { return nil }

func (e *fakeEngine) Recognize(ctx context.Context, imagePath string, opts RecognizeOptions) (string, error) {
	e.mu.Lock()
	e.seen = append(e.seen, imagePath)
	e.mu.Unlock()
	if e.recognize == nil {
		return "", nil
	}
	return e.recognize(imagePath)
}

func (e *fakeEngine) Languages(ctx context.Context) ([]string, error) {
	return e.langs, e.langsErr
}

func (e *fakeEngine) Seen() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.seen...)
}

// fakeRasterizer reports a fixed page count and writes empty page files.
type fakeRasterizer struct {
	pages     int
	infoErr   error
	rasterErr error
	lastOpts  RasterOptions
	dir       string
}

func (r *fakeRasterizer) Name() string { return "fake" }

func (r *fakeRasterizer) Info(ctx context.Context, pdfPath string) (DocumentInfo, error) {
	if r.infoErr != nil {
		return DocumentInfo{}, r.infoErr
	}
	return DocumentInfo{Pages: r.pages}, nil
}

func (r *fakeRasterizer) Rasterize(ctx context.Context, pdfPath string, opts RasterOptions) (*Pages, error) {
	r.lastOpts = opts
	if r.rasterErr != nil {
		return nil, r.rasterErr
	}
	dir, err := os.MkdirTemp("", "fake-pages-*")
	if err != nil {
		return nil, err
	}
	r.dir = dir
	pages := &Pages{dir: dir}
	for n := opts.FirstPage; n <= opts.LastPage; n++ {
		path := filepath.Join(dir, fmt.Sprintf("page-%02d.png", n))
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			return nil, err
		}
		pages.Images = append(pages.Images, PageImage{Number: n, Path: path})
	}
	return pages, nil
}
