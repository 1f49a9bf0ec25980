package ocr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/domain"
)

// Tesseract wraps the tesseract CLI.
type Tesseract struct {
	Binary  string
	Timeout time.Duration
	runner  Runner
}

// NewTesseract returns a Tesseract engine with sane defaults.
func NewTesseract(binary string, timeout time.Duration) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	return &Tesseract{
		Binary:  binary,
		Timeout: timeout,
		runner:  execRunner{},
	}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Probe runs "tesseract --version".
func (t *Tesseract) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := t.runner.Run(ctx, t.Binary, "--version"); err != nil {
		return fmt.Errorf("tesseract binary unusable (%s): %w", t.Binary, err)
	}
	return nil
}

// Recognize runs tesseract against imagePath and returns the recognized text.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string, opts RecognizeOptions) (string, error) {
	if imagePath == "" {
		return "", errors.New("image path is required")
	}
	psm := opts.PageSegMode
	if psm == 0 {
		psm = PSMSingleBlock
	}
	oem := opts.EngineMode
	if oem == 0 {
		oem = OEMDefault
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = t.Timeout
	}

	args := []string{
		imagePath, "stdout",
		"--oem", strconv.Itoa(oem),
		"--psm", strconv.Itoa(psm),
	}
	if opts.Language != "" {
		args = append(args, "-l", opts.Language)
	}

	cmdCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := t.runner.Run(cmdCtx, t.Binary, args...)
	if err != nil {
		if isMissingBinary(err) {
			return "", domain.MissingToolError(msgTesseractMissing, err)
		}
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
			return "", domain.ProcessingError(
				fmt.Sprintf("Text recognition timed out after %s", timeout), err)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return cleanOutput(out), nil
}

// Languages runs "tesseract --list-langs".
func (t *Tesseract) Languages(ctx context.Context) ([]string, error) {
	out, err := t.runner.Run(ctx, t.Binary, "--list-langs")
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return parseLanguageList(out), nil
}

// cleanOutput turns tesseract stdout into plain text. Form feeds mark page
// ends and become line breaks.
func cleanOutput(data []byte) string {
	text := normalizeNewlines(string(data))
	return strings.TrimSpace(strings.ReplaceAll(text, "\f", "\n"))
}

func parseLanguageList(data []byte) []string {
	var langs []string
	for _, line := range strings.Split(normalizeNewlines(string(data)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of available languages") {
			continue
		}
		langs = append(langs, line)
	}
	return langs
}

func normalizeNewlines(in string) string {
	return strings.ReplaceAll(in, "\r\n", "\n")
}
