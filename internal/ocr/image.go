package ocr

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/domain"
)

// prepareImage checks that path decodes as an image and returns a path the
// engine can read in an RGB colour model. Images that are not already RGB
// are flattened onto white and written to a temporary PNG; release removes it.
// Images declaring more than maxPixels pixels are rejected from the header alone.
func prepareImage(path string, maxPixels int64) (prepared string, release func(), err error) {
	noop := func() {}

	f, err := os.Open(path)
	if err != nil {
		return "", noop, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", noop, domain.ProcessingError(msgImageFailed+": unreadable or corrupted image", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return "", noop, domain.ProcessingError(msgImageFailed+": empty image", nil)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return "", noop, domain.ProcessingError(msgImageFailed+": image dimensions too large",
			fmt.Errorf("%s image is %dx%d, limit %d pixels", format, cfg.Width, cfg.Height, maxPixels))
	}
	if isRGBModel(cfg.ColorModel) {
		return path, noop, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", noop, fmt.Errorf("rewind image: %w", err)
	}
	src, _, err := image.Decode(f)
	if err != nil {
		return "", noop, domain.ProcessingError(msgImageFailed+": unreadable or corrupted image",
			fmt.Errorf("decode %s: %w", format, err))
	}

	tmp, err := os.CreateTemp("", "ocr-rgb-*.png")
	if err != nil {
		return "", noop, fmt.Errorf("create converted image: %w", err)
	}
	release = func() { os.Remove(tmp.Name()) }

	err = png.Encode(tmp, toRGB(src))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		release()
		return "", noop, fmt.Errorf("write converted image: %w", err)
	}
	return tmp.Name(), release, nil
}

func isRGBModel(m color.Model) bool {
	if _, ok := m.(color.Palette); ok {
		return false
	}
	return m == color.RGBAModel || m == color.RGBA64Model || m == color.YCbCrModel
}

// toRGB composites src over an opaque white canvas.
func toRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}
