package photos

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"net/url"
	"strconv"

	"github.com/disintegration/imaging"
)

type Fit string

const (
	FitCover   Fit = "cover"
	FitContain Fit = "contain"
	FitFill    Fit = "fill"
	FitInside  Fit = "inside"
	FitOutside Fit = "outside"
)

// ParseFit maps unknown or empty values to cover.
func ParseFit(s string) Fit {
	switch f := Fit(s); f {
	case FitCover, FitContain, FitFill, FitInside, FitOutside:
		return f
	}
	return FitCover
}

// MaxDimension caps requested widths and heights.
const MaxDimension = 4000

type Options struct {
	Width   int
	Height  int
	Fit     Fit
	Quality int
}

// ParseOptions reads w, h, fit and quality from a query. Non-numeric or
// non-positive dimensions count as absent; larger ones are clamped to
// MaxDimension.
func ParseOptions(q url.Values, defaultQuality int) Options {
	opts := Options{
		Width:   min(positiveInt(q.Get("w")), MaxDimension),
		Height:  min(positiveInt(q.Get("h")), MaxDimension),
		Fit:     ParseFit(q.Get("fit")),
		Quality: defaultQuality,
	}
	if v := positiveInt(q.Get("quality")); v > 0 {
		opts.Quality = min(v, 100)
	}
	return opts
}

func positiveInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Resizes reports whether any target dimension was given.
func (o Options) Resizes() bool { return o.Width > 0 || o.Height > 0 }

func (o Options) ETag(filename string) string {
	return fmt.Sprintf(`"%s-%d-%d-%s-%d"`, filename, o.Width, o.Height, o.Fit, o.Quality)
}

// ErrUnsupported is returned for formats that cannot be decoded for
// resizing, such as webp and svg.
var ErrUnsupported = errors.New("format cannot be resized")

var contentTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
	imaging.TIFF: "image/tiff",
	imaging.BMP:  "image/bmp",
}

// ContentType is the MIME type a resized copy of filename is served as.
func ContentType(filename string) (string, error) {
	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		return "", ErrUnsupported
	}
	return contentTypes[format], nil
}

// Resize decodes the file at path, fits it to opts and re-encodes it in
// its own format. JPEG output uses opts.Quality.
func Resize(path string, opts Options) ([]byte, error) {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return nil, ErrUnsupported
	}

	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fit(src, opts), format, imaging.JPEGQuality(opts.Quality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return buf.Bytes(), nil
}

func fit(src image.Image, opts Options) image.Image {
	w, h := opts.Width, opts.Height
	if w == 0 || h == 0 {
		return imaging.Resize(src, w, h, imaging.Lanczos)
	}

	b := src.Bounds()
	sx := float64(w) / float64(b.Dx())
	sy := float64(h) / float64(b.Dy())

	switch opts.Fit {
	case FitFill:
		return imaging.Resize(src, w, h, imaging.Lanczos)
	case FitInside:
		return scale(src, math.Min(sx, sy))
	case FitOutside:
		return scale(src, math.Max(sx, sy))
	case FitContain:
		canvas := imaging.New(w, h, color.White)
		return imaging.PasteCenter(canvas, scale(src, math.Min(sx, sy)))
	default:
		return imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
	}
}

func scale(src image.Image, factor float64) image.Image {
	b := src.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*factor)))
	h := max(1, int(math.Round(float64(b.Dy())*factor)))
	return imaging.Resize(src, w, h, imaging.Lanczos)
}
