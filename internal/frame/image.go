// Package frame produces encoded still images from camera frames.
//
// A frame is cropped to a Region, scaled down so its longest side fits
// MaxDimension and re-encoded as JPEG at the requested quality.
package frame

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/f3rmion/hanzicam/internal/hanzi"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Region selects the part of a frame to keep, in fractions of its size.
// Padding is trimmed from the left and right edges. Height is the share of
// the frame height kept as a vertically centered band; 0 keeps all of it.
// The zero Region is the full frame.
type Region struct {
	Padding float64 `mapstructure:"padding"`
	Height  float64 `mapstructure:"height"`
}

// Full reports whether r keeps the entire frame.
func (r Region) Full() bool {
	return r.Padding == 0 && (r.Height == 0 || r.Height == 1)
}

// Validate checks the fractions are in range.
func (r Region) Validate() error {
	if r.Padding < 0 || r.Padding >= 0.5 {
		return hanzi.InvalidConfigf("region.padding", "must be in [0, 0.5), got %v", r.Padding)
	}
	if r.Height < 0 || r.Height > 1 {
		return hanzi.InvalidConfigf("region.height", "must be in [0, 1], got %v", r.Height)
	}
	return nil
}

// Rect maps r onto bounds.
func (r Region) Rect(bounds image.Rectangle) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()

	pad := int(float64(w) * r.Padding)
	x0, x1 := bounds.Min.X+pad, bounds.Max.X-pad

	y0, y1 := bounds.Min.Y, bounds.Max.Y
	if r.Height > 0 && r.Height < 1 {
		band := max(int(float64(h)*r.Height), 1)
		y0 = bounds.Min.Y + (h-band)/2
		y1 = y0 + band
	}

	if x1 <= x0 {
		x1 = x0 + 1
	}
	return image.Rect(x0, y0, x1, y1)
}

// Options controls how a frame is turned into a payload.
type Options struct {
	Region       Region
	Quality      int // JPEG quality, 1..100
	MaxDimension int // Longest side after scaling; 0 disables scaling
}

// Validate checks opts.
func (o Options) Validate() error {
	if err := o.Region.Validate(); err != nil {
		return err
	}
	if o.Quality < 1 || o.Quality > 100 {
		return hanzi.InvalidConfigf("quality", "must be in [1, 100], got %d", o.Quality)
	}
	if o.MaxDimension < 0 {
		return hanzi.InvalidConfigf("max_dimension", "must not be negative, got %d", o.MaxDimension)
	}
	return nil
}

// Decode parses an encoded image. Anything that is not a decodable image is
// reported as hanzi.ErrInvalidFrame.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", hanzi.ErrInvalidFrame)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", hanzi.ErrInvalidFrame, err)
	}
	return img, nil
}

// Inspect checks that data looks like an image without decoding pixels and
// returns it with its media type.
func Inspect(data []byte) (hanzi.Image, error) {
	if len(data) == 0 {
		return hanzi.Image{}, fmt.Errorf("%w: empty payload", hanzi.ErrInvalidFrame)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return hanzi.Image{}, fmt.Errorf("%w: %v", hanzi.ErrInvalidFrame, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return hanzi.Image{}, fmt.Errorf("%w: %dx%d image", hanzi.ErrInvalidFrame, cfg.Width, cfg.Height)
	}
	return hanzi.Image{Data: data, MediaType: "image/" + format}, nil
}

// Encode crops, scales and JPEG-encodes img.
func Encode(img image.Image, opts Options) (hanzi.Image, error) {
	if err := opts.Validate(); err != nil {
		return hanzi.Image{}, err
	}

	src := opts.Region.Rect(img.Bounds())
	w, h := fit(src.Dx(), src.Dy(), opts.MaxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w != src.Dx() || h != src.Dy() {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return hanzi.Image{}, fmt.Errorf("encoding jpeg: %w", err)
	}
	return hanzi.Image{Data: buf.Bytes(), MediaType: "image/jpeg"}, nil
}

// fit scales w x h down so neither side exceeds limit, keeping the aspect ratio.
func fit(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(h*limit/w, 1)
	}
	return max(w*limit/h, 1), limit
}
