// Package bigchar renders a character as terminal block art using
// half-block characters, two pixel rows per text row.
package bigchar

import (
	"image"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Common CJK font locations.
var fontPaths = []string{
	// macOS
	"/System/Library/Fonts/STHeiti Light.ttc",
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/Hiragino Sans GB.ttc",
	"/Library/Fonts/Arial Unicode.ttf",
	// Linux
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	"/usr/share/fonts/wenquanyi/wqy-microhei/wqy-microhei.ttc",
	// Windows
	"C:\\Windows\\Fonts\\msyh.ttc",
	"C:\\Windows\\Fonts\\simsun.ttc",
}

const threshold = 40

type cacheKey struct {
	char       string
	cols, rows int
}

// Renderer draws glyphs from one font face. It is safe for concurrent use.
type Renderer struct {
	face font.Face

	mu    sync.Mutex
	cache map[cacheKey]string
}

// New creates a renderer for face. A nil face renders nothing.
func New(face font.Face) *Renderer {
	return &Renderer{face: face, cache: make(map[cacheKey]string)}
}

var (
	systemOnce sync.Once
	system     *Renderer
)

// System returns a renderer using the first CJK font found on this machine.
func System() *Renderer {
	systemOnce.Do(func() {
		system = New(loadFace(fontPaths))
	})
	return system
}

func loadFace(paths []string) font.Face {
	opts := &opentype.FaceOptions{Size: 64, DPI: 72}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		if coll, err := opentype.ParseCollection(data); err == nil && coll.NumFonts() > 0 {
			if fnt, err := coll.Font(0); err == nil {
				if face, err := opentype.NewFace(fnt, opts); err == nil {
					return face
				}
			}
		}
		if fnt, err := opentype.Parse(data); err == nil {
			if face, err := opentype.NewFace(fnt, opts); err == nil {
				return face
			}
		}
	}
	return nil
}

// Available reports whether the renderer has a font.
func (r *Renderer) Available() bool {
	return r != nil && r.face != nil
}

// Render draws the first rune of char in cols x rows cells. Results are cached.
func (r *Renderer) Render(char string, cols, rows int) string {
	if !r.Available() || char == "" || cols <= 0 || rows <= 0 {
		return ""
	}

	key := cacheKey{char, cols, rows}
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.cache[key]; ok {
		return s
	}
	s := r.render([]rune(char)[0], cols, rows)
	r.cache[key] = s
	return s
}

func (r *Renderer) render(ch rune, cols, rows int) string {
	bounds, _, ok := r.face.GlyphBounds(ch)
	if !ok {
		return ""
	}
	glyphW := (bounds.Max.X - bounds.Min.X).Ceil()
	glyphH := (bounds.Max.Y - bounds.Min.Y).Ceil()

	const pad = 4
	w := max(glyphW+pad*2, 64)
	h := max(glyphH+pad*2, 64)

	src := image.NewGray(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  src,
		Src:  image.White,
		Face: r.face,
		Dot:  fixed.P((w-glyphW)/2-bounds.Min.X.Floor(), h-pad-bounds.Max.Y.Ceil()),
	}
	d.DrawString(string(ch))

	dst := image.NewGray(image.Rect(0, 0, cols, rows*2))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return HalfBlocks(dst)
}

// HalfBlocks turns a grayscale image into half-block art. Each text row
// covers two pixel rows; a pixel is lit above a fixed brightness threshold.
func HalfBlocks(img *image.Gray) string {
	b := img.Bounds()
	rows := (b.Dy() + 1) / 2

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := lit(img, x, b.Min.Y+row*2)
			bottom := lit(img, x, b.Min.Y+row*2+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		if row < rows-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

func lit(img *image.Gray, x, y int) bool {
	if !(image.Point{x, y}.In(img.Bounds())) {
		return false
	}
	return img.GrayAt(x, y).Y > threshold
}
