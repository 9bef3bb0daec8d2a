package bigchar

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

func TestHalfBlocks(t *testing.T) {
	t.Parallel()

	img := image.NewGray(image.Rect(0, 0, 4, 2))
	img.SetGray(0, 0, color.Gray{Y: 255})
	img.SetGray(0, 1, color.Gray{Y: 255})
	img.SetGray(1, 0, color.Gray{Y: 255})
	img.SetGray(2, 1, color.Gray{Y: 255})
	img.SetGray(3, 0, color.Gray{Y: 20})

	assert.Equal(t, "█▀▄ ", HalfBlocks(img))
}

func TestHalfBlocks_OddHeight(t *testing.T) {
	t.Parallel()

	img := image.NewGray(image.Rect(0, 0, 1, 3))
	img.SetGray(0, 2, color.Gray{Y: 255})
	assert.Equal(t, " \n▀", HalfBlocks(img))
}

func TestRenderer_NoFont(t *testing.T) {
	t.Parallel()

	r := New(nil)
	assert.False(t, r.Available())
	assert.Empty(t, r.Render("好", 16, 8))
}

func TestRenderer_DrawsGlyph(t *testing.T) {
	t.Parallel()

	fnt, err := opentype.Parse(goregular.TTF)
	require.NoError(t, err)
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: 64, DPI: 72})
	require.NoError(t, err)

	r := New(face)
	require.True(t, r.Available())

	out := r.Render("H", 16, 8)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 8)
	for _, line := range lines {
		assert.Equal(t, 16, len([]rune(line)))
	}
	assert.Contains(t, out, "█")

	assert.Equal(t, out, r.Render("H", 16, 8))
	assert.Empty(t, r.Render("", 16, 8))
	assert.Empty(t, r.Render("H", 0, 8))
}
