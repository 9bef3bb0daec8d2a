package dictionary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"character":"好","definition":"good, well; proper","pinyin":["hǎo","hào"],"decomposition":"⿰女子","radical":"女","etymology":{"type":"ideographic","hint":"A woman 女 with a son 子"}}
not json at all
{"character":"你","definition":"you, second person pronoun","pinyin":["nǐ"],"decomposition":"⿰亻尔","radical":"亻"}

{"definition":"no character"}
{"character":"一","definition":"","pinyin":["yī"],"decomposition":"？","radical":"一"}
`

func TestRead(t *testing.T) {
	t.Parallel()

	d, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 3, d.Size())
	assert.Equal(t, 2, d.Skipped())

	e := d.Lookup("好")
	require.NotNil(t, e)
	assert.Equal(t, []string{"hǎo", "hào"}, e.Pinyin)
	require.NotNil(t, e.Etymology)
	assert.Equal(t, "ideographic", e.Etymology.Type)
	assert.Nil(t, d.Lookup("猫"))
}

func TestGloss(t *testing.T) {
	t.Parallel()

	d, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	g, ok := d.Gloss("好")
	require.True(t, ok)
	assert.Equal(t, "good, well", g)

	g, ok = d.Gloss("你")
	require.True(t, ok)
	assert.Equal(t, "you, second person pronoun", g)

	_, ok = d.Gloss("一")
	assert.False(t, ok)
	_, ok = d.Gloss("猫")
	assert.False(t, ok)

	var nilDict *Dictionary
	_, ok = nilDict.Gloss("好")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dictionary.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Size())

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestDecomposition(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"女", "子"}, Components("⿰女子"))
	assert.Equal(t, "left-right", Structure("⿰女子"))
	assert.Equal(t, "left-right: 女 + 子", FormatDecomposition("⿰女子"))
	assert.Equal(t, "top-bottom", Structure("⿱⿰木木心"))
	assert.Equal(t, "simple", Structure("木"))
	assert.Equal(t, "No decomposition available", FormatDecomposition("？"))
	assert.Nil(t, Components(""))
}
