package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/hanzicam/internal/annotate"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToneColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		syllable string
		want     lipgloss.Color
	}{
		{"mā", "#ff6b6b"},
		{"má", "#a8e6cf"},
		{"mǎ", "#4ecdc4"},
		{"mà", "#c39bd3"},
		{"ma", "#aaaaaa"},
		{"", "#666666"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToneColor(tt.syllable), tt.syllable)
	}
}

func TestPinyin_Unknown(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Pinyin(""), "?")
	assert.Contains(t, Pinyin("hǎo"), "hǎo")
}

func TestGroups(t *testing.T) {
	t.Parallel()

	chars := []hanzi.RecognizedCharacter{
		hanzi.NewCharacter("中", "zhōng"),
		hanzi.NewCharacter("国", "guó"),
		hanzi.NewCharacter("人", ""),
	}
	groups, err := annotate.Split(chars, 2)
	require.NoError(t, err)

	out := Groups(groups, 2)
	rows := strings.Split(out, "\n\n")
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "中")
	assert.Contains(t, rows[0], "guó")
	assert.Contains(t, rows[1], "人")
	assert.Contains(t, rows[1], "?")
}
