// Package components provides shared UI pieces for the TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/hanzicam/internal/annotate"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/f3rmion/hanzicam/internal/pinyin"
)

// Tone colors follow the common Pleco scheme.
var toneColors = map[pinyin.Tone]lipgloss.Color{
	pinyin.Tone1: lipgloss.Color("#ff6b6b"),
	pinyin.Tone2: lipgloss.Color("#a8e6cf"),
	pinyin.Tone3: lipgloss.Color("#4ecdc4"),
	pinyin.Tone4: lipgloss.Color("#c39bd3"),
	pinyin.Tone5: lipgloss.Color("#aaaaaa"),
}

var (
	charStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffe66d")).
			Padding(0, 1)

	charSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffe66d")).
				Background(lipgloss.Color("#2d3436")).
				Padding(0, 1)

	unknownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// ToneColor returns the color for the tone of a marked syllable.
func ToneColor(syllable string) lipgloss.Color {
	tone, _ := pinyin.ParseTone(syllable)
	if c, ok := toneColors[tone]; ok {
		return c
	}
	return lipgloss.Color("#666666")
}

// Pinyin renders a syllable in its tone color, or "?" when unknown.
func Pinyin(syllable string) string {
	if syllable == "" {
		return unknownStyle.Render("?")
	}
	return lipgloss.NewStyle().Foreground(ToneColor(syllable)).Render(syllable)
}

// Cell renders a character above its pinyin, centered in one column.
func Cell(c hanzi.RecognizedCharacter, selected bool) string {
	style := charStyle
	if selected {
		style = charSelectedStyle
	}
	return lipgloss.JoinVertical(lipgloss.Center, style.Render(c.Character), Pinyin(c.Pinyin))
}

// Group renders one annotation group as a row of cells. selected is the
// index within the group to highlight, or -1.
func Group(g annotate.Group, selected int) string {
	cells := make([]string, len(g.Members))
	for i, c := range g.Members {
		cells[i] = Cell(c, i == selected)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// Groups renders groups separated by blank lines. selected indexes into the
// flattened character sequence.
func Groups(groups []annotate.Group, selected int) string {
	rows := make([]string, 0, len(groups))
	offset := 0
	for _, g := range groups {
		rows = append(rows, Group(g, selected-offset))
		offset += g.Len()
	}
	return strings.Join(rows, "\n\n")
}
