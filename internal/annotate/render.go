package annotate

import (
	"strings"

	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/mattn/go-runewidth"
)

// unknownPinyin is shown when the service gave no reading.
const unknownPinyin = "?"

// Tone-marked vowels (ǎ, ǐ, ...) are East Asian "ambiguous" width; terminals
// draw them one cell wide regardless of locale.
var width = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// Lines renders one group as aligned rows: characters, pinyin and, when any
// member has one, the meanings. Each column is as wide as its widest cell.
func (g Group) Lines() []string {
	widths := make([]int, len(g.Members))
	for i, c := range g.Members {
		widths[i] = max(width.StringWidth(c.Character), width.StringWidth(pinyinCell(c)))
	}

	chars := make([]string, len(g.Members))
	readings := make([]string, len(g.Members))
	for i, c := range g.Members {
		chars[i] = width.FillRight(c.Character, widths[i])
		readings[i] = width.FillRight(pinyinCell(c), widths[i])
	}

	lines := []string{
		strings.TrimRight(strings.Join(chars, "  "), " "),
		strings.TrimRight(strings.Join(readings, "  "), " "),
	}

	if g.HasMeanings() {
		meanings := make([]string, 0, len(g.Members))
		for _, c := range g.Members {
			meanings = append(meanings, c.Character+" "+c.MeaningOr("-"))
		}
		lines = append(lines, strings.Join(meanings, " · "))
	}
	return lines
}

// Render lays out every group separated by a blank line, followed by the
// translation when present.
func Render(groups []Group, translation *string) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, line := range g.Lines() {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	if translation != nil && *translation != "" {
		if len(groups) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Translation: ")
		b.WriteString(*translation)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderResult groups and renders a result in one step.
func RenderResult(result hanzi.RecognitionResult, maxGroupSize int) (string, error) {
	groups, err := Split(result.Characters, maxGroupSize)
	if err != nil {
		return "", err
	}
	return Render(groups, result.Translation), nil
}

func pinyinCell(c hanzi.RecognizedCharacter) string {
	if c.Pinyin == "" {
		return unknownPinyin
	}
	return c.Pinyin
}
