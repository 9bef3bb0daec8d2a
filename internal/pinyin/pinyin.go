// Package pinyin looks up readings for characters and inspects tone marks.
package pinyin

import (
	"strings"
	"unicode/utf8"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// Tone is a Mandarin tone number.
type Tone int

const (
	ToneUnknown Tone = iota
	Tone1
	Tone2
	Tone3
	Tone4
	Tone5 // neutral
)

var args = func() gopinyin.Args {
	a := gopinyin.NewArgs()
	a.Style = gopinyin.Tone
	a.Heteronym = true
	return a
}()

// Readings returns every known reading of a single character, most common first.
func Readings(char string) []string {
	if utf8.RuneCountInString(char) != 1 {
		return nil
	}
	result := gopinyin.Pinyin(char, args)
	if len(result) == 0 {
		return nil
	}
	return result[0]
}

// Reading returns the most common reading of char.
func Reading(char string) (string, bool) {
	readings := Readings(char)
	if len(readings) == 0 {
		return "", false
	}
	return readings[0], true
}

var toneMarks = map[rune]struct {
	base rune
	tone Tone
}{
	'ā': {'a', Tone1}, 'á': {'a', Tone2}, 'ǎ': {'a', Tone3}, 'à': {'a', Tone4},
	'ē': {'e', Tone1}, 'é': {'e', Tone2}, 'ě': {'e', Tone3}, 'è': {'e', Tone4},
	'ī': {'i', Tone1}, 'í': {'i', Tone2}, 'ǐ': {'i', Tone3}, 'ì': {'i', Tone4},
	'ō': {'o', Tone1}, 'ó': {'o', Tone2}, 'ǒ': {'o', Tone3}, 'ò': {'o', Tone4},
	'ū': {'u', Tone1}, 'ú': {'u', Tone2}, 'ǔ': {'u', Tone3}, 'ù': {'u', Tone4},
	'ǖ': {'ü', Tone1}, 'ǘ': {'ü', Tone2}, 'ǚ': {'ü', Tone3}, 'ǜ': {'ü', Tone4},
}

// ParseTone returns the tone of a marked syllable and the syllable without
// its mark. A syllable without a mark is neutral. Empty input is ToneUnknown.
func ParseTone(syllable string) (Tone, string) {
	if syllable == "" {
		return ToneUnknown, ""
	}

	tone := ToneUnknown
	var base strings.Builder
	for _, r := range syllable {
		if mark, ok := toneMarks[r]; ok {
			base.WriteRune(mark.base)
			tone = mark.tone
		} else {
			base.WriteRune(r)
		}
	}
	if tone == ToneUnknown {
		tone = Tone5
	}
	return tone, base.String()
}

// Numbered converts "hǎo" to "hao3". Neutral syllables get no digit.
func Numbered(syllable string) string {
	tone, base := ParseTone(syllable)
	if tone == ToneUnknown || tone == Tone5 {
		return base
	}
	return base + string(rune('0'+tone))
}
