package pinyin

import (
	"context"

	"github.com/f3rmion/hanzicam/internal/hanzi"
)

// Glosser supplies a short meaning for a character.
type Glosser interface {
	Gloss(char string) (string, bool)
}

// Fallback fills gaps in recognition results. Characters are rebuilt rather
// than mutated, so a result is complete by the time anyone sees it.
type Fallback struct {
	next   hanzi.Recognizer
	pinyin bool
	gloss  Glosser
}

var _ hanzi.Recognizer = (*Fallback)(nil)

// NewFallback wraps next. With usePinyin, empty pinyin is replaced by the
// most common reading. A non-nil gloss fills meanings the service left out.
func NewFallback(next hanzi.Recognizer, usePinyin bool, gloss Glosser) *Fallback {
	return &Fallback{next: next, pinyin: usePinyin, gloss: gloss}
}

// Recognize implements hanzi.Recognizer.
func (f *Fallback) Recognize(ctx context.Context, img hanzi.Image) (hanzi.RecognitionResult, error) {
	result, err := f.next.Recognize(ctx, img)
	if err != nil || result.Empty() {
		return result, err
	}

	chars := make([]hanzi.RecognizedCharacter, len(result.Characters))
	for i, c := range result.Characters {
		chars[i] = f.fill(c)
	}
	result.Characters = chars
	return result, nil
}

func (f *Fallback) fill(c hanzi.RecognizedCharacter) hanzi.RecognizedCharacter {
	filled := hanzi.NewCharacter(c.Character, c.Pinyin)
	if filled.Pinyin == "" && f.pinyin {
		if reading, ok := Reading(c.Character); ok {
			filled.Pinyin = reading
		}
	}

	switch {
	case c.HasMeaning():
		filled = filled.WithMeaning(*c.Meaning)
	case f.gloss != nil:
		if gloss, ok := f.gloss.Gloss(c.Character); ok {
			filled = filled.WithMeaning(gloss)
		}
	}
	return filled
}
