// Package hanzi provides the core types shared by the capture pipeline.
package hanzi

import (
	"context"
	"strings"
	"time"
)

// RecognizedCharacter is one Chinese character returned by the recognition service.
// Values are never modified after construction; slices of them keep scan order.
type RecognizedCharacter struct {
	Character string  `json:"character"`         // One logical character (may be several code points)
	Pinyin    string  `json:"pinyin"`            // Tone-marked reading, empty when unknown
	Meaning   *string `json:"meaning,omitempty"` // Short English gloss, nil when the service gave none
}

// NewCharacter builds a RecognizedCharacter without a meaning.
func NewCharacter(character, pinyin string) RecognizedCharacter {
	return RecognizedCharacter{Character: character, Pinyin: pinyin}
}

// WithMeaning returns a copy of c carrying the given meaning.
func (c RecognizedCharacter) WithMeaning(meaning string) RecognizedCharacter {
	c.Meaning = &meaning
	return c
}

// HasMeaning reports whether the service supplied a meaning (possibly empty).
func (c RecognizedCharacter) HasMeaning() bool {
	return c.Meaning != nil
}

// MeaningOr returns the meaning, or fallback when absent.
func (c RecognizedCharacter) MeaningOr(fallback string) string {
	if c.Meaning == nil {
		return fallback
	}
	return *c.Meaning
}

// RecognitionResult is the parsed answer for one image.
type RecognitionResult struct {
	Characters  []RecognizedCharacter `json:"characters"`
	Translation *string               `json:"translation,omitempty"` // Whole-phrase gloss
}

// Empty reports whether no characters were found.
func (r RecognitionResult) Empty() bool {
	return len(r.Characters) == 0
}

// TranslationOr returns the translation, or fallback when absent.
func (r RecognitionResult) TranslationOr(fallback string) string {
	if r.Translation == nil {
		return fallback
	}
	return *r.Translation
}

// Text concatenates every recognized character in order.
func (r RecognitionResult) Text() string {
	var sb strings.Builder
	for _, c := range r.Characters {
		sb.WriteString(c.Character)
	}
	return sb.String()
}

// PreviewLen is how many characters a history preview keeps.
const PreviewLen = 5

// HistoryEntry is a persisted summary and full record of one recognition.
type HistoryEntry struct {
	ID            string                `json:"id"`
	Preview       string                `json:"preview"`       // First PreviewLen characters
	PinyinPreview string                `json:"pinyinPreview"` // First PreviewLen readings, space separated
	Results       []RecognizedCharacter `json:"results"`
	Translation   *string               `json:"translation,omitempty"`
	Timestamp     time.Time             `json:"timestamp"`
}

// Result rebuilds the RecognitionResult an entry was created from.
func (e HistoryEntry) Result() RecognitionResult {
	return RecognitionResult{Characters: e.Results, Translation: e.Translation}
}

// Previews computes the character and pinyin previews for a character sequence.
func Previews(chars []RecognizedCharacter) (preview, pinyinPreview string) {
	n := min(len(chars), PreviewLen)

	var sb strings.Builder
	readings := make([]string, 0, n)
	for _, c := range chars[:n] {
		sb.WriteString(c.Character)
		readings = append(readings, c.Pinyin)
	}
	return sb.String(), strings.Join(readings, " ")
}

// Image is an encoded still image ready to be sent for recognition.
type Image struct {
	Data      []byte
	MediaType string // e.g. "image/jpeg"
}

// Recognizer extracts characters from an image. Implementations talk to the
// hosted recognition service; the pipeline treats them as a black box.
type Recognizer interface {
	Recognize(ctx context.Context, img Image) (RecognitionResult, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img Image) (RecognitionResult, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, img Image) (RecognitionResult, error) {
	return f(ctx, img)
}

// Ptr returns a pointer to s. Handy for optional fields.
func Ptr(s string) *string {
	return &s
}
