package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/f3rmion/hanzicam/internal/hanzi"
)

// wireCharacter mirrors one entry of the "characters" array. Pointers tell an
// absent field apart from an empty one.
type wireCharacter struct {
	Character *string `json:"character"`
	Pinyin    *string `json:"pinyin"`
	Meaning   *string `json:"meaning"`
}

type wireResult struct {
	Characters   []wireCharacter `json:"characters"`
	DetectedText *string         `json:"detected_text"`
	Translation  *string         `json:"translation"`
}

// DecodeResult turns the model's reply into a RecognitionResult. Text around
// the JSON object is ignored, as are unknown fields. A reply without a JSON
// object, or with a character entry missing "character" or "pinyin", fails
// with hanzi.ErrMalformedResponse.
func DecodeResult(text string) (hanzi.RecognitionResult, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return hanzi.RecognitionResult{}, fmt.Errorf("%w: %v", hanzi.ErrMalformedResponse, err)
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return hanzi.RecognitionResult{}, fmt.Errorf("%w: %v", hanzi.ErrMalformedResponse, err)
	}

	chars := make([]hanzi.RecognizedCharacter, 0, len(wire.Characters))
	for i, w := range wire.Characters {
		if w.Character == nil || strings.TrimSpace(*w.Character) == "" {
			return hanzi.RecognitionResult{}, fmt.Errorf("%w: characters[%d]: missing character", hanzi.ErrMalformedResponse, i)
		}
		if w.Pinyin == nil {
			return hanzi.RecognitionResult{}, fmt.Errorf("%w: characters[%d]: missing pinyin", hanzi.ErrMalformedResponse, i)
		}

		c := hanzi.NewCharacter(strings.TrimSpace(*w.Character), strings.TrimSpace(*w.Pinyin))
		if w.Meaning != nil {
			c = c.WithMeaning(strings.TrimSpace(*w.Meaning))
		}
		chars = append(chars, c)
	}

	return hanzi.RecognitionResult{Characters: chars, Translation: wire.Translation}, nil
}

// extractJSON returns the text between the first '{' and the last '}'.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}
