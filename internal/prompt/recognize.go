// Package prompt builds the instruction sent with each frame.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

// Options tunes the recognition instruction.
type Options struct {
	// Meanings asks for a short English meaning per character.
	Meanings bool
	// Translation asks for a translation of the whole text.
	Translation bool
}

// DefaultOptions requests everything.
func DefaultOptions() Options {
	return Options{Meanings: true, Translation: true}
}

// Schema describes the JSON object the model must answer with.
const Schema = `{
  "characters": [
    {"character": "<one Chinese character>", "pinyin": "<pinyin with tone marks, or empty if unknown>"{{if .Meanings}}, "meaning": "<brief English meaning>"{{end}}}
  ],
  "detected_text": "<full text detected in the image>"{{if .Translation}},
  "translation": "<English translation of the full phrase or text>"{{end}}
}`

const recognizeTemplate = `Analyze this image and identify ALL Chinese characters visible in it.

For each Chinese character found, provide:
1. The character itself
2. Its pinyin with tone marks (e.g., nǐ, hǎo, shì)
{{- if .Meanings}}
3. A brief English meaning
{{- end}}

Important:
- Only include actual Chinese characters (汉字), not punctuation or other symbols
- List characters in reading order
- If no Chinese characters are found, return an empty "characters" array
- Be thorough and identify every Chinese character visible
- Include traditional and simplified characters

Output ONLY a valid JSON object matching this schema, no markdown, no explanations:
` + Schema

var recognize = template.Must(template.New("recognize").Parse(recognizeTemplate))

// Recognize renders the instruction for opts.
func Recognize(opts Options) (string, error) {
	var buf bytes.Buffer
	if err := recognize.Execute(&buf, opts); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}
