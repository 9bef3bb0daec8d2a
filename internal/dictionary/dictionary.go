// Package dictionary reads the Make Me a Hanzi dictionary.txt file.
//
// It is optional: when configured it supplies glosses for characters the
// recognition service returned without a meaning, and decomposition details
// for the terminal UI.
package dictionary

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Entry is a single line of dictionary.txt.
type Entry struct {
	Character     string     `json:"character"`
	Definition    string     `json:"definition"`
	Pinyin        []string   `json:"pinyin"`
	Decomposition string     `json:"decomposition"`
	Etymology     *Etymology `json:"etymology,omitempty"`
	Radical       string     `json:"radical"`
}

// Etymology from Make Me a Hanzi.
type Etymology struct {
	Type     string `json:"type"` // pictophonetic, pictographic, ideographic
	Semantic string `json:"semantic,omitempty"`
	Phonetic string `json:"phonetic,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

// Dictionary is a read-only character index.
type Dictionary struct {
	entries map[string]*Entry
	skipped int
}

// Load reads a dictionary file.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses one JSON entry per line. Malformed lines are skipped.
func Read(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{entries: make(map[string]*Entry)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil || entry.Character == "" {
			d.skipped++
			continue
		}
		d.entries[entry.Character] = &entry
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary file: %w", err)
	}

	return d, nil
}

// Lookup returns the entry for a character, or nil.
func (d *Dictionary) Lookup(char string) *Entry {
	if d == nil {
		return nil
	}
	return d.entries[char]
}

// Size returns the number of entries.
func (d *Dictionary) Size() int {
	return len(d.entries)
}

// Skipped returns the number of malformed lines ignored while reading.
func (d *Dictionary) Skipped() int {
	return d.skipped
}

// Gloss returns the first sense of the definition ("good, well; proper" gives
// "good, well").
func (d *Dictionary) Gloss(char string) (string, bool) {
	e := d.Lookup(char)
	if e == nil || e.Definition == "" {
		return "", false
	}
	first, _, _ := strings.Cut(e.Definition, ";")
	first = strings.TrimSpace(first)
	return first, first != ""
}

// IDS (Ideographic Description Sequence) operators and the layout they describe.
var idsChars = map[rune]string{
	'⿰': "left-right",
	'⿱': "top-bottom",
	'⿲': "left-mid-right",
	'⿳': "top-mid-bottom",
	'⿴': "surround",
	'⿵': "surround-top",
	'⿶': "surround-bottom",
	'⿷': "surround-left",
	'⿸': "surround-upper-left",
	'⿹': "surround-upper-right",
	'⿺': "surround-lower-left",
	'⿻': "overlaid",
}

// Components lists the component characters of an IDS decomposition.
func Components(decomposition string) []string {
	if decomposition == "" || decomposition == "？" {
		return nil
	}

	var components []string
	for _, r := range decomposition {
		if _, ok := idsChars[r]; ok || r == '？' {
			continue
		}
		if unicode.Is(unicode.Han, r) || isRadical(r) {
			components = append(components, string(r))
		}
	}
	return components
}

// Structure names the outermost IDS layout of a decomposition.
func Structure(decomposition string) string {
	if decomposition == "" || decomposition == "？" {
		return "unknown"
	}
	for _, r := range decomposition {
		if desc, ok := idsChars[r]; ok {
			return desc
		}
	}
	return "simple"
}

// FormatDecomposition describes a decomposition, e.g. "left-right: 女 + 子".
func FormatDecomposition(decomposition string) string {
	if decomposition == "" || decomposition == "？" {
		return "No decomposition available"
	}

	components := Components(decomposition)
	if len(components) == 0 {
		return "No components found"
	}
	return fmt.Sprintf("%s: %s", Structure(decomposition), strings.Join(components, " + "))
}

// CJK Radicals Supplement and Kangxi Radicals blocks.
func isRadical(r rune) bool {
	return (r >= 0x2E80 && r <= 0x2EFF) || (r >= 0x2F00 && r <= 0x2FDF)
}
