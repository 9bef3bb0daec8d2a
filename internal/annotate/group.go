// Package annotate splits recognized characters into display groups and renders them.
package annotate

import (
	"github.com/f3rmion/hanzicam/internal/hanzi"
)

// Group sizes used by the two display surfaces.
const (
	CaptureGroupSize = 8 // Full-capture result view
	LiveGroupSize    = 6 // Live-scan overlay
)

// Group is a contiguous, non-empty run of characters shown together.
type Group struct {
	Members []hanzi.RecognizedCharacter
}

// Len returns the number of characters in the group.
func (g Group) Len() int {
	return len(g.Members)
}

// HasMeanings reports whether any member carries a meaning.
func (g Group) HasMeanings() bool {
	for _, c := range g.Members {
		if c.HasMeaning() {
			return true
		}
	}
	return false
}

// Split partitions chars into groups of at most maxGroupSize, left to right.
// A new group starts at the first character and whenever the last group is full.
// Members alias the input slice; callers must not modify it afterwards.
func Split(chars []hanzi.RecognizedCharacter, maxGroupSize int) ([]Group, error) {
	if maxGroupSize <= 0 {
		return nil, hanzi.InvalidConfigf("group size", "must be positive, got %d", maxGroupSize)
	}

	groups := make([]Group, 0, (len(chars)+maxGroupSize-1)/maxGroupSize)
	for start := 0; start < len(chars); start += maxGroupSize {
		end := min(start+maxGroupSize, len(chars))
		groups = append(groups, Group{Members: chars[start:end:end]})
	}
	return groups, nil
}

// Flatten concatenates group members back into one sequence.
func Flatten(groups []Group) []hanzi.RecognizedCharacter {
	var out []hanzi.RecognizedCharacter
	for _, g := range groups {
		out = append(out, g.Members...)
	}
	return out
}
