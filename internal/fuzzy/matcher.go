// Package fuzzy matches search text against record names.
//
// Two matchers are provided. Approximate tolerates typos: it finds the
// substring of a name with the fewest edits from the pattern and accepts the
// name when errors/len(pattern) plus a location penalty stays under a
// threshold. Subsequence accepts any name containing the pattern's characters
// in order, the way command palettes filter.
package fuzzy

import (
	"fmt"
	"sort"
	"strings"

	sfuzzy "github.com/sahilm/fuzzy"
)

const (
	// DefaultThreshold accepts roughly one error per three pattern characters.
	DefaultThreshold = 0.3
	// DefaultDistance is how far from the start of a name a match may begin
	// before the location penalty alone reaches 1.0.
	DefaultDistance = 100
)

// Kind names a matcher implementation.
type Kind string

const (
	KindApproximate Kind = "approximate"
	KindSubsequence Kind = "subsequence"
)

// Matcher reports which candidates match a pattern.
type Matcher interface {
	// Match returns the indices of matching candidates in ascending order.
	// Callers handle the empty pattern themselves.
	Match(pattern string, candidates []string) []int
}

// New builds a matcher by kind. Threshold and distance only apply to the
// approximate matcher and are used as given: a zero threshold accepts exact
// substrings only, a zero distance penalises any match not at the start.
func New(kind Kind, threshold, distance float64) (Matcher, error) {
	switch kind {
	case KindApproximate, "":
		return NewApproximate(threshold, distance), nil
	case KindSubsequence:
		return Subsequence{}, nil
	}
	return nil, fmt.Errorf("unknown matcher %q (valid: %s, %s)", kind, KindApproximate, KindSubsequence)
}

// Subsequence matches candidates containing the pattern's characters in
// order, case-insensitively.
type Subsequence struct{}

// Match implements Matcher.
func (Subsequence) Match(pattern string, candidates []string) []int {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	found := sfuzzy.Find(pattern, candidates)
	idx := make([]int, 0, len(found))
	for _, m := range found {
		idx = append(idx, m.Index)
	}
	sort.Ints(idx)
	return idx
}
