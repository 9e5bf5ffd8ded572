package fuzzy

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
)

// Approximate is an edit-distance tolerant substring matcher.
type Approximate struct {
	threshold float64
	distance  float64
}

// NewApproximate returns a matcher accepting candidates whose best score is
// at most threshold.
func NewApproximate(threshold, distance float64) *Approximate {
	return &Approximate{threshold: threshold, distance: distance}
}

// Match implements Matcher.
func (a *Approximate) Match(pattern string, candidates []string) []int {
	fold := cases.Fold()
	p := []rune(fold.String(strings.TrimSpace(pattern)))
	if len(p) == 0 {
		return nil
	}

	var idx []int
	for i, c := range candidates {
		if a.score(p, []rune(fold.String(c))) <= a.threshold {
			idx = append(idx, i)
		}
	}
	return idx
}

// Score returns the best score of pattern against text; 0 is an exact match
// at the start of text. Both strings are case folded first.
func (a *Approximate) Score(pattern, text string) float64 {
	fold := cases.Fold()
	p := []rune(fold.String(pattern))
	if len(p) == 0 {
		return 0
	}
	return a.score(p, []rune(fold.String(text)))
}

// score runs Sellers' algorithm: column j holds, for each pattern prefix, the
// fewest edits aligning it with some substring of text ending at j, plus the
// position where that substring starts.
func (a *Approximate) score(p, text []rune) float64 {
	m := len(p)
	cost := make([]int, m+1)
	start := make([]int, m+1)
	nextCost := make([]int, m+1)
	nextStart := make([]int, m+1)
	for i := range cost {
		cost[i] = i
	}

	best := math.Inf(1)
	for j := 1; j <= len(text); j++ {
		nextCost[0], nextStart[0] = 0, j
		for i := 1; i <= m; i++ {
			sub := cost[i-1]
			if p[i-1] != text[j-1] {
				sub++
			}
			c, s := sub, start[i-1]
			if del := nextCost[i-1] + 1; del < c || (del == c && nextStart[i-1] < s) {
				c, s = del, nextStart[i-1]
			}
			if ins := cost[i] + 1; ins < c || (ins == c && start[i] < s) {
				c, s = ins, start[i]
			}
			nextCost[i], nextStart[i] = c, s
		}
		cost, nextCost = nextCost, cost
		start, nextStart = nextStart, start

		if sc := float64(cost[m])/float64(m) + a.proximity(start[m]); sc < best {
			best = sc
		}
	}
	if math.IsInf(best, 1) {
		// Empty text: every pattern character is an error.
		return 1
	}
	return best
}

func (a *Approximate) proximity(pos int) float64 {
	if a.distance <= 0 {
		if pos == 0 {
			return 0
		}
		return 1
	}
	return float64(pos) / a.distance
}
