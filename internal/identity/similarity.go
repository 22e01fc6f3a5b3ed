package identity

import "strings"

// DefaultFuzzyThreshold is the name-similarity floor for IsFuzzyMatch.
const DefaultFuzzyThreshold = 0.85

// Record is the minimal identity view of a business used for matching.
// Phone must already be normalized (see NormalizePhone); City may be empty.
type Record struct {
	Name  string
	Phone string
	City  string
}

// Similarity returns 1 - (edit distance / max length) computed on the
// normalized forms of a and b. Identical (or both-empty) names score 1.
func Similarity(a, b string) float64 {
	na := NormalizeName(a)
	nb := NormalizeName(b)
	if na == nb {
		return 1
	}

	ra := []rune(na)
	rb := []rune(nb)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

// IsFuzzyMatch decides whether two records identify the same business.
// Precedence is load-bearing and must not be reordered: equal non-empty
// phones match immediately, differing non-empty cities reject immediately,
// and only then does name similarity decide.
func IsFuzzyMatch(a, b Record, threshold float64) bool {
	if a.Phone != "" && b.Phone != "" && a.Phone == b.Phone {
		return true
	}
	if a.City != "" && b.City != "" && !strings.EqualFold(a.City, b.City) {
		return false
	}
	return Similarity(a.Name, b.Name) >= threshold
}

// levenshtein computes edit distance with the classic two-row DP.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
