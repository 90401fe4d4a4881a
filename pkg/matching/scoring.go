package matching

import "strings"

// Fuzzy scoring algorithms selectable via config
const (
	AlgorithmRatio       = "ratio"
	AlgorithmLevenshtein = "levenshtein"
)

// Scorer provides the string comparison algorithms used by the matchers
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// ExactMatch returns 1.0 for exact match, 0.0 otherwise
func (s *Scorer) ExactMatch(a, b string, caseSensitive bool) float64 {
	if !caseSensitive {
		a = strings.ToLower(a)
		b = strings.ToLower(b)
	}
	if a == b {
		return 1.0
	}
	return 0.0
}

// Similarity compares two strings with the named algorithm, defaulting to
// Ratio when the name is unknown
func (s *Scorer) Similarity(algorithm, a, b string) float64 {
	switch algorithm {
	case AlgorithmLevenshtein:
		return s.Levenshtein(a, b)
	default:
		return s.Ratio(a, b)
	}
}

// Ratio calculates sequence similarity as 2*M / (len(a)+len(b)), where M is
// the total length of the matching blocks found by repeatedly taking the
// longest common substring and recursing on both sides
func (s *Scorer) Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	matched := matchingChars(a, b)
	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

func matchingChars(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	aStart, bStart, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}

	total := size
	total += matchingChars(a[:aStart], b[:bStart])
	total += matchingChars(a[aStart+size:], b[bStart+size:])
	return total
}

func longestCommonBlock(a, b string) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0

	// lengths of common suffixes ending at a[i-1], b[j-1]
	prev := make([]int, len(b)+1)
	row := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				row[j] = prev[j-1] + 1
				if row[j] > bestSize {
					bestSize = row[j]
					bestA = i - row[j]
					bestB = j - row[j]
				}
			} else {
				row[j] = 0
			}
		}
		prev, row = row, prev
	}

	return bestA, bestB, bestSize
}

// Levenshtein calculates the Levenshtein distance between two strings
// Returns a similarity score between 0.0 and 1.0
func (s *Scorer) Levenshtein(a, b string) float64 {
	distance := s.LevenshteinDistance(a, b)
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// LevenshteinDistance calculates the edit distance between two strings
func (s *Scorer) LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Create two rows for dynamic programming
	row := make([]int, len(b)+1)
	prevRow := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(b)]
}

// WeightedSum accumulates weight per matched field. Unlike a weighted
// average, an absent field simply contributes nothing, so a record carrying
// only an email can never score above the email weight.
func (s *Scorer) WeightedSum(matches map[string]bool, weights map[string]float64) float64 {
	var sum float64
	for field, matched := range matches {
		if !matched {
			continue
		}
		if w, ok := weights[field]; ok {
			sum += w
		}
	}
	return sum
}
