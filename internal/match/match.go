// Package match implements the fuzzy name matching used to attach people
// records to investors when no shared identifier exists. Scores follow the
// token-sort-ratio scheme: normalize, sort tokens, then the indel
// similarity ratio over the joined forms.
package match

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s, strips diacritics, removes everything outside
// [a-z0-9 ], and collapses runs of whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Levenshtein returns the edit distance between two strings.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Ratio returns a 0-100 similarity score: 100*(1 - indel/(len(a)+len(b))),
// where indel is the edit distance without substitutions. This is the
// classic fuzz ratio. Two empty strings score 100.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	indel := total - 2*lcsLength(ra, rb)
	return int(100 * float64(total-indel) / float64(total))
}

// lcsLength returns the length of the longest common subsequence.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
		clear(curr)
	}
	return prev[len(b)]
}

// TokenSortRatio scores two already-normalized strings ignoring word order.
func TokenSortRatio(a, b string) int {
	return Ratio(sortTokens(a), sortTokens(b))
}

// SuggestSimilar finds candidates within maxDistance edits of input.
// Exact matches are not suggestions.
func SuggestSimilar(input string, candidates []string, maxDistance int) []string {
	inputLower := strings.ToLower(input)
	var suggestions []string
	for _, candidate := range candidates {
		dist := Levenshtein(inputLower, strings.ToLower(candidate))
		if dist <= maxDistance && dist > 0 {
			suggestions = append(suggestions, candidate)
		}
	}
	return suggestions
}

func sortTokens(s string) string {
	toks := strings.Fields(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

// Matcher finds the best candidate for a query string. Candidates are
// normalized once at construction.
type Matcher struct {
	candidates []string // original forms, input order
	normalized []string
}

// NewMatcher builds a matcher over the given candidate strings.
func NewMatcher(candidates []string) *Matcher {
	m := &Matcher{
		candidates: append([]string(nil), candidates...),
		normalized: make([]string, len(candidates)),
	}
	for i, c := range candidates {
		m.normalized[i] = Normalize(c)
	}
	return m
}

// Best returns the highest-scoring candidate for query and its score.
// Ties resolve to the earliest candidate. ok is false when there are no
// candidates.
func (m *Matcher) Best(query string) (best string, score int, ok bool) {
	if len(m.candidates) == 0 {
		return "", 0, false
	}
	q := Normalize(query)
	bestIdx, bestScore := 0, -1
	for i, n := range m.normalized {
		s := TokenSortRatio(q, n)
		if s > bestScore {
			bestIdx, bestScore = i, s
		}
	}
	return m.candidates[bestIdx], bestScore, true
}

// BuildMap maps each distinct name to the best candidate whose score meets
// threshold. Names with no qualifying candidate are absent from the map.
func BuildMap(names, candidates []string, threshold int) map[string]string {
	m := NewMatcher(candidates)
	out := make(map[string]string)
	for _, name := range names {
		if _, done := out[name]; done {
			continue
		}
		if best, score, ok := m.Best(name); ok && score >= threshold {
			out[name] = best
		}
	}
	return out
}
