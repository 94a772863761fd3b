package directory

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
)

// candidate is one searchable entity name.
type candidate struct {
	entity Entity
	text   string
}

// Match is a scored search hit.
type Match struct {
	Entity Entity

	// Score is higher for better matches.
	Score int

	// Positions holds the rune indices of the matched characters in the
	// folded name.
	Positions []int
}

// Scorer rates a subsequence match of query inside text.
type Scorer interface {
	// Score receives the folded query and text runes, the original text
	// runes (used for word boundaries), and the matched positions.
	Score(query, text, original []rune, positions []int) int
}

// Weights is the default Scorer with adjustable bonuses and penalties.
type Weights struct {
	Base           int
	Consecutive    int
	WordBoundary   int
	Prefix         int
	ExactPrefix    int
	Gap            int
	Leading        int
	ShortThreshold int
}

// DefaultWeights returns the weights used by a new Directory.
func DefaultWeights() Weights {
	return Weights{
		Base:           100,
		Consecutive:    20,
		WordBoundary:   15,
		Prefix:         25,
		ExactPrefix:    50,
		Gap:            2,
		Leading:        1,
		ShortThreshold: 20,
	}
}

// Score implements Scorer.
func (w Weights) Score(query, text, original []rune, positions []int) int {
	if len(positions) == 0 {
		return 0
	}

	score := w.Base
	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1]+1 {
			score += w.Consecutive
		}
	}

	// Folding may change the rune count (ß -> ss), in which case word
	// boundaries are taken from the folded text.
	boundaries := original
	if len(boundaries) != len(text) {
		boundaries = text
	}
	for _, p := range positions {
		if isWordBoundary(boundaries, p) {
			score += w.WordBoundary
		}
	}

	first := positions[0]
	if first == 0 {
		score += w.Prefix
	} else {
		score -= first * w.Leading
	}

	if gap := positions[len(positions)-1] - first - len(positions) + 1; gap > 0 {
		score -= gap * w.Gap
	}

	if len(text) < w.ShortThreshold {
		score += w.ShortThreshold - len(text)
	}

	if hasRunePrefix(text, query) {
		score += w.ExactPrefix
	}

	return max(score, 1)
}

func hasRunePrefix(text, prefix []rune) bool {
	if len(prefix) > len(text) {
		return false
	}
	for i, r := range prefix {
		if text[i] != r {
			return false
		}
	}
	return true
}

func isWordBoundary(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	if i >= len(runes) {
		return false
	}
	prev, cur := runes[i-1], runes[i]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}

// fold case-folds s for matching. A Caser is stateful, so one is made
// per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// matcher runs greedy subsequence matching over candidates and keeps
// recent results in an LRU cache.
type matcher struct {
	mu       sync.RWMutex
	scorer   Scorer
	cache    *resultCache
	minScore int
}

func newMatcher(scorer Scorer, cacheSize int) *matcher {
	m := &matcher{scorer: scorer}
	if cacheSize > 0 {
		m.cache = newResultCache(cacheSize)
	}
	return m
}

func (m *matcher) setScorer(s Scorer) {
	m.mu.Lock()
	m.scorer = s
	m.mu.Unlock()
	m.reset()
}

// reset drops cached results. It must be called whenever the candidate
// set changes.
func (m *matcher) reset() {
	if m.cache != nil {
		m.cache.clear()
	}
}

// match returns the candidates matching query, best first. The cache key
// must identify the candidate set together with the query.
func (m *matcher) match(key, query string, items []candidate) []Match {
	query = fold(strings.TrimSpace(query))
	if query == "" {
		out := make([]Match, len(items))
		for i, it := range items {
			out[i] = Match{Entity: it.entity}
		}
		return out
	}

	cacheKey := key + "\x00" + query
	if m.cache != nil {
		if hit, ok := m.cache.get(cacheKey); ok {
			return hit
		}
	}

	m.mu.RLock()
	scorer := m.scorer
	m.mu.RUnlock()

	q := []rune(query)
	out := make([]Match, 0, len(items))
	for _, it := range items {
		score, pos := matchOne(scorer, q, it.text)
		if score > m.minScore {
			out = append(out, Match{Entity: it.entity, Score: score, Positions: pos})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Entity.Name < out[j].Entity.Name
	})

	if m.cache != nil {
		m.cache.put(cacheKey, out)
	}
	return out
}

func matchOne(scorer Scorer, query []rune, text string) (int, []int) {
	if text == "" || len(query) == 0 {
		return 0, nil
	}
	original := []rune(text)
	folded := []rune(fold(text))

	pos := make([]int, 0, len(query))
	qi := 0
	for i := 0; i < len(folded) && qi < len(query); i++ {
		if folded[i] == query[qi] {
			pos = append(pos, i)
			qi++
		}
	}
	if qi != len(query) {
		return 0, nil
	}
	return scorer.Score(query, folded, original, pos), pos
}
