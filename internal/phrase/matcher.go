package phrase

import (
	"strings"
	"sync"
)

// MaxNormalizedDistance is the fuzzy-match acceptance threshold. A candidate
// matches when its Levenshtein distance divided by the longer string length
// is strictly below this value.
const MaxNormalizedDistance = 0.2

// catalog is an immutable snapshot of the phrase table. Lookups never see a
// partially updated table because Replace swaps the whole snapshot.
type catalog struct {
	phrases []TriggerPhrase // insertion order, used for tie breaking
	exact   map[string]int  // normalized phrase -> index into phrases
}

// Matcher fuzzy-matches recognized utterances against the configured
// trigger-phrase catalog. Matching is deterministic and side-effect free.
type Matcher struct {
	mu  sync.RWMutex
	cat *catalog
}

// NewMatcher creates a matcher over the given phrases. Phrases with an
// empty text or unknown protocol are rejected.
func NewMatcher(phrases []TriggerPhrase) (*Matcher, error) {
	cat, err := buildCatalog(phrases)
	if err != nil {
		return nil, err
	}
	return &Matcher{cat: cat}, nil
}

// Replace swaps the entire phrase catalog. On validation failure the
// previous catalog stays in effect.
func (m *Matcher) Replace(phrases []TriggerPhrase) error {
	cat, err := buildCatalog(phrases)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.cat = cat
	m.mu.Unlock()
	return nil
}

// Phrases returns the current catalog in insertion order.
func (m *Matcher) Phrases() []TriggerPhrase {
	m.mu.RLock()
	cat := m.cat
	m.mu.RUnlock()

	out := make([]TriggerPhrase, len(cat.phrases))
	copy(out, cat.phrases)
	return out
}

// Match returns the catalog phrase recognized in the utterance, or nil when
// nothing matches. Exact matches (case and surrounding whitespace aside) win
// immediately; otherwise the entry with the smallest normalized Levenshtein
// distance below the threshold is chosen, first-inserted winning ties.
func (m *Matcher) Match(utterance string) *TriggerPhrase {
	normalized := normalize(utterance)
	if normalized == "" {
		return nil
	}

	m.mu.RLock()
	cat := m.cat
	m.mu.RUnlock()

	if idx, ok := cat.exact[normalized]; ok {
		p := cat.phrases[idx]
		return &p
	}

	bestIdx := -1
	bestDist := MaxNormalizedDistance
	for i, p := range cat.phrases {
		candidate := normalize(p.Phrase)
		dist := levenshtein(normalized, candidate)
		longer := max(len([]rune(normalized)), len([]rune(candidate)))
		if longer == 0 {
			continue
		}
		norm := float64(dist) / float64(longer)
		if norm < bestDist {
			bestDist = norm
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil
	}
	p := cat.phrases[bestIdx]
	return &p
}

func buildCatalog(phrases []TriggerPhrase) (*catalog, error) {
	if len(phrases) == 0 {
		return nil, ErrEmptyCatalog
	}

	cat := &catalog{
		phrases: make([]TriggerPhrase, 0, len(phrases)),
		exact:   make(map[string]int, len(phrases)),
	}
	for _, p := range phrases {
		normalized := normalize(p.Phrase)
		if normalized == "" || !p.Protocol.Valid() {
			return nil, ErrInvalidPhrase
		}
		if _, ok := cat.exact[normalized]; ok {
			continue // first inserted wins
		}
		cat.exact[normalized] = len(cat.phrases)
		cat.phrases = append(cat.phrases, p)
	}
	return cat, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// levenshtein computes the edit distance between two strings, rune-wise so
// non-Latin catalog entries are measured per character.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
