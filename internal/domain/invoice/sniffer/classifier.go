// Package sniffer recognizes which known invoice layout a document follows.
//
// Every template is described by groups of anchor phrases. A template matches
// only when each of its groups has at least one phrase present in the text,
// so a single weak signal never selects a template. All phrases of all
// templates are compiled into one Aho-Corasick automaton and the text is
// scanned once per query.
package sniffer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/cloudflare/ahocorasick"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinAnchorGroups is the minimum number of independent anchor groups a
// template signature must declare.
const MinAnchorGroups = 2

var (
	// ErrWeakSignature is returned for signatures with too few anchor groups.
	ErrWeakSignature = errors.New("template signature needs at least two anchor groups")
	// ErrDuplicateTemplate is returned when two signatures share a name.
	ErrDuplicateTemplate = errors.New("duplicate template name")
)

// TemplateSignature lists the anchor phrases of one template. Phrases are
// compared after Fold, so write them upper-case without accents.
type TemplateSignature struct {
	Name    string
	Country string
	Groups  [][]string
}

type anchorRef struct {
	template int
	group    int
}

// Classifier evaluates template predicates over invoice text.
type Classifier struct {
	matcher    *ahocorasick.Matcher
	phrases    []string      // unique phrases in matcher order
	owners     [][]anchorRef // template/group pairs per phrase
	signatures []TemplateSignature
	byName     map[string]int
	// The automaton keeps per-call match counters, so scans take the write lock.
	mu sync.RWMutex
}

// NewClassifier builds a classifier for signatures, kept in priority order.
func NewClassifier(signatures []TemplateSignature) (*Classifier, error) {
	c := &Classifier{}
	if err := c.Build(signatures); err != nil {
		return nil, err
	}
	return c, nil
}

// Build (re)compiles the automaton for signatures.
func (c *Classifier) Build(signatures []TemplateSignature) error {
	byName := make(map[string]int, len(signatures))
	phraseIndex := make(map[string]int)
	phrases := make([]string, 0)
	owners := make([][]anchorRef, 0)

	for ti, sig := range signatures {
		if len(sig.Groups) < MinAnchorGroups {
			return fmt.Errorf("%s: %w", sig.Name, ErrWeakSignature)
		}
		if _, exists := byName[sig.Name]; exists {
			return fmt.Errorf("%s: %w", sig.Name, ErrDuplicateTemplate)
		}
		byName[sig.Name] = ti

		for gi, group := range sig.Groups {
			if len(group) == 0 {
				return fmt.Errorf("%s: empty anchor group %d: %w", sig.Name, gi, ErrWeakSignature)
			}
			for _, phrase := range group {
				clean := Fold(phrase)
				if clean == "" {
					continue
				}
				ref := anchorRef{template: ti, group: gi}
				if idx, exists := phraseIndex[clean]; exists {
					owners[idx] = append(owners[idx], ref)
					continue
				}
				phraseIndex[clean] = len(phrases)
				phrases = append(phrases, clean)
				owners = append(owners, []anchorRef{ref})
			}
		}
	}

	var matcher *ahocorasick.Matcher
	if len(phrases) > 0 {
		dict := make([][]byte, len(phrases))
		for i, p := range phrases {
			dict[i] = []byte(p)
		}
		matcher = ahocorasick.NewMatcher(dict)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.matcher = matcher
	c.phrases = phrases
	c.owners = owners
	c.signatures = append([]TemplateSignature(nil), signatures...)
	c.byName = byName
	return nil
}

// Matches reports whether the named template's predicate holds for text.
// Unknown names never match.
func (c *Classifier) Matches(name, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ti, ok := c.byName[name]
	if !ok {
		return false
	}
	return c.satisfied(c.scan(text))[ti]
}

// Predicate returns the named template's predicate as a standalone function.
func (c *Classifier) Predicate(name string) func(text string) bool {
	return func(text string) bool {
		return c.Matches(name, text)
	}
}

// Detect returns the first template, in priority order, whose predicate
// holds, or "" when none does.
func (c *Classifier) Detect(text string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	for ti, ok := range c.satisfied(c.scan(text)) {
		if ok {
			return c.signatures[ti].Name
		}
	}
	return ""
}

// MatchAll returns every template whose predicate holds, in priority order.
// More than one entry means the anchors of two templates overlap.
func (c *Classifier) MatchAll(text string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var names []string
	for ti, ok := range c.satisfied(c.scan(text)) {
		if ok {
			names = append(names, c.signatures[ti].Name)
		}
	}
	return names
}

// Country returns the country code declared by the named template.
func (c *Classifier) Country(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if ti, ok := c.byName[name]; ok {
		return c.signatures[ti].Country
	}
	return ""
}

// Templates lists template names in priority order.
func (c *Classifier) Templates() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.signatures))
	for i, s := range c.signatures {
		names[i] = s.Name
	}
	return names
}

// PhraseCount returns the number of unique anchor phrases loaded.
func (c *Classifier) PhraseCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.phrases)
}

// scan returns, per template, which anchor groups were hit. Callers hold mu.
func (c *Classifier) scan(text string) [][]bool {
	hits := make([][]bool, len(c.signatures))
	for i, sig := range c.signatures {
		hits[i] = make([]bool, len(sig.Groups))
	}
	if c.matcher == nil || text == "" {
		return hits
	}

	for _, idx := range c.matcher.Match([]byte(Fold(text))) {
		if idx < 0 || idx >= len(c.owners) {
			continue
		}
		for _, ref := range c.owners[idx] {
			hits[ref.template][ref.group] = true
		}
	}
	return hits
}

func (c *Classifier) satisfied(hits [][]bool) []bool {
	out := make([]bool, len(hits))
	for ti, groups := range hits {
		all := len(groups) > 0
		for _, hit := range groups {
			if !hit {
				all = false
				break
			}
		}
		out[ti] = all
	}
	return out
}

// Fold upper-cases text, strips diacritics and collapses all whitespace
// (including line breaks) to single spaces, so anchors match regardless of
// accents or where the PDF broke a line.
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.Join(strings.Fields(strings.ToUpper(folded)), " ")
}
