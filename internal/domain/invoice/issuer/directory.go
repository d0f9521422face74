// Package issuer recognizes known invoice sellers in free text.
//
// Invoices that no template recognizes still usually print the seller's
// legal name near the top, often with store numbers, branch names or OCR-ish
// spacing around it. The directory scores each candidate line against the
// known names and aliases with a containment check, Levenshtein distance and
// fuzzysearch ranking, and keeps the best hit above a threshold.
package issuer

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	// DefaultThreshold is the minimum score (0-100) for a line to identify an issuer.
	DefaultThreshold = 80
	// HeadLines is how many leading lines Identify inspects; sellers print
	// their name in the letterhead.
	HeadLines = 15

	minCandidateLen = 4
)

// Issuer is a known seller. Aliases is a "|"-separated list of alternative
// spellings, as stored in the issuers CSV file.
type Issuer struct {
	Name    string `csv:"name"`
	TaxID   string `csv:"tax_id"`
	Country string `csv:"country"`
	Aliases string `csv:"aliases"`
}

// Names returns the legal name followed by every alias.
func (i Issuer) Names() []string {
	names := []string{i.Name}
	for _, a := range strings.Split(i.Aliases, "|") {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}
	return names
}

// Match is a scored directory hit.
type Match struct {
	Issuer   Issuer
	Alias    string // the name or alias that matched
	Score    int    // 0-100, higher is closer
	Distance int    // Levenshtein distance to the alias
}

// Directory holds known issuers for fuzzy lookup.
type Directory struct {
	entries []entry
	issuers []Issuer
	mu      sync.RWMutex
}

type entry struct {
	normalized string
	issuerIdx  int
}

// NewDirectory creates a directory over issuers.
func NewDirectory(issuers []Issuer) *Directory {
	d := &Directory{}
	d.Build(issuers)
	return d
}

// DefaultIssuers lists the sellers recognized without an issuers file.
func DefaultIssuers() []Issuer {
	return []Issuer{
		{
			Name:    "NAVATEC INGENIERIA S.A.",
			Country: "CR",
			Aliases: "NAVATEC INGENIERÍA S.A.|NAVATECO",
		},
	}
}

// LoadCSV reads issuers from CSV with the header name,tax_id,country,aliases.
func LoadCSV(r io.Reader) ([]Issuer, error) {
	var issuers []Issuer
	if err := gocsv.Unmarshal(r, &issuers); err != nil {
		return nil, fmt.Errorf("failed to parse issuers csv: %w", err)
	}
	out := issuers[:0]
	for _, is := range issuers {
		if strings.TrimSpace(is.Name) == "" {
			continue
		}
		out = append(out, is)
	}
	return out, nil
}

// Build replaces the directory contents.
func (d *Directory) Build(issuers []Issuer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.issuers = append([]Issuer(nil), issuers...)
	d.entries = make([]entry, 0, len(issuers)*2)
	for idx, is := range d.issuers {
		for _, name := range is.Names() {
			n := normalize(name)
			if n == "" {
				continue
			}
			d.entries = append(d.entries, entry{normalized: n, issuerIdx: idx})
		}
	}
}

// Len returns the number of issuers.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.issuers)
}

// Match finds the best issuer for a single candidate string, or nil when no
// alias scores at least threshold.
func (d *Directory) Match(candidate string, threshold int) *Match {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.match(normalize(candidate), threshold)
}

// MatchAll returns every alias scoring at least threshold, best first.
func (d *Directory) MatchAll(candidate string, threshold int) []Match {
	d.mu.RLock()
	defer d.mu.RUnlock()

	normalized := normalize(candidate)
	if len(normalized) < minCandidateLen {
		return nil
	}

	var results []Match
	for _, e := range d.entries {
		score := similarity(normalized, e.normalized)
		if score < threshold {
			continue
		}
		results = append(results, Match{
			Issuer:   d.issuers[e.issuerIdx],
			Alias:    e.normalized,
			Score:    score,
			Distance: fuzzy.LevenshteinDistance(normalized, e.normalized),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Identify looks for a known issuer in the letterhead of an invoice text.
// A printed tax id of a known issuer wins over name similarity.
func (d *Directory) Identify(text string) (Issuer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if text == "" || len(d.entries) == 0 {
		return Issuer{}, false
	}

	printed := make(map[string]bool)
	for _, tok := range strings.Fields(text) {
		if id := digitsOnly(tok); len(id) >= 6 {
			printed[id] = true
		}
	}
	for _, is := range d.issuers {
		if id := digitsOnly(is.TaxID); id != "" && printed[id] {
			return is, true
		}
	}

	var best *Match
	for i, line := range strings.Split(text, "\n") {
		if i >= HeadLines {
			break
		}
		m := d.match(normalize(line), DefaultThreshold)
		if m != nil && (best == nil || m.Score > best.Score) {
			best = m
		}
	}
	if best == nil {
		return Issuer{}, false
	}
	return best.Issuer, true
}

// match expects normalized input. Callers hold mu.
func (d *Directory) match(normalized string, threshold int) *Match {
	if len(normalized) < minCandidateLen {
		return nil
	}

	var best *Match
	bestScore := threshold - 1
	for _, e := range d.entries {
		score := similarity(normalized, e.normalized)
		if score > bestScore {
			bestScore = score
			best = &Match{
				Issuer:   d.issuers[e.issuerIdx],
				Alias:    e.normalized,
				Score:    score,
				Distance: fuzzy.LevenshteinDistance(normalized, e.normalized),
			}
		}
	}
	return best
}

// similarity scores two normalized strings from 0 to 100.
func similarity(candidate, alias string) int {
	if candidate == alias {
		return 100
	}
	if strings.Contains(candidate, alias) {
		return 75 + 25*len(alias)/len(candidate)
	}
	if strings.Contains(alias, candidate) {
		return 75 + 25*len(candidate)/len(alias)
	}

	maxLen := max(len(candidate), len(alias))
	if maxLen == 0 {
		return 0
	}
	distance := fuzzy.LevenshteinDistance(candidate, alias)
	levenshteinScore := 100 * (maxLen - distance) / maxLen

	rankScore := 0
	if rank := fuzzy.RankMatchNormalizedFold(alias, candidate); rank >= 0 && rank < len(candidate) {
		rankScore = 60 - rank*40/len(candidate)
	}
	return max(levenshteinScore, rankScore)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
