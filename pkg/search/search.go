// Package search filters the roster by free text and links characters whose
// names appear in each other's narrative fields. Both use Aho-Corasick so a
// haystack is scanned once for every pattern.
package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"

	"github.com/kittclouds/roster/internal/store"
)

// Index is built from one roster snapshot. Rebuild it after mutations.
type Index struct {
	roster []*store.Character

	// Name automaton for mention linking.
	names      *ahocorasick.Automaton
	patternIDs [][]string

	stop *stopwords.Stopwords
}

// New indexes roster. The slice is kept by reference and must not change.
func New(roster []*store.Character) (*Index, error) {
	x := &Index{roster: roster, stop: stopwords.MustGet("en")}

	var patterns []string
	index := make(map[string]int)
	for _, c := range roster {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			x.patternIDs[i] = append(x.patternIDs[i], c.ID)
			continue
		}
		index[key] = len(patterns)
		patterns = append(patterns, key)
		x.patternIDs = append(x.patternIDs, []string{c.ID})
	}
	if len(patterns) == 0 {
		return x, nil
	}

	ac, err := build(patterns)
	if err != nil {
		return nil, err
	}
	x.names = ac
	return x, nil
}

// Terms splits a query into lowercase terms and drops English stopwords.
// A query made only of stopwords keeps them, so "the" still searches.
func (x *Index) Terms(query string) []string {
	raw := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		if !x.stop.Contains(t) {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return raw
	}
	return terms
}

// Filter returns the ids, in roster order, of characters whose name, class or
// short description contain every query term. An empty query matches all.
func (x *Index) Filter(query string) ([]string, error) {
	terms := dedupe(x.Terms(query))
	if len(terms) == 0 {
		return ids(x.roster), nil
	}

	ac, err := build(terms)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, c := range x.roster {
		hay := []byte(strings.ToLower(c.Name + "\n" + c.Class + "\n" + c.ShortDescription))
		seen := make(map[int]bool, len(terms))
		for _, m := range ac.FindAllOverlapping(hay) {
			seen[m.PatternID] = true
		}
		if len(seen) == len(terms) {
			out = append(out, c.ID)
		}
	}
	return out, nil
}

// Mentions returns the ids, in roster order, of other characters whose full
// name appears as whole words in c's story, background or short description.
func (x *Index) Mentions(c *store.Character) []string {
	if x.names == nil || c == nil {
		return nil
	}
	text := strings.ToLower(strings.Join([]string{c.ShortDescription, c.Story, c.Background}, "\n"))
	hay := []byte(text)

	found := make(map[string]bool)
	for _, m := range x.names.FindAllOverlapping(hay) {
		if !wordBoundary(text, m.Start, m.End) {
			continue
		}
		for _, id := range x.patternIDs[m.PatternID] {
			if id != c.ID {
				found[id] = true
			}
		}
	}

	var out []string
	for _, other := range x.roster {
		if found[other.ID] {
			out = append(out, other.ID)
		}
	}
	return out
}

// build uses the default (standard) match kind: callers need every
// overlapping hit, e.g. both "kael" and "kael vorn".
func build(patterns []string) (*ahocorasick.Automaton, error) {
	return ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetPrefilter(true).
		Build()
}

// wordBoundary reports whether text[start:end] is not glued to a letter or
// digit on either side.
func wordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func ids(roster []*store.Character) []string {
	out := make([]string, len(roster))
	for i, c := range roster {
		out[i] = c.ID
	}
	return out
}
