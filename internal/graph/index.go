package graph

import (
	"strings"

	"github.com/lisanlab/lisan-backend/internal/domain"
)

// glossIndex maps a normalized English gloss token to the lemmas attested
// with that token, in first-seen order. Entries are deduplicated by
// (token, lemma-id) through the registry's gloss key set.
type glossIndex struct {
	byToken map[string][]*domain.Lemma
}

func newGlossIndex() *glossIndex {
	return &glossIndex{byToken: make(map[string][]*domain.Lemma)}
}

// BuildGlossIndex indexes every form with a non-empty gloss under each of its
// tokens, for each of the form's (up to two) lemmas. Must run strictly after
// all corpus forms are present, so cross-source gloss hits are not missed.
func (g *Graph) BuildGlossIndex() int {
	added := 0
	for _, f := range g.forms {
		if f.Gloss == "" {
			continue
		}
		tokens := domain.TokenizeGloss(f.Gloss)
		for _, tok := range tokens {
			for _, l := range []*domain.Lemma{f.Lemma, f.Equivalent} {
				if l == nil {
					continue
				}
				if !g.reg.AddGlossKey(domain.GlossEntryKey(tok, l.ID)) {
					continue
				}
				g.gloss.byToken[tok] = append(g.gloss.byToken[tok], l)
				added++
			}
		}
	}
	return added
}

// SearchByGloss tokenizes the phrase and unions the lemma lists of each token
// found in the index, preserving first-seen order and deduplicating by lemma
// identity. When no token hits at all, it degrades to a substring scan over
// raw form glosses rather than returning empty on tokenization mismatches.
func (g *Graph) SearchByGloss(phrase string) []*domain.Lemma {
	tokens := domain.TokenizeGloss(phrase)
	if len(tokens) == 0 {
		return nil
	}

	var out []*domain.Lemma
	seen := make(map[string]bool)
	for _, tok := range tokens {
		for _, l := range g.gloss.byToken[tok] {
			if !seen[l.ID] {
				seen[l.ID] = true
				out = append(out, l)
			}
		}
	}
	if out != nil {
		return out
	}

	// Fallback: raw substring scan.
	needle := strings.ToLower(strings.TrimSpace(phrase))
	if needle == "" {
		return nil
	}
	for _, f := range g.forms {
		if f.Gloss == "" || !strings.Contains(strings.ToLower(f.Gloss), needle) {
			continue
		}
		for _, l := range []*domain.Lemma{f.Lemma, f.Equivalent} {
			if l != nil && !seen[l.ID] {
				seen[l.ID] = true
				out = append(out, l)
			}
		}
	}
	return out
}
