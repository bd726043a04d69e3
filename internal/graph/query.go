package graph

import (
	"sort"
	"strings"

	"github.com/lisanlab/lisan-backend/internal/domain"
)

// Read-only traversal and search facade over the completed graph.
// Consumed by the search front-end; nothing here mutates graph state.

// ConceptByID returns the concept with the given identity, or nil.
func (g *Graph) ConceptByID(id string) *domain.Concept { return g.reg.Concept(id) }

// LemmaByID returns the lemma with the given identity, or nil.
func (g *Graph) LemmaByID(id string) *domain.Lemma { return g.reg.Lemma(id) }

// DialectByCode returns the dialect with the given code, or nil.
func (g *Graph) DialectByCode(code string) *domain.Dialect { return g.reg.Dialect(code) }

// SentenceByKey returns the sentence with the given composite key, or nil.
func (g *Graph) SentenceByKey(key string) *domain.Sentence { return g.reg.Sentence(key) }

// RootByText resolves raw root text through the Arabic normalizer and
// returns the matching Root, or nil.
func (g *Graph) RootByText(raw string) *domain.Root {
	return g.reg.Root(domain.NormalizeArabic(raw))
}

// SearchLemmas returns lemmas whose normalized headword equals or contains
// the normalized query, exact matches first.
func (g *Graph) SearchLemmas(query string) []*domain.Lemma {
	norm := domain.NormalizeArabic(query)
	if norm == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []*domain.Lemma
	for _, l := range g.lemmasByNorm[norm] {
		seen[l.ID] = true
		out = append(out, l)
	}
	// Substring matches in sorted headword order so results are stable
	// across runs.
	var partial []string
	for headword := range g.lemmasByNorm {
		if headword != norm && strings.Contains(headword, norm) {
			partial = append(partial, headword)
		}
	}
	sort.Strings(partial)
	for _, headword := range partial {
		for _, l := range g.lemmasByNorm[headword] {
			if !seen[l.ID] {
				seen[l.ID] = true
				out = append(out, l)
			}
		}
	}
	return out
}

// SearchByFormToken returns the lemmas realized by forms whose normalized
// token matches the normalized query.
func (g *Graph) SearchByFormToken(token string) []*domain.Lemma {
	norm := domain.NormalizeArabic(token)
	if norm == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []*domain.Lemma
	for _, f := range g.forms {
		if domain.NormalizeArabic(f.Token) != norm && domain.NormalizeArabic(f.RawToken) != norm {
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

// SearchByRoot returns the lemmas derived from the root matching the raw
// root text, or nil when the root is unknown.
func (g *Graph) SearchByRoot(raw string) []*domain.Lemma {
	root := g.RootByText(raw)
	if root == nil {
		return nil
	}
	return root.Lemmas
}

// LemmasForConcept returns all lemmas linked to the concept, optionally
// filtered by dialect code ("" = all).
func (g *Graph) LemmasForConcept(conceptID, dialectCode string) []*domain.Lemma {
	lemmas := g.conceptLemmas[conceptID]
	if dialectCode == "" {
		return lemmas
	}
	var out []*domain.Lemma
	for _, l := range lemmas {
		if l.Dialect != nil && l.Dialect.Code == dialectCode {
			out = append(out, l)
		}
	}
	return out
}

// ConceptsForRoot returns the union of concepts linked to any lemma of the
// root, deduplicated by concept identity in first-seen order.
func (g *Graph) ConceptsForRoot(raw string) []*domain.Concept {
	root := g.RootByText(raw)
	if root == nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []*domain.Concept
	for _, l := range root.Lemmas {
		for _, c := range l.Concepts {
			if !seen[c.ID] {
				seen[c.ID] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// FormsForLemma returns every form attesting the lemma, on either the
// realized or the equivalent side.
func (g *Graph) FormsForLemma(lemmaID string) []*domain.Form {
	return g.lemmaForms[lemmaID]
}

// SentencesForLemma returns the sentences containing any form of the lemma,
// deduplicated by sentence key in first-seen order.
func (g *Graph) SentencesForLemma(lemmaID string) []*domain.Sentence {
	seen := make(map[string]bool)
	var out []*domain.Sentence
	for _, f := range g.lemmaForms[lemmaID] {
		if f.Sentence == nil || seen[f.Sentence.Key] {
			continue
		}
		seen[f.Sentence.Key] = true
		out = append(out, f.Sentence)
	}
	return out
}

// CorrespondencesForLemma returns the lemmas corresponding to the given
// lemma across varieties, optionally filtered by dialect code.
func (g *Graph) CorrespondencesForLemma(lemmaID, dialectCode string) []*domain.Lemma {
	l := g.reg.Lemma(lemmaID)
	if l == nil {
		return nil
	}
	if dialectCode == "" {
		return l.Correspondences
	}
	var out []*domain.Lemma
	for _, o := range l.Correspondences {
		if o.Dialect != nil && o.Dialect.Code == dialectCode {
			out = append(out, o)
		}
	}
	return out
}
