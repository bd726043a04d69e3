// Package graph holds the in-memory lexical knowledge graph built by one
// import run: entity identity maps, the normalized-headword and gloss token
// indexes, and the read-only query facade consumed by the front-end.
package graph

import (
	"github.com/lisanlab/lisan-backend/internal/domain"
)

// Graph is the single-writer in-memory graph for one pipeline run.
// Entity creation goes through the registry for idempotence; secondary
// indexes are maintained on insert so linking passes avoid full scans.
type Graph struct {
	reg   *Registry
	forms []*domain.Form

	lemmasByNorm  map[string][]*domain.Lemma
	conceptLemmas map[string][]*domain.Lemma
	lemmaForms    map[string][]*domain.Form
	gloss         *glossIndex
}

// New creates an empty graph over the given registry.
func New(reg *Registry) *Graph {
	return &Graph{
		reg:           reg,
		lemmasByNorm:  make(map[string][]*domain.Lemma),
		conceptLemmas: make(map[string][]*domain.Lemma),
		lemmaForms:    make(map[string][]*domain.Form),
		gloss:         newGlossIndex(),
	}
}

// Registry exposes the identity layer backing this graph.
func (g *Graph) Registry() *Registry { return g.reg }

// AddDialect registers a dialect catalog entry. No-op on re-import.
func (g *Graph) AddDialect(d *domain.Dialect) (*domain.Dialect, bool) {
	return g.reg.AddDialect(d)
}

// AddConcept registers a concept. No-op on re-import.
func (g *Graph) AddConcept(c *domain.Concept) (*domain.Concept, bool) {
	return g.reg.AddConcept(c)
}

// EnsureRoot resolves raw root text to the one Root whose identity is the
// normalized text, creating it on first sight. Returns nil for text that
// normalizes to empty.
func (g *Graph) EnsureRoot(raw string) *domain.Root {
	text := domain.NormalizeArabic(raw)
	if text == "" {
		return nil
	}
	root, _ := g.reg.AddRoot(&domain.Root{Text: text})
	return root
}

// AddLemma registers a lemma, indexes it by normalized headword, and wires
// the root backlink. A second lemma with the same identity is ignored: no
// update-in-place of scalar attributes.
func (g *Graph) AddLemma(l *domain.Lemma) (*domain.Lemma, bool) {
	existing, created := g.reg.AddLemma(l)
	if !created {
		return existing, false
	}
	g.lemmasByNorm[l.HeadwordNorm] = append(g.lemmasByNorm[l.HeadwordNorm], l)
	if l.Root != nil {
		l.Root.Lemmas = append(l.Root.Lemmas, l)
	}
	return l, true
}

// AddSentence registers a sentence by its composite key. No-op on re-import.
func (g *Graph) AddSentence(s *domain.Sentence) (*domain.Sentence, bool) {
	return g.reg.AddSentence(s)
}

// AddForm appends a form unless its composite key is already registered,
// attaching it to its sentence and indexing it under both its realized and
// equivalent lemmas.
func (g *Graph) AddForm(f *domain.Form) bool {
	if !g.reg.AddFormKey(f.Key) {
		return false
	}
	g.forms = append(g.forms, f)
	if f.Sentence != nil {
		f.Sentence.Forms = append(f.Sentence.Forms, f)
	}
	if f.Lemma != nil {
		g.lemmaForms[f.Lemma.ID] = append(g.lemmaForms[f.Lemma.ID], f)
	}
	if f.Equivalent != nil && (f.Lemma == nil || f.Equivalent.ID != f.Lemma.ID) {
		g.lemmaForms[f.Equivalent.ID] = append(g.lemmaForms[f.Equivalent.ID], f)
	}
	return true
}

// Forms returns every form in insertion order.
func (g *Graph) Forms() []*domain.Form { return g.forms }

// LemmasByNormalizedHeadword returns all lemmas whose normalized headword
// equals the given normalized term.
func (g *Graph) LemmasByNormalizedHeadword(norm string) []*domain.Lemma {
	return g.lemmasByNorm[norm]
}

// LinkLemmaConcept links a lemma to a concept, maintaining the reverse
// index. Idempotent by concept identity.
func (g *Graph) LinkLemmaConcept(l *domain.Lemma, c *domain.Concept) bool {
	if !l.AddConcept(c) {
		return false
	}
	g.conceptLemmas[c.ID] = append(g.conceptLemmas[c.ID], l)
	return true
}

// SetConceptParent wires a parent pointer between two already-registered
// concepts. Dangling references are dropped, not fatal: both endpoints must
// exist before the pointer is set.
func (g *Graph) SetConceptParent(childID, parentID string) bool {
	child := g.reg.Concept(childID)
	parent := g.reg.Concept(parentID)
	if child == nil || parent == nil || child.ID == parent.ID {
		return false
	}
	if child.Parent != nil {
		return false
	}
	child.Parent = parent
	parent.Children = append(parent.Children, child)
	return true
}

// Stats returns per-kind entity counts.
func (g *Graph) Stats() Counts { return g.reg.Counts() }
