package graph

import (
	"sort"
	"sync"

	"github.com/lisanlab/lisan-backend/internal/domain"
)

// Registry is the per-run identity layer that gives the import pipeline its
// idempotence: one identity-keyed map per entity kind, preloaded from any
// existing graph state before import starts. Every creation path consults it
// first and becomes a no-op when the identity is already present.
//
// Forms and gloss index entries are tracked as key-only sets: they are never
// looked up by identity after creation, only appended to, and the full
// objects would dominate memory on 10M+ row corpora.
//
// All methods are safe for concurrent use; corpus sources are parsed in
// parallel and merged through a single mutation section.
type Registry struct {
	mu        sync.Mutex
	concepts  map[string]*domain.Concept
	roots     map[string]*domain.Root
	dialects  map[string]*domain.Dialect
	lemmas    map[string]*domain.Lemma
	sentences map[string]*domain.Sentence
	formKeys  map[string]struct{}
	glossKeys map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		concepts:  make(map[string]*domain.Concept),
		roots:     make(map[string]*domain.Root),
		dialects:  make(map[string]*domain.Dialect),
		lemmas:    make(map[string]*domain.Lemma),
		sentences: make(map[string]*domain.Sentence),
		formKeys:  make(map[string]struct{}),
		glossKeys: make(map[string]struct{}),
	}
}

// Concept returns the concept with the given identity, or nil.
func (r *Registry) Concept(id string) *domain.Concept {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.concepts[id]
}

// AddConcept registers c unless its identity already exists.
// Returns the registered concept and whether this call created it.
func (r *Registry) AddConcept(c *domain.Concept) (*domain.Concept, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.concepts[c.ID]; ok {
		return existing, false
	}
	r.concepts[c.ID] = c
	return c, true
}

// Root returns the root with the given normalized text, or nil.
func (r *Registry) Root(text string) *domain.Root {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roots[text]
}

// AddRoot registers a root by its normalized text identity.
func (r *Registry) AddRoot(root *domain.Root) (*domain.Root, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.roots[root.Text]; ok {
		return existing, false
	}
	r.roots[root.Text] = root
	return root, true
}

// Dialect returns the dialect with the given code, or nil.
func (r *Registry) Dialect(code string) *domain.Dialect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dialects[code]
}

// AddDialect registers d unless its code already exists.
func (r *Registry) AddDialect(d *domain.Dialect) (*domain.Dialect, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.dialects[d.Code]; ok {
		return existing, false
	}
	r.dialects[d.Code] = d
	return d, true
}

// Lemma returns the lemma with the given identity, or nil.
func (r *Registry) Lemma(id string) *domain.Lemma {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lemmas[id]
}

// AddLemma registers l unless its identity already exists.
func (r *Registry) AddLemma(l *domain.Lemma) (*domain.Lemma, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.lemmas[l.ID]; ok {
		return existing, false
	}
	r.lemmas[l.ID] = l
	return l, true
}

// Sentence returns the sentence with the given composite key, or nil.
func (r *Registry) Sentence(key string) *domain.Sentence {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sentences[key]
}

// AddSentence registers s unless its composite key already exists.
func (r *Registry) AddSentence(s *domain.Sentence) (*domain.Sentence, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sentences[s.Key]; ok {
		return existing, false
	}
	r.sentences[s.Key] = s
	return s, true
}

// AddFormKey records a form identity key. Returns false when already present.
func (r *Registry) AddFormKey(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.formKeys[key]; ok {
		return false
	}
	r.formKeys[key] = struct{}{}
	return true
}

// AddGlossKey records a (token, lemma-id) gloss index key.
// Returns false when already present.
func (r *Registry) AddGlossKey(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.glossKeys[key]; ok {
		return false
	}
	r.glossKeys[key] = struct{}{}
	return true
}

// AllConcepts returns every registered concept, sorted by identity for
// deterministic iteration.
func (r *Registry) AllConcepts() []*domain.Concept {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Concept, 0, len(r.concepts))
	for _, c := range r.concepts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllRoots returns every registered root, sorted by text.
func (r *Registry) AllRoots() []*domain.Root {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Root, 0, len(r.roots))
	for _, root := range r.roots {
		out = append(out, root)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}

// AllDialects returns every registered dialect, sorted by code.
func (r *Registry) AllDialects() []*domain.Dialect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Dialect, 0, len(r.dialects))
	for _, d := range r.dialects {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// AllLemmas returns every registered lemma, sorted by identity.
func (r *Registry) AllLemmas() []*domain.Lemma {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Lemma, 0, len(r.lemmas))
	for _, l := range r.lemmas {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllSentences returns every registered sentence, sorted by composite key.
func (r *Registry) AllSentences() []*domain.Sentence {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Sentence, 0, len(r.sentences))
	for _, s := range r.sentences {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Counts reports the number of registered identities per kind.
func (r *Registry) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Counts{
		Concepts:     len(r.concepts),
		Roots:        len(r.roots),
		Dialects:     len(r.dialects),
		Lemmas:       len(r.lemmas),
		Sentences:    len(r.sentences),
		Forms:        len(r.formKeys),
		GlossEntries: len(r.glossKeys),
	}
}

// Counts holds per-kind entity totals.
type Counts struct {
	Concepts     int
	Roots        int
	Dialects     int
	Lemmas       int
	Sentences    int
	Forms        int
	GlossEntries int
}
