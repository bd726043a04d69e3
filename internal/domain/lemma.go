package domain

// Root is a consonantal skeleton shared by a family of lemmas.
// Identity is the normalized text itself: two raw strings that normalize
// identically must resolve to one Root.
type Root struct {
	Text   string // normalized, identity
	Lemmas []*Lemma
}

// LemmaFeatures is an optional morphological feature set from the lexicon.
type LemmaFeatures struct {
	Augmentation string
	Number       string
	Person       string
	Gender       string
	Voice        string
	Transitivity string
	Uninflected  bool
}

// Lemma is a dictionary headword in a specific register.
// Scalar attributes are immutable after creation; only the relationship
// collections (Concepts, Correspondences, Root backlink) grow.
type Lemma struct {
	ID           string
	Headword     string
	HeadwordNorm string
	Register     Register
	POSCategory  string
	POS          string
	Features     *LemmaFeatures

	Root    *Root    // optional
	Dialect *Dialect // derived from register; always the standard variety

	Concepts        []*Concept
	Correspondences []*Lemma
}

// HasConcept reports whether the lemma is already linked to the concept,
// checked by concept identity rather than pointer equality.
func (l *Lemma) HasConcept(conceptID string) bool {
	for _, c := range l.Concepts {
		if c.ID == conceptID {
			return true
		}
	}
	return false
}

// AddConcept appends a concept link unless already present. Idempotent.
func (l *Lemma) AddConcept(c *Concept) bool {
	if l.HasConcept(c.ID) {
		return false
	}
	l.Concepts = append(l.Concepts, c)
	return true
}

// CorrespondsTo reports whether the lemma already has a correspondence
// link to the lemma with the given identity.
func (l *Lemma) CorrespondsTo(lemmaID string) bool {
	for _, o := range l.Correspondences {
		if o.ID == lemmaID {
			return true
		}
	}
	return false
}

// LinkCorrespondence establishes a symmetric correspondence between two
// lemmas. Symmetry is enforced at write time: both sides are appended in one
// call, never inferred later. Returns false when the link already exists or
// the pair is degenerate.
func LinkCorrespondence(a, b *Lemma) bool {
	if a == nil || b == nil || a.ID == b.ID {
		return false
	}
	if a.CorrespondsTo(b.ID) {
		return false
	}
	a.Correspondences = append(a.Correspondences, b)
	b.Correspondences = append(b.Correspondences, a)
	return true
}
