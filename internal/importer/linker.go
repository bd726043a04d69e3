package importer

import (
	"github.com/lisanlab/lisan-backend/internal/domain"
	"github.com/lisanlab/lisan-backend/internal/graph"
)

// linkLemmaConcepts derives lemma↔concept links by text matching: each
// concept's synset is split into terms, each term normalized, and every
// lemma whose normalized headword equals the normalized term gets the
// concept appended to its concept set. Exact normalized equality only — no
// semantic similarity — and a lemma with zero matches is valid (open-world).
// Idempotent across reruns: links are checked by concept identity.
func linkLemmaConcepts(g *graph.Graph) (linked int) {
	for _, c := range g.Registry().AllConcepts() {
		for _, term := range c.Terms() {
			norm := domain.NormalizeArabic(term)
			if norm == "" {
				continue
			}
			for _, l := range g.LemmasByNormalizedHeadword(norm) {
				if g.LinkLemmaConcept(l, c) {
					linked++
				}
			}
		}
	}
	return linked
}

// buildCorrespondences extracts the symmetric cross-dialect equivalence
// relation from the forms: every form carrying both a dialect-side and a
// standard-side lemma with differing identities yields one unordered pair,
// deduplicated by canonicalized pair key, and each distinct pair is linked
// symmetrically.
//
// No transitive closure is computed: if D1→M and D2→M are attested, (D1,M)
// and (D2,M) are linked but (D1,D2) is not unless some form pairs them
// directly. Closure over shared equivalents would conflate senses of a
// polysemous standard lemma.
func buildCorrespondences(g *graph.Graph) (linked int) {
	seen := make(map[string]struct{})
	for _, f := range g.Forms() {
		if f.Lemma == nil || f.Equivalent == nil || f.Lemma.ID == f.Equivalent.ID {
			continue
		}
		key := domain.PairKey(f.Lemma.ID, f.Equivalent.ID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if domain.LinkCorrespondence(f.Lemma, f.Equivalent) {
			linked++
		}
	}
	return linked
}
