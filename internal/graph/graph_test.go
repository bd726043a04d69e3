package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisanlab/lisan-backend/internal/domain"
)

func newTestGraph() *Graph {
	return New(NewRegistry())
}

func msa() *domain.Dialect {
	return &domain.Dialect{Code: domain.StandardDialectCode, Name: "Modern Standard Arabic"}
}

func TestAddLemma_IdempotentByIdentity(t *testing.T) {
	t.Parallel()
	g := newTestGraph()

	first := &domain.Lemma{ID: "L1", Headword: "كَتَبَ", HeadwordNorm: "كتب"}
	_, created := g.AddLemma(first)
	require.True(t, created)

	// Second row with the same identity is ignored, even with different
	// scalar attributes: no update-in-place.
	second := &domain.Lemma{ID: "L1", Headword: "other", HeadwordNorm: "other"}
	got, created := g.AddLemma(second)
	assert.False(t, created)
	assert.Same(t, first, got)
	assert.Len(t, g.LemmasByNormalizedHeadword("كتب"), 1)
	assert.Empty(t, g.LemmasByNormalizedHeadword("other"))
}

func TestEnsureRoot_IdentityFolding(t *testing.T) {
	t.Parallel()
	g := newTestGraph()

	r1 := g.EnsureRoot("كتب")
	r2 := g.EnsureRoot(" كتب ")
	r3 := g.EnsureRoot("كَتَبَ")

	require.NotNil(t, r1)
	assert.Same(t, r1, r2, "whitespace variant must fold to the same root")
	assert.Same(t, r1, r3, "diacritic variant must fold to the same root")
	assert.Equal(t, 1, g.Stats().Roots)

	assert.Nil(t, g.EnsureRoot("  "), "blank root text yields no root")
}

func TestAddForm_CompositeKeyDedup(t *testing.T) {
	t.Parallel()
	g := newTestGraph()

	d := msa()
	g.AddDialect(d)
	s := &domain.Sentence{Key: domain.SentenceKey("egy", "s1"), SourceID: "s1", Dialect: d}
	g.AddSentence(s)

	l, _ := g.AddLemma(&domain.Lemma{ID: "L1", HeadwordNorm: "كتب"})

	f := &domain.Form{Key: domain.FormKey("egy", "s1", 1), Position: 1, Token: "كتب", Lemma: l, Sentence: s}
	require.True(t, g.AddForm(f))
	assert.False(t, g.AddForm(&domain.Form{Key: domain.FormKey("egy", "s1", 1)}), "re-import of same key is a no-op")

	assert.Len(t, g.Forms(), 1)
	assert.Len(t, s.Forms, 1)
	assert.Len(t, g.FormsForLemma("L1"), 1)
}

func TestAddForm_IndexesBothLemmaSides(t *testing.T) {
	t.Parallel()
	g := newTestGraph()

	dial, _ := g.AddLemma(&domain.Lemma{ID: "D1", HeadwordNorm: "عايز"})
	std, _ := g.AddLemma(&domain.Lemma{ID: "M1", HeadwordNorm: "اراد"})

	f := &domain.Form{Key: domain.FormKey("egy", "s1", 2), Lemma: dial, Equivalent: std}
	require.True(t, g.AddForm(f))

	assert.Len(t, g.FormsForLemma("D1"), 1)
	assert.Len(t, g.FormsForLemma("M1"), 1)
}

func TestSetConceptParent(t *testing.T) {
	t.Parallel()
	g := newTestGraph()

	g.AddConcept(&domain.Concept{ID: "C1"})
	g.AddConcept(&domain.Concept{ID: "C2"})

	assert.True(t, g.SetConceptParent("C2", "C1"))
	assert.Equal(t, "C1", g.ConceptByID("C2").Parent.ID)
	assert.Len(t, g.ConceptByID("C1").Children, 1)

	// Dangling parent reference is silently dropped.
	assert.False(t, g.SetConceptParent("C2", "missing"))
	assert.False(t, g.SetConceptParent("missing", "C1"))
	// Self-parenting is dropped too.
	assert.False(t, g.SetConceptParent("C1", "C1"))
}

func TestBuildGlossIndexAndSearchByGloss(t *testing.T) {
	t.Parallel()
	g := newTestGraph()

	l1, _ := g.AddLemma(&domain.Lemma{ID: "L1", HeadwordNorm: "كتب"})
	l2, _ := g.AddLemma(&domain.Lemma{ID: "L2", HeadwordNorm: "دون"})

	g.AddForm(&domain.Form{Key: "egy|s1|1", Gloss: "to write quickly", Lemma: l1})
	g.AddForm(&domain.Form{Key: "lev|s2|1", Gloss: "write; note down", Lemma: l2, Equivalent: l1})

	// Form 1 contributes (to,write,quickly)×L1 = 3 entries; form 2
	// contributes (write,note,down)×{L2,L1} minus the duplicate
	// (write,L1) = 5 entries.
	added := g.BuildGlossIndex()
	assert.Equal(t, 8, added)

	hits := g.SearchByGloss("write")
	require.Len(t, hits, 2)
	assert.Equal(t, "L1", hits[0].ID, "first-seen order preserved")
	assert.Equal(t, "L2", hits[1].ID)

	// Rebuild is idempotent: every (token, lemma) key already exists.
	assert.Equal(t, 0, g.BuildGlossIndex())
}

func TestSearchByGloss_FallbackSubstring(t *testing.T) {
	t.Parallel()
	g := newTestGraph()

	l1, _ := g.AddLemma(&domain.Lemma{ID: "L1", HeadwordNorm: "كتب"})
	g.AddForm(&domain.Form{Key: "egy|s1|1", Gloss: "to write-up", Lemma: l1})
	g.BuildGlossIndex()

	// "write-up" tokenizes to [write, up], both indexed, so this hits the index.
	require.NotEmpty(t, g.SearchByGloss("write-up"))

	// A phrase with no token hits falls back to substring scan.
	hits := g.SearchByGloss("rite-u")
	require.Len(t, hits, 1)
	assert.Equal(t, "L1", hits[0].ID)

	assert.Empty(t, g.SearchByGloss("zzz"))
}

func TestQueryTraversals(t *testing.T) {
	t.Parallel()
	g := newTestGraph()

	d := msa()
	g.AddDialect(d)

	root := g.EnsureRoot("كتب")
	l1, _ := g.AddLemma(&domain.Lemma{ID: "L1", Headword: "كتب", HeadwordNorm: "كتب", Root: root, Dialect: d})
	l2, _ := g.AddLemma(&domain.Lemma{ID: "L2", Headword: "كاتب", HeadwordNorm: "كاتب", Root: root, Dialect: d})

	c1, _ := g.AddConcept(&domain.Concept{ID: "C1", Synset: "كتب"})
	c2, _ := g.AddConcept(&domain.Concept{ID: "C2", Synset: "كاتب"})
	g.LinkLemmaConcept(l1, c1)
	g.LinkLemmaConcept(l2, c2)

	s := &domain.Sentence{Key: "egy|s1", SourceID: "s1", Text: "…"}
	g.AddSentence(s)
	g.AddForm(&domain.Form{Key: "egy|s1|1", Lemma: l1, Sentence: s})
	g.AddForm(&domain.Form{Key: "egy|s1|2", Lemma: l1, Sentence: s})

	assert.Len(t, g.SearchByRoot("كَتَبَ"), 2, "normalized root search finds both lemmas")

	concepts := g.ConceptsForRoot("كتب")
	require.Len(t, concepts, 2)

	lemmas := g.LemmasForConcept("C1", "")
	require.Len(t, lemmas, 1)
	assert.Equal(t, "L1", lemmas[0].ID)
	assert.Empty(t, g.LemmasForConcept("C1", "egy"), "dialect filter excludes standard lemmas")

	sentences := g.SentencesForLemma("L1")
	require.Len(t, sentences, 1, "two forms in one sentence dedup to one sentence")

	// Substring search: "كتب" is contained in "كاتب"? It is not ("كاتب" has
	// an alef between kaf and ta), so exact match only.
	hits := g.SearchLemmas("كتب")
	require.Len(t, hits, 1)
	assert.Equal(t, "L1", hits[0].ID)

	// Substring: searching "كاتب" by its prefix "كات".
	hits = g.SearchLemmas("كات")
	require.Len(t, hits, 1)
	assert.Equal(t, "L2", hits[0].ID)
}

func TestSearchLemmas_SubstringOrderIsStable(t *testing.T) {
	t.Parallel()
	g := newTestGraph()

	// One exact match and three substring matches across distinct headwords.
	for _, l := range []*domain.Lemma{
		{ID: "L1", Headword: "كتب", HeadwordNorm: "كتب"},
		{ID: "L2", Headword: "مكتب", HeadwordNorm: "مكتب"},
		{ID: "L3", Headword: "يكتبون", HeadwordNorm: "يكتبون"},
		{ID: "L4", Headword: "كتبي", HeadwordNorm: "كتبي"},
	} {
		_, created := g.AddLemma(l)
		require.True(t, created)
	}

	// Exact match first, then substring hits in sorted headword order,
	// identically on every call.
	want := []string{"L1", "L4", "L2", "L3"}
	for range 5 {
		got := g.SearchLemmas("كتب")
		require.Len(t, got, 4)
		for i, l := range got {
			assert.Equal(t, want[i], l.ID)
		}
	}
}

func TestSearchByFormToken(t *testing.T) {
	t.Parallel()
	g := newTestGraph()

	l1, _ := g.AddLemma(&domain.Lemma{ID: "L1", HeadwordNorm: "كتب"})
	g.AddForm(&domain.Form{Key: "egy|s1|1", Token: "كَتَبُوا", RawToken: "كتبوا", Lemma: l1})

	hits := g.SearchByFormToken("كتبوا")
	require.Len(t, hits, 1)
	assert.Equal(t, "L1", hits[0].ID)

	assert.Empty(t, g.SearchByFormToken("غيره"))
}

func TestCorrespondencesForLemma_DialectFilter(t *testing.T) {
	t.Parallel()
	g := newTestGraph()

	d := msa()
	a, _ := g.AddLemma(&domain.Lemma{ID: "A", HeadwordNorm: "ا", Dialect: d})
	b, _ := g.AddLemma(&domain.Lemma{ID: "B", HeadwordNorm: "ب", Dialect: d})
	domain.LinkCorrespondence(a, b)

	assert.Len(t, g.CorrespondencesForLemma("A", ""), 1)
	assert.Len(t, g.CorrespondencesForLemma("A", domain.StandardDialectCode), 1)
	assert.Empty(t, g.CorrespondencesForLemma("A", "egy"))
	assert.Nil(t, g.CorrespondencesForLemma("missing", ""))
}
