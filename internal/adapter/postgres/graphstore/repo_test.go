package graphstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	postgres "github.com/lisanlab/lisan-backend/internal/adapter/postgres"
	"github.com/lisanlab/lisan-backend/internal/adapter/postgres/graphstore"
	"github.com/lisanlab/lisan-backend/internal/adapter/postgres/testhelper"
	"github.com/lisanlab/lisan-backend/internal/domain"
	"github.com/lisanlab/lisan-backend/internal/graph"
)

// Tests share one container database; each test truncates before building
// its own state, so they must not run in parallel.

func newRepo(t *testing.T) (*graphstore.Repo, *graph.Graph) {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	testhelper.TruncateGraph(t, pool)

	repo := graphstore.New(pool, postgres.NewTxManager(pool), 2) // tiny batches exercise chunking
	return repo, sampleGraph(t)
}

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(graph.NewRegistry())

	for _, d := range domain.DialectCatalog() {
		dialect := d
		g.AddDialect(&dialect)
	}

	c1, _ := g.AddConcept(&domain.Concept{ID: "C1", Synset: "كتب", Gloss: "to write", Source: "manual"})
	g.AddConcept(&domain.Concept{ID: "C2", Synset: "أراد", EnglishSynset: "want", Source: "manual"})
	g.SetConceptParent("C2", "C1")

	msa := g.DialectByCode(domain.StandardDialectCode)
	l1, _ := g.AddLemma(&domain.Lemma{
		ID:           "L1",
		Headword:     "كتب",
		HeadwordNorm: domain.NormalizeArabic("كتب"),
		Register:     domain.RegisterMSA,
		POSCategory:  "verb",
		POS:          "PV",
		Root:         g.EnsureRoot("كتب"),
		Dialect:      msa,
	})
	d1, _ := g.AddLemma(&domain.Lemma{
		ID:           "D1",
		Headword:     "عايز",
		HeadwordNorm: domain.NormalizeArabic("عايز"),
		Register:     domain.RegisterColloquial,
		POSCategory:  "adj",
		Features:     &domain.LemmaFeatures{Number: "s", Gender: "m"},
		Dialect:      msa,
	})
	g.LinkLemmaConcept(l1, c1)
	domain.LinkCorrespondence(l1, d1)

	egy := g.DialectByCode("egy")
	sent, _ := g.AddSentence(&domain.Sentence{
		Key:      domain.SentenceKey("egy", "s1"),
		SourceID: "s1",
		Text:     "عايز كتاب",
		Dialect:  egy,
	})
	g.AddForm(&domain.Form{
		Key:        domain.FormKey("egy", "s1", 1),
		Position:   1,
		Token:      "عايز",
		Gloss:      "want",
		Lemma:      d1,
		Equivalent: l1,
		Dialect:    egy,
		Sentence:   sent,
	})
	g.AddForm(&domain.Form{
		Key:      domain.FormKey("egy", "s1", 2),
		Position: 2,
		Token:    "كتاب",
		Gloss:    "book",
		Dialect:  egy,
		Sentence: sent,
	})
	g.BuildGlossIndex()
	return g
}

func TestRepo_SaveLoadRoundTrip(t *testing.T) {
	repo, g := newRepo(t)
	ctx := context.Background()

	if err := repo.SaveGraph(ctx, g); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}

	loaded := graph.New(graph.NewRegistry())
	if err := repo.LoadGraph(ctx, loaded); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	if got, want := loaded.Stats(), g.Stats(); got != want {
		t.Fatalf("loaded stats = %+v, want %+v", got, want)
	}

	l1 := loaded.LemmaByID("L1")
	if l1 == nil {
		t.Fatal("lemma L1 not loaded")
	}
	if l1.Root == nil || l1.Root.Text != "كتب" {
		t.Errorf("lemma L1 root = %+v, want كتب", l1.Root)
	}
	if len(l1.Concepts) != 1 || l1.Concepts[0].ID != "C1" {
		t.Errorf("lemma L1 concepts = %+v, want [C1]", l1.Concepts)
	}
	if !l1.CorrespondsTo("D1") || !loaded.LemmaByID("D1").CorrespondsTo("L1") {
		t.Error("correspondence L1<->D1 not restored symmetrically")
	}

	d1 := loaded.LemmaByID("D1")
	if d1.Features == nil || d1.Features.Number != "s" {
		t.Errorf("lemma D1 features = %+v, want Number=s", d1.Features)
	}

	c2 := loaded.ConceptByID("C2")
	if c2.Parent == nil || c2.Parent.ID != "C1" {
		t.Errorf("concept C2 parent = %+v, want C1", c2.Parent)
	}

	sent := loaded.SentenceByKey(domain.SentenceKey("egy", "s1"))
	if sent == nil {
		t.Fatal("sentence egy/s1 not loaded")
	}
	if len(sent.Forms) != 2 {
		t.Fatalf("sentence forms = %d, want 2", len(sent.Forms))
	}
	if sent.Forms[0].Lemma == nil || sent.Forms[0].Lemma.ID != "D1" {
		t.Errorf("form 1 lemma = %+v, want D1", sent.Forms[0].Lemma)
	}
	if sent.Forms[1].Lemma != nil {
		t.Errorf("form 2 lemma = %+v, want unset", sent.Forms[1].Lemma)
	}

	if hits := loaded.SearchByGloss("want"); len(hits) != 2 {
		t.Errorf("gloss search hits = %d, want 2", len(hits))
	}
}

func TestRepo_SaveIsIdempotent(t *testing.T) {
	repo, g := newRepo(t)
	ctx := context.Background()

	if err := repo.SaveGraph(ctx, g); err != nil {
		t.Fatalf("first SaveGraph: %v", err)
	}
	if err := repo.SaveGraph(ctx, g); err != nil {
		t.Fatalf("second SaveGraph: %v", err)
	}

	loaded := graph.New(graph.NewRegistry())
	if err := repo.LoadGraph(ctx, loaded); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if got, want := loaded.Stats(), g.Stats(); got != want {
		t.Fatalf("stats after double save = %+v, want %+v", got, want)
	}
}

func TestRepo_SaveOnTopOfExistingRows(t *testing.T) {
	repo, g := newRepo(t)
	ctx := context.Background()

	if err := repo.SaveGraph(ctx, g); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}

	// A second run loads prior state, adds one lemma, and saves the union.
	run2 := graph.New(graph.NewRegistry())
	if err := repo.LoadGraph(ctx, run2); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	run2.AddLemma(&domain.Lemma{
		ID:           "L2",
		Headword:     "درس",
		HeadwordNorm: domain.NormalizeArabic("درس"),
		Register:     domain.RegisterMSA,
		POSCategory:  "verb",
		Root:         run2.EnsureRoot("درس"),
		Dialect:      run2.DialectByCode(domain.StandardDialectCode),
	})
	if err := repo.SaveGraph(ctx, run2); err != nil {
		t.Fatalf("SaveGraph union: %v", err)
	}

	loaded := graph.New(graph.NewRegistry())
	if err := repo.LoadGraph(ctx, loaded); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if got, want := loaded.Stats().Lemmas, g.Stats().Lemmas+1; got != want {
		t.Fatalf("lemmas = %d, want %d", got, want)
	}
	if loaded.LemmaByID("L2") == nil {
		t.Fatal("lemma L2 not persisted")
	}
	// Existing rows were skipped, not rewritten.
	if !loaded.LemmaByID("L1").CorrespondsTo("D1") {
		t.Error("existing correspondence lost after union save")
	}
}

func TestRepo_LoadMapsErrorsThroughSubject(t *testing.T) {
	repo, _ := newRepo(t)

	// A dead context fails on the first load step; the error must pass
	// through the mapping layer unconverted and name the table.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.LoadGraph(ctx, graph.New(graph.NewRegistry()))
	if err == nil {
		t.Fatal("LoadGraph with cancelled context should fail")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error does not wrap context.Canceled: %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Errorf("context cancellation must not map to a domain error: %v", err)
	}
	if !strings.Contains(err.Error(), "dialects") {
		t.Errorf("error does not name the failing table: %v", err)
	}
}

func TestRepo_LoadEmptyDatabase(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	loaded := graph.New(graph.NewRegistry())
	if err := repo.LoadGraph(ctx, loaded); err != nil {
		t.Fatalf("LoadGraph on empty DB: %v", err)
	}
	if got := loaded.Stats(); got != (graph.Counts{}) {
		t.Fatalf("stats = %+v, want zero", got)
	}
}
