package graph

import (
	"github.com/lisanlab/lisan-backend/internal/domain"
)

// Snapshot is the plain-record serialization of a graph: the unit stores
// persist and reload. Records carry identities instead of pointers so a
// restore rebuilds a fresh, fully-indexed object graph.
type Snapshot struct {
	Dialects        []DialectRecord
	Concepts        []ConceptRecord
	Roots           []string
	Lemmas          []LemmaRecord
	Sentences       []SentenceRecord
	Forms           []FormRecord
	Correspondences []PairRecord
}

// DialectRecord is one dialect catalog row.
type DialectRecord struct {
	Code   string
	Name   string
	Region string
	Corpus string
}

// ConceptRecord is one concept row; ParentID is empty for root-level
// concepts.
type ConceptRecord struct {
	ID            string
	Synset        string
	EnglishSynset string
	Gloss         string
	Source        string
	ParentID      string
}

// LemmaRecord is one lemma row with its outbound relationship identities.
type LemmaRecord struct {
	ID           string
	Headword     string
	HeadwordNorm string
	Register     domain.Register
	POSCategory  string
	POS          string
	Features     *domain.LemmaFeatures
	RootText     string
	ConceptIDs   []string
}

// SentenceRecord is one sentence row, identified by (dialect, source id).
type SentenceRecord struct {
	Dialect  string
	SourceID string
	Text     string
}

// FormRecord is one form row, identified by (dialect, sentence, position).
type FormRecord struct {
	Dialect    string
	SentenceID string
	Position   int
	Token      string
	RawToken   string
	Gloss      string
	POS        string
	Prefix     string
	Stem       string
	Suffix     string
	Person     string
	Gender     string
	Number     string
	SubDialect string

	LemmaID      string // empty = unset
	EquivalentID string
}

// PairRecord is one canonicalized correspondence pair.
type PairRecord struct {
	A string
	B string
}

// Snapshot serializes the graph into plain records in deterministic order.
func (g *Graph) Snapshot() *Snapshot {
	snap := &Snapshot{}

	for _, d := range g.reg.AllDialects() {
		snap.Dialects = append(snap.Dialects, DialectRecord{
			Code: d.Code, Name: d.Name, Region: d.Region, Corpus: d.Corpus,
		})
	}

	for _, c := range g.reg.AllConcepts() {
		rec := ConceptRecord{
			ID:            c.ID,
			Synset:        c.Synset,
			EnglishSynset: c.EnglishSynset,
			Gloss:         c.Gloss,
			Source:        c.Source,
		}
		if c.Parent != nil {
			rec.ParentID = c.Parent.ID
		}
		snap.Concepts = append(snap.Concepts, rec)
	}

	for _, r := range g.reg.AllRoots() {
		snap.Roots = append(snap.Roots, r.Text)
	}

	pairSeen := make(map[string]bool)
	for _, l := range g.reg.AllLemmas() {
		rec := LemmaRecord{
			ID:           l.ID,
			Headword:     l.Headword,
			HeadwordNorm: l.HeadwordNorm,
			Register:     l.Register,
			POSCategory:  l.POSCategory,
			POS:          l.POS,
			Features:     l.Features,
		}
		if l.Root != nil {
			rec.RootText = l.Root.Text
		}
		for _, c := range l.Concepts {
			rec.ConceptIDs = append(rec.ConceptIDs, c.ID)
		}
		snap.Lemmas = append(snap.Lemmas, rec)

		// Correspondences are symmetric; emit each unordered pair once.
		for _, o := range l.Correspondences {
			key := domain.PairKey(l.ID, o.ID)
			if pairSeen[key] {
				continue
			}
			pairSeen[key] = true
			a, b := l.ID, o.ID
			if b < a {
				a, b = b, a
			}
			snap.Correspondences = append(snap.Correspondences, PairRecord{A: a, B: b})
		}
	}

	for _, s := range g.reg.AllSentences() {
		dialect := ""
		if s.Dialect != nil {
			dialect = s.Dialect.Code
		}
		snap.Sentences = append(snap.Sentences, SentenceRecord{
			Dialect: dialect, SourceID: s.SourceID, Text: s.Text,
		})
	}

	for _, f := range g.forms {
		rec := FormRecord{
			Position:   f.Position,
			Token:      f.Token,
			RawToken:   f.RawToken,
			Gloss:      f.Gloss,
			POS:        f.POS,
			Prefix:     f.Prefix,
			Stem:       f.Stem,
			Suffix:     f.Suffix,
			Person:     f.Person,
			Gender:     f.Gender,
			Number:     f.Number,
			SubDialect: f.SubDialect,
		}
		if f.Dialect != nil {
			rec.Dialect = f.Dialect.Code
		}
		if f.Sentence != nil {
			rec.SentenceID = f.Sentence.SourceID
		}
		if f.Lemma != nil {
			rec.LemmaID = f.Lemma.ID
		}
		if f.Equivalent != nil {
			rec.EquivalentID = f.Equivalent.ID
		}
		snap.Forms = append(snap.Forms, rec)
	}

	return snap
}

// Restore replays a snapshot into the graph, rebuilding fresh entities,
// relationship links, and the gloss index. Creation goes through the same
// registry-guarded paths as import, so restoring over prior state stays
// idempotent. Dangling identities in records are dropped, not fatal.
func (g *Graph) Restore(snap *Snapshot) {
	for _, rec := range snap.Dialects {
		g.AddDialect(&domain.Dialect{
			Code: rec.Code, Name: rec.Name, Region: rec.Region, Corpus: rec.Corpus,
		})
	}

	for _, rec := range snap.Concepts {
		g.AddConcept(&domain.Concept{
			ID:            rec.ID,
			Synset:        rec.Synset,
			EnglishSynset: rec.EnglishSynset,
			Gloss:         rec.Gloss,
			Source:        rec.Source,
		})
	}
	for _, rec := range snap.Concepts {
		if rec.ParentID != "" {
			g.SetConceptParent(rec.ID, rec.ParentID)
		}
	}

	for _, text := range snap.Roots {
		g.reg.AddRoot(&domain.Root{Text: text})
	}

	for _, rec := range snap.Lemmas {
		var root *domain.Root
		if rec.RootText != "" {
			root, _ = g.reg.AddRoot(&domain.Root{Text: rec.RootText})
		}
		l, created := g.AddLemma(&domain.Lemma{
			ID:           rec.ID,
			Headword:     rec.Headword,
			HeadwordNorm: rec.HeadwordNorm,
			Register:     rec.Register,
			POSCategory:  rec.POSCategory,
			POS:          rec.POS,
			Features:     rec.Features,
			Root:         root,
			Dialect:      g.reg.Dialect(domain.StandardDialectCode),
		})
		if !created {
			continue
		}
		for _, cid := range rec.ConceptIDs {
			if c := g.reg.Concept(cid); c != nil {
				g.LinkLemmaConcept(l, c)
			}
		}
	}

	for _, rec := range snap.Sentences {
		g.AddSentence(&domain.Sentence{
			Key:      domain.SentenceKey(rec.Dialect, rec.SourceID),
			SourceID: rec.SourceID,
			Text:     rec.Text,
			Dialect:  g.reg.Dialect(rec.Dialect),
		})
	}

	for _, rec := range snap.Forms {
		g.AddForm(&domain.Form{
			Key:        domain.FormKey(rec.Dialect, rec.SentenceID, rec.Position),
			Position:   rec.Position,
			Token:      rec.Token,
			RawToken:   rec.RawToken,
			Gloss:      rec.Gloss,
			POS:        rec.POS,
			Prefix:     rec.Prefix,
			Stem:       rec.Stem,
			Suffix:     rec.Suffix,
			Person:     rec.Person,
			Gender:     rec.Gender,
			Number:     rec.Number,
			SubDialect: rec.SubDialect,
			Lemma:      g.reg.Lemma(rec.LemmaID),
			Equivalent: g.reg.Lemma(rec.EquivalentID),
			Dialect:    g.reg.Dialect(rec.Dialect),
			Sentence:   g.reg.Sentence(domain.SentenceKey(rec.Dialect, rec.SentenceID)),
		})
	}

	for _, rec := range snap.Correspondences {
		a, b := g.reg.Lemma(rec.A), g.reg.Lemma(rec.B)
		if a != nil && b != nil {
			domain.LinkCorrespondence(a, b)
		}
	}

	g.BuildGlossIndex()
}
