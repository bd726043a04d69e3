// Package importer defines the staged import/entity-resolution pipeline that
// builds the lexical knowledge graph from delimited sources.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lisanlab/lisan-backend/internal/domain"
	"github.com/lisanlab/lisan-backend/internal/graph"
	"github.com/lisanlab/lisan-backend/internal/importer/concepts"
	"github.com/lisanlab/lisan-backend/internal/importer/corpus"
	"github.com/lisanlab/lisan-backend/internal/importer/lexicon"
)

// Phase names one pipeline stage. Each phase is a barrier for the next.
type Phase string

const (
	PhaseInit                 Phase = "Init"
	PhaseLoadCaches           Phase = "LoadCaches"
	PhaseImportIndependent    Phase = "ImportIndependentEntities"
	PhaseImportLexicon        Phase = "ImportLexicon"
	PhaseBuildHierarchy       Phase = "BuildConceptHierarchy"
	PhaseLinkLemmaConcepts    Phase = "LinkLemmaConcepts"
	PhaseImportCorpusForms    Phase = "ImportCorpusForms"
	PhaseBuildCorrespondences Phase = "BuildCorrespondences"
	PhasePersist              Phase = "Persist"
	PhaseDone                 Phase = "Done"
)

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Inserted int
	Skipped  int
	Errors   int
	Duration time.Duration
	Err      error
}

// Pipeline orchestrates the staged import. A single logical writer owns the
// graph for the whole run: no two phases mutate it concurrently, and the
// parallel corpus parse merges its results through one serial section.
type Pipeline struct {
	log      *slog.Logger
	store    GraphStore
	cfg      Config
	progress chan<- Event

	runID      uuid.UUID
	graph      *graph.Graph
	skipCorpus map[string]bool
	results    map[Phase]PhaseResult
}

// NewPipeline creates a pipeline over the given store. progress may be nil.
func NewPipeline(log *slog.Logger, store GraphStore, cfg Config, progress chan<- Event) *Pipeline {
	return &Pipeline{
		log:        log,
		store:      store,
		cfg:        cfg,
		progress:   progress,
		runID:      uuid.New(),
		skipCorpus: make(map[string]bool),
		results:    make(map[Phase]PhaseResult),
	}
}

// Graph returns the completed graph, or nil when the run aborted.
func (p *Pipeline) Graph() *graph.Graph { return p.graph }

// RunID identifies this pipeline run.
func (p *Pipeline) RunID() uuid.UUID { return p.runID }

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[Phase]PhaseResult { return p.results }

// Run executes all phases in dependency order. Any unrecoverable error
// aborts before Persist and discards the in-memory graph: there is no
// partial commit. Cancellation is honored at phase boundaries.
func (p *Pipeline) Run(ctx context.Context) error {
	p.graph = graph.New(graph.NewRegistry())
	p.notify(PhaseInit, "run started", 0)

	type step struct {
		phase Phase
		fn    func(context.Context) PhaseResult
	}
	steps := []step{
		{PhaseLoadCaches, p.runLoadCaches},
		{PhaseImportIndependent, p.runImportIndependent},
		{PhaseImportLexicon, p.runImportLexicon},
		{PhaseBuildHierarchy, p.runBuildHierarchy},
		{PhaseLinkLemmaConcepts, p.runLinkLemmaConcepts},
	}
	if len(p.cfg.Corpora) > 0 {
		steps = append(steps,
			step{PhaseImportCorpusForms, p.runImportCorpusForms},
			step{PhaseBuildCorrespondences, p.runBuildCorrespondences},
		)
	}
	steps = append(steps, step{PhasePersist, p.runPersist})

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			p.graph = nil
			return fmt.Errorf("run %s aborted before %s: %w", p.runID, s.phase, err)
		}

		start := time.Now()
		p.log.Info("starting phase", slog.String("phase", string(s.phase)))

		result := s.fn(ctx)
		result.Duration = time.Since(start)
		p.results[s.phase] = result

		if result.Err != nil {
			p.log.Error("phase failed",
				slog.String("phase", string(s.phase)),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
			p.graph = nil
			return fmt.Errorf("phase %s: %w", s.phase, result.Err)
		}

		p.log.Info("phase completed",
			slog.String("phase", string(s.phase)),
			slog.Int("inserted", result.Inserted),
			slog.Int("skipped", result.Skipped),
			slog.Int("errors", result.Errors),
			slog.Duration("duration", result.Duration),
		)
		p.notify(s.phase, "completed", result.Inserted)
	}

	p.notify(PhaseDone, "run finished", 0)
	return nil
}

// HasErrors returns true if any phase absorbed row-level errors.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil || r.Errors > 0 {
			return true
		}
	}
	return false
}

// runLoadCaches replays existing store state into the run's registry so all
// later creation paths are idempotent against prior runs.
func (p *Pipeline) runLoadCaches(ctx context.Context) PhaseResult {
	if err := p.store.LoadGraph(ctx, p.graph); err != nil {
		return PhaseResult{Err: fmt.Errorf("load caches: %w", err)}
	}
	counts := p.graph.Stats()
	return PhaseResult{Skipped: counts.Lemmas + counts.Concepts + counts.Sentences + counts.Forms}
}

// runImportIndependent seeds the fixed dialect catalog and imports the two
// sources with no dependency on the lexicon: concepts and corpus sentences.
// Missing or empty optional corpus files are skipped with a warning and mark
// the whole corpus pair skipped; schema violations abort regardless.
func (p *Pipeline) runImportIndependent(ctx context.Context) PhaseResult {
	var result PhaseResult

	for _, d := range domain.DialectCatalog() {
		dialect := d
		if _, created := p.graph.AddDialect(&dialect); created {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	parsed, err := concepts.Parse(p.cfg.ConceptsPath)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("parse concepts: %w", err)}
	}
	result.Errors += parsed.Stats.SkippedRows
	for _, row := range parsed.Rows {
		c := &domain.Concept{
			ID:            row.ID,
			Synset:        row.Synset,
			EnglishSynset: row.EnglishSynset,
			Gloss:         row.Gloss,
			Source:        row.Source,
		}
		if _, created := p.graph.AddConcept(c); created {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}
	p.notify(PhaseImportIndependent, "concepts imported", len(parsed.Rows))

	for _, src := range p.cfg.Corpora {
		parsed, err := corpus.ParseSentences(src.SentencesPath)
		if err != nil {
			if errors.Is(err, domain.ErrSourceMissing) || errors.Is(err, domain.ErrEmptyFile) {
				p.log.Warn("corpus sentences unavailable, skipping corpus",
					slog.String("dialect", src.Dialect),
					slog.String("error", err.Error()),
				)
				p.skipCorpus[src.Dialect] = true
				continue
			}
			return PhaseResult{Err: fmt.Errorf("parse %s sentences: %w", src.Dialect, err)}
		}
		result.Errors += parsed.Stats.SkippedRows

		dialect := p.graph.DialectByCode(src.Dialect)
		for _, row := range parsed.Rows {
			s := &domain.Sentence{
				Key:      domain.SentenceKey(src.Dialect, row.ID),
				SourceID: row.ID,
				Text:     row.Text,
				Dialect:  dialect,
			}
			if _, created := p.graph.AddSentence(s); created {
				result.Inserted++
			} else {
				result.Skipped++
			}
		}
		p.notify(PhaseImportIndependent, src.Dialect+" sentences imported", len(parsed.Rows))
	}

	return result
}

// runImportLexicon builds Roots and Lemmas from the required lexicon source.
func (p *Pipeline) runImportLexicon(ctx context.Context) PhaseResult {
	parsed, err := lexicon.Parse(p.cfg.LexiconPath)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("parse lexicon: %w", err)}
	}

	result := PhaseResult{Errors: parsed.Stats.SkippedRows}
	standard := p.graph.DialectByCode(domain.StandardDialectCode)

	for _, e := range parsed.Entries {
		if p.graph.Registry().Lemma(e.ID) != nil {
			result.Skipped++
			continue
		}

		var root *domain.Root
		if e.Root != "" {
			root = p.graph.EnsureRoot(e.Root)
		}

		// Register is not dialect: colloquial and foreign headwords still
		// belong to the standard variety record.
		l := &domain.Lemma{
			ID:           e.ID,
			Headword:     e.Headword,
			HeadwordNorm: domain.NormalizeArabic(e.Headword),
			Register:     e.Register,
			POSCategory:  e.POSCategory,
			POS:          e.POS,
			Features:     e.Features,
			Root:         root,
			Dialect:      standard,
		}
		if _, created := p.graph.AddLemma(l); created {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	p.notify(PhaseImportLexicon, "lexicon imported", result.Inserted)
	return result
}

// runBuildHierarchy wires concept parent pointers. A parent id of "0" marks
// a root-level concept; dangling endpoints are dropped, not fatal.
func (p *Pipeline) runBuildHierarchy(ctx context.Context) PhaseResult {
	parsed, err := concepts.ParseHierarchy(p.cfg.HierarchyPath)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("parse hierarchy: %w", err)}
	}

	result := PhaseResult{Errors: parsed.Stats.SkippedRows}
	for _, link := range parsed.Links {
		if link.ParentID == "0" {
			result.Skipped++
			continue
		}
		if p.graph.SetConceptParent(link.ID, link.ParentID) {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}
	return result
}

// runLinkLemmaConcepts runs the normalization-based text-matching pass.
func (p *Pipeline) runLinkLemmaConcepts(ctx context.Context) PhaseResult {
	linked := linkLemmaConcepts(p.graph)
	p.notify(PhaseLinkLemmaConcepts, "lemma-concept links", linked)
	return PhaseResult{Inserted: linked}
}

// corpusParse holds one source's parse output before the serial merge.
type corpusParse struct {
	skipped bool
	forms   corpus.FormsResult
}

// runImportCorpusForms parses every selected corpus in parallel — per-source
// work is independent — then merges forms into the graph through the single
// writer, and finally builds the gloss token index strictly after all forms
// from all sources are present.
func (p *Pipeline) runImportCorpusForms(ctx context.Context) PhaseResult {
	parses := make([]corpusParse, len(p.cfg.Corpora))

	var eg errgroup.Group
	for i, src := range p.cfg.Corpora {
		if p.skipCorpus[src.Dialect] {
			parses[i].skipped = true
			continue
		}
		eg.Go(func() error {
			parsed, err := corpus.ParseForms(src.FormsPath, src.ResolvedTokenColumn())
			if err != nil {
				if errors.Is(err, domain.ErrSourceMissing) || errors.Is(err, domain.ErrEmptyFile) {
					p.log.Warn("corpus forms unavailable, skipping corpus",
						slog.String("dialect", src.Dialect),
						slog.String("error", err.Error()),
					)
					parses[i].skipped = true
					return nil
				}
				return fmt.Errorf("parse %s forms: %w", src.Dialect, err)
			}
			parses[i].forms = parsed
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return PhaseResult{Err: err}
	}

	var result PhaseResult
	for i, src := range p.cfg.Corpora {
		if parses[i].skipped {
			continue
		}
		parsed := parses[i].forms
		result.Errors += parsed.Stats.SkippedRows

		dialect := p.graph.DialectByCode(src.Dialect)
		for _, row := range parsed.Rows {
			sentenceKey := domain.SentenceKey(src.Dialect, row.SentenceID)
			sentence := p.graph.SentenceByKey(sentenceKey)
			if sentence == nil {
				// Forms may attest sentences absent from the sentences file;
				// create the sentence on first sight with empty text.
				sentence, _ = p.graph.AddSentence(&domain.Sentence{
					Key:      sentenceKey,
					SourceID: row.SentenceID,
					Dialect:  dialect,
				})
			}

			f := &domain.Form{
				Key:        domain.FormKey(src.Dialect, row.SentenceID, row.Position),
				Position:   row.Position,
				Token:      row.Token,
				RawToken:   row.RawToken,
				Gloss:      row.Gloss,
				POS:        row.POS,
				Prefix:     row.Prefix,
				Stem:       row.Stem,
				Suffix:     row.Suffix,
				Person:     row.Person,
				Gender:     row.Gender,
				Number:     row.Number,
				SubDialect: row.SubDialect,
				Lemma:      p.resolveLemma(row.LemmaID),
				Equivalent: p.resolveLemma(row.MSALemmaID),
				Dialect:    dialect,
				Sentence:   sentence,
			}
			if p.graph.AddForm(f) {
				result.Inserted++
			} else {
				result.Skipped++
			}
		}
		p.notify(PhaseImportCorpusForms, src.Dialect+" forms imported", len(parsed.Rows))
	}

	indexed := p.graph.BuildGlossIndex()
	p.notify(PhaseImportCorpusForms, "gloss index entries", indexed)
	return result
}

// resolveLemma resolves a corpus foreign key against the lemma registry.
// The sentinel "0" and unknown ids leave the relationship unset: absence
// means "not yet known", not an error.
func (p *Pipeline) resolveLemma(id string) *domain.Lemma {
	if id == "" || id == "0" {
		return nil
	}
	return p.graph.Registry().Lemma(id)
}

// runBuildCorrespondences runs the pair-extraction linking pass.
func (p *Pipeline) runBuildCorrespondences(ctx context.Context) PhaseResult {
	linked := buildCorrespondences(p.graph)
	p.notify(PhaseBuildCorrespondences, "correspondence pairs", linked)
	return PhaseResult{Inserted: linked}
}

// runPersist writes the completed graph through the store.
func (p *Pipeline) runPersist(ctx context.Context) PhaseResult {
	if p.cfg.DryRun {
		p.log.Info("dry run, skipping persist")
		return PhaseResult{Skipped: 1}
	}
	if err := p.store.SaveGraph(ctx, p.graph); err != nil {
		return PhaseResult{Err: fmt.Errorf("persist graph: %w", err)}
	}
	return PhaseResult{Inserted: 1}
}
