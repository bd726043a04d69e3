// Package graphstore persists the lexical knowledge graph in PostgreSQL.
// The store is append-only: writes use ON CONFLICT DO NOTHING so re-running
// an import against a populated database inserts only what is new.
package graphstore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/lisanlab/lisan-backend/internal/adapter/postgres"
	"github.com/lisanlab/lisan-backend/internal/domain"
	"github.com/lisanlab/lisan-backend/internal/graph"
)

// DefaultBatchSize bounds the number of statements queued per pgx.Batch.
const DefaultBatchSize = 500

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides graph persistence backed by PostgreSQL.
type Repo struct {
	pool      *pgxpool.Pool
	txm       *postgres.TxManager
	batchSize int
}

// New creates a graph store repository. batchSize <= 0 uses DefaultBatchSize.
func New(pool *pgxpool.Pool, txm *postgres.TxManager, batchSize int) *Repo {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Repo{pool: pool, txm: txm, batchSize: batchSize}
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// LoadGraph reads every table into a snapshot and replays it into g.
func (r *Repo) LoadGraph(ctx context.Context, g *graph.Graph) error {
	snap, err := r.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	g.Restore(snap)
	return nil
}

func (r *Repo) loadSnapshot(ctx context.Context) (*graph.Snapshot, error) {
	snap := &graph.Snapshot{}

	steps := []struct {
		name string
		fn   func(context.Context, *graph.Snapshot) error
	}{
		{"dialects", r.loadDialects},
		{"concepts", r.loadConcepts},
		{"roots", r.loadRoots},
		{"lemmas", r.loadLemmas},
		{"sentences", r.loadSentences},
		{"forms", r.loadForms},
		{"correspondences", r.loadCorrespondences},
	}
	for _, s := range steps {
		if err := s.fn(ctx, snap); err != nil {
			return nil, fmt.Errorf("load: %w", postgres.MapError(err, s.name, ""))
		}
	}
	return snap, nil
}

func (r *Repo) loadDialects(ctx context.Context, snap *graph.Snapshot) error {
	query, args, err := builder.
		Select("code", "name", "region", "corpus").
		From("dialects").
		OrderBy("code").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec graph.DialectRecord
		if err := rows.Scan(&rec.Code, &rec.Name, &rec.Region, &rec.Corpus); err != nil {
			return err
		}
		snap.Dialects = append(snap.Dialects, rec)
	}
	return rows.Err()
}

func (r *Repo) loadConcepts(ctx context.Context, snap *graph.Snapshot) error {
	query, args, err := builder.
		Select("id", "synset", "eng_synset", "gloss", "source", "parent_id").
		From("concepts").
		OrderBy("id").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec graph.ConceptRecord
		var parentID *string
		if err := rows.Scan(&rec.ID, &rec.Synset, &rec.EnglishSynset, &rec.Gloss, &rec.Source, &parentID); err != nil {
			return err
		}
		if parentID != nil {
			rec.ParentID = *parentID
		}
		snap.Concepts = append(snap.Concepts, rec)
	}
	return rows.Err()
}

func (r *Repo) loadRoots(ctx context.Context, snap *graph.Snapshot) error {
	query, args, err := builder.
		Select("text").
		From("roots").
		OrderBy("text").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return err
		}
		snap.Roots = append(snap.Roots, text)
	}
	return rows.Err()
}

func (r *Repo) loadLemmas(ctx context.Context, snap *graph.Snapshot) error {
	query, args, err := builder.
		Select("id", "headword", "headword_norm", "register", "pos_category", "pos", "features", "root_text").
		From("lemmas").
		OrderBy("id").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var rec graph.LemmaRecord
		var register string
		var rootText *string
		if err := rows.Scan(&rec.ID, &rec.Headword, &rec.HeadwordNorm, &register, &rec.POSCategory, &rec.POS, &rec.Features, &rootText); err != nil {
			return err
		}
		rec.Register = domain.Register(register)
		if rootText != nil {
			rec.RootText = *rootText
		}
		index[rec.ID] = len(snap.Lemmas)
		snap.Lemmas = append(snap.Lemmas, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return r.loadLemmaConcepts(ctx, snap, index)
}

func (r *Repo) loadLemmaConcepts(ctx context.Context, snap *graph.Snapshot, index map[string]int) error {
	query, args, err := builder.
		Select("lemma_id", "concept_id").
		From("lemma_concepts").
		OrderBy("lemma_id", "concept_id").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var lemmaID, conceptID string
		if err := rows.Scan(&lemmaID, &conceptID); err != nil {
			return err
		}
		if i, ok := index[lemmaID]; ok {
			snap.Lemmas[i].ConceptIDs = append(snap.Lemmas[i].ConceptIDs, conceptID)
		}
	}
	return rows.Err()
}

func (r *Repo) loadSentences(ctx context.Context, snap *graph.Snapshot) error {
	query, args, err := builder.
		Select("dialect_code", "source_id", "text").
		From("sentences").
		OrderBy("dialect_code", "source_id").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec graph.SentenceRecord
		if err := rows.Scan(&rec.Dialect, &rec.SourceID, &rec.Text); err != nil {
			return err
		}
		snap.Sentences = append(snap.Sentences, rec)
	}
	return rows.Err()
}

func (r *Repo) loadForms(ctx context.Context, snap *graph.Snapshot) error {
	query, args, err := builder.
		Select("dialect_code", "sentence_id", "position", "token", "raw_token",
			"gloss", "pos", "prefix", "stem", "suffix",
			"person", "gender", "number", "sub_dialect",
			"lemma_id", "equivalent_id").
		From("forms").
		OrderBy("dialect_code", "sentence_id", "position").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec graph.FormRecord
		var lemmaID, equivalentID *string
		if err := rows.Scan(
			&rec.Dialect, &rec.SentenceID, &rec.Position, &rec.Token, &rec.RawToken,
			&rec.Gloss, &rec.POS, &rec.Prefix, &rec.Stem, &rec.Suffix,
			&rec.Person, &rec.Gender, &rec.Number, &rec.SubDialect,
			&lemmaID, &equivalentID,
		); err != nil {
			return err
		}
		if lemmaID != nil {
			rec.LemmaID = *lemmaID
		}
		if equivalentID != nil {
			rec.EquivalentID = *equivalentID
		}
		snap.Forms = append(snap.Forms, rec)
	}
	return rows.Err()
}

func (r *Repo) loadCorrespondences(ctx context.Context, snap *graph.Snapshot) error {
	query, args, err := builder.
		Select("a_id", "b_id").
		From("correspondences").
		OrderBy("a_id", "b_id").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec graph.PairRecord
		if err := rows.Scan(&rec.A, &rec.B); err != nil {
			return err
		}
		snap.Correspondences = append(snap.Correspondences, rec)
	}
	return rows.Err()
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

// SaveGraph writes the graph in one transaction, table by table in foreign
// key order. Rows whose keys already exist are skipped, never updated.
func (r *Repo) SaveGraph(ctx context.Context, g *graph.Graph) error {
	snap := g.Snapshot()

	return r.txm.RunInTx(ctx, func(txCtx context.Context) error {
		steps := []struct {
			name string
			fn   func() error
		}{
			{"dialects", func() error { return r.saveDialects(txCtx, snap.Dialects) }},
			{"concepts", func() error { return r.saveConcepts(txCtx, snap.Concepts) }},
			{"roots", func() error { return r.saveRoots(txCtx, snap.Roots) }},
			{"lemmas", func() error { return r.saveLemmas(txCtx, snap.Lemmas) }},
			{"sentences", func() error { return r.saveSentences(txCtx, snap.Sentences) }},
			{"forms", func() error { return r.saveForms(txCtx, snap.Forms) }},
			{"correspondences", func() error { return r.saveCorrespondences(txCtx, snap.Correspondences) }},
		}
		for _, s := range steps {
			if err := s.fn(); err != nil {
				return fmt.Errorf("save: %w", postgres.MapError(err, s.name, ""))
			}
		}
		return nil
	})
}

func (r *Repo) saveDialects(ctx context.Context, recs []graph.DialectRecord) error {
	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(
			`INSERT INTO dialects (code, name, region, corpus)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (code) DO NOTHING`,
			rec.Code, rec.Name, rec.Region, rec.Corpus,
		)
	}
	_, err := r.sendBatchExec(ctx, batch)
	return err
}

func (r *Repo) saveConcepts(ctx context.Context, recs []graph.ConceptRecord) error {
	// Parents go in a second pass so insertion order never violates the
	// self-referencing foreign key.
	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(
			`INSERT INTO concepts (id, synset, eng_synset, gloss, source)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO NOTHING`,
			rec.ID, rec.Synset, rec.EnglishSynset, rec.Gloss, rec.Source,
		)
	}
	if _, err := r.sendBatchExec(ctx, batch); err != nil {
		return err
	}

	parents := &pgx.Batch{}
	for _, rec := range recs {
		if rec.ParentID == "" {
			continue
		}
		parents.Queue(
			`UPDATE concepts SET parent_id = $2
			 WHERE id = $1 AND parent_id IS NULL`,
			rec.ID, rec.ParentID,
		)
	}
	_, err := r.sendBatchExec(ctx, parents)
	return err
}

func (r *Repo) saveRoots(ctx context.Context, texts []string) error {
	batch := &pgx.Batch{}
	for _, text := range texts {
		batch.Queue(
			`INSERT INTO roots (text) VALUES ($1) ON CONFLICT (text) DO NOTHING`,
			text,
		)
	}
	_, err := r.sendBatchExec(ctx, batch)
	return err
}

func (r *Repo) saveLemmas(ctx context.Context, recs []graph.LemmaRecord) error {
	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(
			`INSERT INTO lemmas (id, headword, headword_norm, register, pos_category, pos, features, root_text, dialect_code)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (id) DO NOTHING`,
			rec.ID, rec.Headword, rec.HeadwordNorm, string(rec.Register),
			rec.POSCategory, rec.POS, rec.Features,
			nullIfEmpty(rec.RootText), domain.StandardDialectCode,
		)
	}
	if _, err := r.sendBatchExec(ctx, batch); err != nil {
		return err
	}

	links := &pgx.Batch{}
	for _, rec := range recs {
		for _, conceptID := range rec.ConceptIDs {
			links.Queue(
				`INSERT INTO lemma_concepts (lemma_id, concept_id)
				 VALUES ($1, $2)
				 ON CONFLICT (lemma_id, concept_id) DO NOTHING`,
				rec.ID, conceptID,
			)
		}
	}
	_, err := r.sendBatchExec(ctx, links)
	return err
}

func (r *Repo) saveSentences(ctx context.Context, recs []graph.SentenceRecord) error {
	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(
			`INSERT INTO sentences (dialect_code, source_id, text)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (dialect_code, source_id) DO NOTHING`,
			rec.Dialect, rec.SourceID, rec.Text,
		)
	}
	_, err := r.sendBatchExec(ctx, batch)
	return err
}

func (r *Repo) saveForms(ctx context.Context, recs []graph.FormRecord) error {
	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(
			`INSERT INTO forms (dialect_code, sentence_id, position, token, raw_token,
			                    gloss, pos, prefix, stem, suffix,
			                    person, gender, number, sub_dialect,
			                    lemma_id, equivalent_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			 ON CONFLICT (dialect_code, sentence_id, position) DO NOTHING`,
			rec.Dialect, rec.SentenceID, rec.Position, rec.Token, rec.RawToken,
			rec.Gloss, rec.POS, rec.Prefix, rec.Stem, rec.Suffix,
			rec.Person, rec.Gender, rec.Number, rec.SubDialect,
			nullIfEmpty(rec.LemmaID), nullIfEmpty(rec.EquivalentID),
		)
	}
	_, err := r.sendBatchExec(ctx, batch)
	return err
}

func (r *Repo) saveCorrespondences(ctx context.Context, recs []graph.PairRecord) error {
	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(
			`INSERT INTO correspondences (a_id, b_id)
			 VALUES ($1, $2)
			 ON CONFLICT (a_id, b_id) DO NOTHING`,
			rec.A, rec.B,
		)
	}
	_, err := r.sendBatchExec(ctx, batch)
	return err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) querier(ctx context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(ctx, r.pool)
}

// sendBatchExec sends a batch in chunks of batchSize and sums affected rows.
func (r *Repo) sendBatchExec(ctx context.Context, batch *pgx.Batch) (int, error) {
	if batch.Len() == 0 {
		return 0, nil
	}

	q := r.querier(ctx)
	inserted := 0

	queued := batch.QueuedQueries
	for start := 0; start < len(queued); start += r.batchSize {
		end := min(start+r.batchSize, len(queued))

		chunk := &pgx.Batch{}
		chunk.QueuedQueries = queued[start:end]

		results := q.SendBatch(ctx, chunk)
		n, err := drainBatch(results, chunk.Len())
		inserted += n
		if err != nil {
			return inserted, fmt.Errorf("batch exec: %w", err)
		}
	}

	return inserted, nil
}

func drainBatch(results pgx.BatchResults, n int) (int, error) {
	defer results.Close()

	inserted := 0
	for range n {
		tag, err := results.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
