package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UniqueSuffix returns a short unique string for generating non-conflicting test data.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// TruncateGraph removes all graph rows so a test starts from an empty
// database. Tables are truncated together to satisfy foreign keys.
func TruncateGraph(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx,
		`TRUNCATE correspondences, forms, sentences, lemma_concepts, lemmas, roots, concepts, dialects`,
	)
	if err != nil {
		t.Fatalf("testhelper: truncate graph tables: %v", err)
	}
}

// SeedDialect inserts one dialect row directly, bypassing the store.
func SeedDialect(t *testing.T, pool *pgxpool.Pool, code, name string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx,
		`INSERT INTO dialects (code, name) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
		code, name,
	)
	if err != nil {
		t.Fatalf("testhelper: seed dialect %s: %v", code, err)
	}
}
