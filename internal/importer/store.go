package importer

import (
	"context"
	"sync"

	"github.com/lisanlab/lisan-backend/internal/graph"
)

// GraphStore is the persistence contract consumed by the pipeline.
// Implemented by the postgres graphstore adapter; MemoryStore backs tests.
//
// LoadGraph replays existing entities into the run's graph so the registry
// can make re-imports idempotent. SaveGraph bulk-writes the completed graph;
// stores skip identities they already hold, never updating in place.
type GraphStore interface {
	LoadGraph(ctx context.Context, g *graph.Graph) error
	SaveGraph(ctx context.Context, g *graph.Graph) error
}

// MemoryStore is a GraphStore holding one snapshot in memory.
type MemoryStore struct {
	mu   sync.Mutex
	snap *graph.Snapshot
}

// LoadGraph replays the held snapshot, if any, into g.
func (s *MemoryStore) LoadGraph(ctx context.Context, g *graph.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap != nil {
		g.Restore(s.snap)
	}
	return nil
}

// SaveGraph snapshots g, replacing any previously held state.
func (s *MemoryStore) SaveGraph(ctx context.Context, g *graph.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = g.Snapshot()
	return nil
}

// Snapshot returns the held snapshot, or nil before the first save.
func (s *MemoryStore) Snapshot() *graph.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}
