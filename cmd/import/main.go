// Command import builds the cross-dialect lexical knowledge graph from
// delimited source files (lexicon, concept ontology, dialect corpora) and
// persists it to PostgreSQL. It is intended to be run offline, not as part
// of the main server.
//
// Flags:
//
//	--import-config  path to import YAML config file
//	--dry-run        parse and link without writing to DB
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lisanlab/lisan-backend/internal/adapter/postgres"
	"github.com/lisanlab/lisan-backend/internal/adapter/postgres/graphstore"
	"github.com/lisanlab/lisan-backend/internal/app"
	"github.com/lisanlab/lisan-backend/internal/config"
	"github.com/lisanlab/lisan-backend/internal/importer"
)

// Compile-time interface assertion.
var _ importer.GraphStore = (*graphstore.Repo)(nil)

func main() {
	importConfigFlag := flag.String("import-config", "", "path to import YAML config file")
	dryRunFlag := flag.Bool("dry-run", false, "parse and link without writing to DB")
	flag.Parse()

	// Load app config (for DB connection).
	appCfg, err := config.Load()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}

	logger := app.NewLogger(appCfg.Log)
	logger.Info("starting import", slog.String("version", app.BuildVersion()))

	importCfg, err := importer.LoadConfig(*importConfigFlag)
	if err != nil {
		logger.Error("load import config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// CLI flags override config.
	if *dryRunFlag {
		importCfg.DryRun = true
	}

	// 30-minute ceiling; SIGINT/SIGTERM abort at the next phase boundary.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to DB.
	pool, err := postgres.NewPool(ctx, appCfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	store := graphstore.New(pool, txm, importCfg.BatchSize)

	progress := make(chan importer.Event, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range progress {
			logger.Info("progress",
				slog.String("run_id", e.RunID.String()),
				slog.String("phase", string(e.Phase)),
				slog.String("message", e.Message),
				slog.Int("rows", e.Rows),
			)
		}
	}()

	pipeline := importer.NewPipeline(logger, store, *importCfg, progress)
	err = pipeline.Run(ctx)
	close(progress)
	wg.Wait()

	if err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if pipeline.HasErrors() {
		logger.Warn("pipeline completed with row-level errors")
	}

	counts := pipeline.Graph().Stats()
	logger.Info("pipeline completed successfully",
		slog.Int("lemmas", counts.Lemmas),
		slog.Int("concepts", counts.Concepts),
		slog.Int("roots", counts.Roots),
		slog.Int("sentences", counts.Sentences),
		slog.Int("forms", counts.Forms),
	)
}
