package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/abelbrown/frameseq/internal/config"
	"github.com/abelbrown/frameseq/internal/otel"
	"github.com/abelbrown/frameseq/internal/retrieval"
	"github.com/abelbrown/frameseq/internal/similarity"
	"github.com/abelbrown/frameseq/internal/store"
)

// dataDir returns ~/.frameseq/, creating it if needed.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("failed to get home directory: %v", err)
	}
	dir := filepath.Join(home, ".frameseq")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return dir
}

// eventLogPath returns the path to frameseq.events.jsonl.
func eventLogPath() string {
	return filepath.Join(dataDir(), "frameseq.events.jsonl")
}

// loadConfig loads the app config or fatals.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// corpusPath returns the configured local corpus path, defaulting into
// the data directory.
func corpusPath(cfg *config.Config) string {
	if cfg.DBPath != "" {
		return cfg.DBPath
	}
	return filepath.Join(dataDir(), "frameseq.db")
}

// openCorpus opens the local keyframe store or fatals.
func openCorpus(cfg *config.Config) *store.Store {
	st, err := store.Open(corpusPath(cfg))
	if err != nil {
		log.Fatalf("failed to open corpus: %v", err)
	}
	return st
}

// newRetrievalClient creates the HTTP client for the retrieval service.
func newRetrievalClient(cfg *config.Config) *retrieval.Client {
	return retrieval.NewClient(cfg.Service.BaseURL, cfg.Service.RequestTimeout())
}

// newResolver wires a session-scoped similarity resolver.
func newResolver(cfg *config.Config, events *otel.Logger) *similarity.Resolver {
	provider := similarity.NewHTTPProvider(
		cfg.Service.BaseURL,
		cfg.Service.RequestTimeout(),
		cfg.Service.MaxBatchFrames,
		cfg.Service.MaxBatchQueries,
	)
	return similarity.NewResolver(
		provider, provider, similarity.NewCache(),
		cfg.Service.FallbackGroupSize, cfg.Service.FallbackGroupDelay(),
		events,
	)
}

// openEventLog opens the JSONL event logger, appending to the shared log.
func openEventLog() *otel.Logger {
	f, err := os.OpenFile(eventLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("event log unavailable: %v", err)
		return otel.NewNullLogger()
	}
	return otel.NewLogger(f)
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
