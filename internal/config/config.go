package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config is the persistent application configuration.
type Config struct {
	// Search algorithm tunables
	Algorithm Algorithm `json:"algorithm"`

	// External retrieval/similarity service
	Service Service `json:"service"`

	// Local keyframe corpus (optional)
	DBPath string `json:"db_path,omitempty"`
}

// Algorithm holds the sequence-search tunables. A Session copies this value
// at construction and never reads it again, so a caller can reuse or mutate
// a Config between searches without affecting an in-flight one.
type Algorithm struct {
	// SimilarityThreshold is the minimum per-event similarity to accept a
	// pivot or a slot match.
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// ScoreThreshold is the minimum final score for a sequence to be returned.
	ScoreThreshold float64 `json:"score_threshold"`

	// TopK is the number of candidate frames requested from initial retrieval.
	TopK int `json:"top_k"`

	// MaxTemporalGap normalizes the temporal sub-score, in keyframe numbers.
	MaxTemporalGap int `json:"max_temporal_gap"`

	// SearchWindow is the keyframe-number radius expanded around a pivot.
	SearchWindow int `json:"search_window"`

	// MinSequenceCompleteness is the floor on assigned/total events.
	MinSequenceCompleteness float64 `json:"min_sequence_completeness"`

	// TemporalWeight and CompletenessWeight are the configurable terms of
	// the composite score. The five weighted terms are not required to sum
	// to 1; the score is an unnormalized blend.
	TemporalWeight     float64 `json:"temporal_weight"`
	CompletenessWeight float64 `json:"completeness_weight"`
}

// Service holds settings for the external retrieval/similarity API.
type Service struct {
	BaseURL string `json:"base_url"`

	// RequestTimeoutSec bounds each external call.
	RequestTimeoutSec int `json:"request_timeout_sec"`

	// Batch-matrix limits enforced client-side; larger windows are chunked.
	MaxBatchFrames  int `json:"max_batch_frames"`
	MaxBatchQueries int `json:"max_batch_queries"`

	// Pair-fallback pacing: at most FallbackGroupSize similarity requests in
	// flight, with FallbackGroupDelayMs between groups.
	FallbackGroupSize    int `json:"fallback_group_size"`
	FallbackGroupDelayMs int `json:"fallback_group_delay_ms"`
}

// Default returns sensible defaults.
func Default() *Config {
	return &Config{
		Algorithm: Algorithm{
			SimilarityThreshold:     0,
			ScoreThreshold:          0,
			TopK:                    10,
			MaxTemporalGap:          150,
			SearchWindow:            3000,
			MinSequenceCompleteness: 0.1,
			TemporalWeight:          0.3,
			CompletenessWeight:      0.2,
		},
		Service: Service{
			BaseURL:              "http://localhost:8001",
			RequestTimeoutSec:    30,
			MaxBatchFrames:       200,
			MaxBatchQueries:      10,
			FallbackGroupSize:    10,
			FallbackGroupDelayMs: 100,
		},
	}
}

// Path returns the path to the config file.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".frameseq", "config.json")
}

// Load reads config from disk, or returns defaults.
func Load() (*Config, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.AutoPopulateFromEnv()
			return cfg, nil
		}
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return Default(), nil
	}
	cfg.AutoPopulateFromEnv()

	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := Path()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// AutoPopulateFromEnv overrides settings from environment variables.
func (c *Config) AutoPopulateFromEnv() {
	if url := os.Getenv("FRAMESEQ_API_URL"); url != "" {
		c.Service.BaseURL = url
	}
	if db := os.Getenv("FRAMESEQ_DB"); db != "" {
		c.DBPath = db
	}
}

// RequestTimeout returns the per-call timeout as a duration.
func (s Service) RequestTimeout() time.Duration {
	if s.RequestTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.RequestTimeoutSec) * time.Second
}

// FallbackGroupDelay returns the inter-group delay as a duration.
func (s Service) FallbackGroupDelay() time.Duration {
	if s.FallbackGroupDelayMs <= 0 {
		return 0
	}
	return time.Duration(s.FallbackGroupDelayMs) * time.Millisecond
}

// Normalized returns a copy with out-of-range values clamped back to the
// defaults, so a hand-edited config file cannot wedge a search.
func (a Algorithm) Normalized() Algorithm {
	def := Default().Algorithm
	if a.TopK <= 0 {
		a.TopK = def.TopK
	}
	if a.MaxTemporalGap <= 0 {
		a.MaxTemporalGap = def.MaxTemporalGap
	}
	if a.SearchWindow <= 0 {
		a.SearchWindow = def.SearchWindow
	}
	if a.MinSequenceCompleteness <= 0 || a.MinSequenceCompleteness > 1 {
		a.MinSequenceCompleteness = def.MinSequenceCompleteness
	}
	if a.SimilarityThreshold < 0 || a.SimilarityThreshold > 1 {
		a.SimilarityThreshold = def.SimilarityThreshold
	}
	if a.TemporalWeight < 0 {
		a.TemporalWeight = def.TemporalWeight
	}
	if a.CompletenessWeight < 0 {
		a.CompletenessWeight = def.CompletenessWeight
	}
	return a
}
