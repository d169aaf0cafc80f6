// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// VaultConfig holds settings for the vault scan.
type VaultConfig struct {
	// Root is the vault folder containing per-source subfolders
	// (e.g. vault/chatgpt/, vault/perplexity/).
	Root string `json:"root" yaml:"root"`
}

// IndexConfig holds settings for the index store and query engine.
type IndexConfig struct {
	// StorePath is the SQLite database file backing the index
	// (default "data/agentvault.sqlite"). The store is a derived
	// artifact: it can always be rebuilt by re-running build-index.
	StorePath string `json:"store_path" yaml:"store_path"`

	// MaxResults is the default maximum number of query results (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// RecencyWindow is the time window for boosting recent units among
	// near-equal scores (default 180 days). Zero disables the boost.
	RecencyWindow time.Duration `json:"recency_window" yaml:"recency_window"`
}

// Config groups all agentvault configuration.
type Config struct {
	Vault VaultConfig `json:"vault" yaml:"vault"`
	Index IndexConfig `json:"index" yaml:"index"`
}
