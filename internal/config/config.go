// Package config loads docvault configuration from a TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultOwner          = "default"
	DefaultChunkSize      = 800
	DefaultChunkOverlap   = 0
	DefaultSearchLimit    = 10
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Config is the full docvault configuration.
type Config struct {
	// Owner is the default owner identity for CLI operations.
	Owner string `toml:"owner"`

	// DataDir is where the SQLite database lives.
	// Empty means ~/.docvault/data.
	DataDir string `toml:"data_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Search    SearchConfig    `toml:"search"`
}

// ChunkingConfig controls how extracted text is segmented.
type ChunkingConfig struct {
	// TargetSize is the preferred chunk size in characters.
	TargetSize int `toml:"target_size"`

	// Overlap is the number of trailing characters repeated at the
	// start of the next chunk. Zero keeps chunking lossless.
	Overlap int `toml:"overlap"`
}

// EmbeddingConfig configures the embedding backend.
type EmbeddingConfig struct {
	// APIKey authenticates against the embedding API. Usually set via
	// the OPENAI_API_KEY environment variable rather than the file.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the API endpoint for compatible backends.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// Dimensions overrides the model's default vector size.
	Dimensions int `toml:"dimensions"`

	// TimeoutSeconds bounds each embedding API call. Zero uses the
	// adapter default.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// SearchConfig controls retrieval defaults.
type SearchConfig struct {
	// Limit is the default maximum number of chunk hits per query.
	Limit int `toml:"limit"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Owner: DefaultOwner,
		Chunking: ChunkingConfig{
			TargetSize: DefaultChunkSize,
			Overlap:    DefaultChunkOverlap,
		},
		Embedding: EmbeddingConfig{
			Model: DefaultEmbeddingModel,
		},
		Search: SearchConfig{
			Limit: DefaultSearchLimit,
		},
	}
}

// Load reads configuration from the given TOML file, falling back to
// defaults for anything unset, then applies environment overrides.
// A missing file is not an error. If path is empty, the default
// location ~/.docvault/config.toml is used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".docvault", "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path with restricted
// permissions.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// applyEnv layers environment variables over file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("DOCVAULT_OWNER"); v != "" {
		c.Owner = v
	}
	if v := os.Getenv("DOCVAULT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("DOCVAULT_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chunking.TargetSize = n
		}
	}
	if v := os.Getenv("DOCVAULT_CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chunking.Overlap = n
		}
	}
	if v := os.Getenv("DOCVAULT_EMBEDDING_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv("DOCVAULT_EMBEDDING_BASE_URL"); v != "" {
		c.Embedding.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Embedding.APIKey = v
	}
}

// applyDefaults fills any zero values left after file and env merge.
func (c *Config) applyDefaults() {
	if c.Owner == "" {
		c.Owner = DefaultOwner
	}
	if c.Chunking.TargetSize == 0 {
		c.Chunking.TargetSize = DefaultChunkSize
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = DefaultEmbeddingModel
	}
	if c.Search.Limit == 0 {
		c.Search.Limit = DefaultSearchLimit
	}
}

// validate rejects configurations the pipeline cannot run with.
func (c *Config) validate() error {
	if c.Chunking.TargetSize < 0 {
		return fmt.Errorf("chunking.target_size must not be negative, got %d", c.Chunking.TargetSize)
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking.overlap must not be negative, got %d", c.Chunking.Overlap)
	}
	if c.Search.Limit < 0 {
		return fmt.Errorf("search.limit must not be negative, got %d", c.Search.Limit)
	}
	return nil
}
