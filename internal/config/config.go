package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the qanat API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	OpenSearch OpenSearchConfig `yaml:"opensearch"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	NLP        NLPConfig        `yaml:"nlp"`
	Geocode    GeocodeConfig    `yaml:"geocode"`
	Cache      CacheConfig      `yaml:"cache"`
	Search     SearchConfig     `yaml:"search"`
	Suggest    SuggestConfig    `yaml:"suggest"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Signals    SignalsConfig    `yaml:"signals"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// OpenSearchConfig holds search backend connection settings.
type OpenSearchConfig struct {
	Addrs              []string `yaml:"addrs"`
	Username           string   `yaml:"username"`
	Password           string   `yaml:"password"`
	Index              string   `yaml:"index"`
	InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
	ReadinessTimeout   int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings. Dimensions must match
// the model; the index mapping is created from it. Provider only labels
// metrics, it does not select an implementation.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// NLPConfig holds NER sidecar settings.
type NLPConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// GeocodeConfig holds Nominatim client settings.
type GeocodeConfig struct {
	MinDelayMs     int `yaml:"min_delay_ms"`
	MaxRetries     int `yaml:"max_retries"`
	CallTimeoutSec int `yaml:"call_timeout_sec"`
}

// CacheConfig holds the optional query-embedding cache settings.
type CacheConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTLSec   int      `yaml:"ttl_sec"` // 0 = entries never expire
}

// SearchConfig holds hybrid retrieval geometry.
type SearchConfig struct {
	K               int    `yaml:"k"`
	NumCandidates   int    `yaml:"num_candidates"`
	GeoDistance     string `yaml:"geo_distance"`
	MaxGeoRefs      int    `yaml:"max_geo_refs"`
	CollapseField   string `yaml:"collapse_field"`
	DisableCollapse bool   `yaml:"disable_collapse"`
	DefaultSize     int    `yaml:"default_size"`
	MaxSize         int    `yaml:"max_size"`
}

// SuggestConfig holds typeahead limits.
type SuggestConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// IngestConfig holds chunking and bulk-write settings.
type IngestConfig struct {
	MaxTokens int    `yaml:"max_tokens"`
	Overlap   int    `yaml:"overlap"`
	BatchSize int    `yaml:"batch_size"`
	Encoding  string `yaml:"encoding"` // tiktoken encoding name
}

// SignalsConfig holds signal extraction settings.
type SignalsConfig struct {
	// LocationStoplist overrides the built-in stoplist. Absent falls back to
	// the default; an explicit empty list disables the stoplist.
	LocationStoplist []string `yaml:"location_stoplist"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.OpenSearch.Index == "" {
		c.OpenSearch.Index = "documents"
	}
	if c.OpenSearch.ReadinessTimeout <= 0 {
		c.OpenSearch.ReadinessTimeout = 30
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.NLP.TimeoutSec <= 0 {
		c.NLP.TimeoutSec = 10
	}
	if c.Geocode.MinDelayMs <= 0 {
		c.Geocode.MinDelayMs = 1000
	}
	if c.Geocode.MaxRetries <= 0 {
		c.Geocode.MaxRetries = 2
	}
	if c.Geocode.CallTimeoutSec <= 0 {
		c.Geocode.CallTimeoutSec = 5
	}
	if c.Search.K <= 0 {
		c.Search.K = 50
	}
	if c.Search.NumCandidates <= 0 {
		c.Search.NumCandidates = 100
	}
	if c.Search.GeoDistance == "" {
		c.Search.GeoDistance = "50km"
	}
	if c.Search.MaxGeoRefs <= 0 {
		c.Search.MaxGeoRefs = 3
	}
	if c.Search.CollapseField == "" {
		c.Search.CollapseField = "bitstream_uuid"
	}
	if c.Search.DefaultSize <= 0 {
		c.Search.DefaultSize = 10
	}
	if c.Search.MaxSize <= 0 {
		c.Search.MaxSize = 100
	}
	if c.Suggest.DefaultLimit <= 0 {
		c.Suggest.DefaultLimit = 8
	}
	if c.Suggest.MaxLimit <= 0 {
		c.Suggest.MaxLimit = 20
	}
	if c.Ingest.MaxTokens <= 0 {
		c.Ingest.MaxTokens = 450
	}
	if c.Ingest.Overlap <= 0 {
		c.Ingest.Overlap = 50
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 500
	}
	if c.Ingest.Encoding == "" {
		c.Ingest.Encoding = "cl100k_base"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.OpenSearch.Addrs) == 0 {
		return fmt.Errorf("opensearch.addrs is required")
	}
	if c.NLP.BaseURL == "" {
		return fmt.Errorf("nlp.base_url is required")
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache.enabled is true")
	}
	if c.Ingest.Overlap >= c.Ingest.MaxTokens {
		return fmt.Errorf(
			"ingest.overlap must be smaller than ingest.max_tokens, got %d >= %d",
			c.Ingest.Overlap, c.Ingest.MaxTokens,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
