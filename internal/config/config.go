// Package config loads storekb configuration from defaults, YAML files and
// the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Project config file names, in lookup order.
const (
	ProjectConfigFile    = ".storekb.yaml"
	ProjectConfigFileAlt = ".storekb.yml"
)

// Config represents the complete storekb configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Knowledge KnowledgeConfig `yaml:"knowledge" json:"knowledge"`
	Shopify   ShopifyConfig   `yaml:"shopify" json:"shopify"`
	Server    ServerConfig    `yaml:"server" json:"server"`
}

// KnowledgeConfig configures the knowledge-base corpus, chunking and search.
type KnowledgeConfig struct {
	// Dir is the corpus root. Relative paths resolve against the working directory.
	Dir string `yaml:"dir" json:"dir"`

	// Extensions is the file extension allow-list.
	Extensions []string `yaml:"extensions" json:"extensions"`

	ChunkSize    int `yaml:"chunk_size" json:"chunk_size"`       // Max characters per packed chunk
	ChunkOverlap int `yaml:"chunk_overlap" json:"chunk_overlap"` // Characters carried into the next chunk

	DefaultTopK  int `yaml:"default_top_k" json:"default_top_k"`
	MaxTopK      int `yaml:"max_top_k" json:"max_top_k"`
	CacheSize    int `yaml:"cache_size" json:"cache_size"` // Cached result lists, 0 disables
	PreviewChars int `yaml:"preview_chars" json:"preview_chars"`

	Workers     int   `yaml:"workers" json:"workers"`             // Concurrent extractions
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"` // Bytes

	// Hints are appended after the built-in bilingual hint table.
	Hints []Hint `yaml:"hints,omitempty" json:"hints,omitempty"`
}

// Hint is one extra bilingual query hint.
type Hint struct {
	Term      string `yaml:"term" json:"term"`
	Expansion string `yaml:"expansion" json:"expansion"`
}

// ShopifyConfig configures the Shopify Admin API client.
type ShopifyConfig struct {
	StoreName         string        `yaml:"store_name" json:"store_name"`
	AccessToken       string        `yaml:"access_token" json:"-"`
	APIVersion        string        `yaml:"api_version" json:"api_version"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	OrderScanLimit    int           `yaml:"order_scan_limit" json:"order_scan_limit"`
}

// Configured reports whether credentials are present.
func (s ShopifyConfig) Configured() bool {
	return s.StoreName != "" && s.AccessToken != ""
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Knowledge: KnowledgeConfig{
			Dir:          "knowledge_base",
			Extensions:   []string{".txt", ".md", ".markdown", ".docx"},
			ChunkSize:    900,
			ChunkOverlap: 150,
			DefaultTopK:  3,
			MaxTopK:      20,
			CacheSize:    256,
			PreviewChars: 400,
			Workers:      runtime.NumCPU(),
			MaxFileSize:  10 * 1024 * 1024,
		},
		Shopify: ShopifyConfig{
			APIVersion:        "2024-01",
			Timeout:           20 * time.Second,
			RequestsPerSecond: 2,
			MaxRetries:        1,
			OrderScanLimit:    50,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/storekb/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/storekb/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "storekb", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "storekb", "config.yaml")
	}
	return filepath.Join(home, ".config", "storekb", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user configuration file if it exists.
// Returns a nil layer and nil error if the file doesn't exist.
func loadUserConfig() (*fileLayer, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	layer, err := parseYAMLFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return layer, nil
}

// Load loads configuration for the given working directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/storekb/config.yaml)
//  3. Project config (.storekb.yaml in dir)
//  4. Environment variables (STOREKB_*, SHOPIFY_STORE_NAME, SHOPIFY_ACCESS_TOKEN)
//
// A relative knowledge.dir is resolved against dir.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeLayer(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if cfg.Knowledge.Dir != "" && !filepath.IsAbs(cfg.Knowledge.Dir) {
		cfg.Knowledge.Dir = filepath.Join(dir, cfg.Knowledge.Dir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if none.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigFile, ProjectConfigFileAlt} {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// loadFromFile merges .storekb.yaml (or .storekb.yml) from dir, if present.
func (c *Config) loadFromFile(dir string) error {
	path := ProjectConfigPath(dir)
	if path == "" {
		return nil
	}
	return c.loadYAML(path)
}

// fileLayer is one parsed config file. Settings where an explicit 0 is
// meaningful are also captured as pointers so that 0 survives merging.
type fileLayer struct {
	Config
	zeros zeroable
}

type zeroable struct {
	Knowledge struct {
		ChunkOverlap *int `yaml:"chunk_overlap"` // 0 disables overlap
		CacheSize    *int `yaml:"cache_size"`    // 0 disables the result cache
	} `yaml:"knowledge"`
	Shopify struct {
		MaxRetries *int `yaml:"max_retries"` // 0 disables retries
	} `yaml:"shopify"`
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	layer, err := parseYAMLFile(path)
	if err != nil {
		return err
	}
	c.mergeLayer(layer)
	return nil
}

func parseYAMLFile(path string) (*fileLayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var layer fileLayer
	if err := yaml.Unmarshal(data, &layer.Config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &layer.zeros); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &layer, nil
}

// mergeLayer merges a parsed file, honouring explicit zero values.
func (c *Config) mergeLayer(l *fileLayer) {
	c.mergeWith(&l.Config)

	if v := l.zeros.Knowledge.ChunkOverlap; v != nil {
		c.Knowledge.ChunkOverlap = *v
	}
	if v := l.zeros.Knowledge.CacheSize; v != nil {
		c.Knowledge.CacheSize = *v
	}
	if v := l.zeros.Shopify.MaxRetries; v != nil {
		c.Shopify.MaxRetries = *v
	}
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	k, src := &c.Knowledge, other.Knowledge
	if src.Dir != "" {
		k.Dir = src.Dir
	}
	if len(src.Extensions) > 0 {
		k.Extensions = src.Extensions
	}
	if src.ChunkSize != 0 {
		k.ChunkSize = src.ChunkSize
	}
	if src.ChunkOverlap != 0 {
		k.ChunkOverlap = src.ChunkOverlap
	}
	if src.DefaultTopK != 0 {
		k.DefaultTopK = src.DefaultTopK
	}
	if src.MaxTopK != 0 {
		k.MaxTopK = src.MaxTopK
	}
	if src.CacheSize != 0 {
		k.CacheSize = src.CacheSize
	}
	if src.PreviewChars != 0 {
		k.PreviewChars = src.PreviewChars
	}
	if src.Workers != 0 {
		k.Workers = src.Workers
	}
	if src.MaxFileSize != 0 {
		k.MaxFileSize = src.MaxFileSize
	}
	if len(src.Hints) > 0 {
		// Hints accumulate across layers
		k.Hints = append(k.Hints, src.Hints...)
	}

	s, ssrc := &c.Shopify, other.Shopify
	if ssrc.StoreName != "" {
		s.StoreName = ssrc.StoreName
	}
	if ssrc.AccessToken != "" {
		s.AccessToken = ssrc.AccessToken
	}
	if ssrc.APIVersion != "" {
		s.APIVersion = ssrc.APIVersion
	}
	if ssrc.Timeout != 0 {
		s.Timeout = ssrc.Timeout
	}
	if ssrc.RequestsPerSecond != 0 {
		s.RequestsPerSecond = ssrc.RequestsPerSecond
	}
	if ssrc.MaxRetries != 0 {
		s.MaxRetries = ssrc.MaxRetries
	}
	if ssrc.OrderScanLimit != 0 {
		s.OrderScanLimit = ssrc.OrderScanLimit
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies environment variable overrides.
// A set variable wins even when its value is 0.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STOREKB_KNOWLEDGE_DIR"); v != "" {
		c.Knowledge.Dir = v
	}
	if v := os.Getenv("STOREKB_EXTENSIONS"); v != "" {
		var exts []string
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				exts = append(exts, e)
			}
		}
		if len(exts) > 0 {
			c.Knowledge.Extensions = exts
		}
	}
	if n, ok := envInt("STOREKB_CHUNK_SIZE"); ok {
		c.Knowledge.ChunkSize = n
	}
	if n, ok := envInt("STOREKB_CHUNK_OVERLAP"); ok {
		c.Knowledge.ChunkOverlap = n
	}
	if n, ok := envInt("STOREKB_TOP_K"); ok {
		c.Knowledge.DefaultTopK = n
	}
	if n, ok := envInt("STOREKB_CACHE_SIZE"); ok {
		c.Knowledge.CacheSize = n
	}

	// Shopify credentials use the variable names the store admin issues them under.
	if v := os.Getenv("SHOPIFY_STORE_NAME"); v != "" {
		c.Shopify.StoreName = v
	}
	if v := os.Getenv("SHOPIFY_ACCESS_TOKEN"); v != "" {
		c.Shopify.AccessToken = v
	}
	if v := os.Getenv("STOREKB_SHOPIFY_API_VERSION"); v != "" {
		c.Shopify.APIVersion = v
	}
	if v := os.Getenv("STOREKB_SHOPIFY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Shopify.Timeout = d
		}
	}

	if v := os.Getenv("STOREKB_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("STOREKB_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	k := c.Knowledge
	if k.Dir == "" {
		return fmt.Errorf("knowledge.dir must be set")
	}
	if k.ChunkSize <= 0 {
		return fmt.Errorf("knowledge.chunk_size must be positive, got %d", k.ChunkSize)
	}
	if k.ChunkOverlap < 0 || k.ChunkOverlap >= k.ChunkSize {
		return fmt.Errorf("knowledge.chunk_overlap must be in [0, chunk_size), got %d", k.ChunkOverlap)
	}
	if k.DefaultTopK < 1 {
		return fmt.Errorf("knowledge.default_top_k must be at least 1, got %d", k.DefaultTopK)
	}
	if k.MaxTopK < k.DefaultTopK {
		return fmt.Errorf("knowledge.max_top_k (%d) must be >= default_top_k (%d)", k.MaxTopK, k.DefaultTopK)
	}
	if k.CacheSize < 0 {
		return fmt.Errorf("knowledge.cache_size must be non-negative, got %d", k.CacheSize)
	}
	if k.Workers < 0 {
		return fmt.Errorf("knowledge.workers must be non-negative, got %d", k.Workers)
	}
	for i, h := range k.Hints {
		if strings.TrimSpace(h.Term) == "" || strings.TrimSpace(h.Expansion) == "" {
			return fmt.Errorf("knowledge.hints[%d] needs both term and expansion", i)
		}
	}

	s := c.Shopify
	if s.Timeout <= 0 {
		return fmt.Errorf("shopify.timeout must be positive, got %s", s.Timeout)
	}
	if s.RequestsPerSecond <= 0 {
		return fmt.Errorf("shopify.requests_per_second must be positive, got %g", s.RequestsPerSecond)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("shopify.max_retries must be non-negative, got %d", s.MaxRetries)
	}
	if s.OrderScanLimit < 1 || s.OrderScanLimit > 250 {
		return fmt.Errorf("shopify.order_scan_limit must be between 1 and 250, got %d", s.OrderScanLimit)
	}

	if strings.ToLower(c.Server.Transport) != "stdio" {
		return fmt.Errorf("server.transport must be 'stdio', got %s", c.Server.Transport)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file. The access token is
// never written.
func (c *Config) WriteYAML(path string) error {
	out := *c
	out.Shopify.AccessToken = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Redacted returns a copy safe for display, with the access token masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Knowledge.Extensions = append([]string(nil), c.Knowledge.Extensions...)
	out.Knowledge.Hints = append([]Hint(nil), c.Knowledge.Hints...)
	if out.Shopify.AccessToken != "" {
		out.Shopify.AccessToken = "****"
	}
	return &out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
