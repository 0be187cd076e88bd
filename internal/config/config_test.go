package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config lookup at an empty temp dir and clears
// every environment override.
func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	for _, name := range []string{
		"STOREKB_KNOWLEDGE_DIR", "STOREKB_EXTENSIONS", "STOREKB_CHUNK_SIZE",
		"STOREKB_CHUNK_OVERLAP", "STOREKB_TOP_K", "STOREKB_CACHE_SIZE",
		"SHOPIFY_STORE_NAME", "SHOPIFY_ACCESS_TOKEN", "STOREKB_SHOPIFY_API_VERSION",
		"STOREKB_SHOPIFY_TIMEOUT", "STOREKB_LOG_LEVEL", "STOREKB_TRANSPORT",
	} {
		t.Setenv(name, "")
	}
	return xdg
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// =============================================================================
// Defaults
// =============================================================================

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.Version)

	assert.Equal(t, "knowledge_base", cfg.Knowledge.Dir)
	assert.Equal(t, []string{".txt", ".md", ".markdown", ".docx"}, cfg.Knowledge.Extensions)
	assert.Equal(t, 900, cfg.Knowledge.ChunkSize)
	assert.Equal(t, 150, cfg.Knowledge.ChunkOverlap)
	assert.Equal(t, 3, cfg.Knowledge.DefaultTopK)
	assert.Equal(t, 20, cfg.Knowledge.MaxTopK)
	assert.Equal(t, 256, cfg.Knowledge.CacheSize)
	assert.Equal(t, 400, cfg.Knowledge.PreviewChars)
	assert.Equal(t, runtime.NumCPU(), cfg.Knowledge.Workers)
	assert.Equal(t, int64(10*1024*1024), cfg.Knowledge.MaxFileSize)
	assert.Empty(t, cfg.Knowledge.Hints)

	assert.Equal(t, "2024-01", cfg.Shopify.APIVersion)
	assert.Equal(t, 20*time.Second, cfg.Shopify.Timeout)
	assert.Equal(t, 2.0, cfg.Shopify.RequestsPerSecond)
	assert.Equal(t, 1, cfg.Shopify.MaxRetries)
	assert.Equal(t, 50, cfg.Shopify.OrderScanLimit)
	assert.False(t, cfg.Shopify.Configured())

	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, "info", cfg.Server.LogLevel)

	assert.NoError(t, cfg.Validate())
}

func TestShopifyConfig_Configured(t *testing.T) {
	assert.False(t, ShopifyConfig{StoreName: "acme"}.Configured())
	assert.False(t, ShopifyConfig{AccessToken: "shpat"}.Configured())
	assert.True(t, ShopifyConfig{StoreName: "acme", AccessToken: "shpat"}.Configured())
}

// =============================================================================
// File Loading
// =============================================================================

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	// Given: no user or project config
	isolate(t)
	dir := t.TempDir()

	// When: loading configuration
	cfg, err := Load(dir)

	// Then: defaults apply and the corpus dir resolves against dir
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "knowledge_base"), cfg.Knowledge.Dir)
	assert.Equal(t, 900, cfg.Knowledge.ChunkSize)
}

func TestLoad_YamlFile_OverridesDefaults(t *testing.T) {
	// Given: a project config with overrides
	isolate(t)
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".storekb.yaml"), `
version: 1
knowledge:
  dir: docs
  extensions: [".md"]
  chunk_size: 500
  chunk_overlap: 50
  default_top_k: 5
  hints:
    - term: 保修
      expansion: warranty
shopify:
  store_name: acme
  timeout: 5s
  order_scan_limit: 100
server:
  log_level: debug
`)

	// When: loading configuration
	cfg, err := Load(dir)

	// Then: every override is applied
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "docs"), cfg.Knowledge.Dir)
	assert.Equal(t, []string{".md"}, cfg.Knowledge.Extensions)
	assert.Equal(t, 500, cfg.Knowledge.ChunkSize)
	assert.Equal(t, 50, cfg.Knowledge.ChunkOverlap)
	assert.Equal(t, 5, cfg.Knowledge.DefaultTopK)
	assert.Equal(t, []Hint{{Term: "保修", Expansion: "warranty"}}, cfg.Knowledge.Hints)
	assert.Equal(t, "acme", cfg.Shopify.StoreName)
	assert.Equal(t, 5*time.Second, cfg.Shopify.Timeout)
	assert.Equal(t, 100, cfg.Shopify.OrderScanLimit)
	assert.Equal(t, "debug", cfg.Server.LogLevel)

	// Unset fields keep their defaults
	assert.Equal(t, 20, cfg.Knowledge.MaxTopK)
	assert.Equal(t, "2024-01", cfg.Shopify.APIVersion)
}

func TestLoad_ShopifySection_MergesEveryField(t *testing.T) {
	// Given: a project config that sets the whole shopify section
	isolate(t)
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".storekb.yaml"), `
shopify:
  store_name: acme.myshopify.com
  access_token: shpat_secret
  api_version: "2024-04"
  timeout: 7s
  requests_per_second: 4
  max_retries: 3
  order_scan_limit: 80
`)

	// When: loading configuration
	cfg, err := Load(dir)

	// Then: every shopify field comes from the file
	require.NoError(t, err)
	assert.Equal(t, ShopifyConfig{
		StoreName:         "acme.myshopify.com",
		AccessToken:       "shpat_secret",
		APIVersion:        "2024-04",
		Timeout:           7 * time.Second,
		RequestsPerSecond: 4,
		MaxRetries:        3,
		OrderScanLimit:    80,
	}, cfg.Shopify)
	assert.True(t, cfg.Shopify.Configured())
}

func TestLoad_ExplicitZeros_SurviveMerge(t *testing.T) {
	// Given: a project config setting zero where zero means "off"
	isolate(t)
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".storekb.yaml"), `
knowledge:
  chunk_overlap: 0
  cache_size: 0
shopify:
  max_retries: 0
`)

	// When: loading configuration
	cfg, err := Load(dir)

	// Then: the zeros replace the defaults
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Knowledge.ChunkOverlap)
	assert.Equal(t, 0, cfg.Knowledge.CacheSize)
	assert.Equal(t, 0, cfg.Shopify.MaxRetries)
}

func TestLoad_ExplicitZeroInUserConfig_OmittedInProject(t *testing.T) {
	// Given: the user config disables overlap and the project file is silent on it
	isolate(t)
	dir := t.TempDir()
	writeConfig(t, GetUserConfigPath(), "knowledge:\n  chunk_overlap: 0\n")
	writeConfig(t, filepath.Join(dir, ".storekb.yaml"), "knowledge:\n  chunk_size: 600\n")

	// When: loading configuration
	cfg, err := Load(dir)

	// Then: the user zero is kept and omitted keys keep defaults
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Knowledge.ChunkOverlap)
	assert.Equal(t, 600, cfg.Knowledge.ChunkSize)
	assert.Equal(t, 256, cfg.Knowledge.CacheSize)
	assert.Equal(t, 1, cfg.Shopify.MaxRetries)
}

func TestLoad_YmlExtension_IsRecognized(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".storekb.yml"), "knowledge:\n  chunk_size: 700\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 700, cfg.Knowledge.ChunkSize)
}

func TestLoad_YamlPreferredOverYml(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".storekb.yaml"), "knowledge:\n  chunk_size: 700\n")
	writeConfig(t, filepath.Join(dir, ".storekb.yml"), "knowledge:\n  chunk_size: 800\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 700, cfg.Knowledge.ChunkSize)
	assert.Equal(t, filepath.Join(dir, ".storekb.yaml"), ProjectConfigPath(dir))
}

func TestLoad_AbsoluteKnowledgeDir_IsKept(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	corpus := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".storekb.yaml"), "knowledge:\n  dir: "+corpus+"\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, corpus, cfg.Knowledge.Dir)
}

func TestLoad_InvalidYaml_ReturnsError(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".storekb.yaml"), "knowledge: [unclosed\n")

	_, err := Load(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_InvalidFieldType_ReturnsError(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, ".storekb.yaml"), "knowledge:\n  chunk_size: lots\n")

	_, err := Load(dir)

	assert.Error(t, err)
}

func TestLoad_InvalidValues_FailValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"overlap not below size", "knowledge:\n  chunk_size: 100\n  chunk_overlap: 100\n", "chunk_overlap"},
		{"negative chunk size", "knowledge:\n  chunk_size: -1\n", "chunk_size"},
		{"max below default top k", "knowledge:\n  default_top_k: 10\n  max_top_k: 5\n", "max_top_k"},
		{"negative cache", "knowledge:\n  cache_size: -3\n", "cache_size"},
		{"incomplete hint", "knowledge:\n  hints:\n    - term: 保修\n", "hints[0]"},
		{"scan limit too large", "shopify:\n  order_scan_limit: 500\n", "order_scan_limit"},
		{"bad log level", "server:\n  log_level: verbose\n", "log_level"},
		{"bad transport", "server:\n  transport: sse\n", "transport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()
			writeConfig(t, filepath.Join(dir, ".storekb.yaml"), tt.content)

			_, err := Load(dir)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// =============================================================================
// Environment Overrides
// =============================================================================

func TestLoad_EnvVarOverrides(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("STOREKB_KNOWLEDGE_DIR", "kb")
	t.Setenv("STOREKB_EXTENSIONS", ".txt, .md ,")
	t.Setenv("STOREKB_CHUNK_SIZE", "600")
	t.Setenv("STOREKB_TOP_K", "4")
	t.Setenv("STOREKB_CACHE_SIZE", "0")
	t.Setenv("SHOPIFY_STORE_NAME", "acme")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_secret")
	t.Setenv("STOREKB_SHOPIFY_TIMEOUT", "3s")
	t.Setenv("STOREKB_LOG_LEVEL", "warn")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kb"), cfg.Knowledge.Dir)
	assert.Equal(t, []string{".txt", ".md"}, cfg.Knowledge.Extensions)
	assert.Equal(t, 600, cfg.Knowledge.ChunkSize)
	assert.Equal(t, 4, cfg.Knowledge.DefaultTopK)
	assert.Equal(t, 0, cfg.Knowledge.CacheSize, "explicit zero from env disables the cache")
	assert.True(t, cfg.Shopify.Configured())
	assert.Equal(t, 3*time.Second, cfg.Shopify.Timeout)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
}

func TestLoad_EnvVarUnparseable_IsIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("STOREKB_CHUNK_SIZE", "big")
	t.Setenv("STOREKB_SHOPIFY_TIMEOUT", "soon")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 900, cfg.Knowledge.ChunkSize)
	assert.Equal(t, 20*time.Second, cfg.Shopify.Timeout)
}

// =============================================================================
// User Config Layering
// =============================================================================

func TestGetUserConfigPath_RespectsXDGConfigHome(t *testing.T) {
	xdg := isolate(t)

	assert.Equal(t, filepath.Join(xdg, "storekb", "config.yaml"), GetUserConfigPath())
	assert.Equal(t, filepath.Join(xdg, "storekb"), GetUserConfigDir())
}

func TestGetUserConfigPath_DefaultsToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "storekb", "config.yaml"), GetUserConfigPath())
}

func TestUserConfigExists(t *testing.T) {
	isolate(t)
	assert.False(t, UserConfigExists())

	writeConfig(t, GetUserConfigPath(), "version: 1\n")
	assert.True(t, UserConfigExists())
}

func TestLoad_LayerPrecedence(t *testing.T) {
	// Given: user, project and env layers all setting overlapping fields
	isolate(t)
	dir := t.TempDir()
	writeConfig(t, GetUserConfigPath(), `
knowledge:
  chunk_size: 1000
  default_top_k: 4
  hints:
    - term: 发票
      expansion: invoice
shopify:
  store_name: user-store
  access_token: user-token
`)
	writeConfig(t, filepath.Join(dir, ".storekb.yaml"), `
knowledge:
  chunk_size: 1100
  hints:
    - term: 保修
      expansion: warranty
shopify:
  store_name: project-store
`)
	t.Setenv("SHOPIFY_STORE_NAME", "env-store")

	// When: loading configuration
	cfg, err := Load(dir)

	// Then: later layers win field by field and hints accumulate
	require.NoError(t, err)
	assert.Equal(t, 1100, cfg.Knowledge.ChunkSize)
	assert.Equal(t, 4, cfg.Knowledge.DefaultTopK)
	assert.Equal(t, "env-store", cfg.Shopify.StoreName)
	assert.Equal(t, "user-token", cfg.Shopify.AccessToken)
	assert.Equal(t, []Hint{
		{Term: "发票", Expansion: "invoice"},
		{Term: "保修", Expansion: "warranty"},
	}, cfg.Knowledge.Hints)
}

func TestLoad_InvalidUserConfig_ReturnsError(t *testing.T) {
	isolate(t)
	writeConfig(t, GetUserConfigPath(), "knowledge: [broken\n")

	_, err := Load(t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user config")
}

// =============================================================================
// Writing
// =============================================================================

func TestWriteYAML_OmitsAccessToken(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Knowledge.ChunkSize = 640
	cfg.Shopify.StoreName = "acme"
	cfg.Shopify.AccessToken = "shpat_secret"

	path := filepath.Join(dir, ".storekb.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "shpat_secret")
	assert.Equal(t, "shpat_secret", cfg.Shopify.AccessToken, "receiver is not modified")

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 640, loaded.Knowledge.ChunkSize)
	assert.Equal(t, "acme", loaded.Shopify.StoreName)
	assert.Empty(t, loaded.Shopify.AccessToken)
}

func TestRedacted_MasksToken(t *testing.T) {
	cfg := NewConfig()
	cfg.Shopify.AccessToken = "shpat_secret"

	red := cfg.Redacted()

	assert.Equal(t, "****", red.Shopify.AccessToken)
	assert.Equal(t, "shpat_secret", cfg.Shopify.AccessToken)

	red.Knowledge.Extensions[0] = ".changed"
	assert.Equal(t, ".txt", cfg.Knowledge.Extensions[0])
}
