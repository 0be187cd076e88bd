package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points HOME, the user config directory and the Shopify credentials
// at empty test values so commands never touch the real machine.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("SHOPIFY_STORE_NAME", "")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "")
	t.Setenv("STOREKB_KNOWLEDGE_DIR", "")
	return home
}

// writeCorpus creates a project directory with a knowledge_base folder.
func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"knowledge_base/faq.txt":         "Q: How long does shipping take?\nA: Five business days.\nQ: Do you ship abroad?\nA: Yes, to most countries.\n",
		"knowledge_base/notes/refund.md": "# Refund policy\n\nRefunds are accepted within 30 days of delivery.\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// runCmd executes the root command with args and returns combined output.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}
