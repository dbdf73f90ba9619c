package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const offlineConfig = `
chunker:
  type: word
  chunk_size: 12
  overlap: 3
index:
  dimension: 128
embedder:
  type: hashing
generator:
  type: extractive
log:
  level: debug
  format: json
  file: %LOG%
`

func writeFixtures(t *testing.T) (cfgPath, docPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "config.yaml")
	cfg := strings.ReplaceAll(offlineConfig, "%LOG%", filepath.Join(dir, "docchat.log"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	docPath = filepath.Join(dir, "manual.md")
	doc := "# Pump manual\n\nThe pump must be primed before first use. " +
		"Replace the filter every six months to keep the flow steady. " +
		"Store the unit indoors during freezing weather.\n"
	require.NoError(t, os.WriteFile(docPath, []byte(doc), 0o644))
	return cfgPath, docPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAsk(t *testing.T) {
	cfgPath, docPath := writeFixtures(t)
	out, err := run(t, "--config", cfgPath, "ask", "-k", "2", docPath, "when", "should", "the", "filter", "be", "replaced?")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "From the document:"), out)
	require.Contains(t, out, "Sources:")
	require.Contains(t, out, "  [1] chunk ")
	require.Contains(t, out, "  [2] chunk ")
}

func TestAskMissingFile(t *testing.T) {
	cfgPath, _ := writeFixtures(t)
	_, err := run(t, "--config", cfgPath, "ask", filepath.Join(t.TempDir(), "nope.txt"), "question")
	require.Error(t, err)
}

func TestCheckOffline(t *testing.T) {
	cfgPath, _ := writeFixtures(t)
	out, err := run(t, "--config", cfgPath, "check")
	require.NoError(t, err)
	require.Contains(t, out, "OK    generator extractive")
	require.Contains(t, out, "OK    embedder hashing")
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker:\n  chunk_size: 5\n  overlap: 9\n"), 0o644))
	_, err := run(t, "--config", path, "check")
	require.Error(t, err)
}

func TestPreview(t *testing.T) {
	require.Equal(t, "a b c", preview(" a\n b  c ", 10))
	require.Equal(t, "abcde...", preview("abcdefgh", 5))
}
