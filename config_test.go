package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: 1
dir: ./data
fetch:
  timeout: 10s
  max_retries: 2
  user_agent: test-agent
crawl:
  concurrency: 8
feeds:
  - https://example.com/feed.xml
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "./data", cfg.Dir)
	require.Equal(t, uint64(2), cfg.Fetch.MaxRetries)
	require.Equal(t, 8, cfg.Crawl.Concurrency)
	require.Equal(t, []string{"https://example.com/feed.xml"}, cfg.Feeds)
}

func TestLoadConfigRejectsNonYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scout.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestValidateRejectsBadVersion(t *testing.T) {
	cfg := DefaultConfig()
	v := uint64(99)
	cfg.Version = &v
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dir = ""
	require.Error(t, cfg.Validate())
}
