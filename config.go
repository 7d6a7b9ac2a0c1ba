package main

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const ConfigVersion = 1

// Config holds the settings scout needs to crawl feeds, fetch pages and
// run the persistent index. It is loaded from a YAML file, in the
// teacher's config-loading idiom (load, then record a sha256 of the
// source file so callers can detect a stale in-memory copy).
type Config struct {
	originalFilepath string
	hashOfConfigFile string

	Version *uint64 `yaml:"version"`

	// Dir is the root directory holding the page/pageset/link/word stores.
	Dir string `yaml:"dir"`

	Fetch struct {
		// Timeout bounds each HTTP attempt of a page fetch; every retry gets
		// its own timeout.
		Timeout time.Duration `yaml:"timeout"`
		// MaxRetries bounds the backoff retry attempts on a transient fetch error.
		MaxRetries uint64 `yaml:"max_retries"`
		UserAgent  string `yaml:"user_agent"`
	} `yaml:"fetch"`

	Crawl struct {
		// Concurrency bounds the number of feed items fetched in parallel.
		Concurrency int `yaml:"concurrency"`
	} `yaml:"crawl"`

	Feeds []string `yaml:"feeds"`
}

// DefaultConfig returns the configuration used when no config file is given.
func DefaultConfig() *Config {
	var c Config
	v := uint64(ConfigVersion)
	c.Version = &v
	c.Dir = "./scout-data"
	c.Fetch.Timeout = 30 * time.Second
	c.Fetch.MaxRetries = 3
	c.Fetch.UserAgent = "scout/1.0 (+https://github.com/nyxsearch/scout)"
	c.Crawl.Concurrency = 4
	return &c
}

// LoadConfig reads a scout config file over the defaults. It does not call
// Validate.
func LoadConfig(configFilepath string) (*Config, error) {
	config := DefaultConfig()
	f, err := os.Open(configFilepath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !isYAMLFile(configFilepath) {
		return nil, fmt.Errorf("config file %q must be YAML", configFilepath)
	}
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("config file %q: %w", configFilepath, err)
	}

	config.originalFilepath = configFilepath
	sum, err := hashFileSha256(configFilepath)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %s", configFilepath, err.Error())
	}
	config.hashOfConfigFile = sum
	return config, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func hashFileSha256(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func (c *Config) ConfigFilepath() string {
	return c.originalFilepath
}

func (c *Config) HashOfConfigFile() string {
	return c.hashOfConfigFile
}

func (c *Config) IsSameHash(other *Config) bool {
	return c.hashOfConfigFile == other.hashOfConfigFile
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version == nil {
		return fmt.Errorf("version must be set")
	}
	if *c.Version != ConfigVersion {
		return fmt.Errorf("version must be %d", ConfigVersion)
	}
	if c.Dir == "" {
		return fmt.Errorf("dir must be set")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if c.Crawl.Concurrency <= 0 {
		return fmt.Errorf("crawl.concurrency must be positive")
	}
	return nil
}
