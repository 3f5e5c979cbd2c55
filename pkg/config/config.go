package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-islands/pkg/loader"
)

const (
	// DefaultFile is the project configuration file name.
	DefaultFile = "islands.yaml"
	// DefaultBaseURL is where logical package paths are served from.
	DefaultBaseURL = "/_snowpack/pkg/"
	// DefaultFallback names the adapter used for unclaimed custom elements.
	DefaultFallback = "html"
)

// Config is the project configuration a session is built from.
type Config struct {
	// Renderers are loaded in order; order is resolution priority.
	Renderers []loader.Reference `json:"renderers" yaml:"renderers"`
	// Fallback renders custom elements nothing else claims. Set to null to
	// disable it.
	Fallback    *loader.Reference `json:"fallback" yaml:"fallback"`
	Packages    Packages          `json:"packages" yaml:"packages"`
	Hydrate     Hydrate           `json:"hydrate" yaml:"hydrate"`
	Concurrency int               `json:"concurrency" yaml:"concurrency,omitempty"`

	// Dir is the directory the file was loaded from. Relative renderer paths
	// resolve against it.
	Dir string `json:"-" yaml:"-"`
}

// Packages controls logical package path translation.
type Packages struct {
	BaseURL string            `json:"base_url" yaml:"base_url,omitempty"`
	Aliases map[string]string `json:"aliases" yaml:"aliases,omitempty"`
}

// Hydrate configures the hydration bootstrap.
type Hydrate struct {
	SetupPrefix string `json:"setup_prefix" yaml:"setup_prefix,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Fallback: &loader.Reference{Name: DefaultFallback},
		Packages: Packages{BaseURL: DefaultBaseURL},
	}
}

// Load reads and parses the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// LoadFS reads and parses the configuration at path inside fsys. A missing
// file yields Default.
func LoadFS(fsys fs.FS, path string) (*Config, error) {
	if fsys == nil {
		return nil, errors.New("config: filesystem is required")
	}
	if path == "" {
		path = DefaultFile
	}
	data, err := fs.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes JSON or YAML data over Default and validates the result.
// source is only used in error messages.
func Parse(data []byte, source string) (*Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("config: file %s is empty", source)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if yamlErr := yaml.Unmarshal(data, cfg); yamlErr != nil {
			return nil, fmt.Errorf("config: parse %s: %w", source, yamlErr)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", source, err)
	}
	return cfg, nil
}

// Validate checks renderer references and numeric limits.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("configuration is nil")
	}
	seen := make(map[string]struct{}, len(c.Renderers))
	for i, ref := range c.Renderers {
		name := strings.TrimSpace(ref.Name)
		if name == "" {
			return fmt.Errorf("renderers[%d]: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("renderers[%d]: duplicate renderer %q", i, name)
		}
		seen[name] = struct{}{}
	}
	if c.Fallback != nil && strings.TrimSpace(c.Fallback.Name) == "" {
		return errors.New("fallback: name is required")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	for alias, target := range c.Packages.Aliases {
		if strings.TrimSpace(alias) == "" || strings.TrimSpace(target) == "" {
			return fmt.Errorf("packages.aliases: %q -> %q must both be set", alias, target)
		}
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return data, nil
}
