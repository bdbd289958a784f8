// Package config reads the project file that points the CLI at a schema.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/reoring/typebind"
	"github.com/reoring/typebind/model"
	"github.com/reoring/typebind/partial"
)

// DefaultNames are searched in order by FindConfigFile.
var DefaultNames = []string{"typebind.yml", ".typebind.yml", "typebind.yaml", ".typebind.yaml"}

// Config represents the config file.
type Config struct {
	Model    string          `yaml:"model"`
	Format   string          `yaml:"format,omitempty"`
	Output   string          `yaml:"output,omitempty"`
	MaxDepth int             `yaml:"max_depth,omitempty"`
	Log      Log             `yaml:"log,omitempty"`
	Presets  partial.Presets `yaml:"presets,omitempty"`

	// dir is where the file was found; relative paths resolve against it.
	dir string
}

type Log struct {
	Verbosity int    `yaml:"verbosity,omitempty"`
	File      string `yaml:"file,omitempty"`
}

// LoadConfig loads and validates the config file.
func LoadConfig(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	var c Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(content)))), yaml.DisallowUnknownField())
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	c.dir = filepath.Dir(filename)

	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) check() error {
	if c.Model == "" {
		return errors.New("'model' is required")
	}
	switch c.Format {
	case "", "yaml", "json":
	default:
		return fmt.Errorf("'format' must be yaml or json, got %q", c.Format)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("'max_depth' must not be negative, got %d", c.MaxDepth)
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("'log.verbosity' must not be negative, got %d", c.Log.Verbosity)
	}
	return nil
}

// ModelPath is the schema path resolved against the config file's directory.
func (c *Config) ModelPath() string { return c.resolve(c.Model) }

// OutputPath is the manifest destination, or "" for stdout.
func (c *Config) OutputPath() string {
	if c.Output == "" {
		return ""
	}
	return c.resolve(c.Output)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// LoadModel reads the configured schema document.
func (c *Config) LoadModel() (*model.Model, error) {
	f := model.FormatForPath(c.Model)
	switch c.Format {
	case "yaml":
		f = model.FormatYAML
	case "json":
		f = model.FormatJSON
	}
	data, err := os.ReadFile(c.ModelPath())
	if err != nil {
		return nil, fmt.Errorf("unable to read model: %w", err)
	}
	m, err := model.Parse(data, f)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", c.Model, err)
	}
	return m, nil
}

// ParseOpt turns the limits into decode options.
func (c *Config) ParseOpt() typebind.ParseOpt {
	return typebind.ParseOpt{MaxDepth: c.MaxDepth}
}

// FindConfigFile looks for one of names in dir and then in each parent
// directory. It returns "" when nothing is found.
func FindConfigFile(dir string, names []string) (string, error) {
	if len(names) == 0 {
		names = DefaultNames
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %s: %w", dir, err)
	}
	for {
		for _, n := range names {
			p := filepath.Join(dir, n)
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
