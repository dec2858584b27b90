// Package config loads the YAML run configuration and the environment
// settings shared by the CLI and the server.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ti-dashboard/ti-data/internal/source"
	"github.com/ti-dashboard/ti-data/internal/summary"
)

const (
	DefaultSourcePath   = "data/raw_data.xlsx"
	DefaultDocumentPath = "website/public/data/ti_data.json"
)

type Config struct {
	Source SourceConfig `yaml:"source"`
	Output OutputConfig `yaml:"output"`
	Icons  IconsConfig  `yaml:"icons"`
}

// SourceConfig names the workbook (or database) and its three tables.
type SourceConfig struct {
	Path          string `yaml:"path"`
	GamesTable    string `yaml:"games_table"`
	ResultsTable  string `yaml:"results_table"`
	FactionsTable string `yaml:"factions_table"`
}

// OutputConfig holds output paths. Only Document is always written; the rest
// are skipped when empty.
type OutputConfig struct {
	Document     string `yaml:"document"`
	GrainJSON    string `yaml:"grain_json"`
	GrainParquet string `yaml:"grain_parquet"`
	Report       string `yaml:"report"`
	Stats        string `yaml:"stats"`
	Careers      string `yaml:"careers"`
}

type IconsConfig struct {
	BasePath  string            `yaml:"base_path"`
	Overrides map[string]string `yaml:"overrides"`
}

func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Path:          DefaultSourcePath,
			GamesTable:    source.DefaultGamesTable,
			ResultsTable:  source.DefaultResultsTable,
			FactionsTable: source.DefaultFactionsTable,
		},
		Output: OutputConfig{Document: DefaultDocumentPath},
		Icons: IconsConfig{
			BasePath:  summary.DefaultIconBasePath,
			Overrides: summary.DefaultIconOverrides(),
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. Icon overrides in the file are merged into the default table.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}
	if c.Output.Document == "" {
		return fmt.Errorf("output.document is required")
	}
	for short, name := range c.Icons.Overrides {
		if short == "" || name == "" {
			return fmt.Errorf("icons.overrides: empty entry %q -> %q", short, name)
		}
	}
	return nil
}

func (c *Config) SourceConfig() source.Config {
	return source.Config{
		Path:          c.Source.Path,
		GamesTable:    c.Source.GamesTable,
		ResultsTable:  c.Source.ResultsTable,
		FactionsTable: c.Source.FactionsTable,
	}
}

func (c *Config) SummaryOptions() summary.Options {
	opts := summary.Options{
		IconBasePath:  c.Icons.BasePath,
		IconOverrides: make(map[string]string, len(c.Icons.Overrides)),
	}
	if opts.IconBasePath == "" {
		opts.IconBasePath = summary.DefaultIconBasePath
	}
	for k, v := range c.Icons.Overrides {
		opts.IconOverrides[k] = v
	}
	return opts
}
