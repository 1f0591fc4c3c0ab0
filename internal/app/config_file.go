package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested sections
// map naturally to flags and env vars.
type FileConfig struct {
	Title    string `yaml:"title"`
	Language string `yaml:"language"`

	Output struct {
		Path string `yaml:"path"`
		PDF  string `yaml:"pdf"`
	} `yaml:"output"`

	API struct {
		URL     string        `yaml:"url"`
		UA      string        `yaml:"ua"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"api"`

	DB struct {
		Path  string `yaml:"path"`
		Table string `yaml:"table"`
		Init  bool   `yaml:"init"`
	} `yaml:"db"`

	Verbose bool `yaml:"verbose"`
}

// LoadFileConfig reads and parses a YAML config file.
func LoadFileConfig(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// MergeFileConfig fills unset cfg fields from fc. Values already present in
// cfg (from flags) take precedence.
func MergeFileConfig(cfg *Config, fc *FileConfig) {
	if cfg == nil || fc == nil {
		return
	}
	if cfg.Title == "" {
		cfg.Title = fc.Title
	}
	if cfg.Language == "" {
		cfg.Language = fc.Language
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = fc.Output.Path
	}
	if cfg.PDFPath == "" {
		cfg.PDFPath = fc.Output.PDF
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = fc.API.URL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fc.API.UA
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = fc.API.Timeout
	}
	if cfg.DBPath == "" {
		cfg.DBPath = fc.DB.Path
	}
	if cfg.DBTable == "" {
		cfg.DBTable = fc.DB.Table
	}
	if !cfg.DBInit {
		cfg.DBInit = fc.DB.Init
	}
	if !cfg.Verbose {
		cfg.Verbose = fc.Verbose
	}
}
