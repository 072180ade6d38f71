// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "donor-match/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429 and gateway errors (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DatasetConfig selects where reference datasets are read from. When
// BaseURL is set the HTTP source is used, otherwise Dir.
type DatasetConfig struct {
	HTTPConfig `yaml:",inline"`

	// Dir holds one <version>.yaml file per nomenclature version.
	Dir string `json:"dir" yaml:"dir"`

	// BaseURL serves <version>.yaml files over HTTP.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// CompileConfig holds settings for dictionary compilation.
type CompileConfig struct {
	// Workers bounds the per-typing worker pool (default runtime.NumCPU()).
	Workers int `json:"workers" yaml:"workers"`
}

// StoreConfig holds settings for the compiled dictionary store.
type StoreConfig struct {
	// Dir is the base directory for the store (contains index/, export/).
	Dir string `json:"dir" yaml:"dir"`

	// Disabled skips persistence; dictionaries are compiled on every run.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`

	// Pretty enables human-readable console output.
	Pretty bool `json:"pretty" yaml:"pretty"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Dataset DatasetConfig `json:"dataset" yaml:"dataset"`
	Compile CompileConfig `json:"compile" yaml:"compile"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Log     LogConfig     `json:"log" yaml:"log"`
}
