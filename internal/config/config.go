// Package config provides configuration management for the most-viewed pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidTopN           = errors.New("fetch.top_n must be non-negative")
	ErrMissingAPIURL         = errors.New("wikipedia.api_url is required")
	ErrMissingArticleBaseURL = errors.New("wikipedia.article_base_url is required")
	ErrInvalidTimeout        = errors.New("wikipedia.timeout_sec must be non-negative")
	ErrMissingStorePath      = errors.New("store.path is required")
	ErrInvalidMaxBody        = errors.New("content.max_body_kb must be at least 1")
	ErrInvalidContentPolicy  = errors.New("enrichment.on_content_error must be 'skip' or 'abort'")
	ErrInvalidTableHeight    = errors.New("report.table_height must be at least 1")
	ErrInvalidColor          = errors.New("report colors must be #rrggbb hex values")
	ErrInvalidLogLevel       = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Content failure policies.
const (
	PolicySkip  = "skip"
	PolicyAbort = "abort"
)

// Defaults used when a value is missing from the file and the environment.
const (
	DefaultAPIURL         = "https://en.wikipedia.org/w/api.php"
	DefaultArticleBaseURL = "https://en.wikipedia.org/wiki/"
	DefaultUserAgent      = "mostviewed/1.0 (https://github.com/mostviewed/mostviewed)"
	DefaultStorePath      = "wikipedia_articles.db"
	DefaultTopN           = 20
	DefaultTableHeight    = 730
	DefaultReportOutput   = "mostviewed.html"
	DefaultServerAddr     = ":8501"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Config represents the complete pipeline configuration.
type Config struct {
	Wikipedia  WikipediaConfig  `yaml:"wikipedia"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Store      StoreConfig      `yaml:"store"`
	Content    ContentConfig    `yaml:"content"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Report     ReportConfig     `yaml:"report"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WikipediaConfig describes the remote endpoints.
type WikipediaConfig struct {
	APIURL         string `yaml:"api_url" env:"MOSTVIEWED_API_URL"`
	ArticleBaseURL string `yaml:"article_base_url" env:"MOSTVIEWED_ARTICLE_BASE_URL"`
	UserAgent      string `yaml:"user_agent" env:"MOSTVIEWED_USER_AGENT"`
	TimeoutSec     int    `yaml:"timeout_sec" env:"MOSTVIEWED_TIMEOUT_SEC"`
}

// FetchConfig controls the ranking request.
type FetchConfig struct {
	ReservedTitles    []string `yaml:"reserved_titles" env:"MOSTVIEWED_RESERVED_TITLES"`
	SearchPlaceholder string   `yaml:"search_placeholder"`
	SearchTitle       string   `yaml:"search_title"`
	TopN              int      `yaml:"top_n" env:"MOSTVIEWED_TOP_N"`
}

// StoreConfig locates the SQLite file.
type StoreConfig struct {
	Path string `yaml:"path" env:"MOSTVIEWED_STORE_PATH"`
}

// ContentConfig controls page retrieval and conversion.
type ContentConfig struct {
	MaxBodyKb    int  `yaml:"max_body_kb" env:"MOSTVIEWED_MAX_BODY_KB"`
	Readability  bool `yaml:"readability" env:"MOSTVIEWED_READABILITY"`
	FormatTables bool `yaml:"format_tables"`
}

// EnrichmentConfig decides what a failed page conversion does to the batch.
type EnrichmentConfig struct {
	OnContentError string `yaml:"on_content_error" env:"MOSTVIEWED_ON_CONTENT_ERROR"`
}

// ReportConfig controls the rendered display.
type ReportConfig struct {
	Output      string `yaml:"output" env:"MOSTVIEWED_REPORT_OUTPUT"`
	Title       string `yaml:"title"`
	ColorLow    string `yaml:"color_low"`
	ColorHigh   string `yaml:"color_high"`
	TableHeight int    `yaml:"table_height"`
	BarWidth    int    `yaml:"bar_width"`
}

// ServerConfig configures the display server.
type ServerConfig struct {
	Addr  string `yaml:"addr" env:"MOSTVIEWED_SERVER_ADDR"`
	Debug bool   `yaml:"debug" env:"MOSTVIEWED_SERVER_DEBUG"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level" env:"MOSTVIEWED_LOG_LEVEL"`
}

// Default returns a configuration populated with every default value.
func Default() *Config {
	return &Config{
		Wikipedia: WikipediaConfig{
			APIURL:         DefaultAPIURL,
			ArticleBaseURL: DefaultArticleBaseURL,
			UserAgent:      DefaultUserAgent,
			TimeoutSec:     30,
		},
		Fetch: FetchConfig{
			TopN:              DefaultTopN,
			ReservedTitles:    []string{"Main Page", "Search"},
			SearchPlaceholder: "Special:Search",
			SearchTitle:       "Search",
		},
		Store: StoreConfig{
			Path: DefaultStorePath,
		},
		Content: ContentConfig{
			MaxBodyKb:    32768,
			Readability:  false,
			FormatTables: true,
		},
		Enrichment: EnrichmentConfig{
			OnContentError: PolicySkip,
		},
		Report: ReportConfig{
			Output:      DefaultReportOutput,
			ColorLow:    "#9ecae1",
			ColorHigh:   "#08306b",
			TableHeight: DefaultTableHeight,
			BarWidth:    40,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults and
// applies environment overrides. An empty path skips the file.
func LoadConfig(filepath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := Default()

	if filepath != "" {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Wikipedia.APIURL) == "" {
		return ErrMissingAPIURL
	}

	if strings.TrimSpace(c.Wikipedia.ArticleBaseURL) == "" {
		return ErrMissingArticleBaseURL
	}

	if c.Wikipedia.TimeoutSec < 0 {
		return ErrInvalidTimeout
	}

	if c.Fetch.TopN < 0 {
		return ErrInvalidTopN
	}

	if strings.TrimSpace(c.Store.Path) == "" {
		return ErrMissingStorePath
	}

	if c.Content.MaxBodyKb < 1 {
		return ErrInvalidMaxBody
	}

	if c.Enrichment.OnContentError != PolicySkip && c.Enrichment.OnContentError != PolicyAbort {
		return ErrInvalidContentPolicy
	}

	if c.Report.TableHeight < 1 {
		return ErrInvalidTableHeight
	}

	for _, color := range []string{c.Report.ColorLow, c.Report.ColorHigh} {
		if !hexColor.MatchString(color) {
			return fmt.Errorf("%w: %q", ErrInvalidColor, color)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// GetTimeout returns the HTTP timeout. Zero leaves the transport default.
func (w *WikipediaConfig) GetTimeout() time.Duration {
	return time.Duration(w.TimeoutSec) * time.Second
}

// AbortOnContentError reports whether a failed conversion stops the enrichment loop.
func (e *EnrichmentConfig) AbortOnContentError() bool {
	return e.OnContentError == PolicyAbort
}

// PageTitle returns the display title, derived from top_n when not configured.
func (c *Config) PageTitle() string {
	if c.Report.Title != "" {
		return c.Report.Title
	}

	return fmt.Sprintf("Top %d most viewed articles in Wikipedia", c.Fetch.TopN)
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{API: %s, TopN: %d, Store: %s, OnContentError: %s}",
		c.Wikipedia.APIURL,
		c.Fetch.TopN,
		c.Store.Path,
		c.Enrichment.OnContentError,
	)
}
