package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/geodata-downloader/internal/dataset"
	"github.com/handiism/geodata-downloader/internal/model"
	"gopkg.in/yaml.v2"
)

// Report formats understood by the report package.
var reportFormats = []string{"text", "json", "csv"}

// Settings holds all configuration options.
type Settings struct {
	// Dataset naming convention
	Template model.Template `json:"template" yaml:"template"`
	Preset   string         `json:"preset,omitempty" yaml:"preset,omitempty"`
	Tokens   []string       `json:"tokens,omitempty" yaml:"tokens,omitempty"`

	// Download settings
	DownloadsPath             string  `json:"downloads_path" yaml:"downloads_path"`
	MaxConcurrentDownloads    int     `json:"max_concurrent_downloads" yaml:"max_concurrent_downloads"`
	DownloadMaxRetries        int     `json:"download_max_retries" yaml:"download_max_retries"`
	DownloadRetryCooldown     float64 `json:"download_retry_cooldown" yaml:"download_retry_cooldown"`
	DownloadRetryExponent     float64 `json:"download_retry_exponent" yaml:"download_retry_exponent"`
	SkipExisting              bool    `json:"skip_existing" yaml:"skip_existing"`
	AllowedFileSizeDifference float64 `json:"allowed_file_size_difference" yaml:"allowed_file_size_difference"`
	AllowDuplicateTokens      bool    `json:"allow_duplicate_tokens" yaml:"allow_duplicate_tokens"`

	// HTTP settings
	RequestTimeout float64 `json:"request_timeout" yaml:"request_timeout"` // seconds
	UserAgent      string  `json:"user_agent" yaml:"user_agent"`

	// Output settings
	ReportFormat string `json:"report_format" yaml:"report_format"` // text, json, csv
	MetricsFile  string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		Template: dataset.NCEPReanalysisDailyAverages,

		DownloadsPath:             filepath.Join(homeDir, "geodata", "{dataset}", "{category}"),
		MaxConcurrentDownloads:    1,
		DownloadMaxRetries:        0,
		DownloadRetryCooldown:     1.0,
		DownloadRetryExponent:     4.0,
		SkipExisting:              false,
		AllowedFileSizeDifference: 0,
		AllowDuplicateTokens:      false,

		RequestTimeout: 30 * 60,
		UserAgent:      "geodata-downloader",

		ReportFormat: "text",
	}
}

// Load reads settings from a JSON or YAML file, chosen by extension.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := settings.ApplyPreset(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyPreset replaces Template with the named preset when Preset is set.
func (s *Settings) ApplyPreset() error {
	if s.Preset == "" {
		return nil
	}
	t, err := dataset.Preset(s.Preset)
	if err != nil {
		return err
	}
	s.Template = t
	return nil
}

// DestDir returns DownloadsPath with its placeholders resolved against the
// template. Supported placeholders: {host}, {dataset}, {category}.
func (s *Settings) DestDir() string {
	path := s.DownloadsPath
	path = strings.ReplaceAll(path, "{host}", s.Template.Host)
	path = strings.ReplaceAll(path, "{dataset}", s.Template.Dataset)
	path = strings.ReplaceAll(path, "{category}", s.Template.Category)
	return filepath.Clean(path)
}

// ParsedTokens returns Tokens with year ranges expanded, entries trimmed and
// blank entries dropped, as dataset.ParseTokens does for a comma list.
func (s *Settings) ParsedTokens() ([]string, error) {
	return dataset.ParseTokens(strings.Join(s.Tokens, ","))
}

// Timeout returns RequestTimeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.RequestTimeout * float64(time.Second))
}

// Validate checks the settings for values the downloader cannot work with.
func (s *Settings) Validate() error {
	var errs []error
	if err := s.Template.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("template: %w", err))
	}
	if _, err := s.ParsedTokens(); err != nil {
		errs = append(errs, fmt.Errorf("tokens: %w", err))
	}
	if s.DownloadsPath == "" {
		errs = append(errs, errors.New("downloads_path is required"))
	}
	if s.MaxConcurrentDownloads < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_downloads must be at least 1, got %d", s.MaxConcurrentDownloads))
	}
	if s.DownloadMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("download_max_retries must not be negative, got %d", s.DownloadMaxRetries))
	}
	if s.AllowedFileSizeDifference < 0 {
		errs = append(errs, errors.New("allowed_file_size_difference must not be negative"))
	}
	if !validReportFormat(s.ReportFormat) {
		errs = append(errs, fmt.Errorf("report_format must be one of %v, got %q", reportFormats, s.ReportFormat))
	}
	return errors.Join(errs...)
}

func validReportFormat(f string) bool {
	for _, rf := range reportFormats {
		if f == rf {
			return true
		}
	}
	return false
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
