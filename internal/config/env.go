package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/handiism/geodata-downloader/internal/dataset"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "GEOFETCH_"

// LoadEnvFiles loads variables from the given .env files into the process
// environment. Missing files are ignored; variables that are already set win.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnv overrides settings from GEOFETCH_* environment variables.
//
// Recognised variables:
//
//	GEOFETCH_PRESET, GEOFETCH_HOST, GEOFETCH_ROOT, GEOFETCH_DATASET,
//	GEOFETCH_CATEGORY, GEOFETCH_VARIABLE, GEOFETCH_SUFFIX, GEOFETCH_TOKENS,
//	GEOFETCH_OUTPUT, GEOFETCH_CONCURRENCY, GEOFETCH_RETRIES,
//	GEOFETCH_SKIP_EXISTING, GEOFETCH_TIMEOUT, GEOFETCH_USER_AGENT,
//	GEOFETCH_REPORT, GEOFETCH_METRICS_FILE
func (s *Settings) ApplyEnv() error {
	if v := getEnv("PRESET"); v != "" {
		s.Preset = v
		if err := s.ApplyPreset(); err != nil {
			return err
		}
	}

	setString(&s.Template.Host, "HOST")
	setString(&s.Template.Root, "ROOT")
	setString(&s.Template.Dataset, "DATASET")
	setString(&s.Template.Category, "CATEGORY")
	setString(&s.Template.VariablePrefix, "VARIABLE")
	setString(&s.Template.Suffix, "SUFFIX")
	setString(&s.DownloadsPath, "OUTPUT")
	setString(&s.UserAgent, "USER_AGENT")
	setString(&s.ReportFormat, "REPORT")
	setString(&s.MetricsFile, "METRICS_FILE")

	if v := getEnv("TOKENS"); v != "" {
		tokens, err := dataset.ParseTokens(v)
		if err != nil {
			return fmt.Errorf("%sTOKENS: %w", EnvPrefix, err)
		}
		s.Tokens = tokens
	}

	s.MaxConcurrentDownloads = getEnvInt("CONCURRENCY", s.MaxConcurrentDownloads)
	s.DownloadMaxRetries = getEnvInt("RETRIES", s.DownloadMaxRetries)
	s.SkipExisting = getEnvBool("SKIP_EXISTING", s.SkipExisting)
	s.RequestTimeout = getEnvFloat64("TIMEOUT", s.RequestTimeout)

	return nil
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

func setString(dst *string, key string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}
