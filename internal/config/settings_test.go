package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/handiism/geodata-downloader/internal/dataset"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
	if s.MaxConcurrentDownloads != 1 {
		t.Errorf("default concurrency = %d, want sequential", s.MaxConcurrentDownloads)
	}
	if s.DownloadMaxRetries != 0 {
		t.Errorf("default retries = %d, want 0", s.DownloadMaxRetries)
	}
}

func TestLoad_Missing(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Template != dataset.NCEPReanalysisDailyAverages {
		t.Errorf("missing file should give defaults, got %+v", s.Template)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geofetch.json")
	content := `{
  "template": {"host": "example.org", "dataset": "ds", "category": "cat", "variable_prefix": "v.", "suffix": ".nc"},
  "downloads_path": "/data/{dataset}",
  "max_concurrent_downloads": 3
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Template.Host != "example.org" || s.Template.VariablePrefix != "v." {
		t.Errorf("template not loaded: %+v", s.Template)
	}
	if s.MaxConcurrentDownloads != 3 {
		t.Errorf("MaxConcurrentDownloads = %d, want 3", s.MaxConcurrentDownloads)
	}
	if s.ReportFormat != "text" {
		t.Errorf("unset fields should keep defaults, ReportFormat = %q", s.ReportFormat)
	}
	if got := s.DestDir(); got != filepath.Clean("/data/ds") {
		t.Errorf("DestDir() = %q", got)
	}
}

func TestLoad_YAMLPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geofetch.yaml")
	content := "preset: ncep-r2-mslp\ntokens: [\"1979\", \"1980\"]\ndownload_max_retries: 2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Template != dataset.NCEPReanalysis2Daily {
		t.Errorf("preset not applied: %+v", s.Template)
	}
	if len(s.Tokens) != 2 || s.Tokens[0] != "1979" {
		t.Errorf("Tokens = %v", s.Tokens)
	}
	if s.DownloadMaxRetries != 2 {
		t.Errorf("DownloadMaxRetries = %d", s.DownloadMaxRetries)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, name := range []string{"settings.json", "settings.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			s := DefaultSettings()
			s.Template = dataset.NCEPReanalysisPressureDailyAverages
			s.SkipExisting = true

			if err := s.Save(path); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if loaded.Template != s.Template || !loaded.SkipExisting {
				t.Errorf("round trip mismatch: %+v", loaded)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	s := DefaultSettings()
	s.MaxConcurrentDownloads = 0
	s.ReportFormat = "xml"
	s.Template.Host = ""

	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	for _, want := range []string{"max_concurrent_downloads", "report_format", "host"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GEOFETCH_PRESET", "ncep-r2-mslp")
	t.Setenv("GEOFETCH_CATEGORY", "pressure")
	t.Setenv("GEOFETCH_TOKENS", "1979-1980, ltm")
	t.Setenv("GEOFETCH_CONCURRENCY", "4")
	t.Setenv("GEOFETCH_SKIP_EXISTING", "true")
	t.Setenv("GEOFETCH_RETRIES", "not-a-number")

	s := DefaultSettings()
	if err := s.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if s.Template.Dataset != dataset.NCEPReanalysis2Daily.Dataset {
		t.Errorf("preset not applied, dataset = %q", s.Template.Dataset)
	}
	if s.Template.Category != "pressure" {
		t.Errorf("category override lost, got %q", s.Template.Category)
	}
	if want := []string{"1979", "1980", "ltm"}; !reflect.DeepEqual(s.Tokens, want) {
		t.Errorf("Tokens = %v, want %v", s.Tokens, want)
	}
	if s.MaxConcurrentDownloads != 4 || !s.SkipExisting {
		t.Errorf("numeric/bool overrides not applied: %+v", s)
	}
	if s.DownloadMaxRetries != 0 {
		t.Errorf("invalid value should keep default, got %d", s.DownloadMaxRetries)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GEOFETCH_TEST_ONLY=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEOFETCH_TEST_ONLY", "")
	os.Unsetenv("GEOFETCH_TEST_ONLY")

	if err := LoadEnvFiles(filepath.Join(t.TempDir(), "missing.env"), path); err != nil {
		t.Fatalf("LoadEnvFiles() error = %v", err)
	}
	if got := os.Getenv("GEOFETCH_TEST_ONLY"); got != "from-file" {
		t.Errorf("GEOFETCH_TEST_ONLY = %q", got)
	}
}

func TestApplyEnv_BadTokens(t *testing.T) {
	t.Setenv("GEOFETCH_TOKENS", "1965, 19 66")

	s := DefaultSettings()
	if err := s.ApplyEnv(); err == nil || !strings.Contains(err.Error(), "GEOFETCH_TOKENS") {
		t.Errorf("ApplyEnv() error = %v, want a GEOFETCH_TOKENS error", err)
	}
}

func TestApplyEnv_HostWithPath(t *testing.T) {
	t.Setenv("GEOFETCH_HOST", "https://downloads.psl.noaa.gov/Datasets")

	s := DefaultSettings()
	if err := s.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	want := "https://downloads.psl.noaa.gov/Datasets/ncep.reanalysis.dailyavgs/surface/air.sig995.1965.nc"
	if got := s.Template.URL("1965"); got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestParsedTokens(t *testing.T) {
	s := DefaultSettings()
	s.Tokens = []string{"1948-1950", " 1965 ", "", "1979-01"}

	got, err := s.ParsedTokens()
	if err != nil {
		t.Fatalf("ParsedTokens() error = %v", err)
	}
	want := []string{"1948", "1949", "1950", "1965", "1979-01"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParsedTokens() = %v, want %v", got, want)
	}

	s.Tokens = []string{"../1965"}
	if err := s.Validate(); err == nil || !strings.Contains(err.Error(), "tokens") {
		t.Errorf("Validate() error = %v, want a tokens error", err)
	}
}
