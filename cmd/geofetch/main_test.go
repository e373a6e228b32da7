package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newArchive serves "<path>" as file content, except for tokens listed in missing.
func newArchive(t *testing.T, missing ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, token := range missing {
			if strings.Contains(r.URL.Path, token) {
				http.NotFound(w, r)
				return
			}
		}
		fmt.Fprint(w, r.URL.Path)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func baseArgs(srv *httptest.Server, out string) []string {
	return []string{
		"-host", srv.URL,
		"-root", "Datasets",
		"-dataset", "ncep.reanalysis.dailyavgs",
		"-category", "surface",
		"-var", "air.sig995.",
		"-suffix", ".nc",
		"-output", out,
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_FetchesAll(t *testing.T) {
	srv := newArchive(t)
	out := t.TempDir()

	code, stdout, stderr := runCLI(t, append(baseArgs(srv, out), "-tokens", "1965,1966")...)
	require.Equal(t, exitOK, code, stderr)

	for _, year := range []string{"1965", "1966"} {
		data, err := os.ReadFile(filepath.Join(out, "air.sig995."+year+".nc"))
		require.NoError(t, err)
		assert.Equal(t, "/Datasets/ncep.reanalysis.dailyavgs/surface/air.sig995."+year+".nc", string(data))
	}
	assert.Contains(t, stdout, "2 item(s): 2 fetched, 0 skipped, 0 failed")
	assert.Contains(t, stdout, "Contents of "+out)
}

func TestRun_PositionalTokens(t *testing.T) {
	srv := newArchive(t)
	out := t.TempDir()

	code, _, stderr := runCLI(t, append(baseArgs(srv, out), "1948-1949", "1965")...)
	require.Equal(t, exitOK, code, stderr)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRun_FailureExitsNonZero(t *testing.T) {
	srv := newArchive(t, "1800")
	out := t.TempDir()

	code, stdout, stderr := runCLI(t, append(baseArgs(srv, out), "-report", "json", "-tokens", "1800,1965")...)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr, "not_found")

	var doc struct {
		Results []struct {
			LocalName string `json:"local_name"`
			Status    string `json:"status"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	require.Len(t, doc.Results, 2)
	assert.Equal(t, "failed", doc.Results[0].Status)
	assert.Equal(t, "fetched", doc.Results[1].Status)

	_, err := os.Stat(filepath.Join(out, "air.sig995.1800.nc"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_DuplicateTokens(t *testing.T) {
	srv := newArchive(t)
	out := t.TempDir()

	code, _, stderr := runCLI(t, append(baseArgs(srv, out), "-tokens", "1965,1965")...)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "duplicate tokens 1965")

	code, _, stderr = runCLI(t, append(baseArgs(srv, out), "-allow-duplicates", "-tokens", "1965,1965")...)
	assert.Equal(t, exitOK, code, stderr)
}

func TestRun_DryRun(t *testing.T) {
	out := t.TempDir()

	code, stdout, _ := runCLI(t, "-preset", "ncep-r1-air-sig995", "-output", out, "-dry-run", "-tokens", "1965,1966")
	require.Equal(t, exitOK, code)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"https://downloads.psl.noaa.gov/Datasets/ncep.reanalysis.dailyavgs/surface/air.sig995.1965.nc -> "+filepath.Join(out, "air.sig995.1965.nc"),
		lines[0])

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_MetricsFile(t *testing.T) {
	srv := newArchive(t)
	out := t.TempDir()
	metricsPath := filepath.Join(t.TempDir(), "geofetch.prom")

	code, _, stderr := runCLI(t, append(baseArgs(srv, out), "-metrics-file", metricsPath, "-report", "csv", "-tokens", "1965")...)
	require.Equal(t, exitOK, code, stderr)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `geofetch_items_total{status="fetched"} 1`)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no tokens", []string{"-preset", "ncep-r1-air-sig995"}},
		{"unknown preset", []string{"-preset", "nope", "-tokens", "1965"}},
		{"bad token", []string{"-tokens", "1965/1966"}},
		{"bad report format", []string{"-report", "xml", "-tokens", "1965"}},
		{"unknown flag", []string{"-bogus"}},
		{"missing dataset", []string{"-dataset", "", "-tokens", "1965"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
		})
	}
}

func TestRun_Interrupted(t *testing.T) {
	srv := newArchive(t)
	out := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, append(baseArgs(srv, out), "-tokens", "1965"), &stdout, &stderr)
	assert.Equal(t, exitInterrupted, code)
	assert.Contains(t, stdout.String(), "cancelled")
}

func TestRun_EnvTokens(t *testing.T) {
	out := t.TempDir()
	t.Setenv("GEOFETCH_TOKENS", "1965-1966, 1967")

	code, stdout, stderr := runCLI(t, "-preset", "ncep-r1-air-sig995", "-output", out, "-dry-run")
	require.Equal(t, exitOK, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	for i, year := range []string{"1965", "1966", "1967"} {
		assert.Equal(t,
			"https://downloads.psl.noaa.gov/Datasets/ncep.reanalysis.dailyavgs/surface/air.sig995."+year+".nc -> "+filepath.Join(out, "air.sig995."+year+".nc"),
			lines[i])
	}
}

func TestRun_ConfigTokens(t *testing.T) {
	out := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "geofetch.yaml")
	content := "preset: ncep-r1-air-sig995\ntokens: [\"1948-1949\", \" 1965 \", \"\"]\n"
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0644))

	code, stdout, stderr := runCLI(t, "-config", cfg, "-output", out, "-dry-run")
	require.Equal(t, exitOK, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[2], filepath.Join(out, "air.sig995.1965.nc")), lines[2])
}

func TestRun_EnvHostWithPath(t *testing.T) {
	out := t.TempDir()
	t.Setenv("GEOFETCH_HOST", "https://downloads.psl.noaa.gov/Datasets")

	code, stdout, stderr := runCLI(t, "-preset", "ncep-r1-air-sig995", "-output", out, "-dry-run", "-tokens", "1965")
	require.Equal(t, exitOK, code, stderr)
	assert.True(t, strings.HasPrefix(stdout,
		"https://downloads.psl.noaa.gov/Datasets/ncep.reanalysis.dailyavgs/surface/air.sig995.1965.nc"), stdout)
}
