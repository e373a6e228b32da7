package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func pslTemplate() Template {
	return Template{
		Host:           "downloads.psl.noaa.gov",
		Root:           DefaultRoot,
		Dataset:        "ncep.reanalysis.dailyavgs",
		Category:       "surface",
		VariablePrefix: "air.sig995.",
		Suffix:         ".nc",
	}
}

func TestTemplate_URL(t *testing.T) {
	tmpl := pslTemplate()

	want := "https://downloads.psl.noaa.gov/Datasets/ncep.reanalysis.dailyavgs/surface/air.sig995.1965.nc"
	if got := tmpl.URL("1965"); got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestTemplate_LocalName(t *testing.T) {
	tmpl := pslTemplate()

	if got := tmpl.LocalName("1966"); got != "air.sig995.1966.nc" {
		t.Errorf("LocalName() = %q, want %q", got, "air.sig995.1966.nc")
	}
}

func TestTemplate_Base(t *testing.T) {
	tests := []struct {
		name string
		host string
		root string
		want string
	}{
		{"bare host with root", "downloads.psl.noaa.gov", "Datasets", "https://downloads.psl.noaa.gov/Datasets/"},
		{"bare host without root", "example.org", "", "https://example.org/"},
		{"full base url", "https://downloads.psl.noaa.gov/Datasets/", "", "https://downloads.psl.noaa.gov/Datasets/"},
		{"http scheme kept", "http://127.0.0.1:8080", "data", "http://127.0.0.1:8080/data/"},
		{"root slashes trimmed", "example.org", "/Datasets/", "https://example.org/Datasets/"},
		{"host path wins over root", "https://downloads.psl.noaa.gov/Datasets", "Datasets", "https://downloads.psl.noaa.gov/Datasets/"},
		{"bare host with path", "downloads.psl.noaa.gov/Datasets/", "Datasets", "https://downloads.psl.noaa.gov/Datasets/"},
		{"trailing slash only", "http://127.0.0.1:8080/", "data", "http://127.0.0.1:8080/data/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := Template{Host: tt.host, Root: tt.root}
			if got := tmpl.Base(); got != tt.want {
				t.Errorf("Base() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTemplate_Validate(t *testing.T) {
	if err := pslTemplate().Validate(); err != nil {
		t.Fatalf("Validate() on complete template = %v", err)
	}

	tmpl := pslTemplate()
	tmpl.Host = ""
	tmpl.VariablePrefix = "../air."
	err := tmpl.Validate()
	if err == nil {
		t.Fatal("Validate() should fail without host and with a separator in the prefix")
	}
	if !strings.Contains(err.Error(), "host is required") {
		t.Errorf("error %q should mention the missing host", err)
	}
	if !strings.Contains(err.Error(), "path separator") {
		t.Errorf("error %q should mention the path separator", err)
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusPending, "pending"},
		{StatusFetched, "fetched"},
		{StatusFailed, "failed"},
		{StatusSkipped, "skipped"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}

	if StatusPending.Terminal() {
		t.Error("pending should not be terminal")
	}
}

func TestResult_Transitions(t *testing.T) {
	item := Item{URL: "https://example.org/a.nc", LocalName: "a.nc", Path: "/data/a.nc"}

	ok := NewResult(item)
	if ok.Status != StatusPending {
		t.Fatalf("new result status = %v, want pending", ok.Status)
	}
	ok.Fetched(42)
	if !ok.Success || ok.Status != StatusFetched || ok.Bytes != 42 {
		t.Errorf("Fetched() result = %+v", ok)
	}

	bad := NewResult(item)
	bad.Failed(KindNotFound, errors.New("HTTP 404"))
	if bad.Success || bad.Status != StatusFailed || bad.Kind != KindNotFound || bad.Error != "HTTP 404" {
		t.Errorf("Failed() result = %+v", bad)
	}
}

func TestResult_JSON(t *testing.T) {
	r := NewResult(Item{URL: "u", LocalName: "n"})
	r.Failed(KindLocalWriteFailure, errors.New("disk full"))

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"status":"failed"`) || !strings.Contains(s, `"kind":"local_write_failure"`) {
		t.Errorf("unexpected JSON %s", s)
	}
}
