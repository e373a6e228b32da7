package model

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultRoot is the path segment under which PSL-style geodatabases publish
// their datasets.
const DefaultRoot = "Datasets"

// Template describes the naming convention of one dataset variable.
//
// Template holds the fixed parts of a dataset's URL convention:
//   - Host of the geodatabase (bare hostname or full base URL)
//   - Root path segment under the host (usually "Datasets")
//   - Dataset and Category directories
//   - VariablePrefix and Suffix around the variable time token
//
// A Template is a plain value and is never mutated after construction.
//
// Example:
//
//	t := Template{
//	    Host:           "downloads.psl.noaa.gov",
//	    Root:           "Datasets",
//	    Dataset:        "ncep.reanalysis.dailyavgs",
//	    Category:       "surface",
//	    VariablePrefix: "air.sig995.",
//	    Suffix:         ".nc",
//	}
//	t.URL("1965")       // https://downloads.psl.noaa.gov/Datasets/ncep.reanalysis.dailyavgs/surface/air.sig995.1965.nc
//	t.LocalName("1965") // air.sig995.1965.nc
type Template struct {
	// Host is the geodatabase host. A value without a scheme is served over
	// https. A value that already is a base URL is used as is.
	Host string `json:"host" yaml:"host"`

	// Root is an optional path segment placed between Host and Dataset.
	Root string `json:"root" yaml:"root"`

	// Dataset is the dataset directory, e.g. "ncep.reanalysis.dailyavgs".
	Dataset string `json:"dataset" yaml:"dataset"`

	// Category is the directory inside the dataset, e.g. "surface".
	Category string `json:"category" yaml:"category"`

	// VariablePrefix is the file name part before the token, e.g. "air.sig995.".
	VariablePrefix string `json:"variable_prefix" yaml:"variable_prefix"`

	// Suffix is the file name part after the token, e.g. ".nc".
	Suffix string `json:"suffix" yaml:"suffix"`
}

// Base returns the URL prefix that Dataset is appended to. It always ends
// with a slash.
//
// A Host that carries a path, such as "https://h/Datasets", is already the
// full base and Root is ignored. Otherwise Root is appended.
func (t Template) Base() string {
	base := t.Host
	_, rest, found := strings.Cut(base, "://")
	if !found {
		base, rest = "https://"+base, base
	}
	base = withSlash(base)

	if _, path, ok := strings.Cut(rest, "/"); ok && strings.Trim(path, "/") != "" {
		return base
	}
	if root := strings.Trim(t.Root, "/"); root != "" {
		base += root + "/"
	}

	return base
}

// URL returns the remote resource for token.
func (t Template) URL(token string) string {
	return t.Base() + t.Dataset + "/" + t.Category + "/" + t.LocalName(token)
}

// LocalName returns the file name the resource for token is stored under.
func (t Template) LocalName(token string) string {
	return t.VariablePrefix + token + t.Suffix
}

// Validate reports whether the template can produce usable URLs and
// local file names.
func (t Template) Validate() error {
	var errs []error
	if t.Host == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if t.Dataset == "" {
		errs = append(errs, errors.New("dataset is required"))
	}
	if t.VariablePrefix == "" && t.Suffix == "" {
		errs = append(errs, errors.New("variable prefix or suffix is required"))
	}
	if strings.ContainsAny(t.VariablePrefix, `/\`) {
		errs = append(errs, fmt.Errorf("variable prefix %q contains a path separator", t.VariablePrefix))
	}
	if strings.ContainsAny(t.Suffix, `/\`) {
		errs = append(errs, fmt.Errorf("suffix %q contains a path separator", t.Suffix))
	}
	return errors.Join(errs...)
}

// String returns the template with a placeholder for the token.
func (t Template) String() string {
	return t.URL("{token}")
}

func withSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
