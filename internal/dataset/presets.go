package dataset

import (
	"fmt"
	"sort"

	"github.com/handiism/geodata-downloader/internal/model"
)

// PSLHost serves the NOAA Physical Sciences Laboratory gridded datasets.
const PSLHost = "downloads.psl.noaa.gov"

// Daily mean air temperature at sigma level 0.995 from the NCEP/NCAR Reanalysis 1.
var NCEPReanalysisDailyAverages = model.Template{
	Host:           PSLHost,
	Root:           model.DefaultRoot,
	Dataset:        "ncep.reanalysis.dailyavgs",
	Category:       "surface",
	VariablePrefix: "air.sig995.",
	Suffix:         ".nc",
}

// Daily mean air temperature on pressure levels from the NCEP/NCAR Reanalysis 1.
var NCEPReanalysisPressureDailyAverages = model.Template{
	Host:           PSLHost,
	Root:           model.DefaultRoot,
	Dataset:        "ncep.reanalysis.dailyavgs",
	Category:       "pressure",
	VariablePrefix: "air.",
	Suffix:         ".nc",
}

// Daily mean sea level pressure from the NCEP-DOE Reanalysis 2.
var NCEPReanalysis2Daily = model.Template{
	Host:           PSLHost,
	Root:           model.DefaultRoot,
	Dataset:        "ncep.reanalysis2.dailyavgs",
	Category:       "surface",
	VariablePrefix: "mslp.",
	Suffix:         ".nc",
}

var presets = map[string]model.Template{
	"ncep-r1-air-sig995":   NCEPReanalysisDailyAverages,
	"ncep-r1-air-pressure": NCEPReanalysisPressureDailyAverages,
	"ncep-r2-mslp":         NCEPReanalysis2Daily,
}

// Preset returns the named template.
func Preset(name string) (model.Template, error) {
	t, ok := presets[name]
	if !ok {
		return model.Template{}, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	return t, nil
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
