// Package dataset derives the remote resources and local artifacts of a
// dataset from its naming convention.
//
// # Building Paths
//
//	urls := dataset.BuildPaths(dataset.NCEPReanalysisDailyAverages, []string{"1965", "1966"})
//	names := dataset.LocalNames(dataset.NCEPReanalysisDailyAverages, []string{"1965", "1966"})
//
// # Tokens
//
// Tokens are usually years. ParseTokens accepts lists and inclusive ranges:
//
//	tokens, err := dataset.ParseTokens("1948-1950,1965")
//
// # Presets
//
// Preset returns pre-configured templates for common PSL datasets:
//
//	t, err := dataset.Preset("ncep-r1-air-sig995")
package dataset
