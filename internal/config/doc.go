// Package config provides configuration management for geodata-downloader.
//
// This package handles:
//   - Default configuration values
//   - Loading and saving settings from JSON or YAML files
//   - Overrides from GEOFETCH_* environment variables and .env files
//   - Resolving the destination directory
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// NCEP/NCAR Reanalysis 1 daily air temperature
//	// Downloads to ~/geodata/{dataset}/{category}
//	// One download at a time, no retries
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/geofetch.yaml")
//
// # Environment
//
//	_ = config.LoadEnvFiles(".env")
//	err := settings.ApplyEnv()
//
// # Destination Directory
//
// DownloadsPath may contain {host}, {dataset} and {category}:
//
//	settings.DownloadsPath = "/data/{dataset}/{category}"
//	settings.DestDir() // "/data/ncep.reanalysis.dailyavgs/surface"
package config
