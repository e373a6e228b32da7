// Package ioutils provides file system utilities.
//
// This package contains functions for:
//   - Directory creation and listing
//   - File name checks that keep artifacts inside their directory
//   - Atomic writes through a temporary file and rename
//
// # File Operations
//
//	fs := afero.NewOsFs()
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir(fs, "/data/reanalysis")
//
//	// Write through a temporary file
//	err = ioutils.WriteFileAtomic(fs, "/data/reanalysis/air.1965.nc", fill)
//
//	// List what landed
//	entries, err := ioutils.ListDir(fs, "/data/reanalysis")
package ioutils
