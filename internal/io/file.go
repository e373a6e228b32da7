package ioutils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ErrInvalidFileName is returned for names that would not stay inside their
// destination directory.
var ErrInvalidFileName = errors.New("invalid file name")

// Entry describes one file of a directory listing.
type Entry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	IsDir   bool      `json:"is_dir"`
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(fs afero.Fs, path string) error {
	return fs.MkdirAll(path, 0755)
}

// ListDir returns the entries of dir sorted by name.
//
// Temporary files left by WriteFileAtomic are not listed.
func ListDir(fs afero.Fs, dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		if strings.HasPrefix(info.Name(), tempPrefix) {
			continue
		}
		entries = append(entries, Entry{
			Name:    info.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   info.IsDir(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// CheckFileName returns ErrInvalidFileName unless name is a plain file name
// that resolves inside its directory.
//
// Example:
//
//	CheckFileName("air.sig995.1965.nc") // nil
//	CheckFileName("../air.nc")          // ErrInvalidFileName
func CheckFileName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidFileName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidFileName, name)
	}
	return nil
}

const tempPrefix = ".geofetch-"

// WriteFileAtomic creates path by calling fill with a temporary file in the
// same directory and renaming it over path once fill succeeds.
//
// An existing file at path is replaced only by a complete write. On any
// error the temporary file is removed and path is left untouched.
//
// Example:
//
//	err := WriteFileAtomic(fs, "/data/air.1965.nc", func(w io.Writer) error {
//	    _, err := client.Download(ctx, url, w, nil)
//	    return err
//	})
func WriteFileAtomic(fs afero.Fs, path string, fill func(w io.Writer) error) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(fs, dir, tempPrefix+name+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			fs.Remove(tmpName)
		}
	}()

	if err = fill(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = fs.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return fs.Rename(tmpName, path)
}

// FileSize returns the size of path, or -1 when it does not exist.
func FileSize(fs afero.Fs, path string) (int64, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return -1, nil
		}
		return 0, err
	}
	return info.Size(), nil
}
