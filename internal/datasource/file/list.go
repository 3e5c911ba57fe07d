package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rxclaims/internal/etlerr"
)

// Listing is the result of scanning a source folder.
type Listing struct {
	Dir string

	// Files are the paths to read, sorted by file name.
	Files []string

	// Skipped are file names left out because their extension names another
	// format.
	Skipped []string
}

// ListSource returns the regular files in dir that may hold data of the
// given format. Hidden files and sub-directories are ignored. A file whose
// extension differs from format is skipped and reported in Listing.Skipped;
// files without an extension are kept.
//
// A missing dir yields *etlerr.NotFoundError.
func ListSource(dir, format string) (Listing, error) {
	out := Listing{Dir: dir}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return out, etlerr.NotFound(dir)
	case err != nil:
		return out, etlerr.IO("stat", dir, err)
	case !info.IsDir():
		return out, etlerr.IO("list", dir, fmt.Errorf("not a directory"))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return out, etlerr.IO("list", dir, err)
	}

	want := "." + strings.ToLower(format)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != "" && format != "" && ext != want {
			out.Skipped = append(out.Skipped, name)
			continue
		}
		out.Files = append(out.Files, filepath.Join(dir, name))
	}
	sort.Strings(out.Files)
	sort.Strings(out.Skipped)
	return out, nil
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
