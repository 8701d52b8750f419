package cmd

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// expandInputs replaces every directory in paths with the files below it
// that have the given extension, in lexical order. Files and missing paths
// are kept as given so the pipeline can report them by name.
//
// PARAMETERS:
//   - paths: Input files and directories, in command-line order.
//   - ext: The extension to collect from directories, e.g. ".csv".
//
// RETURNS:
//   - The expanded list of files.
//   - An error if a directory cannot be read.
func expandInputs(paths []string, ext string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			files = append(files, path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			// Skip Excel lock files and our own temp files.
			name := d.Name()
			if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
				return nil
			}
			if strings.EqualFold(filepath.Ext(name), ext) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		sort.Strings(found)
		files = append(files, found...)
	}

	return files, nil
}
