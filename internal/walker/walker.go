// Package walker recursively lists the regular files under a directory.
package walker

import (
	"os"
	"path/filepath"
)

// ListFilesRecursive walks dir depth-first and returns every regular
// file found. Symlinks are followed — a symlink to a file is resolved
// and reported if it points at a regular file; a symlink to a directory
// is descended into, with no cycle detection. Entries that fail to
// stat are silently skipped rather than aborting the walk.
func ListFilesRecursive(dir string) ([]string, error) {
	var files []string
	if err := walk(dir, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func walk(dir string, files *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		info, err := os.Stat(path) // follows symlinks; skip if unstat-able
		if err != nil {
			continue
		}
		if info.IsDir() {
			_ = walk(path, files) // best-effort: skip subtrees we can't read
			continue
		}
		if info.Mode().IsRegular() {
			*files = append(*files, path)
		}
	}
	return nil
}
