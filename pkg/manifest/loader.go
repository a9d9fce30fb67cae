package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSuffix is the conventional manifest filename suffix.
const DefaultSuffix = ".blessed.json"

// LoadFile parses one manifest file.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data, path)
}

// LoadFiles pools several manifest files with a cross-file uniqueness check.
func LoadFiles(paths ...string) (*Manifest, error) {
	pooled := &Manifest{}
	for _, path := range paths {
		m, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := pooled.Merge(m); err != nil {
			return nil, err
		}
	}
	return pooled, nil
}

// Discover walks root for files ending in suffix (DefaultSuffix when empty)
// and pools them. Paths are visited in sorted order so the pooled case order
// is stable across runs.
func Discover(root, suffix string) (*Manifest, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover manifests: %w", err)
	}
	// Zero matches means a misconfigured root or suffix, not an empty suite;
	// returning an empty manifest here would let every run exit clean.
	if len(paths) == 0 {
		return nil, &StructuralError{
			Source:   root,
			Problems: []string{fmt.Sprintf("no manifest files matching *%s found", suffix)},
		}
	}
	sort.Strings(paths)
	return LoadFiles(paths...)
}
