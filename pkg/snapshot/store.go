// Package snapshot persists per-case snapshot files and resolves their
// accepted baseline through the version-control index.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SonOfLilit/bless/pkg/gitindex"
)

// Baseline resolves the version-control-accepted copy of a snapshot file.
// *gitindex.Repo satisfies it.
type Baseline interface {
	gitindex.Index
	// Rel converts an absolute path to the repo-relative form.
	Rel(abs string) (string, error)
}

// Store reads and writes snapshot files under a single directory. Working
// copies live on disk; the baseline comes from the Baseline interface. A nil
// Baseline means no repository is available, so every case reads as
// unblessed — fail-closed.
type Store struct {
	Dir      string
	Baseline Baseline
}

// PathFor derives the snapshot path for a case name. One-to-one with cases:
// manifest loading guarantees names are unique and filename-safe.
func (s *Store) PathFor(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

// ReadWorking returns the current on-disk snapshot content, with ok=false
// when the file does not exist.
func (s *Store) ReadWorking(name string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.PathFor(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read working snapshot %s: %w", name, err)
	}
	return data, true, nil
}

// ReadBaseline returns the staged copy of the snapshot, with ok=false when
// the path has never been staged. A present-but-empty baseline is present.
func (s *Store) ReadBaseline(name string) ([]byte, bool, error) {
	if s.Baseline == nil {
		return nil, false, nil
	}
	abs, err := filepath.Abs(s.PathFor(name))
	if err != nil {
		return nil, false, fmt.Errorf("resolve snapshot path %s: %w", name, err)
	}
	rel, err := s.Baseline.Rel(abs)
	if err != nil {
		return nil, false, fmt.Errorf("baseline path %s: %w", name, err)
	}
	data, ok, err := s.Baseline.StagedContent(rel)
	if err != nil {
		return nil, false, fmt.Errorf("read baseline %s: %w", name, err)
	}
	return data, ok, nil
}

// WriteWorking atomically replaces the on-disk snapshot: write a temp file in
// the same directory, fsync it, then rename over the target. Concurrent
// readers observe either the old or the new content, never a torn write.
func (s *Store) WriteWorking(name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, ".bless-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	// Flush to stable storage before the rename, so a crash never publishes
	// an empty or partial snapshot under the final name.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.PathFor(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename snapshot %s: %w", name, err)
	}
	return nil
}

// Names lists the case names that currently have a working snapshot file,
// in sorted order.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		base := e.Name()
		if filepath.Ext(base) != ".json" {
			continue
		}
		names = append(names, base[:len(base)-len(".json")])
	}
	return names, nil
}
