// Package approval tracks which snapshots have been blessed into the
// version-control index and promotes fresh ones.
package approval

import (
	"fmt"
	"path/filepath"

	"github.com/SonOfLilit/bless/pkg/snapshot"
)

// State describes a snapshot file's standing relative to the index.
type State string

const (
	// Approved: the working snapshot matches the staged copy.
	Approved State = "approved"
	// PendingApproval: the snapshot exists on disk but was never staged.
	PendingApproval State = "pending"
	// ModifiedSinceApproval: the working snapshot differs from the staged copy.
	ModifiedSinceApproval State = "modified"
)

// Entry is one snapshot file's approval standing.
type Entry struct {
	Name  string
	State State
	Path  string
}

// VCS is the slice of repository operations approval needs.
// *gitindex.Repo satisfies it.
type VCS interface {
	Rel(abs string) (string, error)
	Status(rel string) (string, error)
	Stage(rel string) error
}

// List reports the approval state of every working snapshot in the store,
// sorted by case name.
func List(store *snapshot.Store, vcs VCS) ([]Entry, error) {
	names, err := store.Names()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		rel, err := relFor(store, vcs, name)
		if err != nil {
			return nil, err
		}
		code, err := vcs.Status(rel)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Name:  name,
			State: classify(code),
			Path:  store.PathFor(name),
		})
	}
	return entries, nil
}

// Approve stages the named snapshots, blessing their current content as the
// baseline. With no names it approves every working snapshot.
func Approve(store *snapshot.Store, vcs VCS, names ...string) ([]string, error) {
	if len(names) == 0 {
		all, err := store.Names()
		if err != nil {
			return nil, err
		}
		names = all
	}
	approved := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok, err := store.ReadWorking(name); err != nil {
			return approved, err
		} else if !ok {
			return approved, fmt.Errorf("approve %s: no working snapshot", name)
		}
		rel, err := relFor(store, vcs, name)
		if err != nil {
			return approved, err
		}
		if err := vcs.Stage(rel); err != nil {
			return approved, err
		}
		approved = append(approved, name)
	}
	return approved, nil
}

func relFor(store *snapshot.Store, vcs VCS, name string) (string, error) {
	abs, err := filepath.Abs(store.PathFor(name))
	if err != nil {
		return "", fmt.Errorf("resolve snapshot path %s: %w", name, err)
	}
	return vcs.Rel(abs)
}

// classify maps a porcelain XY status code to an approval state. The second
// column tracks the working tree against the index: any difference there
// means the snapshot changed after its last blessing.
func classify(code string) State {
	switch {
	case code == "":
		return Approved
	case code == "??":
		return PendingApproval
	case code[1] != ' ':
		return ModifiedSinceApproval
	default:
		// Staged change, clean working tree: the index already holds
		// the current content.
		return Approved
	}
}
