// Package gitindex wraps the narrow slice of git the engine needs: discover
// the repository root, read the staged (index) content of a path, stage a
// path, and read porcelain status. The index — not the working tree — is what
// makes a snapshot "blessed": content is accepted only once a human has
// explicitly staged it.
package gitindex

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Index resolves the version-control-accepted content of a repo-relative path.
// It must be safe for concurrent use; Repo satisfies it by spawning one git
// process per call.
type Index interface {
	StagedContent(rel string) ([]byte, bool, error)
}

// Repo is a handle to a git working copy.
type Repo struct {
	root string
}

// Discover locates the repository root containing dir via
// `git rev-parse --show-toplevel`.
func Discover(dir string) (*Repo, error) {
	out, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("discover git root: %w", err)
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return nil, fmt.Errorf("discover git root: empty output from git rev-parse")
	}
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("discover git root: %q is not absolute", root)
	}
	return &Repo{root: root}, nil
}

// Root returns the absolute repository root.
func (r *Repo) Root() string { return r.root }

// Rel converts an absolute path into the repo-relative slash form git expects.
func (r *Repo) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", fmt.Errorf("relativize %s: %w", abs, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the repository %s", abs, r.root)
	}
	return filepath.ToSlash(rel), nil
}

// StagedContent reads the index copy of rel via `git show :<path>`. The second
// return is false when the path has never been staged; infrastructure
// failures (a broken repo, a missing git binary) return an error instead so
// callers can distinguish "unblessed" from "cannot tell".
func (r *Repo) StagedContent(rel string) ([]byte, bool, error) {
	cmd := exec.Command("git", "show", ":"+rel)
	cmd.Dir = r.root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok && notInIndex(stderr.String()) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("git show :%s: %v: %s", rel, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), true, nil
}

// notInIndex matches the stderr git show emits for paths absent from the
// index, which is an expected condition rather than a failure.
func notInIndex(stderr string) bool {
	return strings.Contains(stderr, "not in the index") ||
		strings.Contains(stderr, "does not exist") ||
		strings.Contains(stderr, "exists on disk")
}

// Stage runs `git add -- <rel>`. This is the human approval action: after
// Stage, the working snapshot becomes the blessed baseline.
func (r *Repo) Stage(rel string) error {
	if _, err := runGit(r.root, "add", "--", rel); err != nil {
		return fmt.Errorf("stage %s: %w", rel, err)
	}
	return nil
}

// Status returns the two-character porcelain XY code for rel, or "" when the
// path is clean (tracked and identical to the index and HEAD).
func (r *Repo) Status(rel string) (string, error) {
	out, err := runGit(r.root, "status", "--porcelain", "--", rel)
	if err != nil {
		return "", fmt.Errorf("status %s: %w", rel, err)
	}
	line := strings.TrimRight(string(out), "\n")
	if line == "" {
		return "", nil
	}
	if len(line) < 2 {
		return "", fmt.Errorf("status %s: unexpected porcelain output %q", rel, line)
	}
	return line[:2], nil
}

func runGit(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
