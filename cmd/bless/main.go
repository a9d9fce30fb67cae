// Package main provides the bless binary — project tooling for blessed
// snapshot suites: inspect approval state, bless snapshots, show diffs,
// validate manifests, and export the manifest schema.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SonOfLilit/bless/pkg/config"
	"github.com/SonOfLilit/bless/pkg/gitindex"
	"github.com/SonOfLilit/bless/pkg/snapshot"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bless",
	Short: "Blessed snapshot tooling",
	Long:  "bless — tooling for git-blessed snapshot suites: approval state, blessing, diffs, manifest validation.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bless %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// openStore discovers the enclosing repository from the working directory and
// opens the configured snapshot store.
func openStore() (*snapshot.Store, *gitindex.Repo, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve working directory: %w", err)
	}
	repo, err := gitindex.Discover(wd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadFromRoot(repo.Root())
	if err != nil {
		return nil, nil, err
	}
	store := &snapshot.Store{
		Dir:      filepath.Join(repo.Root(), cfg.SnapshotDir),
		Baseline: repo,
	}
	return store, repo, nil
}
