package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SonOfLilit/bless/pkg/approval"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List snapshot approval states",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, repo, err := openStore()
	if err != nil {
		return err
	}
	entries, err := approval.List(store, repo)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no snapshots")
		return nil
	}

	unapproved := 0
	for _, e := range entries {
		var glyph, label string
		switch e.State {
		case approval.Approved:
			glyph, label = "✓", "approved"
		case approval.PendingApproval:
			glyph, label = "?", "pending approval"
			unapproved++
		case approval.ModifiedSinceApproval:
			glyph, label = "✗", "modified since approval"
			unapproved++
		}
		fmt.Printf("  %s %s: %s\n", glyph, e.Name, label)
	}
	if unapproved > 0 {
		return fmt.Errorf("%d snapshot(s) need approval", unapproved)
	}
	return nil
}
