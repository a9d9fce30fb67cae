package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SonOfLilit/bless/pkg/approval"
)

var approveAll bool

var approveCmd = &cobra.Command{
	Use:   "approve [name ...]",
	Short: "Bless snapshots by staging them as the new baseline",
	RunE:  runApprove,
}

func init() {
	approveCmd.Flags().BoolVar(&approveAll, "all", false, "approve every working snapshot")
	rootCmd.AddCommand(approveCmd)
}

func runApprove(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !approveAll {
		return fmt.Errorf("name required (or --all)")
	}
	if len(args) > 0 && approveAll {
		return fmt.Errorf("--all cannot be combined with names")
	}

	store, repo, err := openStore()
	if err != nil {
		return err
	}
	approved, err := approval.Approve(store, repo, args...)
	if err != nil {
		return err
	}
	if len(approved) == 0 {
		fmt.Println("nothing to approve")
		return nil
	}
	for _, name := range approved {
		fmt.Printf("  ✓ blessed %s\n", name)
	}
	return nil
}
