package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SonOfLilit/bless/pkg/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate [manifest.blessed.json ...]",
	Short: "Validate manifest files without running any cases",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	m, err := manifest.LoadFiles(args...)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d file(s) valid (%d cases)\n", len(args), len(m.Cases))
	return nil
}
