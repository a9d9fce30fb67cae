package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SonOfLilit/bless/pkg/manifest"
)

var schemaOut string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export the JSON Schema for manifest entries",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&schemaOut, "out", "", "write schema to file instead of stdout")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := manifest.JSONSchema()
	if err != nil {
		return err
	}
	if schemaOut != "" {
		if err := os.WriteFile(schemaOut, data, 0o644); err != nil {
			return fmt.Errorf("write schema: %w", err)
		}
		fmt.Printf("✓ schema written to %s\n", schemaOut)
		return nil
	}
	fmt.Println(string(data))
	return nil
}
