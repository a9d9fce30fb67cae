package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/SonOfLilit/bless/pkg/report"
)

var diffColor bool

var diffCmd = &cobra.Command{
	Use:   "diff [name ...]",
	Short: "Show working-vs-blessed snapshot diffs",
	Long:  "Compare working snapshots against their blessed (staged) baselines without running any cases. With no names, diffs every snapshot that differs.",
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&diffColor, "color", false, "force colored output even when stdout is not a terminal")
	rootCmd.AddCommand(diffCmd)
}

// colorEnabled decides whether diff output carries ANSI styling: forced by
// --color, otherwise only when stdout is a terminal.
func colorEnabled(force bool) bool {
	if force {
		return true
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func runDiff(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	color := colorEnabled(diffColor)

	names := args
	if len(names) == 0 {
		names, err = store.Names()
		if err != nil {
			return err
		}
	}

	differing := 0
	for _, name := range names {
		working, ok, err := store.ReadWorking(name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no working snapshot for %s", name)
		}
		baseline, ok, err := store.ReadBaseline(name)
		if err != nil {
			return err
		}
		if !ok {
			differing++
			fmt.Printf("  ? %s: never blessed\n", name)
			continue
		}
		if string(baseline) == string(working) {
			if len(args) > 0 {
				fmt.Printf("  ✓ %s: matches baseline\n", name)
			}
			continue
		}
		differing++
		fmt.Printf("  ✗ %s:\n", name)
		fmt.Print(report.RenderDiff(baseline, working, color))
	}
	if differing > 0 {
		return fmt.Errorf("%d snapshot(s) differ from their baseline", differing)
	}
	return nil
}
