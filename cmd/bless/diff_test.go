package main

import (
	"os"
	"testing"

	"github.com/mattn/go-isatty"
)

func TestColorEnabled_ForcedOn(t *testing.T) {
	if !colorEnabled(true) {
		t.Fatal("--color must force styling on")
	}
}

func TestColorEnabled_FollowsTerminal(t *testing.T) {
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if colorEnabled(false) != tty {
		t.Fatalf("unforced color must follow terminal detection (tty=%v)", tty)
	}
}
