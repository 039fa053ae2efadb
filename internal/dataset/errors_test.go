package dataset

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestLoadError(t *testing.T) {
	err := &LoadError{Dataset: "vendors", Path: "/nope/oui.txt", Err: os.ErrNotExist}

	if !strings.Contains(err.Error(), "/nope/oui.txt") {
		t.Errorf("Error() = %q, should mention path", err.Error())
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("LoadError should unwrap to os.ErrNotExist")
	}

	wrapped := fmt.Errorf("startup: %w", err)
	if !IsLoadError(wrapped) {
		t.Error("IsLoadError() = false for wrapped LoadError")
	}
	if IsLoadError(errors.New("other")) {
		t.Error("IsLoadError() = true for unrelated error")
	}
}

func TestReadLines(t *testing.T) {
	input := "first\r\nsecond\n\nfourth"

	lines, err := ReadLines(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}

	want := []string{"first", "second", "", "fourth"}
	if len(lines) != len(want) {
		t.Fatalf("ReadLines() returned %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
