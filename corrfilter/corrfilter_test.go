/*
NAME
  corrfilter_test.go

DESCRIPTION
  corrfilter_test.go tests Load's parsing and its rejection of
  malformed filter files.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

package corrfilter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bruot/corrtrack/corrtrackerr"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("could not write temp file: %v", err)
	}
	return path
}

func TestLoadWellFormed(t *testing.T) {
	path := writeTemp(t, "filter.dat", "1.0\t2.5\t-3.0\n0.1\t0.2\t0.3\n")
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Width != 3 || f.Height != 2 {
		t.Fatalf("dims = (%d, %d), want (3, 2)", f.Width, f.Height)
	}
	if got, want := f.Value(2, 0), -3.0; got != want {
		t.Errorf("Value(2,0) = %v, want %v", got, want)
	}
	if got, want := f.Value(0, 1), 0.1; got != want {
		t.Errorf("Value(0,1) = %v, want %v", got, want)
	}
}

func TestLoadToleratesCRLFAndTrailingNewline(t *testing.T) {
	path := writeTemp(t, "filter.dat", "1\t2\r\n3\t4\r\n")
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Width != 2 || f.Height != 2 {
		t.Fatalf("dims = (%d, %d), want (2, 2)", f.Width, f.Height)
	}
}

func TestLoadRejectsInconsistentColumns(t *testing.T) {
	path := writeTemp(t, "filter.dat", "1\t2\t3\n4\t5\n")
	_, err := Load(path)
	if !corrtrackerr.Is(err, corrtrackerr.FilterFormat) {
		t.Errorf("Load error = %v, want FilterFormat", err)
	}
}

func TestLoadRejectsNonNumeric(t *testing.T) {
	path := writeTemp(t, "filter.dat", "1\tabc\n")
	_, err := Load(path)
	if !corrtrackerr.Is(err, corrtrackerr.FilterFormat) {
		t.Errorf("Load error = %v, want FilterFormat", err)
	}
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	path := writeTemp(t, "filter.dat", "")
	_, err := Load(path)
	if !corrtrackerr.Is(err, corrtrackerr.FilterFormat) {
		t.Errorf("Load error = %v, want FilterFormat", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.dat"))
	if !corrtrackerr.Is(err, corrtrackerr.Io) {
		t.Errorf("Load error = %v, want Io", err)
	}
}
