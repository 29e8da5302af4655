/*
NAME
  open_test.go

DESCRIPTION
  open_test.go tests Open's extension-based format dispatch and its
  rejection of unknown extensions.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

package movie

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bruot/corrtrack/corrtrackerr"
)

func TestOpenUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.xyz")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Open(path, nil)
	if !corrtrackerr.Is(err, corrtrackerr.Unsupported) {
		t.Errorf("Open(unknown extension) error = %v, want Unsupported", err)
	}
}

func TestOpenExtensionCaseInsensitive(t *testing.T) {
	// A missing .RAWM file should still be dispatched to the rawm decoder
	// (and thus fail as Io/Corrupt from *within* that decoder, not as
	// Unsupported from Open's dispatch switch).
	path := filepath.Join(t.TempDir(), "movie.RAWM")
	_, err := Open(path, nil)
	if corrtrackerr.Is(err, corrtrackerr.Unsupported) {
		t.Errorf("Open(.RAWM) error = %v, want dispatch to rawm decoder, not Unsupported", err)
	}
}
