/*
NAME
  main_test.go

DESCRIPTION
  main_test.go tests parseAnchors's comma/colon parsing and its
  rejection of malformed anchor lists.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/track"
)

func TestParseAnchors(t *testing.T) {
	got, err := parseAnchors("100:80,200:150")
	if err != nil {
		t.Fatalf("parseAnchors: %v", err)
	}
	want := []track.AnchorPoint{{X: 100, Y: 80}, {X: 200, Y: 150}}
	if !cmp.Equal(got, want) {
		t.Errorf("parseAnchors mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}
}

func TestParseAnchorsTrimsWhitespace(t *testing.T) {
	got, err := parseAnchors(" 10 : 20 ")
	if err != nil {
		t.Fatalf("parseAnchors: %v", err)
	}
	want := []track.AnchorPoint{{X: 10, Y: 20}}
	if !cmp.Equal(got, want) {
		t.Errorf("parseAnchors mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}
}

func TestParseAnchorsEmpty(t *testing.T) {
	_, err := parseAnchors("")
	if !corrtrackerr.Is(err, corrtrackerr.Corrupt) {
		t.Errorf("parseAnchors(\"\") error = %v, want Corrupt", err)
	}
}

func TestParseAnchorsMissingColon(t *testing.T) {
	_, err := parseAnchors("100-80")
	if !corrtrackerr.Is(err, corrtrackerr.Corrupt) {
		t.Errorf("parseAnchors error = %v, want Corrupt", err)
	}
}

func TestParseAnchorsNonNumeric(t *testing.T) {
	_, err := parseAnchors("x:80")
	if !corrtrackerr.Is(err, corrtrackerr.Corrupt) {
		t.Errorf("parseAnchors error = %v, want Corrupt", err)
	}
}
