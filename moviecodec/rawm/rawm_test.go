/*
NAME
  rawm_test.go

DESCRIPTION
  rawm_test.go tests the RAWM decoder's version dispatch, pixel format
  resolution and the .raw sidecar's size and content validation.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

package rawm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bruot/corrtrack/corrtrackerr"
)

func writeRAWM(t *testing.T, xmlBody string, raw []byte) string {
	t.Helper()
	dir := t.TempDir()
	hdrPath := filepath.Join(dir, "movie.rawm")
	if err := os.WriteFile(hdrPath, []byte(xmlBody), 0o644); err != nil {
		t.Fatalf("WriteFile header: %v", err)
	}
	if raw != nil {
		rawPath := filepath.Join(dir, "movie.raw")
		if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
			t.Fatalf("WriteFile raw: %v", err)
		}
	}
	return hdrPath
}

func TestDecodeMono8TwoFrames(t *testing.T) {
	xmlBody := `<?xml version="1.0"?>
<movie_metadata version="1.4">
  <header>
    <image_data_format>RAW</image_data_format>
    <pixel_format>Mono8</pixel_format>
    <endianness>little</endianness>
    <width>2</width>
    <height>2</height>
    <framerate>30</framerate>
  </header>
  <frames>
    <frame timestamp="0"/>
    <frame timestamp="1000"/>
  </frames>
</movie_metadata>`
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	path := writeRAWM(t, xmlBody, raw)

	frames, bitDepth, framerate, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("len(frames) = %d, want 2", len(frames))
	}
	if bitDepth != 8 {
		t.Errorf("bitDepth = %d, want 8", bitDepth)
	}
	if framerate != 30 {
		t.Errorf("framerate = %v, want 30", framerate)
	}
	if v, _ := frames[0].Sample(1, 1); v != 4 {
		t.Errorf("frames[0].Sample(1,1) = %d, want 4", v)
	}
	if frames[1].Timestamp != 1000 {
		t.Errorf("frames[1].Timestamp = %d, want 1000", frames[1].Timestamp)
	}
}

func TestDecodeOldVersionRequiresMono8(t *testing.T) {
	xmlBody := `<?xml version="1.0"?>
<movie_metadata version="1.2">
  <header>
    <image_data_format>MONO10</image_data_format>
    <width>1</width>
    <height>1</height>
  </header>
  <frames><frame timestamp="0"/></frames>
</movie_metadata>`
	path := writeRAWM(t, xmlBody, []byte{1})

	_, _, _, err := Decode(path)
	if !corrtrackerr.Is(err, corrtrackerr.Corrupt) {
		t.Errorf("Decode error = %v, want Corrupt", err)
	}
}

// TestDecodeOldVersionRejectsMono16 is the version="1.2" +
// image_data_format=MONO16 case: old-format RAWM headers only ever
// describe Mono8 data, so any other named format is a corrupt header
// rather than an unsupported-but-valid one.
func TestDecodeOldVersionRejectsMono16(t *testing.T) {
	xmlBody := `<?xml version="1.0"?>
<movie_metadata version="1.2">
  <header>
    <image_data_format>MONO16</image_data_format>
    <width>1</width>
    <height>1</height>
  </header>
  <frames><frame timestamp="0"/></frames>
</movie_metadata>`
	path := writeRAWM(t, xmlBody, []byte{1, 0})

	_, _, _, err := Decode(path)
	if !corrtrackerr.Is(err, corrtrackerr.Corrupt) {
		t.Errorf("Decode error = %v, want Corrupt", err)
	}
}

func TestDecodeRejectsBigEndian(t *testing.T) {
	xmlBody := `<?xml version="1.0"?>
<movie_metadata version="1.4">
  <header>
    <pixel_format>Mono8</pixel_format>
    <endianness>big</endianness>
    <width>1</width>
    <height>1</height>
  </header>
  <frames><frame timestamp="0"/></frames>
</movie_metadata>`
	path := writeRAWM(t, xmlBody, []byte{1})

	_, _, _, err := Decode(path)
	if !corrtrackerr.Is(err, corrtrackerr.Unsupported) {
		t.Errorf("Decode error = %v, want Unsupported", err)
	}
}

func TestDecodeRejectsSizeMismatch(t *testing.T) {
	xmlBody := `<?xml version="1.0"?>
<movie_metadata version="1.4">
  <header>
    <pixel_format>Mono8</pixel_format>
    <endianness>little</endianness>
    <width>2</width>
    <height>2</height>
  </header>
  <frames><frame timestamp="0"/></frames>
</movie_metadata>`
	path := writeRAWM(t, xmlBody, []byte{1, 2, 3}) // 3 bytes, want 4

	_, _, _, err := Decode(path)
	if !corrtrackerr.Is(err, corrtrackerr.Corrupt) {
		t.Errorf("Decode error = %v, want Corrupt", err)
	}
}

func TestDecodeMissingRawSidecar(t *testing.T) {
	xmlBody := `<?xml version="1.0"?>
<movie_metadata version="1.4">
  <header>
    <pixel_format>Mono8</pixel_format>
    <endianness>little</endianness>
    <width>1</width>
    <height>1</height>
  </header>
  <frames><frame timestamp="0"/></frames>
</movie_metadata>`
	path := writeRAWM(t, xmlBody, nil)

	_, _, _, err := Decode(path)
	if !corrtrackerr.Is(err, corrtrackerr.Io) {
		t.Errorf("Decode error = %v, want Io", err)
	}
}

func TestVersionLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"1.2", "1.3", true},
		{"1.3", "1.2", false},
		{"1.3", "1.3", false},
		{"1", "1.1", true},
		{"2.0", "1.9", false},
	}
	for _, c := range cases {
		if got := versionLess(c.a, c.b); got != c.want {
			t.Errorf("versionLess(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
