/*
NAME
  endtoend_test.go

DESCRIPTION
  endtoend_test.go exercises the single-pixel-spike tracking scenarios:
  an anchor sitting exactly on a bright spike recovers a zero sub-pixel
  shift, and an anchor one pixel left of a spike reports the spike's
  position. Both are solved by hand against
  the quadratic fit's normal equations (see DESIGN.md's "Open questions
  resolved against original_source" entry) at fit_radius=1.5, the
  original's own default; the same layout at the rounded-down
  fit_radius=1.0 is also checked and, consistent with the original's
  identical radius test, fails to meet the six-point minimum.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

package track

import (
	"path/filepath"
	"testing"

	"github.com/bruot/corrtrack/corrfilter"
	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/pixel"
)

// spikeFrame builds a w x h frame of zeros with a single sample set to
// 255 at (spikeX, spikeY).
func spikeFrame(t *testing.T, w, h, spikeX, spikeY int) *pixel.Buffer {
	t.Helper()
	b := pixel.NewBuffer(uint32(w), uint32(h), 8)
	if err := b.SetSample(uint32(spikeX), uint32(spikeY), 255); err != nil {
		t.Fatalf("SetSample: %v", err)
	}
	return b
}

func identityFilter(t *testing.T) *corrfilter.Filter {
	return writeFilter(t, [][]float64{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}})
}

func TestEndToEndSpikeAtAnchorRecoversZeroShift(t *testing.T) {
	filt := identityFilter(t)
	frames := []*pixel.Buffer{spikeFrame(t, 5, 5, 2, 2)}
	dir := t.TempDir()
	m := newTestMovie(t, filepath.Join(dir, "movie.png"), frames)

	cfg := Config{WindowW: 3, WindowH: 3, FitRadius: 1.5, Filter: filt, Anchors: []AnchorPoint{{2, 2}}}
	tr := New(m, cfg, nil)

	var got []Position
	if _, err := tr.Analyse(Callbacks{OnFrame: func(i int, p []Position) { got = p }}); err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(positions) = %d, want 1", len(got))
	}
	if diff := got[0].X - 3.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("x = %v, want 3.0", got[0].X)
	}
	if diff := got[0].Y - 3.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("y = %v, want 3.0", got[0].Y)
	}
}

func TestEndToEndSpikeShiftedRecoversShift(t *testing.T) {
	filt := identityFilter(t)
	// Spike one pixel right of the anchor, on a 9x9 frame where the
	// anchor (4, 4) sits far enough from the frame edges
	// that the peak's full symmetric 3x3 neighbourhood lies within the
	// window, keeping the fit well-determined at fit_radius=1.5.
	frames := []*pixel.Buffer{spikeFrame(t, 9, 9, 5, 4)}
	dir := t.TempDir()
	m := newTestMovie(t, filepath.Join(dir, "movie.png"), frames)

	cfg := Config{WindowW: 5, WindowH: 5, FitRadius: 1.5, Filter: filt, Anchors: []AnchorPoint{{4, 4}}}
	tr := New(m, cfg, nil)

	var got []Position
	res, err := tr.Analyse(Callbacks{OnFrame: func(i int, p []Position) { got = p }})
	if err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	if res.NFrames != 1 {
		t.Fatalf("res.NFrames = %d, want 1", res.NFrames)
	}
	if diff := got[0].X - 6.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("x = %v, want 6.0", got[0].X)
	}
	if diff := got[0].Y - 5.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("y = %v, want 5.0", got[0].Y)
	}
}

func TestEndToEndFitRadiusOneUnderdeterminesThreeByThree(t *testing.T) {
	filt := identityFilter(t)
	frames := []*pixel.Buffer{spikeFrame(t, 5, 5, 2, 2)}
	m := newTestMovie(t, filepath.Join(t.TempDir(), "movie.png"), frames)

	cfg := Config{WindowW: 3, WindowH: 3, FitRadius: 1.0, Filter: filt, Anchors: []AnchorPoint{{2, 2}}}
	tr := New(m, cfg, nil)

	_, err := tr.Analyse(Callbacks{})
	if !corrtrackerr.Is(err, corrtrackerr.AnalyseError) {
		t.Errorf("Analyse error = %v, want AnalyseError (wrapping FitUnderdetermined)", err)
	}
}
