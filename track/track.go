/*
NAME
  track.go

DESCRIPTION
  track.go runs the correlation-tracking frame loop: for each anchor,
  per frame, it computes a correlation map (package correlate), refines
  its peak to sub-pixel precision (package subpixel), advances the
  anchor to the refined position, and writes one row per frame to the
  .dat output file.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package track orchestrates a full particle-tracking run over a
// movie: the frame loop, anchor updates and .dat output.
package track

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/bruot/corrtrack/corrfilter"
	"github.com/bruot/corrtrack/correlate"
	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/movie"
	"github.com/bruot/corrtrack/progress"
	"github.com/bruot/corrtrack/subpixel"
)

// AppName and Version are printed in the .dat output header.
const (
	AppName = "corrtrack"
	Version = "1.0.0"
)

// AnchorPoint is an integer-pixel tracking point. The tracker mutates
// AnchorPoints in place between frames as a particle drifts.
type AnchorPoint struct {
	X, Y int
}

// Config holds the parameters of a tracking run: the correlation
// window size, the sub-pixel fit radius, the reference filter and the
// ordered, insertion-preserving list of anchors to track.
type Config struct {
	WindowW, WindowH uint32
	FitRadius        float64
	Filter           *corrfilter.Filter
	Anchors          []AnchorPoint
}

// Validate reports whether c describes a runnable configuration.
func (c *Config) Validate() error {
	if c.WindowW == 0 || c.WindowH == 0 {
		return corrtrackerr.New(corrtrackerr.Corrupt, "window dimensions must be at least 1")
	}
	if c.FitRadius < 0 {
		return corrtrackerr.New(corrtrackerr.Corrupt, "fit radius must be non-negative")
	}
	if c.Filter == nil {
		return corrtrackerr.New(corrtrackerr.FilterFormat, "no filter loaded")
	}
	if len(c.Anchors) == 0 {
		return corrtrackerr.New(corrtrackerr.Corrupt, "no anchor points to track")
	}
	return nil
}

// Result summarises a completed (or aborted) analysis run.
type Result struct {
	OutputPath string
	NFrames    int
}

// Position is a 1-origin, sub-pixel anchor position written to one
// cell of a .dat output row.
type Position struct {
	X, Y float64
}

// Callbacks decouples Tracker from any particular host/UI: the host
// observes a run purely through these hooks, never by reaching into
// engine internals.
type Callbacks struct {
	// OnFrame is called after frame i's row has been written, with the
	// refined (1-origin) position of every anchor for that frame.
	OnFrame func(i int, positions []Position)
	// OnProgress is called before processing frame i, with total the
	// movie's frame count.
	OnProgress func(step, total int)
	// OnFinished is called exactly once, whether the run succeeded or
	// failed.
	OnFinished func(res Result, err error)
}

// Tracker runs a tracking analysis over a Movie per a Config.
type Tracker struct {
	Movie  *movie.Movie
	Config Config
	Cursor *progress.Cursor
	Log    logging.Logger
}

// New returns a Tracker over m configured by cfg. log may be nil.
func New(m *movie.Movie, cfg Config, log logging.Logger) *Tracker {
	return &Tracker{Movie: m, Config: cfg, Cursor: &progress.Cursor{}, Log: log}
}

// TestCorrelation computes, without mutating any anchor or writing
// output, the correlation map of every configured anchor against
// frame i. It is the preview operation used ahead of a full Analyse
// run.
func (t *Tracker) TestCorrelation(frameIndex int) ([]*correlate.Map, error) {
	if err := t.Config.Validate(); err != nil {
		return nil, err
	}
	frame, err := t.Movie.Frame(frameIndex)
	if err != nil {
		return nil, err
	}

	maps := make([]*correlate.Map, len(t.Config.Anchors))
	for k, a := range t.Config.Anchors {
		m, err := correlate.Compute(frame, a.X, a.Y, int(t.Config.WindowW), int(t.Config.WindowH), t.Config.Filter)
		if err != nil {
			return nil, err
		}
		maps[k] = m
	}
	return maps, nil
}

// Analyse runs the full tracking loop over every frame of the movie,
// writing one row per frame to <movie-stem>.dat, and advancing every
// anchor between frames. Any field of cb may be nil.
func (t *Tracker) Analyse(cb Callbacks) (res Result, err error) {
	defer func() {
		if cb.OnFinished != nil {
			cb.OnFinished(res, err)
		}
	}()

	if err = t.Config.Validate(); err != nil {
		return Result{}, err
	}

	outputPath := movie.StemFromPath(t.Movie.SourcePath) + ".dat"
	out, ferr := os.Create(outputPath)
	if ferr != nil {
		return Result{}, corrtrackerr.Wrap(corrtrackerr.Io, outputPath, "could not create .dat output file", ferr)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	t.writeHeader(w)

	anchors := make([]AnchorPoint, len(t.Config.Anchors))
	copy(anchors, t.Config.Anchors)

	nFrames := t.Movie.NFrames()
	if t.Cursor != nil {
		t.Cursor.SetTotal(nFrames)
	}

	for i := 0; i < nFrames; i++ {
		if t.Cursor != nil {
			t.Cursor.SetStep(i)
		}
		if cb.OnProgress != nil {
			cb.OnProgress(i, nFrames)
		}

		frame, ferr := t.Movie.Frame(i)
		if ferr != nil {
			return t.fail(outputPath, w, ferr)
		}

		positions := make([]Position, len(anchors))
		fmt.Fprintf(w, "%d\t%d", i+1, t.Movie.Timestamps[i])
		for k := range anchors {
			a := &anchors[k]
			cm, cerr := correlate.Compute(frame, a.X, a.Y, int(t.Config.WindowW), int(t.Config.WindowH), t.Config.Filter)
			if cerr != nil {
				return t.fail(outputPath, w, cerr)
			}
			peak, serr := subpixel.Refine(cm, t.Config.FitRadius)
			if serr != nil {
				return t.fail(outputPath, w, serr)
			}

			x := float64(a.X) - float64(t.Config.WindowW/2) + peak.X + 1.0
			y := float64(a.Y) - float64(t.Config.WindowH/2) + peak.Y + 1.0
			fmt.Fprintf(w, "\t%.6f\t%.6f", x, y)
			positions[k] = Position{X: x, Y: y}

			a.X = roundHalfUp(x - 1.0)
			a.Y = roundHalfUp(y - 1.0)
		}
		fmt.Fprint(w, "\n")

		if cb.OnFrame != nil {
			cb.OnFrame(i, positions)
		}
	}

	if t.Cursor != nil {
		t.Cursor.SetStep(nFrames)
	}
	if ferr := w.Flush(); ferr != nil {
		return Result{}, corrtrackerr.Wrap(corrtrackerr.Io, outputPath, "could not flush .dat output file", ferr)
	}

	if t.Log != nil {
		t.Log.Info("analysis complete", "frames", nFrames, "output", outputPath)
	}
	return Result{OutputPath: outputPath, NFrames: nFrames}, nil
}

// fail flushes whatever has been written so far and wraps cause in
// AnalyseError, reporting the (incomplete) output path.
func (t *Tracker) fail(outputPath string, w *bufio.Writer, cause error) (Result, error) {
	w.Flush()
	if t.Log != nil {
		t.Log.Error("analysis aborted", "output", outputPath, "error", cause)
	}
	return Result{OutputPath: outputPath}, corrtrackerr.Wrap(corrtrackerr.AnalyseError, outputPath, "tracking run aborted", cause)
}

// writeHeader writes the .dat file's comment header, per §6 of the
// output format.
func (t *Tracker) writeHeader(w *bufio.Writer) {
	fmt.Fprintf(w, "# %s version %s\n", AppName, Version)
	fmt.Fprintf(w, "# Filter %s\n", t.Config.Filter.Path)
	fmt.Fprintf(w, "# with window size (%d, %d) and fit radius %v.\n", t.Config.WindowW, t.Config.WindowH, t.Config.FitRadius)
	fmt.Fprint(w, "#\n")

	var hdr strings.Builder
	hdr.WriteString("# Frame\tTimestamp")
	for k := range t.Config.Anchors {
		fmt.Fprintf(&hdr, "\tx_%d\ty_%d", k+1, k+1)
	}
	fmt.Fprintln(w, hdr.String())
}

// roundHalfUp rounds v to the nearest integer, breaking ties away from
// zero's negative side (as the original's unsigned-cast truncation of
// (x + 0.5) does for the non-negative pixel coordinates it operates
// on).
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
