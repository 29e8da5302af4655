/*
NAME
  correlate.go

DESCRIPTION
  correlate.go computes the 2-D cross-correlation of a reference
  pattern against a bounded search window around an anchor point.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package correlate computes unnormalised 2-D cross-correlation maps
// of a corrfilter.Filter against a window of a pixel.Buffer.
package correlate

import (
	"github.com/bruot/corrtrack/corrfilter"
	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/pixel"
)

// Map is a window_w x window_h grid of float64 correlation values in
// the same row-major layout as pixel.Buffer, scoped to a single
// (frame, anchor) pair.
type Map struct {
	Width  int
	Height int
	values []float64
}

// At returns the correlation value at window position (x, y).
func (m *Map) At(x, y int) float64 { return m.values[y*m.Width+x] }

func (m *Map) set(x, y int, v float64) { m.values[y*m.Width+x] = v }

// NewMap builds a Map directly from a row-major values slice, which
// must have exactly width*height elements. It exists alongside
// Compute so that callers (including tests of downstream consumers
// such as package subpixel) can exercise a Map without a pixel.Buffer
// and corrfilter.Filter on hand.
func NewMap(width, height int, values []float64) (*Map, error) {
	if len(values) != width*height {
		return nil, corrtrackerr.Newf(corrtrackerr.Corrupt, "correlation map values length %d does not match %dx%d", len(values), width, height)
	}
	cp := make([]float64, len(values))
	copy(cp, values)
	return &Map{Width: width, Height: height, values: cp}, nil
}

// Compute returns the correlation map of size (windowW, windowH) for
// filt against img, centred on anchor (ax, ay).
//
// C(i, j) = sum over the filter footprint of img[...] * filt[...],
// an unnormalised cross-correlation (no flip). If the outer rectangle
// consumed by the computation escapes the image bounds in either
// axis, Compute fails with corrtrackerr.WindowOutOfBounds.
func Compute(img *pixel.Buffer, ax, ay int, windowW, windowH int, filt *corrfilter.Filter) (*Map, error) {
	fw, fh := filt.Width, filt.Height

	iStart := ax - windowW/2
	jStart := ay - windowH/2
	iMin := iStart - fw/2
	jMin := jStart - fh/2
	iMax := iMin + (windowW - 1) + (fw - 1)
	jMax := jMin + (windowH - 1) + (fh - 1)

	if iMin < 0 || iMax >= int(img.Width) || jMin < 0 || jMax >= int(img.Height) {
		return nil, corrtrackerr.New(corrtrackerr.WindowOutOfBounds, "correlation window escapes image boundaries")
	}

	m := &Map{Width: windowW, Height: windowH, values: make([]float64, windowW*windowH)}
	for j := 0; j < windowH; j++ {
		for i := 0; i < windowW; i++ {
			m.set(i, j, value(img, iStart+i, jStart+j, filt))
		}
	}
	return m, nil
}

// value computes the inner product of filt against the img patch
// anchored so that filt's centre sits at (i0, j0).
func value(img *pixel.Buffer, i0, j0 int, filt *corrfilter.Filter) float64 {
	iStart := i0 - filt.Width/2
	jStart := j0 - filt.Height/2

	var corr float64
	for fy := 0; fy < filt.Height; fy++ {
		for fx := 0; fx < filt.Width; fx++ {
			corr += img.At(iStart+fx, jStart+fy) * filt.Value(fx, fy)
		}
	}
	return corr
}
