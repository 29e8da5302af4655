/*
NAME
  pixel.go

DESCRIPTION
  pixel.go provides Buffer, a contiguous W x H grid of 8- or 16-bit
  samples plus a timestamp. Buffer is the unit that decoders populate
  and that the correlation engine reads from.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package pixel provides the PixelBuffer data type shared by every
// movie decoder and by the correlation engine.
package pixel

import "github.com/bruot/corrtrack/corrtrackerr"

// Buffer owns a contiguous, row-major grid of samples plus a
// timestamp. Its samples change after construction only through
// SetSample or the slice returned by Pixels, and it is never resized.
//
// Samples are always stored as uint16, regardless of BitsPerSample,
// so that the correlation engine's inner loop (At) is branch-free on
// sample width; see the tagged-variant design note in SPEC_FULL.md.
type Buffer struct {
	Width         uint32
	Height        uint32
	BitsPerSample uint8 // 8 or 16.
	Timestamp     uint64
	pixels        []uint16
}

// NewBuffer returns a zero-initialised Buffer of the given dimensions
// and bit depth.
func NewBuffer(width, height uint32, bitsPerSample uint8) *Buffer {
	return &Buffer{
		Width:         width,
		Height:        height,
		BitsPerSample: bitsPerSample,
		pixels:        make([]uint16, width*height),
	}
}

// NewBufferFrom returns a Buffer that owns a copy of pixels, which
// must have exactly width*height elements.
func NewBufferFrom(width, height uint32, bitsPerSample uint8, timestamp uint64, pixels []uint16) *Buffer {
	b := NewBuffer(width, height, bitsPerSample)
	b.Timestamp = timestamp
	copy(b.pixels, pixels)
	return b
}

func (b *Buffer) index(x, y uint32) (int, error) {
	if x >= b.Width || y >= b.Height {
		return 0, corrtrackerr.Newf(corrtrackerr.Corrupt, "pixel (%d, %d) out of bounds for %dx%d buffer", x, y, b.Width, b.Height)
	}
	return int(y)*int(b.Width) + int(x), nil
}

// Sample returns the bounds-checked value of the sample at (x, y).
func (b *Buffer) Sample(x, y uint32) (uint16, error) {
	i, err := b.index(x, y)
	if err != nil {
		return 0, err
	}
	return b.pixels[i], nil
}

// SetSample bounds- and range-checks, then writes v at (x, y).
func (b *Buffer) SetSample(x, y uint32, v uint16) error {
	i, err := b.index(x, y)
	if err != nil {
		return err
	}
	if b.BitsPerSample < 16 && v >= 1<<b.BitsPerSample {
		return corrtrackerr.Newf(corrtrackerr.Corrupt, "sample value %d exceeds %d-bit range", v, b.BitsPerSample)
	}
	b.pixels[i] = v
	return nil
}

// At returns the sample at (x, y) cast to float64, without bounds
// checking. It is the accessor the correlation engine uses so that
// its inner loop is identical for 8- and 16-bit buffers.
func (b *Buffer) At(x, y int) float64 {
	return float64(b.pixels[y*int(b.Width)+x])
}

// Pixels returns the buffer's backing samples directly; decoders use
// it for bulk fast writes when populating a freshly constructed
// Buffer, bypassing SetSample's per-sample bounds and range checks.
func (b *Buffer) Pixels() []uint16 { return b.pixels }

// MinMax returns the minimum and maximum sample values in the buffer.
func (b *Buffer) MinMax() (min, max uint16) {
	min, max = b.pixels[0], b.pixels[0]
	for _, v := range b.pixels[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
