/*
NAME
  movie.go

DESCRIPTION
  movie.go provides Movie, an ordered sequence of pixel.Buffer frames
  sharing identical dimensions and bit depth, plus format dispatch,
  rendering and TIFF export.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package movie holds a decoded frame sequence and its metadata, and
// dispatches file opening to the format-specific decoder in package
// moviecodec.
package movie

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/utils/logging"

	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/pixel"
	"github.com/bruot/corrtrack/progress"
)

// Format identifies the container a Movie was decoded from.
type Format int

const (
	Image Format = iota
	Tiff
	Rawm
	Xiseq
	Pds
	Cine
)

// String returns the human-readable name of f.
func (f Format) String() string {
	switch f {
	case Image:
		return "Image"
	case Tiff:
		return "Tiff"
	case Rawm:
		return "Rawm"
	case Xiseq:
		return "Xiseq"
	case Pds:
		return "Pds"
	case Cine:
		return "Cine"
	default:
		return "Unknown"
	}
}

// Movie is an ordered sequence of pixel.Buffer frames sharing
// identical (width, height, bits-per-sample).
type Movie struct {
	Format        Format
	BitDepth      uint // Declared semantic precision; <= BitsPerSample.
	BitsPerSample uint8
	Width         uint32
	Height        uint32
	Framerate     float64 // 0 if unknown.
	SourcePath    string

	frames     []*pixel.Buffer
	Timestamps []uint64
}

// NewMovie assembles a Movie from already-decoded frames sharing
// identical dimensions and bit depth. It is the constructor that every
// moviecodec decoder calls once it has populated its frame slice.
func NewMovie(format Format, bitDepth uint, sourcePath string, framerate float64, frames []*pixel.Buffer) (*Movie, error) {
	if len(frames) == 0 {
		return nil, corrtrackerr.WithPath(corrtrackerr.Corrupt, sourcePath, "movie has no frames")
	}
	w, h, bps := frames[0].Width, frames[0].Height, frames[0].BitsPerSample
	if bitDepth > uint(bps) {
		return nil, corrtrackerr.WithPath(corrtrackerr.Corrupt, sourcePath, "bit depth exceeds bits per sample")
	}
	ts := make([]uint64, len(frames))
	for i, f := range frames {
		if f.Width != w || f.Height != h || f.BitsPerSample != bps {
			return nil, corrtrackerr.WithPath(corrtrackerr.Corrupt, sourcePath, "frames have inconsistent dimensions or bit depth")
		}
		ts[i] = f.Timestamp
	}
	return &Movie{
		Format:        format,
		BitDepth:      bitDepth,
		BitsPerSample: bps,
		Width:         w,
		Height:        h,
		Framerate:     framerate,
		SourcePath:    sourcePath,
		frames:        frames,
		Timestamps:    ts,
	}, nil
}

// NFrames returns the number of frames in the movie.
func (m *Movie) NFrames() int { return len(m.frames) }

// Frame returns the bounds-checked frame at index i.
func (m *Movie) Frame(i int) (*pixel.Buffer, error) {
	if i < 0 || i >= len(m.frames) {
		return nil, corrtrackerr.Newf(corrtrackerr.Corrupt, "frame index %d out of range [0, %d)", i, len(m.frames))
	}
	return m.frames[i], nil
}

// FrameIntensityMinMax returns the minimum and maximum sample values
// of frame i, found by a linear scan.
func (m *Movie) FrameIntensityMinMax(i int) (min, max uint16, err error) {
	f, err := m.Frame(i)
	if err != nil {
		return 0, 0, err
	}
	min, max = f.MinMax()
	return min, max, nil
}

// IntensityStats is the result of a movie-wide intensity scan: the
// overall minimum and maximum sample values, plus the sample mean and
// variance across all frames, a supplemental diagnostic computed
// alongside the min/max scan.
type IntensityStats struct {
	Min, Max  uint16
	Mean, Var float64
}

// IntensityMinMax scans every frame of the movie and returns the
// overall minimum and maximum sample values along with the sample
// mean/variance, publishing progress to cur as it goes.
func (m *Movie) IntensityMinMax(cur *progress.Cursor) (IntensityStats, error) {
	if cur != nil {
		cur.SetTotal(len(m.frames))
	}
	min, max := uint16(0xffff), uint16(0)
	var allSamples []float64
	for i, f := range m.frames {
		if cur != nil {
			cur.SetStep(i)
		}
		fMin, fMax := f.MinMax()
		if fMin < min {
			min = fMin
		}
		if fMax > max {
			max = fMax
		}
		for _, v := range f.Pixels() {
			allSamples = append(allSamples, float64(v))
		}
	}
	mean, variance := stat.MeanVariance(allSamples, nil)
	if cur != nil {
		cur.SetStep(len(m.frames))
	}
	return IntensityStats{Min: min, Max: max, Mean: mean, Var: variance}, nil
}

// ToU8ByBitDepth renders frame i as an 8-bit image by shifting samples
// by (bitDepth - 8); samples exceeding 2^bitDepth - 1 clamp to 255.
func (m *Movie) ToU8ByBitDepth(i int, bitDepth uint) ([]byte, error) {
	f, err := m.Frame(i)
	if err != nil {
		return nil, err
	}
	out := make([]byte, m.Width*m.Height)
	shift := int(bitDepth) - 8
	limit := uint32(1) << bitDepth
	for idx, v := range f.Pixels() {
		if uint32(v) >= limit {
			out[idx] = 255
			continue
		}
		if shift >= 0 {
			out[idx] = byte(v >> uint(shift))
		} else {
			out[idx] = byte(v << uint(-shift))
		}
	}
	return out, nil
}

// ToU8ByRange renders frame i as an 8-bit image via
// 255*clamp((v-min)/(max-min), 0, 1), with sign-aware arithmetic so a
// negative numerator clamps to 0 rather than wrapping.
func (m *Movie) ToU8ByRange(i int, min, max uint16) ([]byte, error) {
	f, err := m.Frame(i)
	if err != nil {
		return nil, err
	}
	out := make([]byte, m.Width*m.Height)
	amplitude := int32(max) - int32(min)
	for idx, v := range f.Pixels() {
		val := 255 * (int32(v) - int32(min)) / amplitude
		switch {
		case val < 0:
			out[idx] = 0
		case val > 255:
			out[idx] = 255
		default:
			out[idx] = byte(val)
		}
	}
	return out, nil
}

// tiffStemPad returns the number of decimal digits of n, i.e. the
// zero-pad width used for per-frame TIFF filenames.
func tiffStemPad(n int) int {
	pad := 0
	for n != 0 {
		pad++
		n /= 10
	}
	if pad == 0 {
		pad = 1
	}
	return pad
}

// ExportTIFF writes frame i as a single uncompressed 8- or 16-bit TIFF
// to path.
func (m *Movie) ExportTIFF(i int, path string) error {
	f, err := m.Frame(i)
	if err != nil {
		return err
	}
	return writeTIFF(path, f)
}

// ExportAllTIFFs creates dir (failing if it already exists) and
// writes every frame as a sequentially numbered TIFF inside it,
// publishing progress to cur as it goes.
func (m *Movie) ExportAllTIFFs(dir string, cur *progress.Cursor, log logging.Logger) error {
	if err := os.Mkdir(dir, 0o755); err != nil {
		return corrtrackerr.Wrap(corrtrackerr.Io, dir, "could not create export directory", err)
	}
	pad := tiffStemPad(len(m.frames))
	if cur != nil {
		cur.SetTotal(len(m.frames))
	}
	for i, f := range m.frames {
		if cur != nil {
			cur.SetStep(i)
		}
		name := fmt.Sprintf("%0*d.tif", pad, i+1)
		path := filepath.Join(dir, name)
		if err := writeTIFF(path, f); err != nil {
			return err
		}
		if log != nil {
			log.Debug("exported tiff frame", "path", path)
		}
	}
	if cur != nil {
		cur.SetStep(len(m.frames))
	}
	return nil
}

// StemTIFFName returns the single-frame export filename
// <stem>_<NNN>.tif, where NNN is zero-padded to the digit width of
// nFrames.
func StemTIFFName(stem string, frameNo, nFrames int) string {
	pad := tiffStemPad(nFrames)
	return fmt.Sprintf("%s_%0*d.tif", stem, pad, frameNo)
}

// StemFromPath strips the extension from a source movie path, as used
// to derive both the .dat output path and the TIFF export directory
// name.
func StemFromPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext)
}
