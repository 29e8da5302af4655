/*
NAME
  tiff.go

DESCRIPTION
  tiff.go decodes TIFF images, both as a single-frame movie container
  and as the per-frame image format referenced by an XISEQ manifest.
  Decoding is done by golang.org/x/image/tiff; an image is accepted
  when that library returns it as 8-bit (image.Gray) or 16-bit
  (image.Gray16) grayscale, and fails Unsupported otherwise. The
  compression, planar-configuration and orientation tags are not
  checked: any compression the library can decode is accepted, and
  orientation is ignored.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package tiff decodes TIFF movie containers and frame files.
package tiff

import (
	"image"
	"os"

	"golang.org/x/image/tiff"

	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/pixel"
)

// Decode loads path as a single-frame TIFF movie. bitDepth is guessed
// to equal bitsPerSample, since a bare TIFF carries no semantic
// precision of its own.
func Decode(path string) ([]*pixel.Buffer, uint, float64, error) {
	buf, err := DecodeFrame(path, 0, 0)
	if err != nil {
		return nil, 0, 0, err
	}
	return []*pixel.Buffer{buf}, uint(buf.BitsPerSample), 0, nil
}

// DecodeFrame loads path as a single TIFF frame. If wantBits is
// nonzero, the decoded bits-per-sample must match it (as used by the
// xiseq decoder, which already knows the expected pixel format);
// samples are then masked to mask if it is nonzero.
func DecodeFrame(path string, wantBits uint8, mask uint16) (*pixel.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, corrtrackerr.Wrap(corrtrackerr.Io, path, "could not open tiff", err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, corrtrackerr.Wrap(corrtrackerr.Corrupt, path, "could not decode tiff", err)
	}

	bounds := img.Bounds()
	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())

	var bits uint8
	var buf *pixel.Buffer
	switch src := img.(type) {
	case *image.Gray:
		bits = 8
		buf = pixel.NewBuffer(width, height, 8)
		px := buf.Pixels()
		for y := 0; y < int(height); y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+int(width)]
			for x, v := range row {
				px[y*int(width)+x] = uint16(v)
			}
		}
	case *image.Gray16:
		bits = 16
		buf = pixel.NewBuffer(width, height, 16)
		px := buf.Pixels()
		for y := 0; y < int(height); y++ {
			for x := 0; x < int(width); x++ {
				i := y*src.Stride + 2*x
				v := uint16(src.Pix[i])<<8 | uint16(src.Pix[i+1])
				if mask != 0 {
					v &= mask
				}
				px[y*int(width)+x] = v
			}
		}
	default:
		return nil, corrtrackerr.WithPath(corrtrackerr.Unsupported, path, "only 8- and 16-bit single-sample TIFFs are supported")
	}

	if wantBits != 0 && bits != wantBits {
		return nil, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "tiff bits-per-sample does not match declared pixel format")
	}

	return buf, nil
}
