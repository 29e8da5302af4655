/*
NAME
  genericimage.go

DESCRIPTION
  genericimage.go decodes single 8-bit frames from the generic,
  non-scientific image formats PNG, JPEG and BMP.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package genericimage decodes single-frame PNG/JPEG/BMP movies.
package genericimage

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/pixel"
)

// Decode loads path as a single-frame, 8-bit movie.
func Decode(path string) ([]*pixel.Buffer, uint, float64, error) {
	buf, err := DecodeFrame(path)
	if err != nil {
		return nil, 0, 0, err
	}
	return []*pixel.Buffer{buf}, 8, 0, nil
}

// DecodeFrame loads path as a single 8-bit grayscale frame, converting
// from whatever colour model the source image uses.
func DecodeFrame(path string) (*pixel.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, corrtrackerr.Wrap(corrtrackerr.Io, path, "could not open image", err)
	}
	defer f.Close()

	var img image.Image
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		img, err = png.Decode(f)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(f)
	case ".bmp":
		img, err = bmp.Decode(f)
	default:
		return nil, corrtrackerr.WithPath(corrtrackerr.Unsupported, path, "unsupported generic image extension")
	}
	if err != nil {
		return nil, corrtrackerr.Wrap(corrtrackerr.Corrupt, path, "could not decode image", err)
	}

	bounds := img.Bounds()
	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())
	buf := pixel.NewBuffer(width, height, 8)
	px := buf.Pixels()
	for y := 0; y < int(height); y++ {
		for x := 0; x < int(width); x++ {
			gray := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			px[y*int(width)+x] = uint16(gray.Y)
		}
	}
	return buf, nil
}
