/*
NAME
  tiff_io.go

DESCRIPTION
  tiff_io.go writes a pixel.Buffer as an uncompressed single-sample
  TIFF using golang.org/x/image/tiff, the export half of Movie's TIFF
  round trip. See moviecodec/tiff for the decode half.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

package movie

import (
	"image"
	"os"

	"golang.org/x/image/tiff"

	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/pixel"
)

// writeTIFF encodes f as an uncompressed TIFF and writes it to path.
func writeTIFF(path string, f *pixel.Buffer) error {
	var img image.Image
	if f.BitsPerSample == 8 {
		gray := image.NewGray(image.Rect(0, 0, int(f.Width), int(f.Height)))
		for i, v := range f.Pixels() {
			gray.Pix[i] = byte(v)
		}
		img = gray
	} else {
		gray16 := image.NewGray16(image.Rect(0, 0, int(f.Width), int(f.Height)))
		for i, v := range f.Pixels() {
			gray16.Pix[2*i] = byte(v >> 8)
			gray16.Pix[2*i+1] = byte(v)
		}
		img = gray16
	}

	out, err := os.Create(path)
	if err != nil {
		return corrtrackerr.Wrap(corrtrackerr.Io, path, "could not create tiff file", err)
	}
	defer out.Close()

	if err := tiff.Encode(out, img, &tiff.Options{Compression: tiff.Uncompressed}); err != nil {
		return corrtrackerr.Wrap(corrtrackerr.Io, path, "could not encode tiff", err)
	}
	return nil
}
