/*
NAME
  open.go

DESCRIPTION
  open.go dispatches Movie opening to the format-specific decoder in
  package moviecodec, based on the case-insensitive file extension.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

package movie

import (
	"path/filepath"
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/moviecodec/cine"
	"github.com/bruot/corrtrack/moviecodec/genericimage"
	"github.com/bruot/corrtrack/moviecodec/pds"
	"github.com/bruot/corrtrack/moviecodec/rawm"
	"github.com/bruot/corrtrack/moviecodec/tiff"
	"github.com/bruot/corrtrack/moviecodec/xiseq"
	"github.com/bruot/corrtrack/pixel"
)

// Open opens the movie at path, dispatching on its (case-insensitive)
// extension to the appropriate decoder in package moviecodec. log may
// be nil.
func Open(path string, log logging.Logger) (*Movie, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		frames    []*pixel.Buffer
		bitDepth  uint
		framerate float64
		format    Format
		err       error
	)

	switch ext {
	case ".rawm":
		format = Rawm
		frames, bitDepth, framerate, err = rawm.Decode(path)
	case ".xiseq":
		format = Xiseq
		frames, bitDepth, framerate, err = xiseq.Decode(path)
	case ".pds":
		format = Pds
		frames, bitDepth, framerate, err = pds.Decode(path)
	case ".cine":
		format = Cine
		frames, bitDepth, framerate, err = cine.Decode(path)
	case ".tif", ".tiff":
		format = Tiff
		frames, bitDepth, framerate, err = tiff.Decode(path)
	case ".png", ".jpg", ".jpeg", ".bmp":
		format = Image
		frames, bitDepth, framerate, err = genericimage.Decode(path)
	default:
		return nil, corrtrackerr.WithPath(corrtrackerr.Unsupported, path, "unknown file extension")
	}
	if err != nil {
		return nil, err
	}

	if log != nil {
		log.Info("movie opened", "path", path, "format", format.String(), "frames", len(frames))
	}

	return NewMovie(format, bitDepth, path, framerate, frames)
}
