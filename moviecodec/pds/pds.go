/*
NAME
  pds.go

DESCRIPTION
  pds.go decodes the PDS container: a flat binary format with a
  4-byte magic sequence, a 4-byte frame count, and one 584-byte
  per-frame header (carrying, among other things, float-encoded width,
  height and pixel format) followed by that frame's raw pixel data,
  repeated nFrames times. PDS carries no usable timestamps: its
  per-frame timestamp field is stored as a lossy float and is ignored.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package pds decodes the PDS movie container.
package pds

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/pixel"
)

const (
	magic = 0x04040404

	frameHeaderSize = 584
	// Offsets of the width/height/pixel-format floats within the first
	// frame header, relative to the start of the file.
	widthOffset  = 0x8 + 0x1ac
	pixFmtOffset = 0x8 + 0x1c0
)

// Decode reads the PDS movie at path.
func Decode(path string) ([]*pixel.Buffer, uint, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, corrtrackerr.Wrap(corrtrackerr.Io, path, "could not read pds file", err)
	}
	if len(data) < 8 {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "file size is inconsistent with pds file format")
	}

	if binary.LittleEndian.Uint32(data[0:4]) != magic {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "wrong magic in pds file")
	}
	nFrames := int(binary.LittleEndian.Uint32(data[4:8]))
	if nFrames <= 0 {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "pds file declares no frames")
	}
	if len(data) < 8+frameHeaderSize {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "pds file too short for first frame header")
	}

	width := uint32(readFloat32(data, widthOffset))
	height := uint32(readFloat32(data, widthOffset+4))
	if width == 0 || height == 0 {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "pds file declares zero width or height")
	}

	floatPixelFmt := readFloat32(data, pixFmtOffset)
	var bitsPerSample uint8
	var bitDepth uint
	switch floatPixelFmt {
	case 0.0:
		bitsPerSample, bitDepth = 8, 8
	case 1.0:
		bitsPerSample, bitDepth = 16, 16
	default:
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "pixel format is neither mono8 nor mono16")
	}

	frameDataSize := int(width) * int(height) * int(bitsPerSample) / 8
	wantSize := 8 + (frameHeaderSize+frameDataSize)*nFrames
	if len(data) != wantSize {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "wrong pds file size")
	}

	frames := make([]*pixel.Buffer, nFrames)
	offset := 8
	for i := 0; i < nFrames; i++ {
		offset += frameHeaderSize
		chunk := data[offset : offset+frameDataSize]
		offset += frameDataSize

		buf := pixel.NewBuffer(width, height, bitsPerSample)
		px := buf.Pixels()
		if bitsPerSample == 8 {
			for k, b := range chunk {
				px[k] = uint16(b)
			}
		} else {
			for k := range px {
				px[k] = uint16(chunk[2*k])<<8 | uint16(chunk[2*k+1])
			}
		}
		frames[i] = buf
	}

	return frames, bitDepth, 0, nil
}

// readFloat32 reads a little-endian IEEE 754 float32 at offset off.
func readFloat32(data []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
}
