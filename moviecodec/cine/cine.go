/*
NAME
  cine.go

DESCRIPTION
  cine.go decodes the CINE container used by Phantom high-speed
  cameras: a CINEFILEHEADER, a BITMAPINFOHEADER at OffImageHeader, a
  SETUP block at OffSetup optionally followed by tagged information
  blocks (one of which, type 0x3ea, carries per-frame TIME64
  timestamps), and an OffImageOffsets table of per-frame image
  offsets, each frame prefixed by an annotation block to skip.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package cine decodes the CINE movie container.
package cine

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/pixel"
)

const (
	fileHeaderSize = 44
	biHeaderSize   = 40

	cineTypeMagic = 0x4943 // "CI"
	setupMark     = 0x5453 // "ST"

	setupMarkOffset   = 140
	setupLengthOffset = 142

	timeOnlyBlockType = 0x3ea
)

type time64 struct {
	fractions uint32
	seconds   uint32
}

// diffNanoseconds returns (t2-t1) in nanoseconds, handling the
// fractional-seconds wraparound when t2's fraction is smaller than
// t1's.
func diffNanoseconds(t1, t2 time64) int64 {
	var seconds float64 = float64(t2.seconds) - float64(t1.seconds)
	if t2.fractions >= t1.fractions {
		seconds += float64(t2.fractions-t1.fractions) / math.Pow(2, 32)
	} else {
		seconds -= 1.0
		seconds += float64(4294967295-(t1.fractions-t2.fractions)) / math.Pow(2, 32)
	}
	return int64(seconds * 1e9)
}

// Decode reads the CINE movie at path.
func Decode(path string) ([]*pixel.Buffer, uint, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, corrtrackerr.Wrap(corrtrackerr.Io, path, "could not read cine file", err)
	}
	if len(data) < fileHeaderSize+biHeaderSize {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "file size is inconsistent with cine file format")
	}

	fileType := binary.LittleEndian.Uint16(data[0:2])
	headerSize := binary.LittleEndian.Uint16(data[2:4])
	compression := binary.LittleEndian.Uint16(data[4:6])
	imageCount := binary.LittleEndian.Uint32(data[20:24])
	offImageHeader := binary.LittleEndian.Uint32(data[24:28])
	offSetup := binary.LittleEndian.Uint32(data[28:32])
	offImageOffsets := binary.LittleEndian.Uint32(data[32:36])

	if fileType != cineTypeMagic {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "wrong magic in cine file")
	}
	if headerSize != fileHeaderSize {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "wrong file header size in cine file")
	}
	if compression != 0 {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Unsupported, path, "unsupported compression in cine file")
	}
	nFrames := int(imageCount)
	if nFrames <= 0 {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "cine file declares no frames")
	}

	if int(offImageHeader)+biHeaderSize > len(data) {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "cine bitmap info header out of bounds")
	}
	bi := data[offImageHeader:]
	biSize := binary.LittleEndian.Uint32(bi[0:4])
	if biSize != biHeaderSize {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "wrong bitmap info header size in cine file")
	}
	width := binary.LittleEndian.Uint32(bi[4:8])
	height := binary.LittleEndian.Uint32(bi[8:12])
	biBitCount := binary.LittleEndian.Uint16(bi[14:16])
	biCompression := binary.LittleEndian.Uint32(bi[16:20])
	biSizeImage := binary.LittleEndian.Uint32(bi[20:24])

	var bitsPerSample uint8
	var bitDepth uint
	switch biBitCount {
	case 8:
		bitsPerSample, bitDepth = 8, 8
	case 16:
		bitsPerSample, bitDepth = 16, 16
	default:
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Unsupported, path, "unsupported pixel format in cine file")
	}
	if biCompression != 0 {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Unsupported, path, "unsupported bitmap info compression in cine file")
	}
	if biSizeImage != width*height*uint32(bitsPerSample)/8 {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "inconsistent image size in bitmap info in cine file")
	}

	if int(offSetup)+setupLengthOffset+2 > len(data) {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "cine setup block out of bounds")
	}
	setup := data[offSetup:]
	if binary.LittleEndian.Uint16(setup[setupMarkOffset:setupMarkOffset+2]) != setupMark {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "corrupted setup header in cine file")
	}
	setupLength := binary.LittleEndian.Uint16(setup[setupLengthOffset : setupLengthOffset+2])

	hasTimeOnly := false
	var timeOnlyOff uint32
	cursor := uint64(offSetup) + uint64(setupLength)
	if cursor < uint64(offImageOffsets) {
		for cursor < uint64(offImageOffsets) {
			if cursor+8 > uint64(len(data)) {
				break
			}
			blockSize := binary.LittleEndian.Uint32(data[cursor : cursor+4])
			blockType := binary.LittleEndian.Uint16(data[cursor+4 : cursor+6])
			if blockType == timeOnlyBlockType {
				hasTimeOnly = true
				timeOnlyOff = uint32(cursor) + 8
				break
			}
			if blockSize == 0 {
				break
			}
			cursor += uint64(blockSize)
		}
	}

	if int(offImageOffsets)+8*nFrames > len(data) {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "cine image offsets table out of bounds")
	}

	frameDataSize := int(width) * int(height) * int(bitsPerSample) / 8
	frames := make([]*pixel.Buffer, nFrames)
	var firstTime time64

	for i := 0; i < nFrames; i++ {
		offOff := int(offImageOffsets) + 8*i
		imageOffset := binary.LittleEndian.Uint64(data[offOff : offOff+8])
		if imageOffset+4 > uint64(len(data)) {
			return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "cine image offset out of bounds")
		}
		annotationSize := binary.LittleEndian.Uint32(data[imageOffset : imageOffset+4])
		dataStart := imageOffset + uint64(annotationSize)
		if dataStart+uint64(frameDataSize) > uint64(len(data)) {
			return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "could not read frame data in cine file")
		}
		chunk := data[dataStart : dataStart+uint64(frameDataSize)]

		buf := pixel.NewBuffer(width, height, bitsPerSample)
		px := buf.Pixels()
		if bitsPerSample == 8 {
			for k, b := range chunk {
				px[k] = uint16(b)
			}
		} else {
			for k := range px {
				px[k] = binary.LittleEndian.Uint16(chunk[2*k : 2*k+2])
			}
		}

		if i == nFrames-1 && dataStart+uint64(frameDataSize) < uint64(len(data)) {
			return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "cine file size is larger than expected")
		}

		var ts uint64
		if hasTimeOnly {
			off := int(timeOnlyOff) + 8*i
			if off+8 > len(data) {
				return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "cine time64 block out of bounds")
			}
			t := time64{
				fractions: binary.LittleEndian.Uint32(data[off : off+4]),
				seconds:   binary.LittleEndian.Uint32(data[off+4 : off+8]),
			}
			if i == 0 {
				firstTime = t
			}
			ts = uint64(diffNanoseconds(firstTime, t))
		}
		buf.Timestamp = ts
		frames[i] = buf
	}

	return frames, bitDepth, 0, nil
}
