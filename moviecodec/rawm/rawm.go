/*
NAME
  rawm.go

DESCRIPTION
  rawm.go decodes the RAWM container: an XML sidecar header describing
  pixel format, endianness and per-frame timestamps, paired with a
  binary .raw pixel stream sharing the header's filename stem.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package rawm decodes the RAWM movie container.
package rawm

import (
	"encoding/binary"
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/pixel"
)

type rawmXML struct {
	XMLName xml.Name `xml:"movie_metadata"`
	Version string   `xml:"version,attr"`
	Header  struct {
		ImageDataFormat string  `xml:"image_data_format"`
		PixelFormat     string  `xml:"pixel_format"`
		Endianness      string  `xml:"endianness"`
		Width           uint32  `xml:"width"`
		Height          uint32  `xml:"height"`
		Framerate       float64 `xml:"framerate"`
	} `xml:"header"`
	Frames struct {
		Frame []struct {
			Timestamp uint64 `xml:"timestamp,attr"`
		} `xml:"frame"`
	} `xml:"frames"`
}

// pixelFmtBits maps a pixel format name to (bitsPerSample, bitDepth, mask).
var pixelFmtBits = map[string]struct {
	bitsPerSample uint8
	bitDepth      uint
	mask          uint16
}{
	"Mono8":  {8, 8, 0},
	"Mono10": {16, 10, 0x03ff},
	"Mono12": {16, 12, 0x0fff},
	"Mono14": {16, 14, 0x3fff},
	"Mono16": {16, 16, 0xffff},
}

// versionLess reports whether a < b, comparing dot-separated integer
// components lexicographically, as the original's Version::operator<
// did.
func versionLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		av, _ := strconv.Atoi(as[i])
		bv, _ := strconv.Atoi(bs[i])
		if av != bv {
			return av < bv
		}
	}
	return len(as) < len(bs)
}

// Decode reads the RAWM movie at path (a .rawm XML header) together
// with its .raw binary sidecar sharing the same filename stem.
func Decode(path string) ([]*pixel.Buffer, uint, float64, error) {
	hdrBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, corrtrackerr.Wrap(corrtrackerr.Io, path, "could not read rawm header", err)
	}

	var doc rawmXML
	if err := xml.Unmarshal(hdrBytes, &doc); err != nil {
		return nil, 0, 0, corrtrackerr.Wrap(corrtrackerr.Corrupt, path, "malformed rawm xml header", err)
	}
	if doc.Version == "" {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "rawm header missing version attribute")
	}

	var pixelFmtName string
	if versionLess(doc.Version, "1.3") {
		if doc.Header.ImageDataFormat != "MONO8" {
			return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "rawm metadata version < 1.3 only supports MONO8 images")
		}
		pixelFmtName = "Mono8"
	} else {
		pixelFmtName = doc.Header.PixelFormat
	}
	fmtInfo, ok := pixelFmtBits[pixelFmtName]
	if !ok {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "invalid rawm pixel format: "+pixelFmtName)
	}

	endianness := doc.Header.Endianness
	if versionLess(doc.Version, "1.3") {
		endianness = "little"
	}
	switch endianness {
	case "little":
	case "big":
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Unsupported, path, "big-endian rawm data is not supported")
	default:
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "unknown rawm endianness: "+endianness)
	}

	width, height := doc.Header.Width, doc.Header.Height
	if width == 0 || height == 0 {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "rawm header missing width/height")
	}

	timestamps := make([]uint64, len(doc.Frames.Frame))
	for i, f := range doc.Frames.Frame {
		timestamps[i] = f.Timestamp
	}
	if len(timestamps) == 0 {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "no frames found in rawm xml file")
	}

	rawPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".raw"
	rawBytes, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, 0, 0, corrtrackerr.Wrap(corrtrackerr.Io, rawPath, "could not read .raw sidecar", err)
	}

	bytesPerSample := int(fmtInfo.bitsPerSample) / 8
	wantSize := int(width) * int(height) * bytesPerSample * len(timestamps)
	if len(rawBytes) != wantSize {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, rawPath, "raw file size inconsistent with rawm header")
	}

	frameSize := int(width) * int(height) * bytesPerSample
	frames := make([]*pixel.Buffer, len(timestamps))
	for i := range frames {
		chunk := rawBytes[i*frameSize : (i+1)*frameSize]
		buf := pixel.NewBuffer(width, height, fmtInfo.bitsPerSample)
		px := buf.Pixels()
		if fmtInfo.bitsPerSample == 8 {
			for k, b := range chunk {
				px[k] = uint16(b)
			}
		} else {
			for k := range px {
				v := binary.LittleEndian.Uint16(chunk[2*k : 2*k+2])
				if fmtInfo.mask != 0 {
					v &= fmtInfo.mask
				}
				px[k] = v
			}
		}
		buf.Timestamp = timestamps[i]
		frames[i] = buf
	}

	return frames, fmtInfo.bitDepth, doc.Header.Framerate, nil
}
