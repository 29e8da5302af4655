/*
NAME
  xiseq.go

DESCRIPTION
  xiseq.go decodes the XISEQ container: an XML manifest listing one
  frame file per <file> element, each carrying a timestamp attribute,
  plus an imageMetadata.apiContextList block from which the XIMEA
  pixel format is recovered. Frame files are decoded by whichever of
  moviecodec/tiff or moviecodec/genericimage matches their extension.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package xiseq decodes the XISEQ movie container.
package xiseq

import (
	"bufio"
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/moviecodec/genericimage"
	"github.com/bruot/corrtrack/moviecodec/tiff"
	"github.com/bruot/corrtrack/pixel"
)

type xiseqXML struct {
	XMLName xml.Name `xml:"ImageSequence"`
	File    []struct {
		Name      string `xml:",chardata"`
		Timestamp uint64 `xml:"timestamp,attr"`
	} `xml:"file"`
	ImageMetadata struct {
		ApiContextList string `xml:"apiContextList"`
	} `xml:"imageMetadata"`
}

// pixelFmtByFormatInt maps the XIMEA xiApiImg:format integer to
// (bitsPerSample, bitDepth, mask), mirroring MovieFormats::PixelFmtToInt32
// together with PixelFmtBitsPerSample/PixelFmtBitDepth.
var pixelFmtByFormatInt = map[uint32]struct {
	bitsPerSample uint8
	bitDepth      uint
	mask          uint16
}{
	0x01080001: {8, 8, 0},
	0x01100003: {16, 10, 0x03ff},
	0x01100005: {16, 12, 0x0fff},
	0x01100025: {16, 14, 0x3fff},
	0x01100007: {16, 16, 0xffff},
}

// mono8FormatInt is the xiApiImg:format value assumed when
// apiContextList carries no xiApiImg:format line.
const mono8FormatInt = 0x01080001

// parseApiContextList scans the apiContextList block for its
// xiApiImg:format= line and returns the format integer it names,
// defaulting to Mono8 if the line is absent.
func parseApiContextList(list string) (uint32, error) {
	const prefix = "xiApiImg:format="
	sc := bufio.NewScanner(strings.NewReader(list))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		v, err := strconv.ParseUint(line[len(prefix):], 10, 32)
		if err != nil {
			return 0, corrtrackerr.Newf(corrtrackerr.Corrupt, "cannot read xiApiImg:format parameter: %v", err)
		}
		return uint32(v), nil
	}
	return mono8FormatInt, nil
}

// Decode reads the XISEQ movie manifest at path, decoding each listed
// frame file relative to the manifest's own directory.
func Decode(path string) ([]*pixel.Buffer, uint, float64, error) {
	hdrBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, corrtrackerr.Wrap(corrtrackerr.Io, path, "could not read xiseq manifest", err)
	}

	var doc xiseqXML
	if err := xml.Unmarshal(hdrBytes, &doc); err != nil {
		return nil, 0, 0, corrtrackerr.Wrap(corrtrackerr.Corrupt, path, "malformed xiseq xml manifest", err)
	}
	if len(doc.File) == 0 {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "no frames found in xiseq manifest")
	}

	formatInt, err := parseApiContextList(doc.ImageMetadata.ApiContextList)
	if err != nil {
		return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, err.Error())
	}
	fmtInfo, ok := pixelFmtByFormatInt[formatInt]
	if !ok {
		return nil, 0, 0, corrtrackerr.Newf(corrtrackerr.Corrupt, "xiseq manifest %s: unknown xiApiImg:format 0x%08x", path, formatInt)
	}

	framesDir := filepath.Dir(path)
	frames := make([]*pixel.Buffer, len(doc.File))
	for i, fm := range doc.File {
		name := strings.TrimSpace(fm.Name)
		if name == "" {
			return nil, 0, 0, corrtrackerr.WithPath(corrtrackerr.Corrupt, path, "<file> element has no data")
		}
		frameFullPath := filepath.Join(framesDir, name)

		var buf *pixel.Buffer
		var err error
		switch ext := strings.ToLower(filepath.Ext(frameFullPath)); ext {
		case ".tif", ".tiff":
			buf, err = tiff.DecodeFrame(frameFullPath, fmtInfo.bitsPerSample, fmtInfo.mask)
		case ".png", ".jpg", ".jpeg", ".bmp":
			buf, err = genericimage.DecodeFrame(frameFullPath)
		default:
			err = corrtrackerr.WithPath(corrtrackerr.Unsupported, frameFullPath, "unsupported xiseq frame file extension")
		}
		if err != nil {
			return nil, 0, 0, err
		}
		buf.Timestamp = fm.Timestamp
		frames[i] = buf
	}

	return frames, fmtInfo.bitDepth, 0, nil
}
