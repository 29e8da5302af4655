/*
NAME
  corrfilter.go

DESCRIPTION
  corrfilter.go loads the reference pattern ("filter") that the
  correlation engine correlates against a search window: a tab
  separated text grid of floating point values.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package corrfilter loads and holds the reference pattern correlated
// against image search windows by package correlate.
//
// It is named corrfilter, not filter, to avoid colliding with the
// teacher's motion-detection filter package, an unrelated concern.
package corrfilter

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/bruot/corrtrack/corrtrackerr"
)

// Filter is a width x height grid of float64 values loaded from a
// tab-separated text file. Width and height are immutable after Load.
type Filter struct {
	Path   string
	Width  int
	Height int
	values []float64
}

// Value returns the filter coefficient at (x, y).
func (f *Filter) Value(x, y int) float64 {
	return f.values[y*f.Width+x]
}

// Load reads a Filter from path. Each non-empty line is one row;
// fields are separated by horizontal tabs. CRLF line endings and a
// trailing newline are tolerated. All rows must have the same field
// count and all fields must parse as float64 (scientific notation
// allowed); any deviation, or an empty file, fails with
// corrtrackerr.FilterFormat.
func Load(path string) (*Filter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, corrtrackerr.Wrap(corrtrackerr.Io, path, "could not open filter file", err)
	}
	defer f.Close()

	var rows [][]string
	width := -1
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if width == -1 {
			width = len(cols)
		} else if len(cols) != width {
			return nil, corrtrackerr.WithPath(corrtrackerr.FilterFormat, path, "rows have inconsistent column counts")
		}
		rows = append(rows, cols)
	}
	if err := sc.Err(); err != nil {
		return nil, corrtrackerr.Wrap(corrtrackerr.Io, path, "could not read filter file", err)
	}
	if len(rows) == 0 {
		return nil, corrtrackerr.WithPath(corrtrackerr.FilterFormat, path, "filter file is empty")
	}

	values := make([]float64, width*len(rows))
	for y, cols := range rows {
		for x, col := range cols {
			v, err := strconv.ParseFloat(strings.TrimSpace(col), 64)
			if err != nil {
				return nil, corrtrackerr.WithPath(corrtrackerr.FilterFormat, path, "non-numeric field in filter file")
			}
			values[y*width+x] = v
		}
	}

	return &Filter{Path: path, Width: width, Height: len(rows), values: values}, nil
}
