/*
NAME
  corrtrack - command-line sub-pixel particle tracker.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package corrtrack is a command-line host for the particle-tracking
// engine: it opens a movie, loads a reference filter, tracks the
// configured anchor points across every frame, and writes the
// resulting .dat file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/bruot/corrtrack/corrfilter"
	"github.com/bruot/corrtrack/corrtrackerr"
	"github.com/bruot/corrtrack/movie"
	"github.com/bruot/corrtrack/track"
)

// Current software version.
const version = "1.0.0"

// Logging configuration.
const (
	logPath      = "corrtrack.log"
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

func main() {
	var (
		showVersion     = flag.Bool("version", false, "show version")
		moviePath       = flag.String("movie", "", "path to the movie file to analyse")
		filterPath      = flag.String("filter", "", "path to the reference filter file")
		windowW         = flag.Uint("window-w", 15, "correlation window width in pixels")
		windowH         = flag.Uint("window-h", 15, "correlation window height in pixels")
		fitRadius       = flag.Float64("fit-radius", 1.5, "sub-pixel fit radius in pixels")
		anchorsFlag     = flag.String("anchors", "", "comma-separated list of x:y anchor points, e.g. 100:80,200:150")
		logVerbosityOpt = flag.Int("log-level", int(logVerbosity), "log verbosity (0=Debug .. 4=Fatal)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(int8(*logVerbosityOpt), fileLog, logSuppress)

	log.Info("starting corrtrack", "version", version)

	if *moviePath == "" || *filterPath == "" {
		log.Error("missing required flags", "movie", *moviePath, "filter", *filterPath)
		fmt.Fprintln(os.Stderr, "usage: corrtrack -movie <path> -filter <path> -anchors x1:y1,x2:y2,...")
		os.Exit(2)
	}

	anchors, err := parseAnchors(*anchorsFlag)
	if err != nil {
		log.Error("invalid anchors flag", "error", err)
		os.Exit(2)
	}

	if err := run(*moviePath, *filterPath, uint32(*windowW), uint32(*windowH), *fitRadius, anchors, log); err != nil {
		log.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(moviePath, filterPath string, windowW, windowH uint32, fitRadius float64, anchors []track.AnchorPoint, log logging.Logger) error {
	m, err := movie.Open(moviePath, log)
	if err != nil {
		return err
	}
	log.Info("movie opened", "frames", m.NFrames(), "width", m.Width, "height", m.Height)

	filt, err := corrfilter.Load(filterPath)
	if err != nil {
		return err
	}
	log.Info("filter loaded", "width", filt.Width, "height", filt.Height)

	cfg := track.Config{
		WindowW:   windowW,
		WindowH:   windowH,
		FitRadius: fitRadius,
		Filter:    filt,
		Anchors:   anchors,
	}
	t := track.New(m, cfg, log)

	res, err := t.Analyse(track.Callbacks{
		OnProgress: func(step, total int) {
			if step%50 == 0 {
				log.Debug("analysing", "frame", step, "total", total)
			}
		},
	})
	if err != nil {
		return err
	}
	log.Info("analysis complete", "output", res.OutputPath, "frames", res.NFrames)
	return nil
}

// parseAnchors parses a comma-separated list of x:y anchor points.
func parseAnchors(s string) ([]track.AnchorPoint, error) {
	if s == "" {
		return nil, corrtrackerr.New(corrtrackerr.Corrupt, "no anchors specified")
	}
	parts := strings.Split(s, ",")
	anchors := make([]track.AnchorPoint, 0, len(parts))
	for _, p := range parts {
		xy := strings.SplitN(p, ":", 2)
		if len(xy) != 2 {
			return nil, corrtrackerr.Newf(corrtrackerr.Corrupt, "invalid anchor %q, expected x:y", p)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xy[0]))
		if err != nil {
			return nil, corrtrackerr.Newf(corrtrackerr.Corrupt, "invalid anchor x in %q: %v", p, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(xy[1]))
		if err != nil {
			return nil, corrtrackerr.Newf(corrtrackerr.Corrupt, "invalid anchor y in %q: %v", p, err)
		}
		anchors = append(anchors, track.AnchorPoint{X: x, Y: y})
	}
	return anchors, nil
}
