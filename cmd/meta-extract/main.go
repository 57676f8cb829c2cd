// Command meta-extract prints the metadata of media files.
//
// Usage:
//
//	meta-extract [-j] [-v] FILE...
//	meta-extract [-j] [-v] DIR
//
// With a directory argument every regular file directly inside it is
// processed (non-recursive). By default entries print as aligned
// "Tag => value" lines; -j dumps one JSON object per run instead.
//
// meta-extract is a consumer of the public mediameta API: it contains no
// decode logic of its own.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/simonhull/mediameta"
)

func main() {
	jsonOut := flag.Bool("j", false, "dump metadata as JSON")
	verbose := flag.Bool("v", false, "verbose diagnostics")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.WarnLevel)
	}

	paths, err := expandArgs(flag.Args())
	if err != nil {
		log.Error().Err(err).Msg("bad arguments")
		os.Exit(2)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: meta-extract [-j] [-v] FILE...|DIR")
		os.Exit(2)
	}

	// One parser for the whole run: its read buffer is recycled from file
	// to file.
	parser := mediameta.New()

	var errs *multierror.Error
	dump := make(map[string]map[string]string, len(paths))

	for _, path := range paths {
		entries, err := extract(parser, path, log)
		if err != nil {
			log.Error().Str("file", path).Err(err).Msg("extract failed")
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		if *jsonOut {
			dump[path] = entries
			continue
		}
		printAligned(path, entries)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dump); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		os.Exit(1)
	}
}

// expandArgs resolves a single-directory argument into the regular files
// it contains; anything else passes through as-is.
func expandArgs(args []string) ([]string, error) {
	if len(args) != 1 {
		return args, nil
	}
	fi, err := os.Stat(args[0])
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return args, nil
	}

	dirents, err := os.ReadDir(args[0])
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, de := range dirents {
		if de.Type().IsRegular() {
			paths = append(paths, filepath.Join(args[0], de.Name()))
		}
	}
	return paths, nil
}

// extract parses one file and returns its metadata as display strings.
func extract(parser *mediameta.MediaParser, path string, log zerolog.Logger) (map[string]string, error) {
	ms, err := mediameta.FromFile(path)
	if err != nil {
		return nil, err
	}
	defer ms.Close()

	log.Debug().Str("file", path).Stringer("format", ms.Format()).Msg("sniffed")

	switch {
	case ms.HasExif():
		return extractExif(parser, ms, log)
	case ms.HasTrack():
		return extractTrack(parser, ms)
	default:
		return nil, fmt.Errorf("format %s carries no metadata", ms.Format())
	}
}

func extractExif(parser *mediameta.MediaParser, ms *mediameta.MediaSource, log zerolog.Logger) (map[string]string, error) {
	iter, err := parser.ParseExif(ms)
	if errors.Is(err, mediameta.ErrExifNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := make(map[string]string)
	for iter.Next() {
		e := iter.Entry()
		v, err := e.Value()
		if err != nil {
			// A single bad entry doesn't spoil the rest of the file.
			log.Warn().Str("tag", e.TagName()).Err(err).Msg("unresolvable entry")
			continue
		}
		name := e.TagName()
		if _, seen := entries[name]; !seen {
			entries[name] = v.String()
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func extractTrack(parser *mediameta.MediaParser, ms *mediameta.MediaSource) (map[string]string, error) {
	info, err := parser.ParseTrackInfo(ms)
	if errors.Is(err, mediameta.ErrTrackNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := make(map[string]string)
	for tag, v := range info.All() {
		entries[tag.String()] = v.String()
	}
	return entries, nil
}

// printAligned prints one file's entries as "Tag => value" lines, the
// arrows lined up.
func printAligned(path string, entries map[string]string) {
	fmt.Printf("%s:\n", path)
	if len(entries) == 0 {
		fmt.Println("  (no metadata)")
		return
	}

	names := make([]string, 0, len(entries))
	width := 0
	for name := range entries {
		names = append(names, name)
		if len(name) > width {
			width = len(name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("  %-*s => %s\n", width, name, entries[name])
	}
	fmt.Println()
}
