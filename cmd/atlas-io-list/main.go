// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/atlasio/lib/record"
	"github.com/bureau-foundation/atlasio/lib/version"
)

// Exit statuses.
const (
	exitOK    = 0
	exitRead  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		format      string
		details     bool
		verbose     bool
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("atlas-io-list", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&format, "format", formatTable, "output format: table or yaml")
	flagSet.BoolVar(&details, "details", false, "include each item's full metadata in table output")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	if showVersion {
		version.Print(stdout, "atlas-io-list", record.CurrentVersion.String(), verbose)
		return exitOK
	}
	if format != formatTable && format != formatYAML {
		fmt.Fprintf(stderr, "error: unknown --format %q (want %s or %s)\n", format, formatTable, formatYAML)
		return exitUsage
	}
	paths := flagSet.Args()
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "error: no files given")
		printUsage(stderr, flagSet)
		return exitUsage
	}

	logger := newLogger(stderr, verbose)
	session := record.NewSession(record.SessionOptions{Logger: logger})
	defer session.Close()

	lister := &lister{
		out:     stdout,
		logger:  logger,
		details: details,
		styled:  isTerminal(stdout),
	}
	var err error
	if format == formatYAML {
		err = lister.listYAML(paths)
	} else {
		err = lister.listTable(paths)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitRead
	}
	return exitOK
}

// newLogger writes text to a terminal and JSON otherwise.
func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}
	if isTerminal(stderr) {
		return slog.New(slog.NewTextHandler(stderr, options))
	}
	return slog.New(slog.NewJSONHandler(stderr, options))
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `atlas-io-list prints the records and items stored in atlas-io files.

Usage:
  atlas-io-list [flags] FILE...

Examples:
  # Summarize every record in a file
  atlas-io-list fields.atlas

  # Full metadata as YAML
  atlas-io-list --format yaml fields.atlas

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
