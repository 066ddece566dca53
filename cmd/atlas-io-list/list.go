// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/atlasio/lib/record"
)

const (
	formatTable = "table"
	formatYAML  = "yaml"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	linkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

type lister struct {
	out     io.Writer
	logger  *slog.Logger
	details bool
	styled  bool
}

// scan reads every file, continuing past failures so one bad file
// does not hide the others. The joined error reports all of them.
func (l *lister) scan(paths []string, visit func(path string, records []*record.Record)) error {
	var errs []error
	for _, path := range paths {
		records, err := record.ScanFile(path)
		if err != nil {
			l.logger.Debug("scan failed", "path", path, "records", len(records), "error", err)
			errs = append(errs, err)
		}
		if len(records) > 0 || err == nil {
			visit(path, records)
		}
	}
	return errors.Join(errs...)
}

func (l *lister) style(style lipgloss.Style, s string) string {
	if !l.styled {
		return s
	}
	return style.Render(s)
}

func (l *lister) listTable(paths []string) error {
	return l.scan(paths, func(path string, records []*record.Record) {
		for _, rec := range records {
			fmt.Fprintln(l.out, l.style(headingStyle, fmt.Sprintf("%s#%d", path, rec.Offset())))
			fmt.Fprintf(l.out, "  version %s, %s, %s-endian, %s metadata, created %s\n",
				rec.Version(),
				humanize.IBytes(uint64(rec.Length())),
				endianName(rec),
				rec.MetadataFormat(),
				rec.Created().Format(time.RFC3339),
			)

			table := tabwriter.NewWriter(l.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(table, "  KEY\tTYPE\tDATATYPE\tSIZE\tCOMPRESSION\tSECTION")
			for _, key := range rec.Keys() {
				metadata, err := rec.Metadata(key)
				if err != nil {
					continue
				}
				row := summarize(metadata)
				if row.link != "" {
					fmt.Fprintf(table, "  %s\t%s\t%s\t\t\t\n", key, "link", l.style(linkStyle, row.link))
					continue
				}
				fmt.Fprintf(table, "  %s\t%s\t%s\t%s\t%s\t%s\n",
					key, row.kind, row.datatype, row.size, row.compression, row.section)
			}
			table.Flush()

			if l.details {
				for _, key := range rec.Keys() {
					metadata, _ := rec.Metadata(key)
					text, err := yaml.Marshal(map[string]any(metadata))
					if err != nil {
						continue
					}
					fmt.Fprintf(l.out, "  %s:\n%s", key, indent(string(text), "    "))
				}
			}
			fmt.Fprintln(l.out)
		}
	})
}

type listing struct {
	File    string          `yaml:"file"`
	Records []recordListing `yaml:"records"`
}

type recordListing struct {
	Offset         int64                        `yaml:"offset"`
	Length         int64                        `yaml:"length"`
	Version        string                       `yaml:"version"`
	Created        time.Time                    `yaml:"created"`
	Endian         string                       `yaml:"endian"`
	MetadataFormat string                       `yaml:"metadata_format"`
	Checksum       string                       `yaml:"metadata_checksum"`
	Sections       int                          `yaml:"sections"`
	Items          []map[string]record.Metadata `yaml:"items"`
}

func (l *lister) listYAML(paths []string) error {
	var listings []listing
	err := l.scan(paths, func(path string, records []*record.Record) {
		entry := listing{File: path}
		for _, rec := range records {
			summary := recordListing{
				Offset:         rec.Offset(),
				Length:         rec.Length(),
				Version:        rec.Version().String(),
				Created:        rec.Created(),
				Endian:         endianName(rec),
				MetadataFormat: rec.MetadataFormat(),
				Checksum:       rec.MetadataChecksum().String(),
				Sections:       rec.Sections(),
			}
			for _, key := range rec.Keys() {
				metadata, err := rec.Metadata(key)
				if err != nil {
					continue
				}
				summary.Items = append(summary.Items, map[string]record.Metadata{key: metadata})
			}
			entry.Records = append(entry.Records, summary)
		}
		listings = append(listings, entry)
	})

	encoder := yaml.NewEncoder(l.out)
	encoder.SetIndent(2)
	if encodeErr := encoder.Encode(listings); encodeErr != nil {
		return errors.Join(err, fmt.Errorf("writing yaml: %w", encodeErr))
	}
	if closeErr := encoder.Close(); closeErr != nil {
		return errors.Join(err, closeErr)
	}
	return err
}

type itemSummary struct {
	kind        string
	datatype    string
	size        string
	compression string
	section     string
	link        string
}

func summarize(metadata record.Metadata) itemSummary {
	if metadata.IsLink() {
		return itemSummary{link: metadata.Link()}
	}
	summary := itemSummary{
		kind:        metadata.Type(),
		datatype:    metadata.DataType(),
		compression: metadata.Compression(),
		section:     "-",
		size:        "-",
	}
	if summary.kind == "" {
		summary.kind = "?"
	}
	if shape := metadata.Shape(); shape != nil {
		extents := make([]string, len(shape))
		for i, extent := range shape {
			extents[i] = strconv.Itoa(extent)
		}
		summary.datatype += "[" + strings.Join(extents, "x") + "]"
	}
	if summary.kind == record.TypeString {
		if length, ok := metadata.GetInt("length"); ok {
			summary.datatype = fmt.Sprintf("utf8[%d]", length)
		}
	}
	if section := metadata.DataSection(); section > 0 {
		summary.section = strconv.Itoa(section)
		summary.size = humanize.IBytes(uint64(metadata.DataSize()))
	}
	return summary
}

func endianName(rec *record.Record) string {
	if rec.ByteOrder().String() == "BigEndian" {
		return "big"
	}
	return "little"
}

func indent(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")
	var builder strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		builder.WriteString(prefix)
		builder.WriteString(line)
	}
	return builder.String()
}
