// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/bureau-foundation/atlasio/lib/checksum"
	"github.com/bureau-foundation/atlasio/lib/clock"
	"github.com/bureau-foundation/atlasio/lib/codec"
	"github.com/bureau-foundation/atlasio/lib/compression"
	"github.com/bureau-foundation/atlasio/lib/config"
	"github.com/bureau-foundation/atlasio/lib/stream"
)

// Minimum room reserved for a compressed data section by
// EstimateMaximumSize. Small inputs can grow under compression.
const minimumCompressedEstimate = 10 * 1024

// WriterOptions configures a Writer. Zero values select the
// process-wide defaults.
type WriterOptions struct {
	// Defaults overrides the process-wide configuration.
	Defaults *config.Defaults

	// Compression is the algorithm applied to every data section
	// unless an item overrides it. "none" disables compression.
	Compression string

	// DisableChecksum records every checksum as "none:" regardless
	// of configuration.
	DisableChecksum bool

	// MetadataFormat is "yaml" or "cbor".
	MetadataFormat string

	// Clock stamps the record creation time. Default: clock.Real().
	Clock clock.Clock

	// Logger receives debug output. Default: slog.Default().
	Logger *slog.Logger
}

// ItemOption adjusts how a single item is stored.
type ItemOption func(*pendingItem)

// WithCompression overrides the writer's compression for one item.
func WithCompression(algorithm string) ItemOption {
	return func(item *pendingItem) {
		item.compression = algorithm
	}
}

// Writer accumulates items and serializes them as one record.
//
// Items are kept in insertion order. Each item whose encoder reports
// a non-zero size is assigned the next data section; other items
// (links, empty values) have section 0. A Writer is not safe for
// concurrent use.
type Writer struct {
	compression    string
	checksum       string
	metadataFormat string
	clock          clock.Clock
	logger         *slog.Logger

	keys     []string
	items    map[string]*pendingItem
	sections int
}

type pendingItem struct {
	encoder     Encoder
	metadata    Metadata
	size        int
	section     int
	compression string
}

// NewWriter returns an empty Writer. It fails only when the
// process-wide configuration cannot be loaded.
func NewWriter(options WriterOptions) (*Writer, error) {
	defaults, err := resolveDefaults(options.Defaults)
	if err != nil {
		return nil, err
	}
	w := &Writer{
		compression:    options.Compression,
		checksum:       defaults.ChecksumAlgorithm,
		metadataFormat: options.MetadataFormat,
		clock:          options.Clock,
		logger:         options.Logger,
		items:          make(map[string]*pendingItem),
	}
	if w.compression == "" {
		w.compression = defaults.CompressionAlgorithm
	}
	if options.DisableChecksum || !defaults.ChecksumWrite {
		w.checksum = checksum.None
	}
	if w.metadataFormat == "" {
		w.metadataFormat = defaults.MetadataFormat
	}
	if w.clock == nil {
		w.clock = clock.Real()
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if !compression.Supported(w.compression) {
		return nil, usageErrorf("unsupported compression %q (supported: %v)", w.compression, compression.Algorithms())
	}
	if !codec.Supported(w.metadataFormat) {
		return nil, usageErrorf("unsupported metadata format %q", w.metadataFormat)
	}
	return w, nil
}

// Set adds an item. The encoder's metadata is captured now; its data
// is produced when the record is written. Setting an existing key is
// a usage error.
func (w *Writer) Set(key string, value Encoder, options ...ItemOption) error {
	if key == "" {
		return usageErrorf("empty item key")
	}
	if _, exists := w.items[key]; exists {
		return usageErrorf("item %q already set", key)
	}
	metadata := make(Metadata)
	size, err := value.EncodeMetadata(metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata for %q: %w", key, err)
	}
	if size < 0 {
		return fmt.Errorf("%w: encoder for %q reported negative size %d", ErrNotEncodable, key, size)
	}
	item := &pendingItem{
		encoder:     value,
		metadata:    metadata,
		size:        size,
		compression: w.compression,
	}
	for _, option := range options {
		option(item)
	}
	if !compression.Supported(item.compression) {
		return usageErrorf("item %q: unsupported compression %q", key, item.compression)
	}
	if size > 0 {
		w.sections++
		item.section = w.sections
	}
	w.keys = append(w.keys, key)
	w.items[key] = item
	return nil
}

// SetAny adds an item of any type EncoderFor can resolve.
func (w *Writer) SetAny(key string, value any, options ...ItemOption) error {
	encoder, err := EncoderFor(value)
	if err != nil {
		return fmt.Errorf("item %q: %w", key, err)
	}
	return w.Set(key, encoder, options...)
}

// Keys returns the item keys in insertion order.
func (w *Writer) Keys() []string {
	return append([]string(nil), w.keys...)
}

// document builds the metadata section. compressions gives the
// algorithm each data-bearing item is actually stored with.
func (w *Writer) document(compressions map[string]string) *codec.Document {
	doc := codec.NewDocument()
	for _, key := range w.keys {
		item := w.items[key]
		metadata := item.metadata.Clone()
		if item.section > 0 {
			metadata.Set("data.section", item.section)
			metadata.Set("data.size", item.size)
			if algorithm := compressions[key]; algorithm != compression.None {
				metadata.Set("data.compression.type", algorithm)
			}
		}
		doc.Set(key, map[string]any(metadata))
	}
	return doc
}

func (w *Writer) declaredCompressions() map[string]string {
	compressions := make(map[string]string, len(w.keys))
	for key, item := range w.items {
		compressions[key] = item.compression
	}
	return compressions
}

// EstimateMaximumSize returns an upper bound on the number of bytes
// Write will produce.
func (w *Writer) EstimateMaximumSize() (int64, error) {
	metadata, err := codec.Encode(w.metadataFormat, w.document(w.declaredCompressions()))
	if err != nil {
		return 0, fmt.Errorf("%w: encoding metadata: %w", ErrNotEncodable, err)
	}
	size := int64(headSize + 2*markerSize + len(metadata) + 2*markerSize + indexEntrySize*w.sections)
	for _, key := range w.keys {
		item := w.items[key]
		if item.section == 0 {
			continue
		}
		size += 2 * markerSize
		if item.compression == compression.None {
			size += int64(item.size)
		} else {
			size += int64(max(math.Ceil(1.2*float64(item.size)), minimumCompressedEstimate))
		}
	}
	return size + markerSize, nil
}

type encodedSection struct {
	key     string
	payload []byte
	sum     checksum.Checksum
}

// encodeSections produces the stored bytes of every data section in
// section order, and records the compression actually applied.
func (w *Writer) encodeSections() ([]encodedSection, map[string]string, error) {
	sections := make([]encodedSection, 0, w.sections)
	compressions := make(map[string]string, w.sections)
	for _, key := range w.keys {
		item := w.items[key]
		if item.section == 0 {
			continue
		}
		data := NewData(make([]byte, 0, item.size), hostOrder)
		if err := item.encoder.EncodeData(&data); err != nil {
			return nil, nil, fmt.Errorf("encoding data for %q: %w", key, err)
		}
		if data.Len() != item.size {
			return nil, nil, fmt.Errorf("%w: encoder for %q produced %d bytes, declared %d",
				ErrNotEncodable, key, data.Len(), item.size)
		}
		payload, err := compression.Compress(data.Bytes(), item.compression)
		applied := item.compression
		if compression.IsIncompressible(err) {
			payload, applied, err = data.Bytes(), compression.None, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("compressing %q with %s: %w", key, item.compression, err)
		}
		if applied != item.compression {
			w.logger.Debug("data section stored uncompressed",
				"key", key,
				"requested", item.compression,
				"size", item.size,
			)
		}
		compressions[key] = applied
		sections = append(sections, encodedSection{
			key:     key,
			payload: payload,
			sum:     checksum.Compute(payload, w.checksum),
		})
	}
	return sections, compressions, nil
}

// Write serializes the record at the current position of out and
// returns the number of bytes written. On return out is positioned at
// the end of the record. The head and index are written twice: first
// as placeholders, then, once every offset is known, for real.
func (w *Writer) Write(out io.WriteSeeker) (int64, error) {
	begin, err := stream.Position(out)
	if err != nil {
		return 0, writeErrorf("locating record start: %v", err)
	}
	sections, compressions, err := w.encodeSections()
	if err != nil {
		return 0, err
	}
	metadata, err := codec.Encode(w.metadataFormat, w.document(compressions))
	if err != nil {
		return 0, fmt.Errorf("%w: encoding metadata: %w", ErrNotEncodable, err)
	}

	order := hostOrder
	cursor := &positionWriter{out: out}
	head := newRecordHead()
	head.metadataFormat = w.metadataFormat

	cursor.write(head.marshal(order))

	head.metadataOffset = uint64(cursor.position)
	cursor.write(marker(metadataBeginMarker))
	cursor.write(metadata)
	cursor.write(marker(metadataEndMarker))
	head.metadataLength = uint64(cursor.position) - head.metadataOffset
	head.metadataChecksum = checksum.Compute(metadata, w.checksum).String()

	head.indexOffset = uint64(cursor.position)
	cursor.write(marker(indexBeginMarker))
	index := make([]byte, indexEntrySize*len(sections))
	cursor.write(index)
	cursor.write(marker(indexEndMarker))
	head.indexLength = uint64(cursor.position) - head.indexOffset

	for i, section := range sections {
		entry := indexEntry{offset: uint64(cursor.position), checksum: section.sum.String()}
		cursor.write(marker(dataBeginMarker))
		cursor.write(section.payload)
		cursor.write(marker(dataEndMarker))
		entry.length = uint64(cursor.position) - entry.offset
		entry.marshal(order, index[i*indexEntrySize:])
	}
	cursor.write(recordEnd())
	if cursor.err != nil {
		return 0, cursor.err
	}

	length := cursor.position
	head.recordLength = uint64(length)
	head.time = w.clock.Now()

	if _, err := out.Seek(begin, io.SeekStart); err != nil {
		return 0, writeErrorf("seeking to record head: %v", err)
	}
	cursor.write(head.marshal(order))
	if _, err := out.Seek(begin+int64(head.indexOffset)+markerSize, io.SeekStart); err != nil {
		return 0, writeErrorf("seeking to record index: %v", err)
	}
	cursor.write(index)
	if cursor.err != nil {
		return 0, cursor.err
	}
	if _, err := out.Seek(begin+length, io.SeekStart); err != nil {
		return 0, writeErrorf("seeking to record end: %v", err)
	}

	w.logger.Debug("record written",
		"offset", begin,
		"length", length,
		"items", len(w.keys),
		"sections", len(sections),
		"metadata_format", w.metadataFormat,
	)
	return length, nil
}

// WriteFile writes the record to path. ModeWrite replaces the file;
// ModeAppend adds the record after any existing ones.
func (w *Writer) WriteFile(path string, mode stream.Mode) (int64, error) {
	if mode == stream.ModeRead {
		return 0, usageErrorf("cannot write a record to %s in %s mode", path, mode)
	}
	file, err := stream.Open(path, mode)
	if err != nil {
		return 0, writeErrorf("%v", err)
	}
	length, err := w.Write(file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = writeErrorf("closing %s: %v", path, closeErr)
	}
	return length, err
}

// positionWriter tracks bytes written since the record start. The
// first failure is sticky.
type positionWriter struct {
	out      io.Writer
	position int64
	err      error
}

func (p *positionWriter) write(b []byte) {
	if p.err != nil {
		return
	}
	n, err := p.out.Write(b)
	p.position += int64(n)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		p.err = writeErrorf("wrote %d of %d bytes: %v", n, len(b), err)
	}
}
