// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bureau-foundation/atlasio/lib/checksum"
	"github.com/bureau-foundation/atlasio/lib/codec"
)

// maxRecordLength rejects lengths read from a corrupt head before
// they are used as offsets.
const maxRecordLength = 1 << 48

// Record is the parsed structure of one record: its head, decoded
// metadata and index. Data sections are read on demand. A Record is
// immutable once parsed and safe for concurrent use.
type Record struct {
	offset   int64
	head     recordHead
	order    binary.ByteOrder
	metadata []byte
	document *codec.Document
	index    []indexEntry

	verifyOnce sync.Once
	verifyErr  error
}

// parseRecord reads and validates the record starting at offset. The
// metadata checksum is not verified here; see verifyMetadata.
func parseRecord(source io.ReaderAt, offset int64) (*Record, error) {
	buffer, err := readAt(source, offset, headSize, "record head")
	if err != nil {
		return nil, err
	}
	head, order, err := unmarshalRecordHead(buffer)
	if err != nil {
		return nil, fmt.Errorf("record at offset %d: %w", offset, err)
	}
	if head.version.Major != CurrentVersion.Major {
		return nil, invalidRecordf("record at offset %d has version %s, this build reads %d.x",
			offset, head.version, CurrentVersion.Major)
	}
	minimum := uint64(headSize + 4*markerSize + markerSize)
	if head.recordLength < minimum || head.recordLength > maxRecordLength {
		return nil, invalidRecordf("record at offset %d declares implausible length %d (minimum %d)",
			offset, head.recordLength, minimum)
	}
	if !withinRecord(head.metadataOffset, head.metadataLength, head.recordLength) ||
		!withinRecord(head.indexOffset, head.indexLength, head.recordLength) {
		return nil, invalidRecordf("record at offset %d: sections extend past declared length %d",
			offset, head.recordLength)
	}

	end, err := readAt(source, offset+int64(head.recordLength)-markerSize, markerSize, "record end")
	if err != nil {
		return nil, err
	}
	if !markerValid(end, recordEndMarker) {
		return nil, invalidRecordf("record at offset %d: missing %s marker", offset, recordEndMarker)
	}

	record := &Record{offset: offset, head: head, order: order}

	section, err := readAt(source, offset+int64(head.metadataOffset), int(head.metadataLength), "metadata section")
	if err != nil {
		return nil, err
	}
	record.metadata, err = unwrapSection(section, metadataBeginMarker, metadataEndMarker)
	if err != nil {
		return nil, err
	}
	if !codec.Supported(head.metadataFormat) {
		return nil, invalidRecordf("unsupported metadata format %q", head.metadataFormat)
	}
	record.document, err = codec.Decode(head.metadataFormat, record.metadata)
	if err != nil {
		return nil, invalidRecordf("decoding %s metadata: %v", head.metadataFormat, err)
	}

	section, err = readAt(source, offset+int64(head.indexOffset), int(head.indexLength), "index section")
	if err != nil {
		return nil, err
	}
	entries, err := unwrapSection(section, indexBeginMarker, indexEndMarker)
	if err != nil {
		return nil, err
	}
	if len(entries)%indexEntrySize != 0 {
		return nil, invalidRecordf("index section holds %d bytes, not a multiple of %d", len(entries), indexEntrySize)
	}
	record.index = make([]indexEntry, len(entries)/indexEntrySize)
	for i := range record.index {
		record.index[i] = unmarshalIndexEntry(order, entries[i*indexEntrySize:])
	}

	for _, key := range record.document.Keys {
		metadata := Metadata(record.document.Values[key])
		if metadata.IsLink() {
			continue
		}
		if section := metadata.DataSection(); section < 0 || section > len(record.index) {
			return nil, invalidRecordf("item %q refers to data section %d, record has %d", key, section, len(record.index))
		}
	}
	return record, nil
}

// withinRecord reports whether the span [offset, offset+length) lies
// inside a record of recordLength bytes. The fields come from disk, so
// the sum is never formed.
func withinRecord(offset, length, recordLength uint64) bool {
	return offset <= recordLength && length <= recordLength-offset
}

// readAt reads exactly n bytes at offset. Running out of input is an
// invalid record, not an I/O error: the structure promised more bytes.
func readAt(source io.ReaderAt, offset int64, n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, invalidRecordf("%s has negative length", what)
	}
	if offset < 0 {
		return nil, invalidRecordf("%s has negative offset %d", what, offset)
	}
	buffer := make([]byte, n)
	read, err := source.ReadAt(buffer, offset)
	if read == n {
		return buffer, nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, invalidRecordf("unexpected end of input reading %s: got %d of %d bytes at offset %d", what, read, n, offset)
	}
	return nil, fmt.Errorf("reading %s at offset %d: %w", what, offset, err)
}

// unwrapSection checks the begin and end markers of a section and
// returns what lies between them.
func unwrapSection(section []byte, begin, end string) ([]byte, error) {
	if len(section) < 2*markerSize {
		return nil, invalidRecordf("section of %d bytes cannot hold %s and %s markers", len(section), begin, end)
	}
	if !markerValid(section[:markerSize], begin) {
		return nil, invalidRecordf("missing %s marker", begin)
	}
	if !markerValid(section[len(section)-markerSize:], end) {
		return nil, invalidRecordf("missing %s marker", end)
	}
	return section[markerSize : len(section)-markerSize], nil
}

// verifyMetadata checks the metadata checksum once per record. A
// record whose checksum is "none:" or uses an unknown algorithm
// passes unverified.
func (r *Record) verifyMetadata() error {
	r.verifyOnce.Do(func() {
		if _, err := checksum.Verify(r.metadata, checksum.Parse(r.head.metadataChecksum)); err != nil {
			r.verifyErr = invalidRecordf("metadata of record at offset %d: %v", r.offset, err)
		}
	})
	return r.verifyErr
}

// readSection returns the stored bytes of a 1-based data section and
// the checksum the index records for them.
func (r *Record) readSection(source io.ReaderAt, section int) ([]byte, checksum.Checksum, error) {
	if section < 1 || section > len(r.index) {
		return nil, checksum.Checksum{}, invalidRecordf("data section %d out of range 1..%d", section, len(r.index))
	}
	entry := r.index[section-1]
	if !withinRecord(entry.offset, entry.length, r.head.recordLength) {
		return nil, checksum.Checksum{}, invalidRecordf("data section %d extends past the record", section)
	}
	buffer, err := readAt(source, r.offset+int64(entry.offset), int(entry.length), fmt.Sprintf("data section %d", section))
	if err != nil {
		return nil, checksum.Checksum{}, err
	}
	payload, err := unwrapSection(buffer, dataBeginMarker, dataEndMarker)
	if err != nil {
		return nil, checksum.Checksum{}, fmt.Errorf("data section %d: %w", section, err)
	}
	return payload, checksum.Parse(entry.checksum), nil
}

// Offset returns the position of the record within its file.
func (r *Record) Offset() int64 { return r.offset }

// Length returns the total size of the record in bytes.
func (r *Record) Length() int64 { return int64(r.head.recordLength) }

// Version returns the layout version the record was written with.
func (r *Record) Version() Version { return r.head.version }

// Created returns the time the record was written.
func (r *Record) Created() time.Time { return r.head.time }

// ByteOrder returns the byte order of the writing machine.
func (r *Record) ByteOrder() binary.ByteOrder { return r.order }

// MetadataFormat returns "yaml" or "cbor".
func (r *Record) MetadataFormat() string { return r.head.metadataFormat }

// MetadataChecksum returns the stored checksum of the metadata section.
func (r *Record) MetadataChecksum() checksum.Checksum {
	return checksum.Parse(r.head.metadataChecksum)
}

// Sections returns the number of data sections.
func (r *Record) Sections() int { return len(r.index) }

// Keys returns the item keys in the order they were written.
func (r *Record) Keys() []string {
	return append([]string(nil), r.document.Keys...)
}

// Has reports whether the record holds key.
func (r *Record) Has(key string) bool {
	_, ok := r.document.Values[key]
	return ok
}

// Metadata returns a copy of the stored metadata for key. Links are
// not followed.
func (r *Record) Metadata(key string) (Metadata, error) {
	values, ok := r.document.Values[key]
	if !ok {
		return nil, invalidRecordf("record at offset %d has no item %q", r.offset, key)
	}
	return Metadata(values).Clone(), nil
}
