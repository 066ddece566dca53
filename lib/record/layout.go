// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// Section sizes in bytes.
const (
	headSize       = 256
	markerSize     = 32
	indexEntrySize = 80

	checksumFieldSize = 64
	formatFieldSize   = 8
)

// magicNumber is stored in the writer's byte order. Reading it back in
// the other order yields a different value, which is how readers
// detect records written on an opposite-endian machine.
const magicNumber uint32 = 1234

// Marker strings identifying each section.
const (
	recordBeginMarker   = "ATLAS-IO"
	recordEndMarker     = "ATLAS-IO-END"
	metadataBeginMarker = "METADATA-BEGIN"
	metadataEndMarker   = "METADATA-END"
	indexBeginMarker    = "INDEX-BEGIN"
	indexEndMarker      = "INDEX-END"
	dataBeginMarker     = "DATA-BEGIN"
	dataEndMarker       = "DATA-END"
)

// Version identifies the record layout.
type Version struct {
	Major uint32
	Minor uint32
}

// CurrentVersion is the layout this package writes. Readers accept any
// record with the same major version.
var CurrentVersion = Version{Major: 1, Minor: 0}

// String returns "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Head field offsets.
const (
	versionOffset          = 16
	timeOffset             = 24
	recordLengthOffset     = 40
	metadataFormatOffset   = 48
	metadataOffsetOffset   = 56
	metadataLengthOffset   = 64
	metadataChecksumOffset = 72
	indexOffsetOffset      = 136
	indexLengthOffset      = 144
	magicOffset            = 152
)

// recordHead is the fixed 256-byte section at the start of every
// record. Offsets are relative to the start of the record.
type recordHead struct {
	version          Version
	time             time.Time
	recordLength     uint64
	metadataFormat   string
	metadataOffset   uint64
	metadataLength   uint64
	metadataChecksum string
	indexOffset      uint64
	indexLength      uint64
}

func newRecordHead() recordHead {
	return recordHead{
		version:        CurrentVersion,
		metadataFormat: "yaml",
		metadataOffset: headSize,
	}
}

func putFixedString(dst []byte, s string) {
	copy(dst, s)
	for i := len(s); i < len(dst); i++ {
		dst[i] = 0
	}
}

func fixedString(src []byte) string {
	if end := bytes.IndexByte(src, 0); end >= 0 {
		src = src[:end]
	}
	return string(src)
}

func (h *recordHead) marshal(order binary.ByteOrder) []byte {
	buffer := make([]byte, headSize)
	putFixedString(buffer[0:8], recordBeginMarker)
	putFixedString(buffer[8:16], "\n")
	order.PutUint32(buffer[versionOffset:], h.version.Major)
	order.PutUint32(buffer[versionOffset+4:], h.version.Minor)
	if !h.time.IsZero() {
		order.PutUint64(buffer[timeOffset:], uint64(h.time.Unix()))
		order.PutUint64(buffer[timeOffset+8:], uint64(h.time.Nanosecond()))
	}
	order.PutUint64(buffer[recordLengthOffset:], h.recordLength)
	putFixedString(buffer[metadataFormatOffset:metadataFormatOffset+formatFieldSize], h.metadataFormat)
	order.PutUint64(buffer[metadataOffsetOffset:], h.metadataOffset)
	order.PutUint64(buffer[metadataLengthOffset:], h.metadataLength)
	putFixedString(buffer[metadataChecksumOffset:metadataChecksumOffset+checksumFieldSize], h.metadataChecksum)
	order.PutUint64(buffer[indexOffsetOffset:], h.indexOffset)
	order.PutUint64(buffer[indexLengthOffset:], h.indexLength)
	order.PutUint32(buffer[magicOffset:], magicNumber)
	buffer[headSize-1] = '\n'
	return buffer
}

// headValid checks only the begin marker.
func headValid(buffer []byte) bool {
	return len(buffer) >= 8 && fixedString(buffer[0:8]) == recordBeginMarker
}

// headByteOrder determines the writer's byte order from the raw magic
// number bytes.
func headByteOrder(buffer []byte) (binary.ByteOrder, error) {
	raw := buffer[magicOffset : magicOffset+4]
	switch {
	case binary.LittleEndian.Uint32(raw) == magicNumber:
		return binary.LittleEndian, nil
	case binary.BigEndian.Uint32(raw) == magicNumber:
		return binary.BigEndian, nil
	default:
		return nil, invalidRecordf("unrecognized magic number %x", raw)
	}
}

func unmarshalRecordHead(buffer []byte) (recordHead, binary.ByteOrder, error) {
	if len(buffer) != headSize {
		return recordHead{}, nil, invalidRecordf("record head is %d bytes, want %d", len(buffer), headSize)
	}
	if !headValid(buffer) {
		return recordHead{}, nil, invalidRecordf("missing %s marker", recordBeginMarker)
	}
	order, err := headByteOrder(buffer)
	if err != nil {
		return recordHead{}, nil, err
	}
	seconds := int64(order.Uint64(buffer[timeOffset:]))
	nanoseconds := int64(order.Uint64(buffer[timeOffset+8:]))
	head := recordHead{
		version: Version{
			Major: order.Uint32(buffer[versionOffset:]),
			Minor: order.Uint32(buffer[versionOffset+4:]),
		},
		time:             time.Unix(seconds, nanoseconds).UTC(),
		recordLength:     order.Uint64(buffer[recordLengthOffset:]),
		metadataFormat:   fixedString(buffer[metadataFormatOffset : metadataFormatOffset+formatFieldSize]),
		metadataOffset:   order.Uint64(buffer[metadataOffsetOffset:]),
		metadataLength:   order.Uint64(buffer[metadataLengthOffset:]),
		metadataChecksum: fixedString(buffer[metadataChecksumOffset : metadataChecksumOffset+checksumFieldSize]),
		indexOffset:      order.Uint64(buffer[indexOffsetOffset:]),
		indexLength:      order.Uint64(buffer[indexLengthOffset:]),
	}
	return head, order, nil
}

// marker builds a 32-byte section marker: a newline, the marker
// string, space padding, and a closing newline.
func marker(name string) []byte {
	buffer := bytes.Repeat([]byte{' '}, markerSize)
	buffer[0] = '\n'
	copy(buffer[1:], name)
	buffer[markerSize-1] = '\n'
	return buffer
}

// recordEnd is the trailing marker of a record. Its padding ends in
// blank lines so concatenated records stay readable in a pager.
func recordEnd() []byte {
	buffer := marker(recordEndMarker)
	copy(buffer[markerSize-4:], "\n\n\n\n")
	return buffer
}

// markerValid checks only the marker string, never the padding.
func markerValid(buffer []byte, name string) bool {
	if len(buffer) < 1+len(name) {
		return false
	}
	return string(buffer[1:1+len(name)]) == name
}

// indexEntry locates one data section, relative to the record start.
type indexEntry struct {
	offset   uint64
	length   uint64
	checksum string
}

func (e indexEntry) marshal(order binary.ByteOrder, dst []byte) {
	order.PutUint64(dst[0:], e.offset)
	order.PutUint64(dst[8:], e.length)
	putFixedString(dst[16:indexEntrySize], e.checksum)
}

func unmarshalIndexEntry(order binary.ByteOrder, src []byte) indexEntry {
	return indexEntry{
		offset:   order.Uint64(src[0:]),
		length:   order.Uint64(src[8:]),
		checksum: fixedString(src[16:indexEntrySize]),
	}
}
