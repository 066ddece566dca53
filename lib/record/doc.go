// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package record implements the atlas-io record container: a
// self-describing binary format holding named items (scalars, strings,
// arrays and links to items in other records), each with hierarchical
// metadata and an optional checksummed, optionally compressed data
// section.
//
// A record is laid out as consecutive sections, with every offset
// relative to the record start:
//
//	RecordHead    256 bytes: version, creation time, record length,
//	              metadata format, offset, length and checksum, index
//	              offset and length, magic number 1234
//	Metadata      METADATA-BEGIN, encoded metadata, METADATA-END
//	Index         INDEX-BEGIN, one 80-byte entry per data section, INDEX-END
//	Data ...      DATA-BEGIN, stored bytes, DATA-END (one per section)
//	RecordEnd     ATLAS-IO-END
//
// Integers are written in the writer's byte order. Readers identify it
// from the magic number and hand it to decoders through [Data], so a
// record written on a big-endian machine reads correctly on a
// little-endian one and vice versa.
//
// The metadata section maps each key to a tree of values. Items with
// data carry "data.section" (1-based index into the index section),
// "data.size" (the uncompressed size) and, when compressed,
// "data.compression.type". Index checksums cover the stored bytes, so
// a reader verifies before decompressing.
//
// Writing goes through [Writer]: [Writer.Set] captures each item's
// metadata from its [Encoder], and [Writer.Write] produces the record
// in a single pass followed by backfilling the head and index. Records
// may be appended to an existing file; [ScanFile] walks them.
//
// Reading goes through [Reader], which queues deferred
// [ReadRequest]s, or [ItemReader] for a single item. Links are
// followed to the file they name, relative to the directory of the
// record holding the link. While a [Session] is open, parsed records
// and file handles are shared process-wide.
//
// Values reach the format through [Encoder] and [Decoder]. [Scalar],
// [String], [Ref] and [Link] encode the built-in kinds; [Into],
// [IntoString] and [IntoSlice] decode them. [EncoderFor] and
// [DecoderFor] resolve arbitrary Go values, consulting adapters added
// with [RegisterEncoder] and [RegisterDecoder]; a value with no
// adapter fails with [ErrNotEncodable].
package record
