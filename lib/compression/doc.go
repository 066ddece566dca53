// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compression compresses and decompresses record data sections
// under a named algorithm.
//
// The algorithm name is what a record's item metadata stores under
// data.compression.type, so these names are format constants:
//
//   - none: no transformation. Always legal.
//   - lz4: LZ4 block compression.
//   - zstd: zstd at the default level.
//   - bg4_lz4: 4-byte grouping transpose then LZ4, for real32 arrays.
//   - s2, snappy: Snappy-family block formats.
//   - gzip: DEFLATE in a gzip frame.
//
// Block formats do not carry their own length, so [Decompress] takes
// the uncompressed size recorded in metadata and rejects output of any
// other length.
//
// [Compress] returns an error satisfying [IsIncompressible] when the
// output would not be smaller than the input. Writers respond by
// storing the bytes uncompressed and recording "none".
package compression
