// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package checksum computes and parses the tagged digests stored in
// record headers and index entries.
//
// A checksum is carried on disk as the string "<algorithm>:<hex>",
// for example "xxh64:9b1c4a0e7d22f3a5". The string must fit the
// 64-byte fixed field of the record layout, so 256-bit hashes are
// truncated through their extendable output (BLAKE3) or configured
// with a 128-bit digest size (BLAKE2b).
//
// Supported algorithms:
//
//   - none: unchecked. Always produces "none:".
//   - xxh64: XXH64 (default), fast non-cryptographic hash.
//   - crc32: IEEE CRC-32.
//   - md5, sha1: legacy cryptographic digests.
//   - blake3: BLAKE3 with 16 bytes of output.
//   - blake2b: BLAKE2b-128.
//
// Requesting an unknown algorithm is not an error at compute time: the
// result falls back to "none:" so that a writer configured with an
// algorithm this build does not know still produces a valid record.
package checksum
