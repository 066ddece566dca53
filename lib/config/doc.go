// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides the record I/O defaults: which checksum and
// compression algorithms writers use, whether checksums are computed on
// write and verified on read, and which metadata encoding new records
// carry.
//
// Values come from three layers, later layers overriding earlier ones:
//
//  1. [Default]: compiled-in defaults (xxh64, lz4, checksums on, yaml).
//  2. An optional YAML resource file named by ATLAS_IO_CONFIG (via
//     [Load]) or passed explicitly (via [LoadFile]).
//  3. Environment variables: ATLAS_IO_CHECKSUM, ATLAS_IO_COMPRESSION,
//     ATLAS_IO_CHECKSUM_READ, ATLAS_IO_CHECKSUM_WRITE and
//     ATLAS_IO_METADATA_FORMAT.
//
// ${VAR} and ${VAR:-default} patterns in the ATLAS_IO_CONFIG path are
// expanded before the file is read.
//
// This package depends on the checksum and compression packages only
// to validate algorithm names.
package config
