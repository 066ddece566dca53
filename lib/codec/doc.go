// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec encodes the metadata section of a record.
//
// The metadata section is an ordered mapping from item key to that
// item's metadata tree (a map[string]any of scalars, sequences and
// nested maps). The record head names its encoding in an 8-byte field,
// and two encodings are supported:
//
//   - yaml: the default. Human-readable, so a record can be inspected
//     with a pager. Item order is preserved through yaml.Node.
//   - cbor: compact binary (RFC 8949) with Core Deterministic Encoding,
//     so the same document always produces identical bytes and
//     therefore identical metadata checksums. Item order is carried in
//     an explicit key list.
//
// Decoded numbers keep the natural Go type of each encoding (int or
// uint64 from YAML, uint64 or int64 from CBOR). Consumers convert
// through their own accessors rather than asserting a concrete type.
package codec
