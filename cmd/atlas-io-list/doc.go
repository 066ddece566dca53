// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// atlas-io-list prints the records and items stored in atlas-io files.
//
// Every record in each file is listed, including records appended
// after the first. For each item the table shows its type, datatype
// and shape, uncompressed size, compression and data section; link
// items show the URI they refer to without following it.
//
// Usage:
//
//	atlas-io-list [--format table|yaml] [--details] [--verbose] FILE...
//
// --format yaml prints the same information as a YAML document, with
// each item's full metadata. --details adds the full metadata to the
// table output. --verbose enables debug logging on stderr.
//
// Exit status is 0 on success, 1 when any file cannot be read, and 2
// for usage errors.
package main
