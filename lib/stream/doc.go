// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package stream provides the byte streams records are written to and
// read from: files opened in read, write or append mode, an in-memory
// seekable buffer, and a reference-counted pool of read-only file
// handles.
//
// Writers need io.WriteSeeker because a record is written in one pass
// and then patched in place (head and index are backfilled once the
// data section offsets are known). Readers use io.ReaderAt so that one
// pooled handle can serve many concurrent readers without sharing a
// seek position.
//
// A [Pool] keeps one *os.File per canonical path. Each [Pool.Acquire]
// returns a lease; closing a lease releases one reference, and the OS
// file is closed only when the pool itself has been closed and the
// last lease is released. Revisiting the same file (for example while
// resolving many links into it) therefore reuses one descriptor.
package stream
