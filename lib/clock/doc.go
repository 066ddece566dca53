// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Record writers stamp every record head with the time it was written.
// Production code uses Real(); tests inject Fake() so that written
// records are byte-for-byte reproducible:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	writer, err := record.NewWriter(record.WriterOptions{Clock: c})
//
// This package depends on no other packages in this module.
package clock
