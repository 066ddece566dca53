// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by this package wraps exactly one
// of these; test with errors.Is. None of them is retried internally.
var (
	// ErrInvalidRecord reports corrupt, truncated or unrecognized
	// structure: a bad marker, unexpected EOF inside a section, a key
	// absent from the record, or a checksum mismatch.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrWrite reports that the destination stream rejected a write.
	ErrWrite = errors.New("write error")

	// ErrNotEncodable reports a value whose type satisfies neither
	// Encoder nor any registered or built-in adapter.
	ErrNotEncodable = errors.New("not encodable")

	// ErrNotDecodable reports a target that cannot receive the stored
	// item: unsupported target type, or a type/datatype mismatch.
	ErrNotDecodable = errors.New("not decodable")

	// ErrUsage reports a configuration or usage error, such as
	// following a link through a stream that has no file path, or
	// setting the same key twice.
	ErrUsage = errors.New("usage error")
)

func invalidRecordf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRecord, fmt.Sprintf(format, args...))
}

func writeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrWrite, fmt.Sprintf(format, args...))
}

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

func notDecodablef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotDecodable, fmt.Sprintf(format, args...))
}
