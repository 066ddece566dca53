// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/atlasio/lib/config"
	"github.com/bureau-foundation/atlasio/lib/stream"
)

// testDefaults returns compiled-in defaults so tests do not depend on
// the ATLAS_IO_* environment of the machine running them.
func testDefaults() *config.Defaults {
	return config.Default()
}

func testReaderOptions() ReaderOptions {
	return ReaderOptions{Defaults: testDefaults()}
}

func newTestWriter(t *testing.T, options WriterOptions) *Writer {
	t.Helper()
	if options.Defaults == nil {
		options.Defaults = testDefaults()
	}
	w, err := NewWriter(options)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	return w
}

func mustSet(t *testing.T, w *Writer, key string, value Encoder, options ...ItemOption) {
	t.Helper()
	if err := w.Set(key, value, options...); err != nil {
		t.Fatalf("Set(%q): %v", key, err)
	}
}

func writeTestFile(t *testing.T, w *Writer, path string, mode stream.Mode) int64 {
	t.Helper()
	length, err := w.WriteFile(path, mode)
	if err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	return length
}

// writeScenario writes the two-item record used throughout the tests:
// an integer n = 42 and a string s = "hello".
func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.atlas")
	w := newTestWriter(t, WriterOptions{})
	mustSet(t, w, "n", Scalar(42))
	mustSet(t, w, "s", String("hello"))
	writeTestFile(t, w, path, stream.ModeWrite)
	return path
}

// sectionPayloadOffset returns the file offset of the first stored
// byte of key's data section.
func sectionPayloadOffset(t *testing.T, path, key string) int64 {
	t.Helper()
	record, err := NewReader(path, 0, testReaderOptions()).Record()
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	metadata, err := record.Metadata(key)
	if err != nil {
		t.Fatalf("Metadata(%q): %v", key, err)
	}
	entry := record.index[metadata.DataSection()-1]
	return record.Offset() + int64(entry.offset) + markerSize
}

// corruptByte flips the bits of one byte of the file at path.
func corruptByte(t *testing.T, path string, offset int64) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content[offset] ^= 0xff
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// withHostOrder makes writers behave as if running on a machine with
// the given byte order for the rest of the test.
func withHostOrder(t *testing.T, order binary.ByteOrder) {
	t.Helper()
	previous := hostOrder
	hostOrder = order
	t.Cleanup(func() { hostOrder = previous })
}

func oppositeOrder() binary.ByteOrder {
	if nativeOrder() == binary.BigEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func orderName(order binary.ByteOrder) string {
	if order == binary.BigEndian {
		return "big"
	}
	return "little"
}
