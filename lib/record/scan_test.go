// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/atlasio/lib/stream"
)

func TestScanAppendedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.atlas")
	var offsets []int64
	var offset int64
	for step := range 3 {
		w := newTestWriter(t, WriterOptions{})
		mustSet(t, w, "step", Scalar(int32(step)))
		mustSet(t, w, "name", String(fmt.Sprintf("step-%d", step)))
		offsets = append(offsets, offset)
		offset += writeTestFile(t, w, path, stream.ModeAppend)
	}

	records, err := ScanFile(path)
	if err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("ScanFile found %d records, want 3", len(records))
	}
	for i, record := range records {
		if record.Offset() != offsets[i] {
			t.Errorf("record %d at offset %d, want %d", i, record.Offset(), offsets[i])
		}
	}

	for step, recordOffset := range offsets {
		var got int32
		uri := RecordURI{Path: path, Offset: recordOffset}.Item("step").String()
		reader, err := NewItemReader(uri, testReaderOptions())
		if err != nil {
			t.Fatalf("NewItemReader(%s): %v", uri, err)
		}
		if err := reader.Decode(Into(&got)); err != nil {
			t.Fatalf("Decode(%s): %v", uri, err)
		}
		if got != int32(step) {
			t.Errorf("%s = %d, want %d", uri, got, step)
		}
	}
}

func TestScanStopsAtTrailingGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.atlas")
	w := newTestWriter(t, WriterOptions{})
	mustSet(t, w, "n", Scalar(1))
	writeTestFile(t, w, path, stream.ModeWrite)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	file.Write([]byte("trailing bytes that are not a record"))
	file.Close()

	records, err := ScanFile(path)
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("ScanFile error = %v, want ErrInvalidRecord", err)
	}
	if len(records) != 1 {
		t.Errorf("ScanFile returned %d records before the garbage, want 1", len(records))
	}
}
