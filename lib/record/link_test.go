// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/atlasio/lib/stream"
)

// writeLinkedPair writes target.atlas holding x = 7 and links.atlas
// holding a relative link to it, both in one directory.
func writeLinkedPair(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()

	target := newTestWriter(t, WriterOptions{})
	mustSet(t, target, "x", Scalar(int32(7)))
	mustSet(t, target, "label", String("seven"))
	writeTestFile(t, target, filepath.Join(dir, "target.atlas"), stream.ModeWrite)

	links := newTestWriter(t, WriterOptions{})
	mustSet(t, links, "x", Link{URI: "target.atlas/x"})
	mustSet(t, links, "label", Link{URI: "target.atlas#0/label"})
	mustSet(t, links, "local", Scalar(int32(1)))
	writeTestFile(t, links, filepath.Join(dir, "links.atlas"), stream.ModeWrite)
	return dir
}

func TestLinkIsFollowed(t *testing.T) {
	dir := writeLinkedPair(t)
	path := filepath.Join(dir, "links.atlas")

	record, err := NewReader(path, 0, testReaderOptions()).Record()
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if record.Sections() != 1 {
		t.Errorf("links record has %d sections, want 1 (links carry no data)", record.Sections())
	}

	reader := NewReader(path, 0, testReaderOptions())
	var x int32
	var label string
	xRequest := reader.Read("x", Into(&x))
	reader.Read("label", IntoString(&label))
	if err := reader.WaitAll(); err != nil {
		t.Fatalf("WaitAll: %v", err)
	}
	if x != 7 || label != "seven" {
		t.Errorf("x = %d, label = %q", x, label)
	}

	metadata := xRequest.Metadata()
	if metadata.Link() != "target.atlas/x" {
		t.Errorf("followed metadata link = %q, want the original URI", metadata.Link())
	}
	if metadata.Type() != TypeScalar || metadata.DataType() != DatatypeInt32 {
		t.Errorf("followed metadata lacks the target's fields: %v", metadata)
	}
}

func TestLinkFollowedFromOtherWorkingDirectory(t *testing.T) {
	dir := writeLinkedPair(t)
	t.Chdir(t.TempDir())

	reader, err := NewItemReader(filepath.Join(dir, "links.atlas")+"/x", testReaderOptions())
	if err != nil {
		t.Fatalf("NewItemReader: %v", err)
	}
	var x int32
	if err := reader.Decode(Into(&x)); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if x != 7 {
		t.Errorf("x = %d", x)
	}
}

func TestLinkNotFollowed(t *testing.T) {
	dir := writeLinkedPair(t)
	options := testReaderOptions()
	options.DisableLinks = true

	reader := NewReader(filepath.Join(dir, "links.atlas"), 0, options)
	metadata, err := reader.Metadata("x")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if metadata.Link() != "target.atlas/x" || metadata.Type() != "" {
		t.Errorf("unfollowed metadata = %v", metadata)
	}

	var x int32
	if err := reader.Read("x", Into(&x)).Wait(); !errors.Is(err, ErrNotDecodable) {
		t.Errorf("decoding an unfollowed link: error = %v, want ErrNotDecodable", err)
	}
}

func TestLinkToMissingFile(t *testing.T) {
	dir := t.TempDir()
	w := newTestWriter(t, WriterOptions{})
	mustSet(t, w, "x", Link{URI: "nowhere.atlas/x"})
	path := filepath.Join(dir, "dangling.atlas")
	writeTestFile(t, w, path, stream.ModeWrite)

	var x int
	if err := NewReader(path, 0, testReaderOptions()).Read("x", Into(&x)).Wait(); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Wait error = %v, want ErrInvalidRecord", err)
	}
}

func TestLinkCycleIsBounded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cycle.atlas")
	w := newTestWriter(t, WriterOptions{})
	mustSet(t, w, "loop", Link{URI: "cycle.atlas/loop"})
	writeTestFile(t, w, path, stream.ModeWrite)

	reader, err := NewItemReader(path+"/loop", testReaderOptions())
	if err != nil {
		t.Fatalf("NewItemReader: %v", err)
	}
	if _, err := reader.ReadMetadata(); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("ReadMetadata error = %v, want ErrInvalidRecord", err)
	}
}

func TestLinkThroughStreamIsUsageError(t *testing.T) {
	dir := writeLinkedPair(t)
	file, err := os.Open(filepath.Join(dir, "links.atlas"))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	reader := NewStreamReader(file, 0, testReaderOptions())
	var x int32
	if err := reader.Read("x", Into(&x)).Wait(); !errors.Is(err, ErrUsage) {
		t.Errorf("Wait error = %v, want ErrUsage", err)
	}
	var local int32
	if err := reader.Read("local", Into(&local)).Wait(); err != nil || local != 1 {
		t.Errorf("non-link item through stream = %d, %v", local, err)
	}

	options := testReaderOptions()
	options.DisableLinks = true
	item, err := NewStreamItemReader(file, 0, "x", options)
	if err != nil {
		t.Fatalf("NewStreamItemReader: %v", err)
	}
	metadata, err := item.ReadMetadata()
	if err != nil || metadata.Link() != "target.atlas/x" {
		t.Errorf("unfollowed stream link = %v, %v", metadata, err)
	}
}
