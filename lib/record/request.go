// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"sync"
)

type requestStage int

const (
	stagePending requestStage = iota
	stageRead
	stageChecksum
	stageDecompress
	stageDecoded
)

// ReadRequest is a deferred read of one item into a Decoder. It runs
// in four stages: Read fetches metadata and the stored data section,
// Checksum verifies it, Decompress restores the original bytes, and
// Decode hands them to the decoder. Calling a stage runs any earlier
// stage still pending. Each stage runs at most once; the first error
// is returned by every later call.
//
// A ReadRequest is safe for concurrent use.
type ReadRequest struct {
	mu       sync.Mutex
	key      string
	open     func() (*ItemReader, error)
	decoder  Decoder
	checksum bool
	stage    requestStage
	fetched  *fetched
	item     Item
	err      error
}

func newReadRequest(key string, decoder Decoder, verify bool, open func() (*ItemReader, error)) *ReadRequest {
	return &ReadRequest{key: key, open: open, decoder: decoder, checksum: verify}
}

func failedReadRequest(key string, err error) *ReadRequest {
	return &ReadRequest{key: key, err: err}
}

// Key returns the item key.
func (q *ReadRequest) Key() string { return q.key }

// SetChecksum enables or disables data verification, overriding the
// reader's setting. It has no effect once the Checksum stage has run.
func (q *ReadRequest) SetChecksum(enabled bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.checksum = enabled
}

// Read fetches the item's metadata and stored data.
func (q *ReadRequest) Read() error { return q.advance(stageRead) }

// Checksum verifies the stored data, when verification is enabled.
func (q *ReadRequest) Checksum() error { return q.advance(stageChecksum) }

// Decompress restores the uncompressed data.
func (q *ReadRequest) Decompress() error { return q.advance(stageDecompress) }

// Decode delivers the item to the decoder.
func (q *ReadRequest) Decode() error { return q.advance(stageDecoded) }

// Wait completes every remaining stage.
func (q *ReadRequest) Wait() error { return q.Decode() }

// Metadata returns the item's metadata once Read has succeeded, or
// nil before.
func (q *ReadRequest) Metadata() Metadata {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fetched == nil {
		return nil
	}
	return q.fetched.metadata
}

func (q *ReadRequest) advance(target requestStage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.err == nil && q.stage < target {
		next := q.stage + 1
		switch next {
		case stageRead:
			q.err = q.read()
		case stageChecksum:
			if q.checksum {
				q.err = q.fetched.verify()
			}
		case stageDecompress:
			q.err = q.decompress()
		case stageDecoded:
			if err := q.decoder.Decode(q.item.Metadata, q.item.Data); err != nil {
				q.err = fmt.Errorf("decoding %q: %w", q.key, err)
			}
		}
		if q.err == nil {
			q.stage = next
		}
	}
	return q.err
}

func (q *ReadRequest) read() error {
	reader, err := q.open()
	if err != nil {
		return err
	}
	q.fetched, err = reader.fetch(true, 0)
	return err
}

func (q *ReadRequest) decompress() error {
	data, err := q.fetched.decompress()
	if err != nil {
		return err
	}
	q.item = Item{Metadata: q.fetched.metadata, Data: data}
	q.fetched.payload = nil
	return nil
}
