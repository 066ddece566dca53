// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Reader reads items of one record. Read and ReadAny return deferred
// requests; nothing is read until a request is waited on, either
// individually or through WaitAll.
type Reader struct {
	uri     RecordURI
	in      io.ReadSeeker
	source  io.ReaderAt
	options ReaderOptions

	mu       sync.Mutex
	requests []*ReadRequest
}

// NewReader returns a Reader for the record at offset in the file at
// path. The file is not opened until the first read.
func NewReader(path string, offset int64, options ReaderOptions) *Reader {
	return &Reader{uri: RecordURI{Path: path, Offset: offset}, options: options}
}

// NewStreamReader returns a Reader for the record at offset in in.
func NewStreamReader(in io.ReadSeeker, offset int64, options ReaderOptions) *Reader {
	return &Reader{
		uri:     RecordURI{Offset: offset},
		in:      in,
		source:  sharedStreamSource(in),
		options: options,
	}
}

// URI returns the address of the record. Path is empty for streams.
func (r *Reader) URI() RecordURI { return r.uri }

// Record parses (or fetches from the session cache) the record.
func (r *Reader) Record() (*Record, error) {
	if r.in != nil {
		return loadStreamRecord(r.in, r.source, r.uri.Offset)
	}
	config, err := r.options.resolve()
	if err != nil {
		return nil, err
	}
	path, err := resolvePath(config.referenceDir, r.uri.Path)
	if err != nil {
		return nil, err
	}
	return loadFileRecord(path, r.uri.Offset)
}

// Keys returns the item keys in the order they were written.
func (r *Reader) Keys() ([]string, error) {
	record, err := r.Record()
	if err != nil {
		return nil, err
	}
	return record.Keys(), nil
}

// ItemReader returns a reader for one item.
func (r *Reader) ItemReader(key string) (*ItemReader, error) {
	config, err := r.options.resolve()
	if err != nil {
		return nil, err
	}
	if r.in != nil {
		return openStreamItemReader(r.in, r.source, r.uri.Offset, key, config)
	}
	return openItemReader(r.uri.Item(key), config)
}

// Metadata returns the metadata of key, following links unless
// disabled.
func (r *Reader) Metadata(key string) (Metadata, error) {
	item, err := r.ItemReader(key)
	if err != nil {
		return nil, err
	}
	return item.ReadMetadata()
}

// Read queues a deferred read of key into decoder.
func (r *Reader) Read(key string, decoder Decoder) *ReadRequest {
	config, err := r.options.resolve()
	if err != nil {
		return r.queue(failedReadRequest(key, err))
	}
	return r.queue(newReadRequest(key, decoder, config.verify, func() (*ItemReader, error) {
		return r.ItemReader(key)
	}))
}

// ReadAny queues a deferred read of key into target, which may be any
// value DecoderFor resolves. An unresolvable target yields a request
// that fails with ErrNotEncodable.
func (r *Reader) ReadAny(key string, target any) *ReadRequest {
	decoder, err := DecoderFor(target)
	if err != nil {
		return r.queue(failedReadRequest(key, err))
	}
	return r.Read(key, decoder)
}

func (r *Reader) queue(request *ReadRequest) *ReadRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, request)
	return request
}

// WaitAll completes every request queued since the last WaitAll,
// running them concurrently. It returns the first error encountered;
// every request runs to completion or failure regardless.
func (r *Reader) WaitAll() error {
	r.mu.Lock()
	requests := r.requests
	r.requests = nil
	r.mu.Unlock()

	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for _, request := range requests {
		group.Go(request.Wait)
	}
	return group.Wait()
}
