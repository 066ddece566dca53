// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bureau-foundation/atlasio/lib/checksum"
	"github.com/bureau-foundation/atlasio/lib/compression"
)

// Item is a decoded-ready item: its metadata and its uncompressed,
// verified data.
type Item struct {
	Metadata Metadata
	Data     Data
}

// Decode passes the item to decoder.
func (i Item) Decode(decoder Decoder) error {
	return decoder.Decode(i.Metadata, i.Data)
}

// ItemReader reads one item of one record, either from a file
// addressed by an ItemURI or from a caller-supplied stream.
type ItemReader struct {
	config readerConfig
	uri    ItemURI
	stream io.ReaderAt
	record *Record
}

// NewItemReader opens the item addressed by uri ("path#offset/key" or
// "path/key"). It fails with ErrInvalidRecord when the file does not
// exist, is not a record, or has no such key.
func NewItemReader(uri string, options ReaderOptions) (*ItemReader, error) {
	parsed, err := ParseItemURI(uri)
	if err != nil {
		return nil, err
	}
	config, err := options.resolve()
	if err != nil {
		return nil, err
	}
	return openItemReader(parsed, config)
}

func openItemReader(uri ItemURI, config readerConfig) (*ItemReader, error) {
	path, err := resolvePath(config.referenceDir, uri.Path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, invalidRecordf("%s refers to non-existing file %s", uri, path)
		}
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	uri.Path = path
	record, err := loadFileRecord(path, uri.Offset)
	if err != nil {
		return nil, err
	}
	return newItemReader(uri, nil, record, config)
}

// NewStreamItemReader reads key from the record at offset in in.
// Links cannot be followed from a stream: reading a link item fails
// with ErrUsage unless DisableLinks is set.
//
// A stream without ReadAt is read by seeking it. Item readers on such
// a stream may be used concurrently only when they share one view of
// it: create them inside one Session, or through one Reader.
func NewStreamItemReader(in io.ReadSeeker, offset int64, key string, options ReaderOptions) (*ItemReader, error) {
	config, err := options.resolve()
	if err != nil {
		return nil, err
	}
	return openStreamItemReader(in, sharedStreamSource(in), offset, key, config)
}

// openStreamItemReader reads through source, the ReaderAt view of in.
// Readers sharing one stream must share one source.
func openStreamItemReader(in io.ReadSeeker, source io.ReaderAt, offset int64, key string, config readerConfig) (*ItemReader, error) {
	record, err := loadStreamRecord(in, source, offset)
	if err != nil {
		return nil, err
	}
	return newItemReader(ItemURI{Offset: offset, Key: key}, source, record, config)
}

func loadStreamRecord(in io.ReadSeeker, source io.ReaderAt, offset int64) (*Record, error) {
	return loadRecord(recordKey{source: in, offset: offset}, func() (*Record, error) {
		return parseRecord(source, offset)
	})
}

func newItemReader(uri ItemURI, source io.ReaderAt, record *Record, config readerConfig) (*ItemReader, error) {
	if !record.Has(uri.Key) {
		return nil, invalidRecordf("record %s has no item %q", uri.Record(), uri.Key)
	}
	if config.verify {
		if err := record.verifyMetadata(); err != nil {
			return nil, err
		}
	}
	return &ItemReader{config: config, uri: uri, stream: source, record: record}, nil
}

// URI returns the address of the item. For stream readers Path is
// empty.
func (r *ItemReader) URI() ItemURI { return r.uri }

// Record returns the parsed record holding the item.
func (r *ItemReader) Record() *Record { return r.record }

// ReadMetadata returns the item's metadata. Links are followed unless
// disabled, in which case the linked item's metadata is returned with
// "link" set to the followed URI.
func (r *ItemReader) ReadMetadata() (Metadata, error) {
	fetched, err := r.fetch(false, 0)
	if err != nil {
		return nil, err
	}
	return fetched.metadata, nil
}

// Read returns the item with its data verified and decompressed.
func (r *ItemReader) Read() (Item, error) {
	fetched, err := r.fetch(true, 0)
	if err != nil {
		return Item{}, err
	}
	if r.config.verify {
		if err := fetched.verify(); err != nil {
			return Item{}, err
		}
	}
	data, err := fetched.decompress()
	if err != nil {
		return Item{}, err
	}
	return Item{Metadata: fetched.metadata, Data: data}, nil
}

// Decode reads the item into decoder.
func (r *ItemReader) Decode(decoder Decoder) error {
	item, err := r.Read()
	if err != nil {
		return err
	}
	if err := item.Decode(decoder); err != nil {
		return fmt.Errorf("decoding %s: %w", r.uri, err)
	}
	return nil
}

// fetched is an item as stored: metadata plus the raw bytes of its
// data section, before verification and decompression.
type fetched struct {
	uri      string
	metadata Metadata
	payload  []byte
	stored   checksum.Checksum
	order    binary.ByteOrder
	hasData  bool
	logger   *slog.Logger
}

func (r *ItemReader) fetch(withData bool, depth int) (*fetched, error) {
	metadata, err := r.record.Metadata(r.uri.Key)
	if err != nil {
		return nil, err
	}

	if metadata.IsLink() && r.config.followLinks {
		if r.stream != nil {
			return nil, usageErrorf("item %q links to %s: links cannot be followed from a stream",
				r.uri.Key, metadata.Link())
		}
		if depth >= maxLinkDepth {
			return nil, invalidRecordf("link chain from %s exceeds %d links", r.uri, maxLinkDepth)
		}
		target, err := ParseItemURI(metadata.Link())
		if err != nil {
			return nil, invalidRecordf("item %s has malformed link %q", r.uri, metadata.Link())
		}
		config := r.config
		config.referenceDir = filepath.Dir(r.uri.Path)
		linked, err := openItemReader(target, config)
		if err != nil {
			return nil, fmt.Errorf("following link %s from %s: %w", metadata.Link(), r.uri, err)
		}
		result, err := linked.fetch(withData, depth+1)
		if err != nil {
			return nil, err
		}
		result.metadata = metadata.mergeLinked(result.metadata)
		return result, nil
	}

	result := &fetched{
		uri:      r.uri.String(),
		metadata: metadata,
		order:    r.record.order,
		logger:   r.config.logger,
	}
	section := metadata.DataSection()
	if !withData || section == 0 || metadata.IsLink() {
		return result, nil
	}

	source, release, err := r.source()
	if err != nil {
		return nil, err
	}
	defer release()
	result.payload, result.stored, err = r.record.readSection(source, section)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", r.uri, err)
	}
	result.hasData = true
	return result, nil
}

func (r *ItemReader) source() (io.ReaderAt, func(), error) {
	if r.stream != nil {
		return r.stream, func() {}, nil
	}
	file, err := openFile(r.uri.Path)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { file.Close() }, nil
}

// verify checks the stored bytes against the index checksum. An
// algorithm this build does not know is logged, not failed.
func (f *fetched) verify() error {
	if !f.hasData {
		return nil
	}
	verified, err := checksum.Verify(f.payload, f.stored)
	if err != nil {
		return invalidRecordf("item %s: data %v", f.uri, err)
	}
	if !verified && f.stored.Available() {
		f.logger.Warn("data checksum not verified: unsupported algorithm",
			"item", f.uri,
			"algorithm", f.stored.Algorithm,
		)
	}
	return nil
}

func (f *fetched) decompress() (Data, error) {
	if !f.hasData {
		return NewData(nil, f.order), nil
	}
	if !f.metadata.Compressed() {
		return NewData(f.payload, f.order), nil
	}
	algorithm := f.metadata.Compression()
	raw, err := compression.Decompress(f.payload, algorithm, f.metadata.DataSize())
	if err != nil {
		return Data{}, invalidRecordf("item %s: %s data: %v", f.uri, algorithm, err)
	}
	return NewData(raw, f.order), nil
}

// seekerAt adapts a stream without ReadAt. Reads are serialized
// because each one moves the shared stream position.
type seekerAt struct {
	mu sync.Mutex
	in io.ReadSeeker
}

func (s *seekerAt) ReadAt(p []byte, offset int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.in.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(s.in, p)
}

func streamSource(in io.ReadSeeker) io.ReaderAt {
	if readerAt, ok := in.(io.ReaderAt); ok {
		return readerAt
	}
	return &seekerAt{in: in}
}
