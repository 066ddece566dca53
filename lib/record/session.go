// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"sync"

	"github.com/bureau-foundation/atlasio/lib/stream"
)

// Sessions are process-wide. While at least one Session is open,
// parsed records are cached by (source, offset) and file handles are
// shared through a stream.Pool. Closing the last open Session discards
// the cache and closes every pooled file that no read still holds.
//
// The registry mutex guards the depth, the cache pointer and the
// cache's maps. It is never held while parsing or doing I/O: each
// cache entry carries a sync.Once, so concurrent readers of the same
// record wait on the entry rather than on the registry.
var sessions struct {
	sync.Mutex
	depth int
	cache *sessionCache
}

type sessionCache struct {
	records map[recordKey]*recordEntry
	sources map[io.ReadSeeker]io.ReaderAt
	pool    *stream.Pool
	logger  *slog.Logger
	parses  int
	hits    int
}

// recordKey identifies a record: a canonical file path or a stream
// pointer, plus the byte offset of the record.
type recordKey struct {
	source any
	offset int64
}

type recordEntry struct {
	once   sync.Once
	record *Record
	err    error
}

// SessionOptions configures a Session.
type SessionOptions struct {
	// Logger receives debug output about cache and file pool
	// activity. Only the options of the outermost session apply.
	Logger *slog.Logger
}

// Session is a guard keeping the process-wide record cache alive.
// Sessions nest; the cache lives from the first NewSession until the
// matching last Close.
type Session struct {
	closeOnce sync.Once
}

// NewSession opens a session.
func NewSession(options SessionOptions) *Session {
	sessions.Lock()
	defer sessions.Unlock()
	sessions.depth++
	if sessions.cache == nil {
		logger := options.Logger
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		sessions.cache = &sessionCache{
			records: make(map[recordKey]*recordEntry),
			sources: make(map[io.ReadSeeker]io.ReaderAt),
			pool:    stream.NewPool(logger),
			logger:  logger,
		}
		logger.Debug("record session started")
	}
	return &Session{}
}

// Close ends the session. Calling Close more than once has no further
// effect.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		sessions.Lock()
		sessions.depth--
		cache := sessions.cache
		if sessions.depth > 0 {
			cache = nil
		} else {
			sessions.cache = nil
		}
		sessions.Unlock()

		if cache != nil {
			cache.logger.Debug("record session ended",
				"records", len(cache.records),
				"parses", cache.parses,
				"hits", cache.hits,
			)
			err = cache.pool.Close()
		}
	})
	return err
}

// SessionActive reports whether any Session is open.
func SessionActive() bool {
	sessions.Lock()
	defer sessions.Unlock()
	return sessions.depth > 0
}

// SessionStats describes the current session cache.
type SessionStats struct {
	Active      bool
	Records     int
	Parses      int
	Hits        int
	FilesOpen   int
	FilesOpened int
	FilesReused int
}

// CurrentSessionStats returns statistics for the open session, or a
// zero value with Active false.
func CurrentSessionStats() SessionStats {
	sessions.Lock()
	cache := sessions.cache
	if cache == nil {
		sessions.Unlock()
		return SessionStats{}
	}
	stats := SessionStats{
		Active:  true,
		Records: len(cache.records),
		Parses:  cache.parses,
		Hits:    cache.hits,
	}
	sessions.Unlock()
	stats.FilesOpen = cache.pool.Len()
	stats.FilesOpened, stats.FilesReused = cache.pool.Stats()
	return stats
}

func activeCache() *sessionCache {
	sessions.Lock()
	defer sessions.Unlock()
	return sessions.cache
}

// cacheable reports whether source can key the cache. Only strings and
// pointers are used: other comparable-looking values may still panic
// as map keys.
func cacheable(source any) bool {
	if source == nil {
		return false
	}
	if _, ok := source.(string); ok {
		return true
	}
	return reflect.TypeOf(source).Kind() == reflect.Pointer
}

// loadRecord returns the cached record for key, calling parse at most
// once per session. A failed parse is not cached.
func loadRecord(key recordKey, parse func() (*Record, error)) (*Record, error) {
	cache := activeCache()
	if cache == nil || !cacheable(key.source) {
		return parse()
	}

	sessions.Lock()
	entry, found := cache.records[key]
	if !found {
		entry = &recordEntry{}
		cache.records[key] = entry
	}
	sessions.Unlock()

	parsed := false
	entry.once.Do(func() {
		entry.record, entry.err = parse()
		parsed = true
	})

	sessions.Lock()
	if parsed {
		cache.parses++
	} else {
		cache.hits++
	}
	if entry.err != nil && cache.records[key] == entry {
		delete(cache.records, key)
	}
	sessions.Unlock()

	return entry.record, entry.err
}

// sharedStreamSource returns the ReaderAt view of in. While a session
// is active every reader of one stream gets the same view, so reads
// that seek the stream are serialized by a single lock.
func sharedStreamSource(in io.ReadSeeker) io.ReaderAt {
	if readerAt, ok := in.(io.ReaderAt); ok {
		return readerAt
	}
	cache := activeCache()
	if cache == nil || !cacheable(in) {
		return streamSource(in)
	}
	sessions.Lock()
	defer sessions.Unlock()
	source, ok := cache.sources[in]
	if !ok {
		source = streamSource(in)
		cache.sources[in] = source
	}
	return source
}

// openFile opens path for reading, through the session pool when a
// session is active.
func openFile(path string) (stream.ReadAtCloser, error) {
	if cache := activeCache(); cache != nil {
		lease, err := cache.pool.Acquire(path)
		if err == nil {
			return lease, nil
		}
		if !errors.Is(err, stream.ErrPoolClosed) {
			return nil, err
		}
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return file, nil
}

// loadFileRecord returns the record at offset in the file at path.
func loadFileRecord(path string, offset int64) (*Record, error) {
	canonical, err := stream.Canonical(path)
	if err != nil {
		return nil, err
	}
	return loadRecord(recordKey{source: canonical, offset: offset}, func() (*Record, error) {
		file, err := openFile(canonical)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		record, err := parseRecord(file, offset)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", canonical, err)
		}
		return record, nil
	})
}
