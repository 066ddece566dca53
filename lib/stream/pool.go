// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// ReadAtCloser is a read-only random-access stream. *os.File and
// *Lease satisfy it.
type ReadAtCloser interface {
	io.ReaderAt
	io.Closer
}

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("stream pool is closed")

// Pool shares read-only file handles by canonical path.
//
// Pool is safe for concurrent use.
type Pool struct {
	mu     sync.Mutex
	files  map[string]*pooledFile
	closed bool
	logger *slog.Logger
	opened int
	reused int
}

// pooledFile is one open descriptor. references counts outstanding
// leases plus one for the pool while the pool is open.
type pooledFile struct {
	path       string
	file       *os.File
	references int
}

// NewPool returns an empty pool. A nil logger discards.
func NewPool(logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pool{
		files:  make(map[string]*pooledFile),
		logger: logger,
	}
}

// Acquire returns a lease on the pooled handle for path, opening the
// file on first use. The caller must Close the lease.
func (p *Pool) Acquire(path string) (*Lease, error) {
	canonical, err := Canonical(path)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	entry, ok := p.files[canonical]
	if ok {
		p.reused++
	} else {
		file, err := Open(canonical, ModeRead)
		if err != nil {
			return nil, err
		}
		entry = &pooledFile{path: canonical, file: file, references: 1}
		p.files[canonical] = entry
		p.opened++
		p.logger.Debug("pooled file opened", "path", canonical)
	}
	entry.references++
	return &Lease{pool: p, entry: entry}, nil
}

// Len returns the number of distinct files currently pooled.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.files)
}

// Stats returns how many files were opened and how many acquisitions
// reused an already-open handle.
func (p *Pool) Stats() (opened, reused int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opened, p.reused
}

// Close drops the pool's own reference on every handle. Handles with
// no outstanding leases are closed immediately; the rest close when
// their last lease is released. Close is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	var release []*pooledFile
	for path, entry := range p.files {
		entry.references--
		if entry.references == 0 {
			release = append(release, entry)
		}
		delete(p.files, path)
	}
	p.mu.Unlock()

	var errs []error
	for _, entry := range release {
		if err := p.closeFile(entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pool) release(entry *pooledFile) error {
	p.mu.Lock()
	entry.references--
	last := entry.references == 0
	p.mu.Unlock()
	if !last {
		return nil
	}
	return p.closeFile(entry)
}

func (p *Pool) closeFile(entry *pooledFile) error {
	p.logger.Debug("pooled file closed", "path", entry.path)
	if err := entry.file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", entry.path, err)
	}
	return nil
}

// Lease is one holder's reference to a pooled file.
type Lease struct {
	pool  *Pool
	entry *pooledFile
	once  sync.Once
}

// ReadAt implements io.ReaderAt on the shared handle.
func (l *Lease) ReadAt(p []byte, offset int64) (int, error) {
	return l.entry.file.ReadAt(p, offset)
}

// Path returns the canonical path of the pooled file.
func (l *Lease) Path() string { return l.entry.path }

// Close releases this lease. Further calls are no-ops.
func (l *Lease) Close() error {
	var err error
	l.once.Do(func() {
		err = l.pool.release(l.entry)
	})
	return err
}
