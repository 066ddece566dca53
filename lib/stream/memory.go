// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Memory is a growable in-memory stream supporting Read, Write, Seek
// and ReadAt. Writes past the end extend the buffer; writes in the
// middle overwrite. Memory is safe for concurrent use, although
// interleaving Seek and Read from several goroutines is only
// meaningful through ReadAt.
type Memory struct {
	mu       sync.Mutex
	buffer   []byte
	position int64
}

// NewMemory returns a stream positioned at 0 whose initial content is
// a copy of initial.
func NewMemory(initial []byte) *Memory {
	return &Memory{buffer: append([]byte(nil), initial...)}
}

// Read implements io.Reader.
func (m *Memory) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.position >= int64(len(m.buffer)) {
		return 0, io.EOF
	}
	n := copy(p, m.buffer[m.position:])
	m.position += int64(n)
	return n, nil
}

// ReadAt implements io.ReaderAt.
func (m *Memory) ReadAt(p []byte, offset int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset < 0 {
		return 0, errors.New("memory stream: negative offset")
	}
	if offset >= int64(len(m.buffer)) {
		return 0, io.EOF
	}
	n := copy(p, m.buffer[offset:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Write implements io.Writer.
func (m *Memory) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.position + int64(len(p))
	if end > int64(len(m.buffer)) {
		if end > int64(cap(m.buffer)) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buffer)
			m.buffer = grown
		} else {
			m.buffer = m.buffer[:end]
		}
	}
	copy(m.buffer[m.position:], p)
	m.position = end
	return len(p), nil
}

// Seek implements io.Seeker. Seeking past the end is allowed; a
// following Write zero-fills the gap.
func (m *Memory) Seek(offset int64, whence int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.position + offset
	case io.SeekEnd:
		target = int64(len(m.buffer)) + offset
	default:
		return 0, fmt.Errorf("memory stream: invalid whence %d", whence)
	}
	if target < 0 {
		return 0, errors.New("memory stream: negative position")
	}
	m.position = target
	return target, nil
}

// Close is a no-op; the content stays readable through Bytes.
func (m *Memory) Close() error { return nil }

// Bytes returns the current content. The slice aliases the stream's
// buffer until the next Write.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffer
}

// Len returns the content length.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffer)
}
