// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Mode selects how a file is opened.
type Mode int

const (
	// ModeRead opens an existing file read-only.
	ModeRead Mode = iota

	// ModeWrite creates or truncates the file.
	ModeWrite

	// ModeAppend creates the file if needed and positions the stream
	// at its end. The file is not opened with O_APPEND: record writers
	// seek backwards to patch what they wrote.
	ModeAppend
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeAppend:
		return "append"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Open opens path in the given mode.
func Open(path string, mode Mode) (*os.File, error) {
	var (
		file *os.File
		err  error
	)
	switch mode {
	case ModeRead:
		file, err = os.Open(path)
	case ModeWrite:
		file, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	case ModeAppend:
		file, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
		if err == nil {
			if _, err = file.Seek(0, io.SeekEnd); err != nil {
				file.Close()
			}
		}
	default:
		return nil, fmt.Errorf("opening %s: unsupported mode %s", path, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s for %s: %w", path, mode, err)
	}
	return file, nil
}

// Canonical returns the absolute, symlink-resolved form of path. When
// the path does not exist the cleaned absolute path is returned.
func Canonical(path string) (string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(absolute); err == nil {
		return resolved, nil
	}
	return absolute, nil
}

// Position returns the current offset of a seekable stream.
func Position(s io.Seeker) (int64, error) {
	return s.Seek(0, io.SeekCurrent)
}
