// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"io"
	"os"
)

// ScanFile parses every record in the file at path. Records are laid
// end to end, as produced by writing with stream.ModeAppend.
func ScanFile(path string) ([]*Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	file, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	records, err := Scan(file, info.Size())
	if err != nil {
		return records, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Scan parses consecutive records from source, starting at offset 0
// and stopping at size. It returns the records parsed before the
// first failure along with the error.
func Scan(source io.ReaderAt, size int64) ([]*Record, error) {
	var records []*Record
	for offset := int64(0); offset < size; {
		record, err := parseRecord(source, offset)
		if err != nil {
			return records, err
		}
		records = append(records, record)
		offset += record.Length()
	}
	return records, nil
}
