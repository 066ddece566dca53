// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ItemURI addresses one item: the record at Offset bytes into the
// file at Path, and the item Key within it. Its string form is
// "path#offset/key"; "path/key" means offset 0.
type ItemURI struct {
	Path   string
	Offset int64
	Key    string
}

var itemURIPattern = regexp.MustCompile(`^(.+)#(\d+)/(.+)$`)

// ParseItemURI parses "path#offset/key" or "path/key".
func ParseItemURI(s string) (ItemURI, error) {
	if match := itemURIPattern.FindStringSubmatch(s); match != nil {
		offset, err := strconv.ParseInt(match[2], 10, 64)
		if err != nil {
			return ItemURI{}, usageErrorf("item URI %q: offset: %v", s, err)
		}
		return ItemURI{Path: match[1], Offset: offset, Key: match[3]}, nil
	}
	slash := strings.LastIndex(s, "/")
	if slash <= 0 || slash == len(s)-1 {
		return ItemURI{}, usageErrorf("item URI %q is not of the form path[#offset]/key", s)
	}
	return ItemURI{Path: s[:slash], Key: s[slash+1:]}, nil
}

// String returns the canonical "path#offset/key" form.
func (u ItemURI) String() string {
	return fmt.Sprintf("%s#%d/%s", u.Path, u.Offset, u.Key)
}

// Record returns the URI of the record holding the item.
func (u ItemURI) Record() RecordURI {
	return RecordURI{Path: u.Path, Offset: u.Offset}
}

// RecordURI addresses one record within a file.
type RecordURI struct {
	Path   string
	Offset int64
}

// String returns "path#offset".
func (u RecordURI) String() string {
	return fmt.Sprintf("%s#%d", u.Path, u.Offset)
}

// Item returns the URI of key within the record.
func (u RecordURI) Item(key string) ItemURI {
	return ItemURI{Path: u.Path, Offset: u.Offset, Key: key}
}

// resolvePath makes path absolute. Relative paths are taken relative
// to reference when it is set, and "~/" expands to the home directory.
func resolvePath(reference, path string) (string, error) {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", usageErrorf("expanding %q: %v", path, err)
		}
		path = filepath.Join(home, rest)
	} else if !filepath.IsAbs(path) && reference != "" {
		path = filepath.Join(reference, path)
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", usageErrorf("resolving %q: %v", path, err)
	}
	return absolute, nil
}
