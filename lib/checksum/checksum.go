// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// None is the algorithm name for an unchecked buffer.
const None = "none"

// Default is the algorithm used when configuration does not name one.
const Default = "xxh64"

// MaxLength is the size of the fixed on-disk field holding a
// formatted checksum.
const MaxLength = 64

// digestSize is the output size for algorithms with a configurable
// digest length.
const digestSize = 16

// Checksum is an {algorithm, digest} pair. Two checksums are only
// comparable when their algorithms are identical.
type Checksum struct {
	Algorithm string
	Digest    string
}

// Parse splits a formatted checksum on its first colon. A string with
// no colon is treated as unchecked.
func Parse(formatted string) Checksum {
	algorithm, digest, found := strings.Cut(formatted, ":")
	if !found {
		return Checksum{Algorithm: None}
	}
	return Checksum{Algorithm: algorithm, Digest: digest}
}

// Available reports whether the checksum carries a digest that can be
// verified.
func (c Checksum) Available() bool {
	return c.Algorithm != None && c.Algorithm != "" && c.Digest != ""
}

// String returns the "<algorithm>:<digest>" form.
func (c Checksum) String() string {
	algorithm := c.Algorithm
	if algorithm == "" {
		algorithm = None
	}
	return algorithm + ":" + c.Digest
}

// Equal reports whether two checksums were computed with the same
// algorithm and produced the same digest.
func (c Checksum) Equal(other Checksum) bool {
	return c.Algorithm == other.Algorithm && c.Digest == other.Digest
}

var constructors = map[string]func() hash.Hash{
	"xxh64": func() hash.Hash { return xxhash.New() },
	"crc32": func() hash.Hash { return crc32.NewIEEE() },
	"md5":   md5.New,
	"sha1":  sha1.New,
	"blake3": func() hash.Hash {
		return &truncatedHash{Hash: blake3.New(), size: digestSize}
	},
	"blake2b": func() hash.Hash {
		hasher, err := blake2b.New(digestSize, nil)
		if err != nil {
			panic("checksum: blake2b initialization failed: " + err.Error())
		}
		return hasher
	},
}

// truncatedHash shortens the output of an extendable-output hash so
// the formatted digest fits the on-disk field.
type truncatedHash struct {
	hash.Hash
	size int
}

func (h *truncatedHash) Sum(b []byte) []byte {
	full := h.Hash.Sum(nil)
	return append(b, full[:h.size]...)
}

func (h *truncatedHash) Size() int { return h.size }

// Supported reports whether the algorithm is known to this build.
// "none" is always supported.
func Supported(algorithm string) bool {
	if algorithm == None {
		return true
	}
	_, ok := constructors[algorithm]
	return ok
}

// Algorithms returns the names of all supported algorithms, sorted,
// including "none".
func Algorithms() []string {
	names := []string{None}
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compute hashes buffer with the named algorithm. An unknown algorithm
// or "none" yields an unchecked result ("none:").
func Compute(buffer []byte, algorithm string) Checksum {
	constructor, ok := constructors[algorithm]
	if !ok {
		return Checksum{Algorithm: None}
	}
	hasher := constructor()
	hasher.Write(buffer)
	return Checksum{Algorithm: algorithm, Digest: hex.EncodeToString(hasher.Sum(nil))}
}

// Verify recomputes the checksum of buffer with the algorithm of
// expected and compares the digests. It returns (false, nil) when
// expected is not available or its algorithm is unknown to this
// build, in which case nothing was verified.
func Verify(buffer []byte, expected Checksum) (bool, error) {
	if !expected.Available() || !Supported(expected.Algorithm) {
		return false, nil
	}
	actual := Compute(buffer, expected.Algorithm)
	if !actual.Equal(expected) {
		return true, fmt.Errorf("checksum mismatch: computed %s, stored %s", actual, expected)
	}
	return true, nil
}
