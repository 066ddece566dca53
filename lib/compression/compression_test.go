// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"math"
	"testing"
)

func compressibleData() []byte {
	return bytes.Repeat([]byte("record data section payload "), 512)
}

func TestRoundtripAllAlgorithms(t *testing.T) {
	data := compressibleData()
	for _, algorithm := range Algorithms() {
		t.Run(algorithm, func(t *testing.T) {
			compressed, err := Compress(data, algorithm)
			if err != nil {
				t.Fatalf("Compress(%s) failed: %v", algorithm, err)
			}
			if algorithm != None && len(compressed) >= len(data) {
				t.Errorf("Compress(%s) produced %d bytes from %d", algorithm, len(compressed), len(data))
			}
			decompressed, err := Decompress(compressed, algorithm, len(data))
			if err != nil {
				t.Fatalf("Decompress(%s) failed: %v", algorithm, err)
			}
			if !bytes.Equal(decompressed, data) {
				t.Errorf("%s roundtrip mismatch", algorithm)
			}
		})
	}
}

func TestNoneReturnsSameSlice(t *testing.T) {
	data := []byte("uncompressed data should pass through unchanged")
	compressed, err := Compress(data, None)
	if err != nil {
		t.Fatalf("Compress(none) failed: %v", err)
	}
	if &compressed[0] != &data[0] {
		t.Error("none should return the same slice, not a copy")
	}
	if _, err := Decompress(data, None, len(data)+1); err == nil {
		t.Error("Decompress(none) with wrong size should fail")
	}
}

func TestIncompressible(t *testing.T) {
	random := make([]byte, 4096)
	rand.Read(random)
	for _, algorithm := range []string{"lz4", "zstd", "s2", "snappy", "gzip"} {
		t.Run(algorithm, func(t *testing.T) {
			_, err := Compress(random, algorithm)
			if !IsIncompressible(err) {
				t.Errorf("Compress(%s, random) error = %v, want incompressible", algorithm, err)
			}
		})
	}
	if _, err := Compress(nil, "lz4"); !IsIncompressible(err) {
		t.Errorf("Compress(lz4, empty) error = %v, want incompressible", err)
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	if Supported("bzip2") {
		t.Error("bzip2 should not be supported")
	}
	if _, err := Compress([]byte("x"), "bzip2"); err == nil {
		t.Error("Compress(bzip2) should fail")
	}
	if _, err := Decompress([]byte("x"), "bzip2", 1); err == nil {
		t.Error("Decompress(bzip2) should fail")
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	data := compressibleData()
	for _, algorithm := range []string{"lz4", "zstd", "s2", "snappy", "gzip"} {
		t.Run(algorithm, func(t *testing.T) {
			compressed, err := Compress(data, algorithm)
			if err != nil {
				t.Fatalf("Compress(%s) failed: %v", algorithm, err)
			}
			if _, err := Decompress(compressed, algorithm, len(data)+7); err == nil {
				t.Errorf("Decompress(%s) with wrong size should fail", algorithm)
			}
		})
	}
}

func TestBG4Float32(t *testing.T) {
	values := make([]byte, 4*2048)
	for i := 0; i < 2048; i++ {
		binary.LittleEndian.PutUint32(values[i*4:], math.Float32bits(1.0+float32(i)*1e-4))
	}
	compressed, err := Compress(values, "bg4_lz4")
	if err != nil {
		t.Fatalf("Compress(bg4_lz4) failed: %v", err)
	}
	decompressed, err := Decompress(compressed, "bg4_lz4", len(values))
	if err != nil {
		t.Fatalf("Decompress(bg4_lz4) failed: %v", err)
	}
	if !bytes.Equal(decompressed, values) {
		t.Error("bg4_lz4 roundtrip mismatch")
	}
}

func TestBG4TransposeTrailingBytes(t *testing.T) {
	for _, length := range []int{0, 1, 3, 4, 7, 16, 19} {
		data := make([]byte, length)
		for i := range data {
			data[i] = byte(i)
		}
		if got := bg4Untranspose(bg4Transpose(data)); !bytes.Equal(got, data) {
			t.Errorf("length %d: transpose roundtrip = %v, want %v", length, got, data)
		}
	}
}
