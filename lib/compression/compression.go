// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// None is the algorithm name that performs no transformation.
const None = "none"

// Default is the algorithm used when configuration does not name one.
const Default = "lz4"

type codec struct {
	compress   func(data []byte) ([]byte, error)
	decompress func(compressed []byte, uncompressedSize int) ([]byte, error)
}

var codecs = map[string]codec{
	"lz4":     {compressLZ4, decompressLZ4},
	"zstd":    {compressZstd, decompressZstd},
	"bg4_lz4": {compressBG4LZ4, decompressBG4LZ4},
	"s2":      {compressS2, decompressS2},
	"snappy":  {compressSnappy, decompressSnappy},
	"gzip":    {compressGzip, decompressGzip},
}

// Supported reports whether the algorithm is known to this build.
func Supported(algorithm string) bool {
	if algorithm == None {
		return true
	}
	_, ok := codecs[algorithm]
	return ok
}

// Algorithms returns every supported algorithm name, sorted, including
// "none".
func Algorithms() []string {
	names := []string{None}
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compress compresses data with the named algorithm. For "none" the
// input is returned unchanged (no copy).
func Compress(data []byte, algorithm string) ([]byte, error) {
	if algorithm == None {
		return data, nil
	}
	c, ok := codecs[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported compression algorithm %q", algorithm)
	}
	if len(data) == 0 {
		return nil, errIncompressible
	}
	compressed, err := c.compress(data)
	if err != nil {
		return nil, err
	}
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

// Decompress reverses Compress. The uncompressedSize must match the
// original length exactly.
func Decompress(compressed []byte, algorithm string, uncompressedSize int) ([]byte, error) {
	if algorithm == None {
		if len(compressed) != uncompressedSize {
			return nil, fmt.Errorf("uncompressed data: size %d does not match expected %d",
				len(compressed), uncompressedSize)
		}
		return compressed, nil
	}
	c, ok := codecs[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported compression algorithm %q", algorithm)
	}
	return c.decompress(compressed, uncompressedSize)
}

// errIncompressible is returned by Compress when the compressed output
// is not smaller than the input.
var errIncompressible = errors.New("data is incompressible")

// IsIncompressible reports whether err means the data could not be
// compressed smaller than its original size.
func IsIncompressible(err error) bool {
	return errors.Is(err, errIncompressible)
}

func checkSize(name string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s decompress: got %d bytes, expected %d", name, got, want)
	}
	return nil
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock reports 0 for incompressible input.
	if written == 0 {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if err := checkSize("lz4", read, uncompressedSize); err != nil {
		return nil, err
	}
	return destination, nil
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use through
// EncodeAll/DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compression: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compression: zstd decoder initialization failed: " + err.Error())
	}
}

func compressZstd(data []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(data, nil), nil
}

func decompressZstd(compressed []byte, uncompressedSize int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if err := checkSize("zstd", len(result), uncompressedSize); err != nil {
		return nil, err
	}
	return result, nil
}

func compressBG4LZ4(data []byte) ([]byte, error) {
	return compressLZ4(bg4Transpose(data))
}

func decompressBG4LZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	transposed, err := decompressLZ4(compressed, uncompressedSize)
	if err != nil {
		return nil, err
	}
	return bg4Untranspose(transposed), nil
}

func compressS2(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func decompressS2(compressed []byte, uncompressedSize int) ([]byte, error) {
	result, err := s2.Decode(make([]byte, uncompressedSize), compressed)
	if err != nil {
		return nil, fmt.Errorf("s2 decompress: %w", err)
	}
	if err := checkSize("s2", len(result), uncompressedSize); err != nil {
		return nil, err
	}
	return result, nil
}

func compressSnappy(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func decompressSnappy(compressed []byte, uncompressedSize int) ([]byte, error) {
	result, err := snappy.Decode(make([]byte, uncompressedSize), compressed)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress: %w", err)
	}
	if err := checkSize("snappy", len(result), uncompressedSize); err != nil {
		return nil, err
	}
	return result, nil
}

func compressGzip(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := gzip.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func decompressGzip(compressed []byte, uncompressedSize int) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	defer reader.Close()
	result := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	// Trailing bytes mean the recorded size is wrong.
	var probe [1]byte
	if n, _ := reader.Read(probe[:]); n != 0 {
		return nil, fmt.Errorf("gzip decompress: more than %d bytes of output", uncompressedSize)
	}
	return result, nil
}

// bg4Transpose groups all byte-position-0 values first, then all
// byte-position-1 values, and so on, in groups of 4. Trailing bytes
// past the last full group are appended unchanged.
func bg4Transpose(data []byte) []byte {
	length := len(data)
	groupCount := length / 4
	output := make([]byte, length)
	for i := 0; i < groupCount; i++ {
		for lane := 0; lane < 4; lane++ {
			output[groupCount*lane+i] = data[i*4+lane]
		}
	}
	copy(output[groupCount*4:], data[groupCount*4:])
	return output
}

// bg4Untranspose reverses bg4Transpose.
func bg4Untranspose(data []byte) []byte {
	length := len(data)
	groupCount := length / 4
	output := make([]byte, length)
	for i := 0; i < groupCount; i++ {
		for lane := 0; lane < 4; lane++ {
			output[i*4+lane] = data[groupCount*lane+i]
		}
	}
	copy(output[groupCount*4:], data[groupCount*4:])
	return output
}
