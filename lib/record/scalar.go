// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/base64"
	"encoding/binary"
)

// Item types stored in the "type" metadata entry.
const (
	TypeScalar = "scalar"
	TypeString = "string"
	TypeArray  = "array"
)

// Scalar returns an Encoder for a single number. The value is stored
// in a data section, inline as "value", and as "base64" of its
// big-endian bytes, so metadata alone recovers it exactly.
func Scalar[T Number](value T) Encoder {
	return scalarEncoder[T]{value: value}
}

type scalarEncoder[T Number] struct {
	value T
}

func (e scalarEncoder[T]) EncodeMetadata(metadata Metadata) (int, error) {
	datatype, size := datatypeOf[T]()
	normalized := make([]byte, size)
	putNumber(normalized, e.value, binary.BigEndian)
	metadata.Set("type", TypeScalar)
	metadata.Set("datatype", datatype)
	metadata.Set("value", inlineValue(e.value))
	metadata.Set("base64", base64.StdEncoding.EncodeToString(normalized))
	return size, nil
}

func (e scalarEncoder[T]) EncodeData(data *Data) error {
	_, size := datatypeOf[T]()
	buffer := make([]byte, size)
	putNumber(buffer, e.value, data.ByteOrder())
	data.Write(buffer)
	return nil
}

// Into returns a Decoder that stores a scalar item in target. The
// stored datatype must match T.
func Into[T Number](target *T) Decoder {
	return scalarDecoder[T]{target: target}
}

type scalarDecoder[T Number] struct {
	target *T
}

func (d scalarDecoder[T]) Decode(metadata Metadata, data Data) error {
	if metadata.Type() != TypeScalar {
		return notDecodablef("item of type %q is not a scalar", metadata.Type())
	}
	datatype, size := datatypeOf[T]()
	if metadata.DataType() != datatype {
		return notDecodablef("cannot decode %s scalar into %s", metadata.DataType(), datatype)
	}
	if data.Len() == size {
		*d.target = getNumber[T](data.Bytes(), data.ByteOrder())
		return nil
	}
	if data.Len() != 0 {
		return invalidRecordf("scalar data is %d bytes, want %d", data.Len(), size)
	}
	if encoded, ok := metadata.GetString("base64"); ok {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil || len(raw) != size {
			return invalidRecordf("malformed base64 scalar %q", encoded)
		}
		*d.target = getNumber[T](raw, binary.BigEndian)
		return nil
	}
	if value, ok := metadata.Get("value"); ok {
		if converted, ok := fromInline[T](value); ok {
			*d.target = converted
			return nil
		}
	}
	return invalidRecordf("scalar has neither data nor inline value")
}
