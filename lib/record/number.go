// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/binary"
	"math"
	"reflect"
)

// Number is the set of element types scalars and arrays may hold.
// Go int and uint are stored as 64-bit values.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Datatype names stored in item metadata.
const (
	DatatypeInt8   = "int8"
	DatatypeInt16  = "int16"
	DatatypeInt32  = "int32"
	DatatypeInt64  = "int64"
	DatatypeUint8  = "uint8"
	DatatypeUint16 = "uint16"
	DatatypeUint32 = "uint32"
	DatatypeUint64 = "uint64"
	DatatypeReal32 = "real32"
	DatatypeReal64 = "real64"
)

// datatypeOf returns the stored datatype name and element size of T.
func datatypeOf[T Number]() (string, int) {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Int8:
		return DatatypeInt8, 1
	case reflect.Int16:
		return DatatypeInt16, 2
	case reflect.Int32:
		return DatatypeInt32, 4
	case reflect.Int, reflect.Int64:
		return DatatypeInt64, 8
	case reflect.Uint8:
		return DatatypeUint8, 1
	case reflect.Uint16:
		return DatatypeUint16, 2
	case reflect.Uint32:
		return DatatypeUint32, 4
	case reflect.Uint, reflect.Uint64:
		return DatatypeUint64, 8
	case reflect.Float32:
		return DatatypeReal32, 4
	default:
		return DatatypeReal64, 8
	}
}

// DatatypeSize returns the element size of a stored datatype, or 0
// for an unknown name.
func DatatypeSize(datatype string) int {
	switch datatype {
	case DatatypeInt8, DatatypeUint8:
		return 1
	case DatatypeInt16, DatatypeUint16:
		return 2
	case DatatypeInt32, DatatypeUint32, DatatypeReal32:
		return 4
	case DatatypeInt64, DatatypeUint64, DatatypeReal64:
		return 8
	default:
		return 0
	}
}

func putNumber[T Number](dst []byte, value T, order binary.ByteOrder) {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Int8:
		dst[0] = byte(int8(value))
	case reflect.Uint8:
		dst[0] = byte(uint8(value))
	case reflect.Int16:
		order.PutUint16(dst, uint16(int16(value)))
	case reflect.Uint16:
		order.PutUint16(dst, uint16(value))
	case reflect.Int32:
		order.PutUint32(dst, uint32(int32(value)))
	case reflect.Uint32:
		order.PutUint32(dst, uint32(value))
	case reflect.Int, reflect.Int64:
		order.PutUint64(dst, uint64(int64(value)))
	case reflect.Uint, reflect.Uint64:
		order.PutUint64(dst, uint64(value))
	case reflect.Float32:
		order.PutUint32(dst, math.Float32bits(float32(value)))
	case reflect.Float64:
		order.PutUint64(dst, math.Float64bits(float64(value)))
	}
}

func getNumber[T Number](src []byte, order binary.ByteOrder) T {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Int8:
		return T(int8(src[0]))
	case reflect.Uint8:
		return T(src[0])
	case reflect.Int16:
		return T(int16(order.Uint16(src)))
	case reflect.Uint16:
		return T(order.Uint16(src))
	case reflect.Int32:
		return T(int32(order.Uint32(src)))
	case reflect.Uint32:
		return T(order.Uint32(src))
	case reflect.Int, reflect.Int64:
		return T(int64(order.Uint64(src)))
	case reflect.Uint, reflect.Uint64:
		return T(order.Uint64(src))
	case reflect.Float32:
		return T(math.Float32frombits(order.Uint32(src)))
	default:
		return T(math.Float64frombits(order.Uint64(src)))
	}
}

// inlineValue converts value to the type metadata codecs store it as.
func inlineValue[T Number](value T) any {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float32, reflect.Float64:
		return float64(value)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uint64(value)
	default:
		return int64(value)
	}
}

// fromInline converts a decoded metadata value to T.
func fromInline[T Number](value any) (T, bool) {
	switch v := value.(type) {
	case float64:
		return T(v), true
	case float32:
		return T(v), true
	case uint64:
		return T(v), true
	}
	n, ok := toInt64(value)
	return T(n), ok
}
